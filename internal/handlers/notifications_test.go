package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/travel-planner/backend/internal/notifications"
)

// TestEventFilter проверяет разбор списка типов событий.
func TestEventFilter(t *testing.T) {
	all := eventFilter("")
	if !all(notifications.EventItinerarySaved) || !all("anything") {
		t.Fatal("empty filter must accept every event")
	}

	saved := eventFilter(" itinerary_saved, ,ITINERARY_DELETED")
	if !saved(notifications.EventItinerarySaved) || !saved(notifications.EventItineraryDeleted) {
		t.Fatal("expected listed events to pass")
	}
	if saved(notifications.EventItineraryGenerated) {
		t.Fatal("expected other events to be filtered out")
	}
}

// TestStream проверяет доставку событий в SSE-поток с фильтром типов.
func TestStream(t *testing.T) {
	e := newTestEcho()
	hub := notifications.NewHub()
	handler := NewNotificationHandler(hub)
	userID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, rec := newContext(e, http.MethodGet, "/api/v1/notifications/stream?types=itinerary_saved", nil)
	c.SetRequest(c.Request().WithContext(ctx))
	withUser(c, userID)

	done := make(chan error, 1)
	go func() {
		done <- handler.Stream(c)
	}()

	deadline := time.Now().Add(time.Second)
	for hub.Subscribers(userID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream did not subscribe")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.PublishItinerary(userID, notifications.EventItineraryGenerated, notifications.ItineraryEvent{Days: 2})
	hub.PublishItinerary(userID, notifications.EventItinerarySaved, notifications.ItineraryEvent{Days: 3})

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("stream: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after cancel")
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "retry: ") {
		t.Fatalf("expected retry directive, got %q", body)
	}
	if !strings.Contains(body, "id: 1\nevent: connected\n") || !strings.Contains(body, "id: 2\nevent: itinerary_saved\n") {
		t.Fatalf("unexpected stream body %q", body)
	}
	if strings.Contains(body, notifications.EventItineraryGenerated) {
		t.Fatalf("generated event must be filtered out: %q", body)
	}
}
