package notifications

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()

	select {
	case event := <-ch:
		return event
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
	return Event{}
}

// TestHubPublishItinerary проверяет доставку события о маршруте.
func TestHubPublishItinerary(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()
	itineraryID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	hub.PublishItinerary(userID, EventItinerarySaved, ItineraryEvent{ItineraryID: &itineraryID, Source: "ai", Days: 3})

	event := receive(t, ch)
	if event.Type != EventItinerarySaved {
		t.Fatalf("expected %s, got %s", EventItinerarySaved, event.Type)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}
	payload, ok := event.Data.(ItineraryEvent)
	if !ok || *payload.ItineraryID != itineraryID || payload.Days != 3 {
		t.Fatalf("unexpected payload %+v", event.Data)
	}
}

// TestHubIsolation проверяет, что события не попадают другим пользователям.
func TestHubIsolation(t *testing.T) {
	hub := NewHub()
	owner, other := uuid.New(), uuid.New()

	ch, unsubscribe := hub.Subscribe(other)
	defer unsubscribe()

	hub.Publish(owner, Event{Type: EventItineraryGenerated})

	select {
	case event := <-ch:
		t.Fatalf("unexpected event %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestHubSlowSubscriber проверяет, что переполненный буфер не блокирует Publish.
func TestHubSlowSubscriber(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			hub.Publish(userID, Event{Type: EventItineraryUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("expected full buffer, got %d", len(ch))
	}
}

// TestHubUnsubscribe проверяет закрытие канала после отписки.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	unsubscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
	if hub.Subscribers(userID) != 0 {
		t.Fatal("expected no subscribers")
	}
}
