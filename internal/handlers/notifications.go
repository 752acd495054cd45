package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"example.com/travel-planner/backend/internal/auth"
	"example.com/travel-planner/backend/internal/notifications"
)

const (
	eventConnected    = "connected"
	keepAliveInterval = 25 * time.Second
	retryMillis       = 5000
)

type NotificationHandler struct {
	Hub *notifications.Hub
}

// NewNotificationHandler создает SSE-обработчик уведомлений.
func NewNotificationHandler(hub *notifications.Hub) *NotificationHandler {
	return &NotificationHandler{Hub: hub}
}

// Stream открывает SSE-поток событий о маршрутах путешественника.
// Параметр ?types= ограничивает поток перечисленными типами событий.
func (h *NotificationHandler) Stream(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	accept := eventFilter(c.QueryParam("types"))

	header := c.Response().Header()
	header.Set(echo.HeaderContentType, "text/event-stream")
	header.Set(echo.HeaderCacheControl, "no-cache")
	header.Set(echo.HeaderConnection, "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	ch, unsubscribe := h.Hub.Subscribe(userID)
	defer unsubscribe()

	stream := &sseStream{w: c.Response(), flusher: flusher}
	if _, err := fmt.Fprintf(stream.w, "retry: %d\n\n", retryMillis); err != nil {
		return nil
	}
	if err := stream.send(notifications.Event{
		Type:      eventConnected,
		Timestamp: time.Now().UTC(),
		Data:      map[string]string{"user_id": userID.String()},
	}); err != nil {
		return nil
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-keepAlive.C:
			if err := stream.comment("ping"); err != nil {
				return nil
			}
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if !accept(event.Type) {
				continue
			}
			if err := stream.send(event); err != nil {
				return nil
			}
		}
	}
}

// sseStream нумерует события одного подключения.
type sseStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	seq     int
}

func (s *sseStream) send(event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	s.seq++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.seq, event.Type, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *sseStream) comment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// eventFilter разбирает список типов через запятую; пустой список
// пропускает все события.
func eventFilter(raw string) func(string) bool {
	types := lo.Compact(lo.Map(strings.Split(raw, ","), func(value string, _ int) string {
		return strings.ToLower(strings.TrimSpace(value))
	}))
	if len(types) == 0 {
		return func(string) bool { return true }
	}

	allowed := lo.SliceToMap(types, func(value string) (string, struct{}) {
		return value, struct{}{}
	})
	return func(eventType string) bool {
		_, ok := allowed[eventType]
		return ok
	}
}
