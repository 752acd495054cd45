package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	EventItineraryGenerated = "itinerary_generated"
	EventItinerarySaved     = "itinerary_saved"
	EventItineraryUpdated   = "itinerary_updated"
	EventItineraryDeleted   = "itinerary_deleted"

	subscriberBuffer = 16
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// ItineraryEvent - полезная нагрузка событий о маршрутах.
type ItineraryEvent struct {
	ItineraryID *uuid.UUID `json:"itinerary_id,omitempty"`
	Source      string     `json:"source,omitempty"`
	Days        int        `json:"days,omitempty"`
	Note        string     `json:"note,omitempty"`
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
	}
}

// Subscribe подписывает пользователя на события и возвращает канал и функцию отписки.
// Повторный вызов функции отписки безопасен.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	userSubs, ok := h.subscribers[userID]
	if !ok {
		userSubs = make(map[chan Event]struct{})
		h.subscribers[userID] = userSubs
	}
	userSubs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if subs, exists := h.subscribers[userID]; exists {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subscribers, userID)
				}
			}
			close(ch)
		})
	}
}

// Publish отправляет событие всем подписчикам пользователя. Медленные
// подписчики пропускают событие.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishItinerary публикует событие о маршруте.
func (h *Hub) PublishItinerary(userID uuid.UUID, eventType string, payload ItineraryEvent) {
	h.Publish(userID, Event{Type: eventType, Data: payload})
}

// Subscribers возвращает число активных подписок пользователя.
func (h *Hub) Subscribers(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}
