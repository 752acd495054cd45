package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ItemKind string

type ItinerarySource string

const (
	KindStay      ItemKind = "stay"
	KindActivity  ItemKind = "activity"
	KindTransport ItemKind = "transport"

	SourceAI       ItinerarySource = "ai"
	SourceTemplate ItinerarySource = "template"
)

// Valid сообщает, входит ли вид элемента в закрытый набор.
func (k ItemKind) Valid() bool {
	switch k {
	case KindStay, KindActivity, KindTransport:
		return true
	default:
		return false
	}
}

type Item struct {
	ID          string   `json:"id"`
	Kind        ItemKind `json:"type"`
	Name        string   `json:"name"`
	Location    string   `json:"location,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Description string   `json:"description,omitempty"`
}

type Day struct {
	Day   int    `json:"day"`
	Items []Item `json:"items"`
}

type Itinerary []Day

// ItemCount возвращает общее количество элементов маршрута.
func (it Itinerary) ItemCount() int {
	total := 0
	for _, day := range it {
		total += len(day.Items)
	}
	return total
}

type BudgetPlan struct {
	Total         float64 `json:"total"`
	Currency      string  `json:"currency"`
	TripLength    int     `json:"trip_length"`
	Accommodation float64 `json:"accommodation"`
	Food          float64 `json:"food"`
	Activities    float64 `json:"activities"`
	Transport     float64 `json:"transport"`
	DailyBudget   float64 `json:"daily_budget"`
}

// CategorySum возвращает сумму четырех категорий бюджета.
func (p BudgetPlan) CategorySum() float64 {
	return p.Accommodation + p.Food + p.Activities + p.Transport
}

type TripPreferences struct {
	Zones            []string `json:"zones"`
	StartingLocation string   `json:"starting_location"`
	Pace             string   `json:"pace"`
	HotelView        string   `json:"hotel_view"`
	Transport        string   `json:"transport"`
	ComfortLevel     string   `json:"comfort_level"`
}

type TripRequest struct {
	Budget      float64         `json:"budget"`
	Currency    string          `json:"currency"`
	TripLength  int             `json:"trip_length"`
	Travelers   int             `json:"travelers"`
	Preferences TripPreferences `json:"preferences"`
}

type SavedItinerary struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Name        string          `json:"name"`
	Destination string          `json:"destination"`
	Budget      float64         `json:"budget"`
	Currency    string          `json:"currency"`
	TripLength  int             `json:"trip_length"`
	Travelers   int             `json:"travelers"`
	Source      ItinerarySource `json:"source"`
	Itinerary   Itinerary       `json:"itinerary"`
	BudgetPlan  BudgetPlan      `json:"budget_plan"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ItineraryChanges описывает правки маршрута, предложенные в чате.
type ItineraryChanges struct {
	Added     []string `json:"added,omitempty"`
	Removed   []string `json:"removed,omitempty"`
	CostDelta float64  `json:"costDelta,omitempty"`
	Currency  string   `json:"currency,omitempty"`
}

// Empty сообщает, что правок нет.
func (c ItineraryChanges) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && c.CostDelta == 0
}

type PlannerRequest struct {
	ID              uuid.UUID       `json:"id"`
	UserID          *uuid.UUID      `json:"user_id,omitempty"`
	RequestType     string          `json:"request_type"`
	Mode            string          `json:"mode"`
	RequestPayload  json.RawMessage `json:"request_payload,omitempty"`
	ResponsePayload json.RawMessage `json:"response_payload,omitempty"`
	Success         bool            `json:"success"`
	ErrorMessage    *string         `json:"error_message,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
