package planner

import (
	"context"
	"encoding/json"
	"errors"

	"example.com/travel-planner/backend/internal/models"
)

// ErrUpstream оборачивает ответы планировщика с кодом вне 2xx.
var ErrUpstream = errors.New("planner upstream error")

// Planner описывает внешний сервис планирования и чата.
type Planner interface {
	GeneratePlan(ctx context.Context, req Request) (Response, []byte, error)
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	Health(ctx context.Context) (HealthStatus, error)
}

// Request совпадает по формату с запросом /travelhelper/plans/ai.
type Request struct {
	Destinations     []string `json:"destinations"`
	Budget           float64  `json:"budget"`
	Days             int      `json:"days"`
	TravelStyle      string   `json:"travelStyle"`
	Interests        []string `json:"interests"`
	StartingLocation string   `json:"startingLocation,omitempty"`
}

type BudgetBreakdown struct {
	Accommodation float64 `json:"accommodation"`
	Food          float64 `json:"food"`
	Activities    float64 `json:"activities"`
	Transport     float64 `json:"transport"`
	Total         float64 `json:"total"`
}

type Summary struct {
	Budget           float64  `json:"budget"`
	Days             int      `json:"days"`
	Style            string   `json:"style"`
	Interests        []string `json:"interests"`
	Destinations     []string `json:"destinations"`
	DailyBudget      float64  `json:"dailyBudget,omitempty"`
	DestinationNames []string `json:"destinationNames,omitempty"`
}

// Response - ответ планировщика; все поля кроме success необязательны.
type Response struct {
	Success         bool             `json:"success"`
	Itinerary       json.RawMessage  `json:"itinerary,omitempty"`
	AIResponseText  string           `json:"ai_response_text,omitempty"`
	Error           string           `json:"error,omitempty"`
	Message         string           `json:"message,omitempty"`
	BudgetBreakdown *BudgetBreakdown `json:"budgetBreakdown,omitempty"`
	Summary         *Summary         `json:"summary,omitempty"`
	AIProvider      string           `json:"aiProvider,omitempty"`
	GeneratedAt     string           `json:"generatedAt,omitempty"`
}

// FailureReason возвращает текст ошибки из ответа.
func (r Response) FailureReason() string {
	switch {
	case r.Error != "":
		return r.Error
	case r.Message != "":
		return r.Message
	default:
		return "unknown error"
	}
}

type ChatRequest struct {
	Message string          `json:"message"`
	Plan    json.RawMessage `json:"plan,omitempty"`
}

type ChatResponse struct {
	Success bool                     `json:"success"`
	Reply   string                   `json:"reply,omitempty"`
	Changes *models.ItineraryChanges `json:"changes,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// UnmarshalJSON терпит changes произвольной формы: неразборчивые правки отбрасываются.
func (r *ChatResponse) UnmarshalJSON(data []byte) error {
	var wire struct {
		Success bool            `json:"success"`
		Reply   string          `json:"reply"`
		Changes json.RawMessage `json:"changes"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*r = ChatResponse{Success: wire.Success, Reply: wire.Reply, Error: wire.Error}
	if len(wire.Changes) > 0 {
		var changes models.ItineraryChanges
		if err := json.Unmarshal(wire.Changes, &changes); err == nil && !changes.Empty() {
			r.Changes = &changes
		}
	}
	return nil
}

type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
