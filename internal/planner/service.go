package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"example.com/travel-planner/backend/internal/budget"
	"example.com/travel-planner/backend/internal/destinations"
	"example.com/travel-planner/backend/internal/itinerary"
	"example.com/travel-planner/backend/internal/models"
)

const (
	defaultCurrency = "USD"
	healthTimeout   = 3 * time.Second

	NoteRejected    = "Planner could not build a plan (%s); showing a template itinerary."
	NoteEmpty       = "Planner response had no usable itinerary; showing a template itinerary."
	NoteReachable   = "Planner reachable but plan generation failed; showing a template itinerary."
	NoteUnavailable = "Planner unavailable; showing a template itinerary."
)

type Destination struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Call хранит данные обращения к планировщику для журнала запросов.
type Call struct {
	Request  []byte
	Response []byte
	Raw      []byte
	Err      error
}

// Result - итог планирования поездки.
type Result struct {
	Itinerary    models.Itinerary       `json:"itinerary"`
	Budget       models.BudgetPlan      `json:"budget"`
	Breakdown    budget.Breakdown       `json:"breakdown"`
	Destinations []Destination          `json:"destinations"`
	Source       models.ItinerarySource `json:"source"`
	Note         string                 `json:"note,omitempty"`
	Provider     string                 `json:"provider,omitempty"`
	AIText       string                 `json:"ai_text,omitempty"`
	GeneratedAt  time.Time              `json:"generated_at"`
	Call         Call                   `json:"-"`
}

type ChatInput struct {
	Message   string            `json:"message"`
	Itinerary models.Itinerary  `json:"itinerary"`
	Budget    models.BudgetPlan `json:"budget"`
}

type ChatResult struct {
	Reply     string                   `json:"reply"`
	Changes   *models.ItineraryChanges `json:"changes,omitempty"`
	Itinerary models.Itinerary         `json:"itinerary,omitempty"`
	Budget    *models.BudgetPlan       `json:"budget,omitempty"`
}

// Service связывает выбор направлений, распределение бюджета, планировщик и сборку маршрута.
type Service struct {
	planner   Planner
	catalog   *destinations.Catalog
	allocator *budget.Allocator
	assembler *itinerary.Assembler
	logger    *slog.Logger
	now       func() time.Time
}

// NewService создает сервис планирования.
func NewService(planner Planner, catalog *destinations.Catalog, allocator *budget.Allocator, assembler *itinerary.Assembler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		planner:   planner,
		catalog:   catalog,
		allocator: allocator,
		assembler: assembler,
		logger:    logger,
		now:       time.Now,
	}
}

// Plan строит маршрут поездки. Любая ошибка планировщика приводит к
// шаблонному маршруту с пояснением; сам метод не завершается ошибкой.
func (s *Service) Plan(ctx context.Context, trip models.TripRequest) Result {
	tripLength := max(trip.TripLength, 1)
	currency := strings.ToUpper(strings.TrimSpace(trip.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	prefs := trip.Preferences

	plan := s.allocator.Allocate(trip.Budget, tripLength, currency)
	ids := s.catalog.Select(prefs.StartingLocation, prefs.Zones, destinations.MaxDestinations(tripLength))

	req := Request{
		Destinations:     ids,
		Budget:           plan.Total,
		Days:             tripLength,
		TravelStyle:      destinations.TravelStyle(prefs.Pace),
		Interests:        s.catalog.Interests(prefs.Zones),
		StartingLocation: prefs.StartingLocation,
	}

	result := Result{
		Budget:       plan,
		Destinations: s.destinationList(ids),
		GeneratedAt:  s.now().UTC(),
	}
	result.Call.Request, _ = json.Marshal(req)

	response, raw, err := s.planner.GeneratePlan(ctx, req)
	result.Call.Raw = raw
	result.Call.Err = err
	if err == nil {
		result.Call.Response, _ = json.Marshal(response)
		if !response.Success {
			result.Call.Err = fmt.Errorf("%w: %s", ErrUpstream, response.FailureReason())
		}
	}

	upstream := itinerary.Upstream{
		Failed:    err != nil || !response.Success,
		Itinerary: response.Itinerary,
		Text:      response.AIResponseText,
	}
	result.Itinerary, result.Source = s.assembler.Assemble(itinerary.Request{
		TripLength:  tripLength,
		Budget:      plan.Total,
		Currency:    currency,
		Preferences: prefs,
	}, upstream)
	result.Breakdown = budget.BreakdownOf(plan, result.Itinerary)

	if result.Source == models.SourceAI {
		result.Provider = response.AIProvider
		result.AIText = response.AIResponseText
		return result
	}

	switch {
	case err != nil:
		result.Note = s.failureNote(ctx, err)
	case !response.Success:
		result.Note = fmt.Sprintf(NoteRejected, response.FailureReason())
	default:
		result.Note = NoteEmpty
	}
	s.logger.Info("planner fallback note", slog.String("note", result.Note), slog.Int("days", tripLength))
	return result
}

// Chat пересылает сообщение планировщику и применяет предложенные правки.
func (s *Service) Chat(ctx context.Context, in ChatInput) (ChatResult, error) {
	plan, err := json.Marshal(struct {
		Itinerary models.Itinerary  `json:"itinerary"`
		Budget    models.BudgetPlan `json:"budget"`
	}{in.Itinerary, in.Budget})
	if err != nil {
		return ChatResult{}, err
	}

	response, err := s.planner.Chat(ctx, ChatRequest{Message: in.Message, Plan: plan})
	if err != nil {
		return ChatResult{}, err
	}
	if !response.Success && response.Reply == "" {
		reason := response.Error
		if reason == "" {
			reason = "chat failed"
		}
		return ChatResult{}, fmt.Errorf("%w: %s", ErrUpstream, reason)
	}

	result := ChatResult{Reply: response.Reply, Changes: response.Changes}
	if response.Changes == nil || len(in.Itinerary) == 0 {
		return result, nil
	}

	updated, budgetPlan := itinerary.ApplyChanges(s.assembler.Normalizer().Classifier(), in.Itinerary, in.Budget, *response.Changes)
	result.Itinerary = updated
	result.Budget = &budgetPlan
	return result, nil
}

// Health опрашивает планировщик.
func (s *Service) Health(ctx context.Context) (HealthStatus, error) {
	return s.planner.Health(ctx)
}

// Zones возвращает каталог зон.
func (s *Service) Zones() []destinations.ZoneInfo {
	return s.catalog.ZoneList()
}

// SearchDestinations ищет направления каталога по зоне и строке запроса.
func (s *Service) SearchDestinations(zone, query string) ([]destinations.DestinationInfo, error) {
	return s.catalog.Search(zone, query)
}

// SelectDestinations выбирает направления без обращения к планировщику.
func (s *Service) SelectDestinations(startingLocation string, zones []string, days int) []Destination {
	return s.destinationList(s.catalog.Select(startingLocation, zones, destinations.MaxDestinations(days)))
}

// failureNote уточняет пояснение по доступности планировщика.
func (s *Service) failureNote(ctx context.Context, err error) string {
	if errors.Is(err, ErrUpstream) {
		return NoteReachable
	}
	if ctx.Err() != nil {
		return NoteUnavailable
	}

	probeCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if _, healthErr := s.planner.Health(probeCtx); healthErr == nil {
		return NoteReachable
	}
	return NoteUnavailable
}

func (s *Service) destinationList(ids []string) []Destination {
	out := make([]Destination, 0, len(ids))
	for _, id := range ids {
		out = append(out, Destination{ID: id, Name: s.catalog.Name(id)})
	}
	return out
}
