package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/travel-planner/backend/internal/auth"
	"example.com/travel-planner/backend/internal/destinations"
	"example.com/travel-planner/backend/internal/models"
	"example.com/travel-planner/backend/internal/notifications"
	"example.com/travel-planner/backend/internal/planner"
	"example.com/travel-planner/backend/internal/repository"
)

const (
	plannerRequestGenerate = "generate_itinerary"
	plannerRequestChat     = "chat"

	maxSearchQuery = 100
)

// PlannerRequestLogger сохраняет обращения к планировщику.
type PlannerRequestLogger interface {
	LogRequest(ctx context.Context, log repository.PlannerRequestLog) error
}

type TripHandler struct {
	Service  *planner.Service
	Log      PlannerRequestLogger
	Notifier *notifications.Hub
	Mode     string
}

// NewTripHandler создает обработчик планирования поездок.
func NewTripHandler(service *planner.Service, log PlannerRequestLogger, notifier *notifications.Hub, mode string) *TripHandler {
	return &TripHandler{
		Service:  service,
		Log:      log,
		Notifier: notifier,
		Mode:     mode,
	}
}

type GenerateRequest struct {
	Budget      float64            `json:"budget" validate:"gt=0"`
	Currency    string             `json:"currency" validate:"omitempty,len=3,alpha"`
	TripLength  int                `json:"trip_length" validate:"min=1,max=60"`
	Travelers   int                `json:"travelers" validate:"omitempty,min=1,max=50"`
	Preferences PreferencesRequest `json:"preferences"`
}

type PreferencesRequest struct {
	Zones            []string `json:"zones" validate:"max=10,dive,max=50"`
	StartingLocation string   `json:"starting_location" validate:"max=100"`
	Pace             string   `json:"pace" validate:"max=30"`
	HotelView        string   `json:"hotel_view" validate:"max=50"`
	Transport        string   `json:"transport" validate:"max=50"`
	ComfortLevel     string   `json:"comfort_level" validate:"max=50"`
}

type ChatRequest struct {
	Message   string            `json:"message" validate:"required,max=2000"`
	Itinerary models.Itinerary  `json:"itinerary"`
	Budget    models.BudgetPlan `json:"budget"`
}

type SelectRequest struct {
	StartingLocation string   `json:"starting_location" validate:"max=100"`
	Zones            []string `json:"zones" validate:"max=10,dive,max=50"`
	Days             int      `json:"days" validate:"min=1,max=60"`
}

type DestinationsResponse struct {
	Destinations []destinations.DestinationInfo `json:"destinations"`
}

type ZonesResponse struct {
	Zones []destinations.ZoneInfo `json:"zones"`
}

type SelectResponse struct {
	Destinations []planner.Destination `json:"destinations"`
}

// Generate строит маршрут поездки. Ответ всегда содержит полный маршрут,
// даже если планировщик недоступен.
func (h *TripHandler) Generate(c echo.Context) error {
	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()
	result := h.Service.Plan(ctx, req.toTrip())

	userID, authenticated := auth.UserIDFromContext(c)
	h.logRequest(ctx, userIDPtr(userID, authenticated), plannerRequestGenerate, result.Call)

	if result.Source == models.SourceTemplate {
		slog.Info("itinerary generated from template", slog.Int("days", len(result.Itinerary)), slog.String("note", result.Note))
	}
	if authenticated && h.Notifier != nil {
		h.Notifier.PublishItinerary(userID, notifications.EventItineraryGenerated, notifications.ItineraryEvent{
			Source: string(result.Source),
			Days:   len(result.Itinerary),
			Note:   result.Note,
		})
	}

	return c.JSON(http.StatusOK, result)
}

// Chat пересылает сообщение планировщику и возвращает обновленный маршрут.
func (h *TripHandler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	ctx := c.Request().Context()
	result, err := h.Service.Chat(ctx, planner.ChatInput{
		Message:   req.Message,
		Itinerary: req.Itinerary,
		Budget:    req.Budget,
	})

	userID, authenticated := auth.UserIDFromContext(c)
	call := planner.Call{Err: err}
	call.Request, _ = json.Marshal(req)
	if err == nil {
		call.Response, _ = json.Marshal(result)
	}
	h.logRequest(ctx, userIDPtr(userID, authenticated), plannerRequestChat, call)

	if err != nil {
		slog.Warn("planner chat failed", slog.String("error", err.Error()))
		return badGateway(c, "planner unavailable")
	}

	if authenticated && h.Notifier != nil && result.Changes != nil {
		h.Notifier.PublishItinerary(userID, notifications.EventItineraryUpdated, notifications.ItineraryEvent{
			Days: len(result.Itinerary),
		})
	}

	return c.JSON(http.StatusOK, result)
}

// Zones возвращает каталог зон.
func (h *TripHandler) Zones(c echo.Context) error {
	return c.JSON(http.StatusOK, ZonesResponse{Zones: h.Service.Zones()})
}

// Destinations ищет направления каталога: ?zone= ограничивает зоной, ?q= ищет
// по названию или идентификатору.
func (h *TripHandler) Destinations(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if len(query) > maxSearchQuery {
		return badRequest(c, "query is too long")
	}

	found, err := h.Service.SearchDestinations(c.QueryParam("zone"), query)
	if errors.Is(err, destinations.ErrUnknownZone) {
		return notFound(c, "zone not found")
	}
	if err != nil {
		return serverError(c)
	}
	return c.JSON(http.StatusOK, DestinationsResponse{Destinations: found})
}

// SelectDestinations возвращает набор направлений без обращения к планировщику.
func (h *TripHandler) SelectDestinations(c echo.Context) error {
	var req SelectRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	return c.JSON(http.StatusOK, SelectResponse{
		Destinations: h.Service.SelectDestinations(req.StartingLocation, req.Zones, req.Days),
	})
}

func (h *TripHandler) logRequest(ctx context.Context, userID *uuid.UUID, requestType string, call planner.Call) {
	if h.Log == nil {
		return
	}

	log := repository.PlannerRequestLog{
		UserID:          userID,
		RequestType:     requestType,
		Mode:            h.Mode,
		RequestPayload:  call.Request,
		ResponsePayload: call.Response,
		RawResponse:     string(call.Raw),
		Success:         call.Err == nil,
	}
	if call.Err != nil {
		errMsg := call.Err.Error()
		log.ErrorMessage = &errMsg
	}

	if err := h.Log.LogRequest(ctx, log); err != nil {
		slog.Error("planner request log failed", slog.String("error", err.Error()))
	}
}

func (r GenerateRequest) toTrip() models.TripRequest {
	travelers := r.Travelers
	if travelers == 0 {
		travelers = 1
	}
	return models.TripRequest{
		Budget:     r.Budget,
		Currency:   r.Currency,
		TripLength: r.TripLength,
		Travelers:  travelers,
		Preferences: models.TripPreferences{
			Zones:            r.Preferences.Zones,
			StartingLocation: strings.TrimSpace(r.Preferences.StartingLocation),
			Pace:             strings.ToLower(strings.TrimSpace(r.Preferences.Pace)),
			HotelView:        r.Preferences.HotelView,
			Transport:        r.Preferences.Transport,
			ComfortLevel:     r.Preferences.ComfortLevel,
		},
	}
}

func userIDPtr(userID uuid.UUID, ok bool) *uuid.UUID {
	if !ok {
		return nil
	}
	return &userID
}
