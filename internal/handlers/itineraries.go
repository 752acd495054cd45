package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/travel-planner/backend/internal/auth"
	"example.com/travel-planner/backend/internal/budget"
	"example.com/travel-planner/backend/internal/itinerary"
	"example.com/travel-planner/backend/internal/models"
	"example.com/travel-planner/backend/internal/notifications"
	"example.com/travel-planner/backend/internal/repository"
)

var errItemNotFound = errors.New("item not found")

// ItineraryStore хранит сохраненные маршруты путешественников.
type ItineraryStore interface {
	Create(ctx context.Context, userID uuid.UUID, input repository.ItineraryInput) (models.SavedItinerary, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.SavedItinerary, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (models.SavedItinerary, error)
	Update(ctx context.Context, userID, id uuid.UUID, input repository.ItineraryInput) (models.SavedItinerary, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Mutate(ctx context.Context, userID, id uuid.UUID, mutate func(models.SavedItinerary) (models.SavedItinerary, error)) (models.SavedItinerary, error)
}

// SpendingStore агрегирует траты маршрута в базе.
type SpendingStore interface {
	SpendingByKind(ctx context.Context, userID, itineraryID uuid.UUID) ([]repository.KindSpend, error)
}

type ItineraryHandler struct {
	Itineraries ItineraryStore
	Spends      SpendingStore
	Notifier    *notifications.Hub
}

// NewItineraryHandler создает обработчик сохраненных маршрутов.
func NewItineraryHandler(itineraries ItineraryStore, spending SpendingStore, notifier *notifications.Hub) *ItineraryHandler {
	return &ItineraryHandler{
		Itineraries: itineraries,
		Spends:      spending,
		Notifier:    notifier,
	}
}

type ItineraryRequest struct {
	Name        string                 `json:"name" validate:"required,max=200"`
	Destination string                 `json:"destination" validate:"max=200"`
	Budget      float64                `json:"budget" validate:"gte=0"`
	Currency    string                 `json:"currency" validate:"omitempty,len=3,alpha"`
	TripLength  int                    `json:"trip_length" validate:"omitempty,min=1,max=60"`
	Travelers   int                    `json:"travelers" validate:"omitempty,min=1,max=50"`
	Source      models.ItinerarySource `json:"source" validate:"omitempty,oneof=ai template"`
	Itinerary   models.Itinerary       `json:"itinerary" validate:"required,min=1,max=60"`
	BudgetPlan  *models.BudgetPlan     `json:"budget_plan"`
}

type ItineraryListResponse struct {
	Items  []models.SavedItinerary `json:"items"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

type KindSpendResponse struct {
	Kind  models.ItemKind `json:"kind"`
	Items int             `json:"items"`
	Spent float64         `json:"spent"`
}

type SpendingResponse struct {
	ItineraryID uuid.UUID           `json:"itinerary_id"`
	Breakdown   budget.Breakdown    `json:"breakdown"`
	ByKind      []KindSpendResponse `json:"by_kind"`
}

type DeleteItemResponse struct {
	Removed   models.Item           `json:"removed"`
	Itinerary models.SavedItinerary `json:"itinerary"`
}

// List возвращает сохраненные маршруты путешественника.
func (h *ItineraryHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	limit, offset, err := parsePagination(c, defaultPageSize, maxPageSize)
	if err != nil {
		return badRequest(c, err.Error())
	}

	items, err := h.Itineraries.List(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, ItineraryListResponse{Items: items, Limit: limit, Offset: offset})
}

// Create сохраняет маршрут.
func (h *ItineraryHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	input, err := h.bindInput(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	saved, err := h.Itineraries.Create(c.Request().Context(), userID, input)
	if err != nil {
		return storeError(c, err)
	}

	h.publish(userID, notifications.EventItinerarySaved, saved)
	return c.JSON(http.StatusCreated, saved)
}

// Get возвращает маршрут по идентификатору.
func (h *ItineraryHandler) Get(c echo.Context) error {
	saved, ok, err := h.load(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}

// Update заменяет маршрут целиком.
func (h *ItineraryHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid itinerary id")
	}

	input, err := h.bindInput(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	saved, err := h.Itineraries.Update(c.Request().Context(), userID, id, input)
	if err != nil {
		return storeError(c, err)
	}

	h.publish(userID, notifications.EventItineraryUpdated, saved)
	return c.JSON(http.StatusOK, saved)
}

// Delete удаляет маршрут.
func (h *ItineraryHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid itinerary id")
	}

	if err := h.Itineraries.Delete(c.Request().Context(), userID, id); err != nil {
		return storeError(c, err)
	}

	if h.Notifier != nil {
		h.Notifier.PublishItinerary(userID, notifications.EventItineraryDeleted, notifications.ItineraryEvent{ItineraryID: &id})
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteItem удаляет один элемент маршрута; опустевший день заполняется
// свободным днем.
func (h *ItineraryHandler) DeleteItem(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid itinerary id")
	}
	itemID := strings.TrimSpace(c.Param("itemId"))
	if itemID == "" {
		return badRequest(c, "invalid item id")
	}

	var removed models.Item
	saved, err := h.Itineraries.Mutate(c.Request().Context(), userID, id, func(current models.SavedItinerary) (models.SavedItinerary, error) {
		updated, item, found := itinerary.RemoveItem(current.Itinerary, itemID, current.Currency)
		if !found {
			return current, errItemNotFound
		}
		removed = item
		current.Itinerary = updated
		return current, nil
	})
	if err != nil {
		if errors.Is(err, errItemNotFound) {
			return notFound(c, "item not found")
		}
		return storeError(c, err)
	}

	h.publish(userID, notifications.EventItineraryUpdated, saved)
	return c.JSON(http.StatusOK, DeleteItemResponse{Removed: removed, Itinerary: saved})
}

// Spending возвращает распределение бюджета и траты маршрута по видам.
func (h *ItineraryHandler) Spending(c echo.Context) error {
	saved, ok, err := h.load(c)
	if !ok {
		return err
	}

	response := SpendingResponse{
		ItineraryID: saved.ID,
		Breakdown:   budget.BreakdownOf(saved.BudgetPlan, saved.Itinerary),
		ByKind:      make([]KindSpendResponse, 0, 3),
	}

	if h.Spends != nil {
		spends, err := h.Spends.SpendingByKind(c.Request().Context(), saved.UserID, saved.ID)
		if err != nil {
			return storeError(c, err)
		}
		for _, spend := range spends {
			response.ByKind = append(response.ByKind, KindSpendResponse{Kind: spend.Kind, Items: spend.Items, Spent: spend.Spent})
		}
	}

	return c.JSON(http.StatusOK, response)
}

// load возвращает маршрут из пути запроса. При ok == false ответ с ошибкой
// уже записан.
func (h *ItineraryHandler) load(c echo.Context) (models.SavedItinerary, bool, error) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return models.SavedItinerary{}, false, unauthorized(c)
	}

	id, err := pathID(c, "id")
	if err != nil {
		return models.SavedItinerary{}, false, badRequest(c, "invalid itinerary id")
	}

	saved, err := h.Itineraries.GetByID(c.Request().Context(), userID, id)
	if err != nil {
		return models.SavedItinerary{}, false, storeError(c, err)
	}
	return saved, true, nil
}

func (h *ItineraryHandler) bindInput(c echo.Context) (repository.ItineraryInput, error) {
	var req ItineraryRequest
	if err := c.Bind(&req); err != nil {
		return repository.ItineraryInput{}, errors.New("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return repository.ItineraryInput{}, errors.New("validation failed")
	}
	return req.toInput(), nil
}

func (h *ItineraryHandler) publish(userID uuid.UUID, eventType string, saved models.SavedItinerary) {
	if h.Notifier == nil {
		return
	}
	h.Notifier.PublishItinerary(userID, eventType, notifications.ItineraryEvent{
		ItineraryID: &saved.ID,
		Source:      string(saved.Source),
		Days:        len(saved.Itinerary),
	})
}

// toInput приводит маршрут к заявленной длине и восполняет план бюджета.
func (r ItineraryRequest) toInput() repository.ItineraryInput {
	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	if currency == "" {
		currency = "USD"
	}
	tripLength := r.TripLength
	if tripLength == 0 {
		tripLength = len(r.Itinerary)
	}

	plan := budget.Allocate(r.Budget, tripLength, currency)
	if r.BudgetPlan != nil {
		plan = *r.BudgetPlan
	}

	return repository.ItineraryInput{
		Name:        r.Name,
		Destination: r.Destination,
		Budget:      r.Budget,
		Currency:    currency,
		TripLength:  tripLength,
		Travelers:   r.Travelers,
		Source:      r.Source,
		Itinerary:   itinerary.Backfill(r.Itinerary, tripLength, currency),
		BudgetPlan:  plan,
	}
}

func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound(c, "itinerary not found")
	case errors.Is(err, repository.ErrInvalid):
		return badRequest(c, err.Error())
	default:
		return serverError(c)
	}
}
