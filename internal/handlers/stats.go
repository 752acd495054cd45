package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/travel-planner/backend/internal/auth"
	"example.com/travel-planner/backend/internal/models"
	"example.com/travel-planner/backend/internal/repository"
)

const (
	defaultRecentRequests = 20
	maxRecentRequests     = 100
)

// OverviewStore считает сводку по маршрутам.
type OverviewStore interface {
	Overview(ctx context.Context, userID uuid.UUID) (repository.OverviewStats, error)
}

// PlannerHistory читает журнал обращений к планировщику.
type PlannerHistory interface {
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.PlannerRequest, error)
}

type StatsHandler struct {
	Stats   OverviewStore
	History PlannerHistory
}

// NewStatsHandler создает обработчик статистики.
func NewStatsHandler(stats OverviewStore, history PlannerHistory) *StatsHandler {
	return &StatsHandler{Stats: stats, History: history}
}

type OverviewResponse struct {
	TotalItineraries    int     `json:"total_itineraries"`
	AIItineraries       int     `json:"ai_itineraries"`
	TemplateItineraries int     `json:"template_itineraries"`
	TotalDays           int     `json:"total_days"`
	AverageBudget       float64 `json:"average_budget"`
}

type PlannerRequestsResponse struct {
	Requests []models.PlannerRequest `json:"requests"`
}

// Overview возвращает сводку по сохраненным маршрутам.
func (h *StatsHandler) Overview(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	stats, err := h.Stats.Overview(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, OverviewResponse{
		TotalItineraries:    stats.TotalItineraries,
		AIItineraries:       stats.AIItineraries,
		TemplateItineraries: stats.TemplateItineraries,
		TotalDays:           stats.TotalDays,
		AverageBudget:       stats.AverageBudget,
	})
}

// PlannerRequests возвращает последние обращения к планировщику.
func (h *StatsHandler) PlannerRequests(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	limit := defaultRecentRequests
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return badRequest(c, "invalid limit")
		}
		limit = min(parsed, maxRecentRequests)
	}

	requests, err := h.History.Recent(c.Request().Context(), userID, limit)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, PlannerRequestsResponse{Requests: requests})
}
