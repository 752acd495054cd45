package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/travel-planner/backend/internal/planner"
)

const plannerHealthTimeout = 5 * time.Second

type HealthResponse struct {
	Status string `json:"status"`
}

type PlannerHealthResponse struct {
	Status  string `json:"status"`
	Mode    string `json:"mode"`
	Service string `json:"service,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Health возвращает простой статус сервиса.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// PlannerHealth опрашивает планировщик и сообщает его доступность.
func PlannerHealth(service *planner.Service, mode string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), plannerHealthTimeout)
		defer cancel()

		status, err := service.Health(ctx)
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, PlannerHealthResponse{
				Status: "unavailable",
				Mode:   mode,
				Error:  err.Error(),
			})
		}

		return c.JSON(http.StatusOK, PlannerHealthResponse{
			Status:  status.Status,
			Mode:    mode,
			Service: status.Service,
		})
	}
}
