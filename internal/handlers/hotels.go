package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"example.com/travel-planner/backend/internal/planner"
)

const maxHotelRating = 5

// HotelSearcher ищет отели во внешнем сервисе данных.
type HotelSearcher interface {
	SearchHotels(ctx context.Context, filter planner.HotelFilter) ([]planner.Hotel, error)
}

type HotelHandler struct {
	Hotels HotelSearcher
}

type HotelsResponse struct {
	Hotels []planner.Hotel `json:"hotels"`
}

// NewHotelHandler создает обработчик поиска отелей.
func NewHotelHandler(hotels HotelSearcher) *HotelHandler {
	return &HotelHandler{Hotels: hotels}
}

// Search ищет отели по ?destination=, ?rating= (минимум) и ?amenities=a,b.
func (h *HotelHandler) Search(c echo.Context) error {
	filter := planner.HotelFilter{
		Destination: strings.TrimSpace(c.QueryParam("destination")),
	}
	if len(filter.Destination) > maxSearchQuery {
		return badRequest(c, "destination is too long")
	}

	if raw := strings.TrimSpace(c.QueryParam("rating")); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil || rating < 0 || rating > maxHotelRating {
			return badRequest(c, "invalid rating")
		}
		filter.MinRating = rating
	}

	filter.Amenities = lo.Uniq(lo.Compact(lo.Map(strings.Split(c.QueryParam("amenities"), ","), func(value string, _ int) string {
		return strings.ToLower(strings.TrimSpace(value))
	})))

	hotels, err := h.Hotels.SearchHotels(c.Request().Context(), filter)
	if err != nil {
		slog.Warn("hotel search failed", slog.String("error", err.Error()))
		return badGateway(c, "hotel search unavailable")
	}
	if hotels == nil {
		hotels = []planner.Hotel{}
	}
	return c.JSON(http.StatusOK, HotelsResponse{Hotels: hotels})
}
