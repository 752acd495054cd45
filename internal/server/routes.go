package server

import (
	"github.com/labstack/echo/v4"

	"example.com/travel-planner/backend/internal/handlers"
)

type routeHandlers struct {
	plannerHealth echo.HandlerFunc
	trips         *handlers.TripHandler
	hotels        *handlers.HotelHandler
	itineraries   *handlers.ItineraryHandler
	rates         *handlers.RatesHandler
	stats         *handlers.StatsHandler
	notifications *handlers.NotificationHandler
}

func registerRoutes(
	e *echo.Echo,
	h routeHandlers,
	authMiddleware echo.MiddlewareFunc,
	optionalAuth echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
	plannerRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")
	api.GET("/planner/health", h.plannerHealth)

	api.POST("/itineraries/generate", h.trips.Generate, optionalAuth, plannerRateLimiter)
	api.POST("/chat", h.trips.Chat, optionalAuth, plannerRateLimiter)

	api.GET("/destinations", h.trips.Destinations)
	api.GET("/hotels", h.hotels.Search, plannerRateLimiter)

	destinations := api.Group("/destinations")
	destinations.GET("/zones", h.trips.Zones)
	destinations.POST("/select", h.trips.SelectDestinations)

	rates := api.Group("/rates")
	rates.GET("", h.rates.Get)
	rates.GET("/convert", h.rates.Convert)

	itineraries := api.Group("/itineraries", authRateLimiter, authMiddleware)
	itineraries.GET("", h.itineraries.List)
	itineraries.POST("", h.itineraries.Create)
	itineraries.GET("/:id", h.itineraries.Get)
	itineraries.PUT("/:id", h.itineraries.Update)
	itineraries.DELETE("/:id", h.itineraries.Delete)
	itineraries.DELETE("/:id/items/:itemId", h.itineraries.DeleteItem)
	itineraries.GET("/:id/spending", h.itineraries.Spending)
	itineraries.GET("/:id/export/json", h.itineraries.ExportJSON)
	itineraries.GET("/:id/export/csv", h.itineraries.ExportCSV)
	itineraries.GET("/:id/export/pdf", h.itineraries.ExportPDF)
	itineraries.GET("/:id/export/ics", h.itineraries.ExportICS)

	stats := api.Group("/stats", authRateLimiter, authMiddleware)
	stats.GET("/overview", h.stats.Overview)
	stats.GET("/planner-requests", h.stats.PlannerRequests)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("/stream", h.notifications.Stream)
}
