package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/travel-planner/backend/internal/auth"
	"example.com/travel-planner/backend/internal/config"
	"example.com/travel-planner/backend/internal/handlers"
	"example.com/travel-planner/backend/internal/notifications"
	"example.com/travel-planner/backend/internal/planner"
	"example.com/travel-planner/backend/internal/rates"
	"example.com/travel-planner/backend/internal/repository"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool, service *planner.Service, ratesProvider *rates.Provider) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	if len(cfg.Server.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.CORSOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}

	verifier := auth.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	itineraryRepo := repository.NewItineraryRepository(db)
	plannerLogRepo := repository.NewPlannerLogRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	notificationHub := notifications.NewHub()

	registerRoutes(
		e,
		routeHandlers{
			plannerHealth: handlers.PlannerHealth(service, cfg.Planner.Mode),
			trips:         handlers.NewTripHandler(service, plannerLogRepo, notificationHub, cfg.Planner.Mode),
			itineraries:   handlers.NewItineraryHandler(itineraryRepo, statsRepo, notificationHub),
			hotels:        handlers.NewHotelHandler(planner.NewHTTPPlanner(cfg.Planner.BaseURL, cfg.Planner.Timeout)),
			rates:         handlers.NewRatesHandler(ratesProvider),
			stats:         handlers.NewStatsHandler(statsRepo, plannerLogRepo),
			notifications: handlers.NewNotificationHandler(notificationHub),
		},
		auth.JWTMiddleware(verifier),
		auth.OptionalJWT(verifier),
		newRateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst),
		newRateLimiter(cfg.Planner.RateLimitPerMinute, cfg.Planner.RateLimitBurst),
	)

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			level := slog.LevelInfo
			switch {
			case v.Status >= http.StatusInternalServerError:
				level = slog.LevelError
			case v.Status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			logger.LogAttrs(c.Request().Context(), level, "request completed", attrs...)
			return nil
		},
	})
}

// newRateLimiter ограничивает частоту запросов с одного адреса.
func newRateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	limit := rate.Limit(float64(perMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
