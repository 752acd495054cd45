package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"example.com/travel-planner/backend/internal/ai"
	"example.com/travel-planner/backend/internal/budget"
	"example.com/travel-planner/backend/internal/config"
	"example.com/travel-planner/backend/internal/destinations"
	"example.com/travel-planner/backend/internal/itinerary"
	"example.com/travel-planner/backend/internal/planner"
	"example.com/travel-planner/backend/internal/rates"
)

const cacheCleanupInterval = 10 * time.Minute

// NewPlannerService собирает конвейер планирования: каталог направлений,
// распределитель бюджета, сборщик маршрута и планировщик выбранного режима.
func NewPlannerService(cfg config.Config, logger *slog.Logger) (*planner.Service, error) {
	catalog, err := destinations.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	weights := budget.Weights{
		Accommodation: cfg.Budget.Accommodation,
		Food:          cfg.Budget.Food,
		Activities:    cfg.Budget.Activities,
		Transport:     cfg.Budget.Transport,
	}
	allocator, err := budget.NewAllocator(weights)
	if err != nil {
		return nil, err
	}

	normalizer := itinerary.NewNormalizer(itinerary.NormalizerConfig{Logger: logger})
	assembler := itinerary.NewAssembler(normalizer, itinerary.NewTemplate(weights), logger)

	next, err := newPlanner(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Planner.CacheTTL > 0 {
		next = planner.NewCachedPlanner(next, cache.New(cfg.Planner.CacheTTL, cacheCleanupInterval))
	}

	return planner.NewService(next, catalog, allocator, assembler, logger), nil
}

// NewRatesProvider создает поставщика курсов со своим кешем.
func NewRatesProvider(cfg config.RatesConfig) *rates.Provider {
	return rates.NewProvider(cfg.APIURL, cfg.Timeout, cache.New(cfg.TTL, cacheCleanupInterval))
}

func newPlanner(cfg config.Config) (planner.Planner, error) {
	switch cfg.Planner.Mode {
	case config.PlannerModeHTTP:
		return planner.NewHTTPPlanner(cfg.Planner.BaseURL, cfg.Planner.Timeout), nil
	case config.PlannerModeLLM:
		client, err := ai.New(ai.Options{
			Provider:  cfg.AI.Provider,
			APIKey:    cfg.AI.APIKey,
			BaseURL:   cfg.AI.BaseURL,
			Model:     cfg.AI.Model,
			Timeout:   cfg.AI.Timeout,
			MaxTokens: cfg.AI.MaxOutputTokens,
			JSONMode:  true,
		})
		if err != nil {
			return nil, err
		}
		return planner.NewLLMPlanner(client, cfg.AI.Provider, cfg.AI.Model), nil
	default:
		return nil, fmt.Errorf("unsupported planner mode %q", cfg.Planner.Mode)
	}
}
