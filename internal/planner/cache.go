package planner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"github.com/patrickmn/go-cache"
)

// CachedPlanner кеширует успешные ответы генерации плана.
type CachedPlanner struct {
	next  Planner
	store *cache.Cache
}

// NewCachedPlanner оборачивает планировщик кешем.
func NewCachedPlanner(next Planner, store *cache.Cache) *CachedPlanner {
	return &CachedPlanner{next: next, store: store}
}

// GeneratePlan возвращает ответ из кеша или запрашивает планировщик.
// Сырой ответ для попадания в кеш не возвращается.
func (p *CachedPlanner) GeneratePlan(ctx context.Context, req Request) (Response, []byte, error) {
	key, err := requestKey(req)
	if err != nil {
		return p.next.GeneratePlan(ctx, req)
	}

	if cached, ok := p.store.Get(key); ok {
		if response, ok := cached.(Response); ok {
			slog.Debug("planner cache hit", slog.String("key", key[:12]))
			return response, nil, nil
		}
	}

	response, raw, err := p.next.GeneratePlan(ctx, req)
	if err == nil && response.Success {
		p.store.Set(key, response, cache.DefaultExpiration)
	}
	return response, raw, err
}

func (p *CachedPlanner) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	return p.next.Chat(ctx, req)
}

func (p *CachedPlanner) Health(ctx context.Context) (HealthStatus, error) {
	return p.next.Health(ctx)
}

// requestKey - sha256 от канонического JSON запроса.
func requestKey(req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
