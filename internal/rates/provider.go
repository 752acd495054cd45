package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	lastKnownPrefix = "last:"
	bufferFactor    = 1.02
)

var fallbackUSD = map[string]float64{
	"USD": 1,
	"EUR": 0.85,
	"GBP": 0.73,
	"LKR": 295.5,
	"AUD": 1.35,
	"CAD": 1.25,
	"JPY": 110.25,
	"INR": 74.85,
}

// Table - курсы относительно базовой валюты.
type Table struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	Timestamp time.Time          `json:"timestamp"`
	Fallback  bool               `json:"fallback,omitempty"`
}

// Provider получает курсы из внешнего API и кеширует их.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	store      *cache.Cache
	now        func() time.Time
}

// NewProvider создает поставщика курсов. Время жизни записей задает store.
func NewProvider(baseURL string, timeout time.Duration, store *cache.Cache) *Provider {
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		store:      store,
		now:        time.Now,
	}
}

// Rates возвращает курсы для базовой валюты: из кеша, из API, из последнего
// удачного ответа или из встроенной таблицы.
func (p *Provider) Rates(ctx context.Context, base string) (Table, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = "USD"
	}
	if !Supported(base) {
		return Table{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, base)
	}

	if cached, ok := p.store.Get(base); ok {
		if table, ok := cached.(Table); ok {
			return table, nil
		}
	}

	table, err := p.fetch(ctx, base)
	if err == nil {
		p.store.Set(base, table, cache.DefaultExpiration)
		p.store.Set(lastKnownPrefix+base, table, cache.NoExpiration)
		return table, nil
	}

	slog.Warn("exchange rates fallback used", slog.String("base", base), slog.String("error", err.Error()))
	if cached, ok := p.store.Get(lastKnownPrefix + base); ok {
		if table, ok := cached.(Table); ok {
			return table, nil
		}
	}
	return fallbackTable(base, p.now()), nil
}

// Convert пересчитывает сумму по актуальным курсам.
func (p *Provider) Convert(ctx context.Context, amount float64, from, to string, buffer bool) (float64, error) {
	if !Supported(from) {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, from)
	}
	if !Supported(to) {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, to)
	}

	table, err := p.Rates(ctx, from)
	if err != nil {
		return 0, err
	}
	return Convert(amount, from, to, table, buffer)
}

// Convert пересчитывает сумму через базовую валюту таблицы и округляет до
// двух знаков. buffer добавляет 2% запаса. Валюта, которой нет в таблице,
// берется из встроенных курсов.
func Convert(amount float64, from, to string, table Table, buffer bool) (float64, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if from == to {
		return amount, nil
	}

	fromRate, ok := tableRate(table, from)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, from)
	}
	toRate, ok := tableRate(table, to)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, to)
	}

	converted := amount / fromRate * toRate
	if buffer {
		converted *= bufferFactor
	}
	return math.Round(converted*100) / 100, nil
}

func (p *Provider) fetch(ctx context.Context, base string) (Table, error) {
	if p.baseURL == "" {
		return Table{}, fmt.Errorf("rates api url is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/latest/"+base, nil)
	if err != nil {
		return Table{}, err
	}

	response, err := p.httpClient.Do(req)
	if err != nil {
		return Table{}, fmt.Errorf("rates request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return Table{}, fmt.Errorf("rates api returned %d", response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return Table{}, err
	}

	var payload struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Table{}, fmt.Errorf("decode rates: %w", err)
	}
	if len(payload.Rates) == 0 {
		return Table{}, fmt.Errorf("rates response is empty")
	}

	table := Table{Base: base, Rates: make(map[string]float64, len(currencies)), Timestamp: p.now().UTC()}
	if payload.Base != "" {
		table.Base = strings.ToUpper(payload.Base)
	}
	for code, rate := range payload.Rates {
		if Supported(code) && rate > 0 {
			table.Rates[strings.ToUpper(code)] = rate
		}
	}
	return table, nil
}

// fallbackTable пересчитывает встроенную таблицу к нужной базе.
func fallbackTable(base string, now time.Time) Table {
	table := Table{Base: base, Rates: make(map[string]float64, len(fallbackUSD)), Timestamp: now.UTC(), Fallback: true}
	baseRate := fallbackUSD[base]
	for code, rate := range fallbackUSD {
		table.Rates[code] = rate / baseRate
	}
	return table
}

// tableRate возвращает курс code к базе таблицы.
func tableRate(table Table, code string) (float64, bool) {
	if code == table.Base {
		return 1, true
	}
	if rate := table.Rates[code]; validRate(rate) {
		return rate, true
	}

	rate, ok := fallbackUSD[code]
	baseRate, baseOK := fallbackUSD[table.Base]
	if !ok || !baseOK {
		return 0, false
	}
	return rate / baseRate, true
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsNaN(rate) && !math.IsInf(rate, 0)
}
