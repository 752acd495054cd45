package itinerary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"example.com/travel-planner/backend/internal/budget"
	"example.com/travel-planner/backend/internal/models"
)

// Request описывает поездку, для которой собирается маршрут.
type Request struct {
	TripLength  int
	Budget      float64
	Currency    string
	Preferences models.TripPreferences
}

// Upstream содержит результат вызова внешнего планировщика.
type Upstream struct {
	Failed    bool
	Itinerary json.RawMessage
	Text      string
}

type Assembler struct {
	normalizer *Normalizer
	template   *Template
	logger     *slog.Logger
}

func NewAssembler(normalizer *Normalizer, template *Template, logger *slog.Logger) *Assembler {
	if normalizer == nil {
		normalizer = NewNormalizer(NormalizerConfig{Logger: logger})
	}
	if template == nil {
		template = NewTemplate(budget.DefaultWeights())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{normalizer: normalizer, template: template, logger: logger}
}

// Normalizer возвращает нормализатор сборщика.
func (a *Assembler) Normalizer() *Normalizer {
	return a.normalizer
}

// Assemble всегда возвращает полный маршрут длиной TripLength: ответ
// планировщика нормализуется, а при его отсутствии строится шаблон.
func (a *Assembler) Assemble(req Request, upstream Upstream) (models.Itinerary, models.ItinerarySource) {
	if req.TripLength < 1 {
		req.TripLength = 1
	}

	if !upstream.Failed {
		days := a.normalize(req, upstream)
		if models.Itinerary(days).ItemCount() > 0 {
			return a.finish(days, req.TripLength, req.Currency), models.SourceAI
		}
	}

	a.logger.Warn("itinerary template fallback used",
		slog.Bool("upstream_failed", upstream.Failed),
		slog.Int("trip_length", req.TripLength),
	)
	return a.finish(a.template.Build(req), req.TripLength, req.Currency), models.SourceTemplate
}

// Template строит маршрут по шаблону без обращения к планировщику.
func (a *Assembler) Template(req Request) models.Itinerary {
	if req.TripLength < 1 {
		req.TripLength = 1
	}
	return a.finish(a.template.Build(req), req.TripLength, req.Currency)
}

func (a *Assembler) normalize(req Request, upstream Upstream) (days []models.Day) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("itinerary assembly recovered", slog.Any("panic", r))
			days = nil
		}
	}()

	structured := bytes.TrimSpace(upstream.Itinerary)
	if len(structured) > 0 && !bytes.Equal(structured, []byte("null")) {
		days = a.normalizer.Normalize(string(structured), req.TripLength, req.Currency)
		if models.Itinerary(days).ItemCount() > 0 {
			return days
		}
	}

	if strings.TrimSpace(upstream.Text) != "" {
		return a.normalizer.Normalize(upstream.Text, req.TripLength, req.Currency)
	}
	return nil
}

// finish раскладывает дни по позициям 1..tripLength, отбрасывает лишние
// и заполняет пустые дни.
func (a *Assembler) finish(days []models.Day, tripLength int, currency string) models.Itinerary {
	buckets := make([][]models.Item, tripLength)
	dropped := 0
	for _, day := range days {
		if day.Day < 1 || day.Day > tripLength {
			dropped++
			continue
		}
		buckets[day.Day-1] = append(buckets[day.Day-1], day.Items...)
	}
	if dropped > 0 {
		a.logger.Info("itinerary days dropped", slog.Int("count", dropped), slog.Int("trip_length", tripLength))
	}

	itinerary := make(models.Itinerary, tripLength)
	for index := range itinerary {
		itinerary[index] = models.Day{Day: index + 1, Items: sanitizeItems(buckets[index], index+1, currency)}
	}
	return Backfill(itinerary, tripLength, currency)
}

func sanitizeItems(items []models.Item, day int, currency string) []models.Item {
	out := make([]models.Item, 0, len(items))
	for position, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			item.Name = fmt.Sprintf("Day %d activity", day)
		}
		if !item.Kind.Valid() {
			item.Kind = Classify(item.Name, item.Location)
		}
		if item.ID == "" {
			item.ID = fmt.Sprintf("item-%d-%d", day, position)
		}
		item.Price = clampPrice(item.Price)
		if item.Currency == "" {
			item.Currency = currency
		}
		out = append(out, item)
	}
	return out
}

// Placeholder возвращает элемент свободного дня.
func Placeholder(day int, currency string) models.Item {
	return models.Item{
		ID:          fmt.Sprintf("free-%d", day),
		Kind:        models.KindActivity,
		Name:        fmt.Sprintf("Day %d – Free Day", day),
		Location:    "Sri Lanka",
		Duration:    "Full day",
		Price:       0,
		Currency:    currency,
		Description: "Free day for exploration",
	}
}

// Backfill приводит маршрут к ровно tripLength дням с номерами 1..N, в
// каждом из которых есть хотя бы один элемент.
func Backfill(itinerary models.Itinerary, tripLength int, currency string) models.Itinerary {
	if tripLength < 1 {
		tripLength = 1
	}

	out := make(models.Itinerary, tripLength)
	for index := range out {
		out[index] = models.Day{Day: index + 1}
		if index < len(itinerary) {
			out[index].Items = append([]models.Item(nil), itinerary[index].Items...)
		}
		for i := range out[index].Items {
			price := out[index].Items[i].Price
			if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
				out[index].Items[i].Price = 0
			}
		}
		if len(out[index].Items) == 0 {
			out[index].Items = []models.Item{Placeholder(index+1, currency)}
		}
	}
	return out
}

// IsPlaceholder сообщает, что элемент добавлен заполнением пустого дня.
func IsPlaceholder(item models.Item) bool {
	return strings.HasPrefix(item.ID, "free-") && item.Price == 0
}
