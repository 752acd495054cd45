package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"example.com/travel-planner/backend/internal/models"
)

var (
	ErrNoUsableDays = errors.New("no usable days")
	ErrNoJSON       = errors.New("no json span found")

	dayRecordStart = regexp.MustCompile(`\{\s*["']?day["']?\s*:\s*\d+`)
	sectionStart   = regexp.MustCompile(`(?i)\*\*\s*daily_itinerary\s*\*\*`)
	sectionEnd     = regexp.MustCompile(`(?i)\*\*\s*budget_breakdown\s*\*\*`)
)

const maxSpanAttempts = 64

// DefaultKnownPlaces используется для извлечения локации из свободного текста.
var DefaultKnownPlaces = []string{
	"Colombo", "Kandy", "Galle", "Sigiriya", "Ella", "Nuwara Eliya", "Mirissa",
	"Bentota", "Anuradhapura", "Polonnaruwa", "Dambulla", "Trincomalee", "Jaffna",
	"Yala", "Hikkaduwa", "Unawatuna", "Arugam Bay", "Negombo", "Matara", "Tangalle",
	"Pasikudah", "Batticaloa", "Kitulgala", "Haputale", "Badulla", "Ratnapura",
	"Udawalawe", "Wilpattu", "Kalpitiya", "Mannar", "Habarana", "Minneriya",
}

// DefaultVenueKeywords отмечают строки текста, похожие на пункты маршрута.
var DefaultVenueKeywords = []string{"sigiriya", "galle", "colombo", "resort", "restaurant"}

// NormalizerConfig задает параметры нормализатора.
type NormalizerConfig struct {
	Classifier      *Classifier
	DefaultLocation string
	KnownPlaces     []string
	VenueKeywords   []string
	TextItemPrice   float64
	Logger          *slog.Logger
}

// strategy пытается получить дни маршрута из текста одним способом.
type strategy struct {
	name       string
	structured bool
	run        func(n *Normalizer, text string, tripLength int, currency string) ([]models.Day, error)
}

// Normalizer превращает произвольный ответ планировщика в список дней.
type Normalizer struct {
	classifier      *Classifier
	defaultLocation string
	places          []string
	venueKeywords   []string
	textItemPrice   float64
	logger          *slog.Logger
	strategies      []strategy
}

func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	n := &Normalizer{
		classifier:      cfg.Classifier,
		defaultLocation: cfg.DefaultLocation,
		places:          cfg.KnownPlaces,
		venueKeywords:   normalizeKeywords(cfg.VenueKeywords),
		textItemPrice:   cfg.TextItemPrice,
		logger:          cfg.Logger,
	}
	if n.classifier == nil {
		n.classifier = defaultClassifier
	}
	if n.defaultLocation == "" {
		n.defaultLocation = "Sri Lanka"
	}
	if len(n.places) == 0 {
		n.places = DefaultKnownPlaces
	}
	if len(n.venueKeywords) == 0 {
		n.venueKeywords = DefaultVenueKeywords
	}
	if n.textItemPrice <= 0 {
		n.textItemPrice = 25
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}

	n.strategies = []strategy{
		{name: "direct", structured: true, run: (*Normalizer).parseDirect},
		{name: "cleaned", structured: true, run: (*Normalizer).parseCleaned},
		{name: "span", structured: true, run: (*Normalizer).parseSpan},
		{name: "records", structured: true, run: (*Normalizer).parseRecords},
		{name: "text", run: (*Normalizer).parseText},
	}
	return n
}

// Classifier возвращает классификатор, которым пользуется нормализатор.
func (n *Normalizer) Classifier() *Classifier {
	return n.classifier
}

// Normalize перебирает стратегии по порядку и возвращает результат первой,
// давшей хотя бы один элемент. При полной неудаче возвращает пустой список.
func (n *Normalizer) Normalize(raw string, tripLength int, currency string) (days []models.Day) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("itinerary normalization panicked", slog.Any("panic", r))
			days = nil
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return nil
	}

	candidates := []string{raw}
	if section, ok := extractSection(raw); ok {
		candidates = []string{section, raw}
	}

	for _, s := range n.strategies {
		inputs := candidates
		if !s.structured {
			inputs = []string{raw}
		}
		for _, input := range inputs {
			result, err := s.run(n, input, tripLength, currency)
			if err != nil {
				n.logger.Debug("normalization strategy failed", slog.String("strategy", s.name), slog.Any("err", err))
				continue
			}
			if models.Itinerary(result).ItemCount() > 0 {
				n.logger.Debug("normalization strategy succeeded", slog.String("strategy", s.name), slog.Int("days", len(result)))
				return result
			}
		}
	}
	return nil
}

// NormalizeValue разбирает уже декодированное значение JSON.
func (n *Normalizer) NormalizeValue(value any, tripLength int, currency string) (days []models.Day) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("itinerary normalization panicked", slog.Any("panic", r))
			days = nil
		}
	}()

	if text, ok := value.(string); ok {
		return n.Normalize(text, tripLength, currency)
	}
	return n.dispatch(value, tripLength, currency)
}

// DecodeLoose декодирует JSON из текста модели, пробуя исходный текст,
// очищенный текст и первый сбалансированный фрагмент.
func DecodeLoose(text string, target any) error {
	if err := json.Unmarshal([]byte(text), target); err == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(Clean(text)), target); err == nil {
		return nil
	}

	start := 0
	for attempt := 0; attempt < maxSpanAttempts; attempt++ {
		span, next, ok := firstSpan(text, start)
		if !ok {
			break
		}
		if err := json.Unmarshal([]byte(Clean(span)), target); err == nil {
			return nil
		}
		start = next
	}
	return ErrNoJSON
}

func (n *Normalizer) parseDirect(text string, tripLength int, currency string) ([]models.Day, error) {
	return n.decodeAndDispatch(text, tripLength, currency)
}

func (n *Normalizer) parseCleaned(text string, tripLength int, currency string) ([]models.Day, error) {
	return n.decodeAndDispatch(Clean(text), tripLength, currency)
}

// parseSpan берет первый сбалансированный фрагмент, начиная с первой
// открывающей скобки текста.
func (n *Normalizer) parseSpan(text string, tripLength int, currency string) ([]models.Day, error) {
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return nil, ErrNoJSON
	}
	end, ok := matchSpan(text, start)
	if !ok {
		return nil, ErrNoJSON
	}
	return n.decodeAndDispatch(Clean(text[start:end+1]), tripLength, currency)
}

// parseRecords вырезает каждую запись вида {"day": N ...} отдельно и
// собирает из них список.
func (n *Normalizer) parseRecords(text string, tripLength int, currency string) ([]models.Day, error) {
	locations := dayRecordStart.FindAllStringIndex(text, -1)
	if len(locations) == 0 {
		return nil, ErrNoJSON
	}

	records := make([]any, 0, len(locations))
	for _, loc := range locations {
		end, ok := matchSpan(text, loc[0])
		if !ok {
			continue
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(Clean(text[loc[0]:end+1])), &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, ErrNoJSON
	}

	days := n.dispatch(records, tripLength, currency)
	if len(days) == 0 {
		return nil, ErrNoUsableDays
	}
	return days, nil
}

func (n *Normalizer) decodeAndDispatch(text string, tripLength int, currency string) ([]models.Day, error) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	days := n.dispatch(value, tripLength, currency)
	if len(days) == 0 {
		return nil, ErrNoUsableDays
	}
	return days, nil
}

// extractSection выделяет текст между маркерами **daily_itinerary** и
// **budget_breakdown**.
func extractSection(text string) (string, bool) {
	start := sectionStart.FindStringIndex(text)
	if start == nil {
		return "", false
	}
	rest := text[start[1]:]
	if end := sectionEnd.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	if strings.TrimSpace(rest) == "" {
		return "", false
	}
	return rest, true
}

// firstSpan находит первый сбалансированный фрагмент [...] или {...},
// начиная с позиции from. next указывает, откуда продолжать поиск.
func firstSpan(text string, from int) (span string, next int, ok bool) {
	for i := from; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		if end, matched := matchSpan(text, i); matched {
			return text[i : end+1], i + 1, true
		}
	}
	return "", len(text), false
}

// matchSpan ищет закрывающую скобку для text[start], учитывая строки в
// двойных кавычках.
func matchSpan(text string, start int) (int, bool) {
	stack := make([]byte, 0, 16)
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[', '{':
			stack = append(stack, c)
		case ']', '}':
			if len(stack) == 0 {
				return 0, false
			}
			open := stack[len(stack)-1]
			if (open == '[' && c != ']') || (open == '{' && c != '}') {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
