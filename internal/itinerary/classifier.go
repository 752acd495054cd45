package itinerary

import (
	"errors"
	"strings"

	"example.com/travel-planner/backend/internal/models"
)

// ClassifierPolicy задает списки ключевых слов и их порядок проверки.
// Проверка идет в порядке stay → transport → activity, затем по локации.
type ClassifierPolicy struct {
	Stay              []string `yaml:"stay"`
	Transport         []string `yaml:"transport"`
	Activity          []string `yaml:"activity"`
	LocationStay      []string `yaml:"location_stay"`
	LocationTransport []string `yaml:"location_transport"`
}

// DefaultClassifierPolicy возвращает стандартные списки ключевых слов.
func DefaultClassifierPolicy() ClassifierPolicy {
	return ClassifierPolicy{
		Stay: []string{
			"check-in", "hotel", "resort", "accommodation", "stay", "lodge", "boutique",
			"guesthouse", "villa", "apartment", "homestay", "bungalow", "cottage", "inn",
			"hostel", "motel", "suite", "room", "overnight", "camping",
		},
		Transport: []string{
			"travel", "transport", "drive", "flight", "bus", "train", "taxi", "transfer",
			"journey", "ride", "ferry", "boat", "ship", "airport", "station", "terminal",
			"pickup", "drop-off", "commute", "route", "highway", "road", "railway",
		},
		Activity: []string{
			"tour", "visit", "explore", "sightseeing", "hiking", "trekking", "walking",
			"surfing", "diving", "snorkeling", "fishing", "safari", "wildlife", "birdwatching",
			"photography", "shopping", "market", "museum", "temple", "church", "mosque",
			"fort", "palace", "garden", "park", "beach", "swimming", "spa", "massage",
			"cooking", "workshop", "class", "lesson", "adventure", "sports", "game",
			"festival", "ceremony", "ritual", "meditation", "yoga", "excursion", "outing",
		},
		LocationStay:      []string{"hotel", "resort", "lodge", "guesthouse"},
		LocationTransport: []string{"airport", "station", "terminal", "bus stand"},
	}
}

type Classifier struct {
	policy ClassifierPolicy
}

// NewClassifier создает классификатор и проверяет, что ни один список не пуст.
func NewClassifier(policy ClassifierPolicy) (*Classifier, error) {
	lists := []struct {
		name  string
		words []string
	}{
		{"stay", policy.Stay},
		{"transport", policy.Transport},
		{"activity", policy.Activity},
		{"location_stay", policy.LocationStay},
		{"location_transport", policy.LocationTransport},
	}
	for _, list := range lists {
		if len(normalizeKeywords(list.words)) == 0 {
			return nil, errors.New("classifier keyword list is empty: " + list.name)
		}
	}

	return &Classifier{policy: ClassifierPolicy{
		Stay:              normalizeKeywords(policy.Stay),
		Transport:         normalizeKeywords(policy.Transport),
		Activity:          normalizeKeywords(policy.Activity),
		LocationStay:      normalizeKeywords(policy.LocationStay),
		LocationTransport: normalizeKeywords(policy.LocationTransport),
	}}, nil
}

var defaultClassifier = mustClassifier(DefaultClassifierPolicy())

func mustClassifier(policy ClassifierPolicy) *Classifier {
	c, err := NewClassifier(policy)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify определяет вид элемента по тексту активности и локации
// стандартной политикой.
func Classify(activity, location string) models.ItemKind {
	return defaultClassifier.Classify(activity, location)
}

// Classify определяет вид элемента: первое совпадение выигрывает.
func (c *Classifier) Classify(activity, location string) models.ItemKind {
	activityText := strings.ToLower(activity)
	locationText := strings.ToLower(location)

	switch {
	case containsAny(activityText, locationText, c.policy.Stay):
		return models.KindStay
	case containsAny(activityText, locationText, c.policy.Transport):
		return models.KindTransport
	case containsAny(activityText, locationText, c.policy.Activity):
		return models.KindActivity
	case containsAny(locationText, "", c.policy.LocationStay):
		return models.KindStay
	case containsAny(locationText, "", c.policy.LocationTransport):
		return models.KindTransport
	default:
		return models.KindActivity
	}
}

func containsAny(first, second string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(first, keyword) || (second != "" && strings.Contains(second, keyword)) {
			return true
		}
	}
	return false
}

func normalizeKeywords(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
