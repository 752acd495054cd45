package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// stringField возвращает первое непустое строковое значение по списку ключей.
func stringField(record map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := record[key]
		if !ok || value == nil {
			continue
		}
		switch typed := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(typed); trimmed != "" {
				return trimmed
			}
		case float64, json.Number, int, int64:
			return fmt.Sprint(typed)
		}
	}
	return ""
}

// numberField возвращает первое числовое значение по списку ключей.
func numberField(record map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		value, ok := record[key]
		if !ok {
			continue
		}
		if number, ok := toNumber(value); ok {
			return number, true
		}
	}
	return 0, false
}

func toNumber(value any) (float64, bool) {
	var number float64
	switch typed := value.(type) {
	case float64:
		number = typed
	case float32:
		number = float64(typed)
	case int:
		number = float64(typed)
	case int64:
		number = float64(typed)
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return 0, false
		}
		number = parsed
	case string:
		compact := strings.NewReplacer(" ", "", ",", "").Replace(strings.TrimSpace(typed))
		parsed, err := strconv.ParseFloat(compact, 64)
		switch {
		case err == nil:
			number = parsed
		case errors.Is(err, strconv.ErrRange):
			return 0, false
		default:
			match := numberPattern.FindString(compact)
			if match == "" {
				return 0, false
			}
			if parsed, err = strconv.ParseFloat(match, 64); err != nil {
				return 0, false
			}
			number = parsed
		}
	default:
		return 0, false
	}

	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return number, true
}

// clampPrice приводит стоимость к round(max(0, value)).
func clampPrice(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0
	}
	return math.Round(value)
}

func recordField(record map[string]any, key string) (map[string]any, bool) {
	value, ok := record[key].(map[string]any)
	return value, ok
}

func listField(record map[string]any, key string) ([]any, bool) {
	value, ok := record[key].([]any)
	return value, ok
}

func hasAnyKey(record map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := record[key]; ok {
			return true
		}
	}
	return false
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit]) + "..."
}
