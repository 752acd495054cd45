package itinerary

import (
	"fmt"
	"regexp"
	"strings"

	"example.com/travel-planner/backend/internal/models"
)

var (
	dayMarkerPattern = regexp.MustCompile(`(?i)\bday\s*\d+|^\d+[.)]\s`)
	timeTokenPattern = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
	bulletPattern    = regexp.MustCompile(`^(?:[-*•]+|\d+[.)])\s*`)
)

const textNameLimit = 50

// parseText разбирает свободный текст построчно: маркеры "Day N" открывают
// новый день, строки со временем или знакомым местом становятся элементами.
func (n *Normalizer) parseText(text string, _ int, currency string) ([]models.Day, error) {
	b := newDayBuilder(currency)
	day := 1
	count := 0

	for _, rawLine := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(stripMarkup(stripHeading(rawLine)))
		if line == "" {
			continue
		}

		if dayMarkerPattern.MatchString(line) && len(b.days[day]) > 0 {
			day++
			count = 0
		}

		if !n.looksLikeItem(line) {
			continue
		}

		name := strings.Trim(bulletPattern.ReplaceAllString(line, ""), "{}[]\",' ")
		if name == "" {
			continue
		}

		count++
		b.add(day, models.Item{
			ID:          fmt.Sprintf("text-%d-%d", day, count),
			Kind:        models.KindActivity,
			Name:        truncateRunes(name, textNameLimit),
			Location:    n.defaultLocation,
			Duration:    "2 hours",
			Price:       n.textItemPrice,
			Description: line,
		})
	}

	days := b.result()
	if len(days) == 0 {
		return nil, ErrNoUsableDays
	}
	return days, nil
}

func (n *Normalizer) looksLikeItem(line string) bool {
	if timeTokenPattern.MatchString(line) {
		return true
	}
	return containsAny(strings.ToLower(line), "", n.venueKeywords)
}
