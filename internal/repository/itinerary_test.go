package repository

import (
	"errors"
	"strings"
	"testing"

	"example.com/travel-planner/backend/internal/models"
)

func validInput() ItineraryInput {
	return ItineraryInput{
		Name:       "  Southern coast  ",
		Currency:   "lkr",
		Budget:     1000,
		TripLength: 1,
		Itinerary:  models.Itinerary{{Day: 1, Items: []models.Item{{ID: "a", Kind: models.KindActivity, Name: "Galle Fort"}}}},
	}
}

// TestNormalizeInput проверяет нормализацию полей маршрута.
func TestNormalizeInput(t *testing.T) {
	got, err := normalizeInput(validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Southern coast" || got.Currency != "LKR" || got.Travelers != 1 || got.Source != models.SourceAI {
		t.Fatalf("unexpected normalized input %+v", got)
	}

	template := validInput()
	template.Source = models.SourceTemplate
	if got, _ := normalizeInput(template); got.Source != models.SourceTemplate {
		t.Fatalf("expected template source, got %q", got.Source)
	}
}

// TestNormalizeInputInvalid проверяет отклонение некорректных маршрутов.
func TestNormalizeInputInvalid(t *testing.T) {
	cases := map[string]func(*ItineraryInput){
		"empty name":   func(in *ItineraryInput) { in.Name = "   " },
		"long name":    func(in *ItineraryInput) { in.Name = strings.Repeat("я", maxNameLength+1) },
		"negative":     func(in *ItineraryInput) { in.Budget = -1 },
		"zero length":  func(in *ItineraryInput) { in.TripLength = 0 },
		"day mismatch": func(in *ItineraryInput) { in.TripLength = 2 },
		"long dest":    func(in *ItineraryInput) { in.Destination = strings.Repeat("x", maxDestinationLength+1) },
	}

	for name, mutate := range cases {
		input := validInput()
		mutate(&input)
		if _, err := normalizeInput(input); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
}

// TestEncodeDocuments проверяет сериализацию JSONB-полей.
func TestEncodeDocuments(t *testing.T) {
	input := validInput()
	input.BudgetPlan = models.BudgetPlan{Total: 1000, Currency: "LKR"}

	itineraryJSON, planJSON, err := encodeDocuments(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(itineraryJSON, `"name":"Galle Fort"`) || !strings.Contains(planJSON, `"total":1000`) {
		t.Fatalf("unexpected documents %s / %s", itineraryJSON, planJSON)
	}
}
