package itinerary

import (
	"testing"
	"testing/quick"

	"example.com/travel-planner/backend/internal/models"
)

// TestClassifyKnownCases проверяет эталонные случаи классификации.
func TestClassifyKnownCases(t *testing.T) {
	cases := []struct {
		activity string
		location string
		want     models.ItemKind
	}{
		{"Check-in at Ocean View Resort", "Galle", models.KindStay},
		{"Private Car with Driver", "", models.KindTransport},
		{"Temple of the Tooth visit", "Kandy", models.KindActivity},
		{"Scenic Train Journey", "Ella", models.KindTransport},
		{"Lunch break", "Kandy City Hotel", models.KindStay},
		{"Meet the guide", "Colombo Fort Station", models.KindTransport},
		{"Something unusual", "", models.KindActivity},
	}

	for _, tc := range cases {
		if got := Classify(tc.activity, tc.location); got != tc.want {
			t.Fatalf("Classify(%q, %q): expected %s, got %s", tc.activity, tc.location, tc.want, got)
		}
	}
}

// TestClassifyDeterministic проверяет, что результат не меняется между вызовами.
func TestClassifyDeterministic(t *testing.T) {
	property := func(activity, location string) bool {
		first := Classify(activity, location)
		for i := 0; i < 3; i++ {
			if Classify(activity, location) != first {
				return false
			}
		}
		return first.Valid()
	}

	if err := quick.Check(property, nil); err != nil {
		t.Fatalf("classification is not deterministic: %v", err)
	}
}

// TestClassifyPriorityOrder проверяет, что проживание важнее активности.
func TestClassifyPriorityOrder(t *testing.T) {
	if got := Classify("Resort-style cooking class", ""); got != models.KindStay {
		t.Fatalf("expected stay to win over activity, got %s", got)
	}
}

// TestNewClassifierRejectsEmptyList проверяет валидацию политики.
func TestNewClassifierRejectsEmptyList(t *testing.T) {
	policy := DefaultClassifierPolicy()
	policy.Transport = []string{"  ", ""}

	if _, err := NewClassifier(policy); err == nil {
		t.Fatal("expected error for empty transport list")
	}
}

// TestCustomPolicy проверяет работу с собственными списками слов.
func TestCustomPolicy(t *testing.T) {
	classifier, err := NewClassifier(ClassifierPolicy{
		Stay:              []string{"Camp"},
		Transport:         []string{"tuk-tuk"},
		Activity:          []string{"safari"},
		LocationStay:      []string{"camp"},
		LocationTransport: []string{"depot"},
	})
	if err != nil {
		t.Fatalf("expected valid policy, got %v", err)
	}

	if got := classifier.Classify("Tuk-Tuk ride", ""); got != models.KindTransport {
		t.Fatalf("expected transport, got %s", got)
	}
	if got := classifier.Classify("Hotel dinner", ""); got != models.KindActivity {
		t.Fatalf("expected default activity for unknown words, got %s", got)
	}
	if got := classifier.Classify("Dinner", "Bus depot"); got != models.KindTransport {
		t.Fatalf("expected location transport fallback, got %s", got)
	}
}
