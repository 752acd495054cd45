package itinerary

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"testing"
	"testing/quick"

	"example.com/travel-planner/backend/internal/budget"
	"example.com/travel-planner/backend/internal/models"
)

func newTestAssembler() *Assembler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAssembler(NewNormalizer(NormalizerConfig{Logger: logger}), NewTemplate(budget.DefaultWeights()), logger)
}

func checkItinerary(t *testing.T, itinerary models.Itinerary, tripLength int) {
	t.Helper()

	if len(itinerary) != tripLength {
		t.Fatalf("expected %d days, got %d", tripLength, len(itinerary))
	}
	for index, day := range itinerary {
		if day.Day != index+1 {
			t.Fatalf("expected day number %d, got %d", index+1, day.Day)
		}
		if len(day.Items) == 0 {
			t.Fatalf("day %d has no items", day.Day)
		}
		for _, item := range day.Items {
			if item.Name == "" {
				t.Fatalf("day %d has item without name: %+v", day.Day, item)
			}
			if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
				t.Fatalf("day %d has invalid price: %+v", day.Day, item)
			}
			if !item.Kind.Valid() {
				t.Fatalf("day %d has invalid kind: %+v", day.Day, item)
			}
		}
	}
}

// TestAssembleMalformedPayloads проверяет длину маршрута и непустые дни
// для испорченных ответов.
func TestAssembleMalformedPayloads(t *testing.T) {
	payloads := []string{
		"",
		"null",
		"[]",
		"{}",
		`[{"day": 1, "activity": "Galle Fort"`,
		`{"day1": {"morning": {"activity": "Kandy"}}, "day9": {"evening": {"activity": "Late"}}}`,
		"```json\n{\"day1\": {\"morning\": {\"activity\": \"Ella Rock hike\", \"cost\": -40}}}\n```",
		`[{"day": 0, "activity": "Nowhere"}, {"day": -3, "activity": "Never"}]`,
		`{"itinerary": {"days": [{"activities": [{"title": "Tea", "cost": "NaN"}]}]}}`,
		"Day 1\n09:00 Colombo walk\nDay 2\nDay 3\n10:30 Galle",
	}

	a := newTestAssembler()
	for _, payload := range payloads {
		for _, tripLength := range []int{1, 2, 5} {
			itinerary, _ := a.Assemble(Request{TripLength: tripLength, Budget: 900, Currency: "USD"}, Upstream{Text: payload})
			checkItinerary(t, itinerary, tripLength)
		}
	}
}

// TestAssembleRandomText проверяет инварианты на произвольном тексте.
func TestAssembleRandomText(t *testing.T) {
	a := newTestAssembler()
	property := func(text string, days uint8) bool {
		tripLength := int(days%14) + 1
		itinerary, _ := a.Assemble(Request{TripLength: tripLength, Budget: 500, Currency: "EUR"}, Upstream{Text: text})
		if len(itinerary) != tripLength {
			return false
		}
		for _, day := range itinerary {
			if len(day.Items) == 0 {
				return false
			}
			for _, item := range day.Items {
				if item.Price < 0 || item.Name == "" {
					return false
				}
			}
		}
		return true
	}

	if err := quick.Check(property, nil); err != nil {
		t.Fatalf("invariant violated: %v", err)
	}
}

// TestAssembleDayKeysPayload проверяет разбор ответа с одним днем.
func TestAssembleDayKeysPayload(t *testing.T) {
	payload := `{"day1":{"morning":{"activity":"Sigiriya Rock Fortress","location":"Sigiriya","cost":30,"time":"8:00 AM"}}}`

	itinerary, source := newTestAssembler().Assemble(Request{TripLength: 1, Currency: "USD"}, Upstream{Itinerary: json.RawMessage(payload)})
	if source != models.SourceAI {
		t.Fatalf("expected ai source, got %s", source)
	}
	checkItinerary(t, itinerary, 1)

	item := itinerary[0].Items[0]
	if len(itinerary[0].Items) != 1 || item.Name != "Sigiriya Rock Fortress" || item.Price != 30 || item.Currency != "USD" {
		t.Fatalf("unexpected item: %+v", itinerary[0].Items)
	}
}

// TestAssembleProseBackfills проверяет, что текстовый ответ дополняется
// свободными днями.
func TestAssembleProseBackfills(t *testing.T) {
	itinerary, source := newTestAssembler().Assemble(
		Request{TripLength: 2, Currency: "USD"},
		Upstream{Text: "not json at all, just prose about Galle Fort and a resort stay"},
	)
	if source != models.SourceAI {
		t.Fatalf("expected ai source, got %s", source)
	}
	checkItinerary(t, itinerary, 2)

	placeholder := itinerary[1].Items[0]
	if placeholder.Name != "Day 2 – Free Day" || placeholder.Price != 0 || !IsPlaceholder(placeholder) {
		t.Fatalf("unexpected placeholder: %+v", placeholder)
	}
}

// TestAssembleTemplateFallback проверяет шаблон при отсутствии ответа.
func TestAssembleTemplateFallback(t *testing.T) {
	req := Request{
		TripLength: 5,
		Budget:     1000,
		Currency:   "USD",
		Preferences: models.TripPreferences{
			Zones:     []string{"coastal", "hill-country"},
			HotelView: "sea",
			Transport: "train",
		},
	}

	a := newTestAssembler()
	first, source := a.Assemble(req, Upstream{Failed: true})
	if source != models.SourceTemplate {
		t.Fatalf("expected template source, got %s", source)
	}
	checkItinerary(t, first, 5)

	second, _ := a.Assemble(req, Upstream{})
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected deterministic template")
	}

	stay := first[0].Items[0]
	if stay.Kind != models.KindStay || stay.Name != "Ocean View Resort" || stay.Location != "Galle" || stay.Price != 80 {
		t.Fatalf("unexpected first stay: %+v", stay)
	}
	if first[2].Items[0].Location != "Mirissa" {
		t.Fatalf("expected mid-trip stay in Mirissa, got %+v", first[2].Items[0])
	}
	if first[3].Items[0].Name != "Hiking in Knuckles" {
		t.Fatalf("expected hill country activity on day 4, got %+v", first[3].Items[0])
	}
	transport := first[1].Items[len(first[1].Items)-1]
	if transport.Kind != models.KindTransport || transport.Name != "Scenic Train Journey" || transport.Price != 30 {
		t.Fatalf("unexpected transport: %+v", transport)
	}
	if len(first[0].Items) != 2 {
		t.Fatalf("expected no transport on day 1, got %+v", first[0].Items)
	}

	plan := budget.Allocate(req.Budget, req.TripLength, req.Currency)
	if plan.CategorySum() != 1000 {
		t.Fatalf("expected plan sum 1000, got %v", plan.CategorySum())
	}
}

// TestAssembleDefaultTemplate проверяет шаблон без выбранных зон.
func TestAssembleDefaultTemplate(t *testing.T) {
	itinerary := newTestAssembler().Template(Request{TripLength: 3, Budget: 300, Currency: "LKR"})
	checkItinerary(t, itinerary, 3)

	if itinerary[0].Items[0].Name != "Comfort Hotel" || itinerary[0].Items[0].Location != "Colombo" {
		t.Fatalf("unexpected default stay: %+v", itinerary[0].Items[0])
	}
	if !strings.HasPrefix(itinerary[0].Items[0].Description, "standard view") {
		t.Fatalf("unexpected description: %q", itinerary[0].Items[0].Description)
	}
	if itinerary[1].Items[len(itinerary[1].Items)-1].Name != "Local Bus/Transfer" {
		t.Fatalf("unexpected transport: %+v", itinerary[1].Items)
	}
	if itinerary[2].Items[1].Name != "Scenic Drive" {
		t.Fatalf("expected third default activity, got %+v", itinerary[2].Items)
	}
}

// TestAssembleDropsExcessDays проверяет отбрасывание лишних дней.
func TestAssembleDropsExcessDays(t *testing.T) {
	payload := `[{"activity": "Kandy temple"}, {"activity": "Ella hike"}, {"activity": "Yala safari"}]`

	itinerary, _ := newTestAssembler().Assemble(Request{TripLength: 2, Currency: "USD"}, Upstream{Text: payload})
	checkItinerary(t, itinerary, 2)
	if itinerary[1].Items[0].Name != "Ella hike" {
		t.Fatalf("unexpected second day: %+v", itinerary[1])
	}
}

// TestBackfill проверяет заполнение пустых и отсутствующих дней.
func TestBackfill(t *testing.T) {
	in := models.Itinerary{
		{Day: 1, Items: []models.Item{{ID: "a", Name: "Tour", Kind: models.KindActivity, Price: -5}}},
		{Day: 2},
	}

	out := Backfill(in, 3, "USD")
	checkItinerary(t, out, 3)
	if out[0].Items[0].Price != 0 {
		t.Fatalf("expected negative price to be reset, got %v", out[0].Items[0].Price)
	}
	if in[0].Items[0].Price != -5 {
		t.Fatal("input must not be mutated")
	}
	if out[2].Items[0].ID != "free-3" {
		t.Fatalf("unexpected placeholder id: %+v", out[2].Items[0])
	}
}
