package itinerary

import (
	"testing"

	"example.com/travel-planner/backend/internal/budget"
	"example.com/travel-planner/backend/internal/models"
)

func sampleItinerary() models.Itinerary {
	return models.Itinerary{
		{Day: 1, Items: []models.Item{
			{ID: "stay-1", Kind: models.KindStay, Name: "Beach Hotel", Price: 80, Currency: "USD"},
			{ID: "activity-1-1", Kind: models.KindActivity, Name: "Galle Fort Tour", Price: 60, Currency: "USD"},
		}},
		{Day: 2, Items: []models.Item{
			{ID: "activity-2-1", Kind: models.KindActivity, Name: "Whale Watching", Price: 60, Currency: "USD"},
		}},
	}
}

// TestApplyChangesAddRemove проверяет удаление и добавление элементов.
func TestApplyChangesAddRemove(t *testing.T) {
	plan := budget.Allocate(1000, 2, "USD")
	original := sampleItinerary()

	updated, newPlan := ApplyChanges(nil, original, plan, models.ItineraryChanges{
		Removed:   []string{"whale watching"},
		Added:     []string{"Scenic train to Ella"},
		CostDelta: 25,
	})

	if len(updated) != 2 {
		t.Fatalf("expected two days, got %d", len(updated))
	}
	if len(updated[1].Items) != 1 {
		t.Fatalf("expected added item to replace placeholder on day 2, got %+v", updated[1].Items)
	}
	added := updated[1].Items[0]
	if added.Name != "Scenic train to Ella" || added.Kind != models.KindTransport || added.Price != 0 {
		t.Fatalf("unexpected added item: %+v", added)
	}
	if newPlan.Transport != 125 || newPlan.Total != 1025 {
		t.Fatalf("expected transport category to grow, got %+v", newPlan)
	}
	if len(original[1].Items) != 1 || original[1].Items[0].Name != "Whale Watching" {
		t.Fatal("original itinerary must not be mutated")
	}
}

// TestApplyChangesRemoveOnly проверяет заполнение опустевшего дня и
// уменьшение категории удаленного элемента.
func TestApplyChangesRemoveOnly(t *testing.T) {
	plan := budget.Allocate(1000, 2, "USD")

	updated, newPlan := ApplyChanges(nil, sampleItinerary(), plan, models.ItineraryChanges{
		Removed:   []string{"Beach Hotel"},
		CostDelta: -80,
	})

	if updated[0].Items[0].Name != "Galle Fort Tour" {
		t.Fatalf("unexpected day 1: %+v", updated[0].Items)
	}
	if newPlan.Accommodation != 320 {
		t.Fatalf("expected accommodation 320, got %v", newPlan.Accommodation)
	}
	if newPlan.Total != newPlan.CategorySum() {
		t.Fatalf("total must match categories: %+v", newPlan)
	}
}

// TestApplyChangesNoop проверяет пустые правки.
func TestApplyChangesNoop(t *testing.T) {
	plan := budget.Allocate(500, 2, "USD")
	updated, newPlan := ApplyChanges(nil, sampleItinerary(), plan, models.ItineraryChanges{})

	if newPlan != plan {
		t.Fatalf("plan must not change: %+v", newPlan)
	}
	if updated.ItemCount() != 3 {
		t.Fatalf("expected 3 items, got %d", updated.ItemCount())
	}
}

// TestRemoveItem проверяет удаление по id с заполнением дня.
func TestRemoveItem(t *testing.T) {
	updated, removed, ok := RemoveItem(sampleItinerary(), "activity-2-1", "USD")
	if !ok || removed.Name != "Whale Watching" {
		t.Fatalf("expected removal, got %v %+v", ok, removed)
	}
	if !IsPlaceholder(updated[1].Items[0]) {
		t.Fatalf("expected placeholder on day 2, got %+v", updated[1].Items)
	}

	if _, _, ok := RemoveItem(sampleItinerary(), "missing", "USD"); ok {
		t.Fatal("expected missing item to be reported")
	}
}
