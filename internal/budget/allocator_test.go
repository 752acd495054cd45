package budget

import (
	"math"
	"testing"
	"testing/quick"

	"example.com/travel-planner/backend/internal/models"
)

// TestAllocateDefaultWeights проверяет распределение 1000 на три дня.
func TestAllocateDefaultWeights(t *testing.T) {
	plan := Allocate(1000, 3, "USD")

	if plan.Accommodation != 400 || plan.Food != 250 || plan.Activities != 250 || plan.Transport != 100 {
		t.Fatalf("unexpected categories: %+v", plan)
	}
	if plan.Total != 1000 {
		t.Fatalf("expected total 1000, got %v", plan.Total)
	}
	if math.Abs(plan.DailyBudget-333.333) > 0.01 {
		t.Fatalf("expected daily budget about 333.33, got %v", plan.DailyBudget)
	}
	if plan.Currency != "USD" || plan.TripLength != 3 {
		t.Fatalf("unexpected plan metadata: %+v", plan)
	}
}

// TestAllocateSumsToTotal проверяет, что категории в сумме дают итог.
func TestAllocateSumsToTotal(t *testing.T) {
	property := func(raw uint32, days uint8) bool {
		total := float64(raw%10_000_000) + 1
		plan := Allocate(total, int(days%30)+1, "EUR")
		return plan.CategorySum() == total && plan.Total == total
	}

	if err := quick.Check(property, nil); err != nil {
		t.Fatalf("category sum drifted: %v", err)
	}
}

// TestAllocateRemainderGoesToLargest проверяет, что остаток округления
// попадает в проживание.
func TestAllocateRemainderGoesToLargest(t *testing.T) {
	plan := Allocate(7, 2, "USD")

	// 7*0.25 = 1.75 -> 2 для еды и активностей, 7*0.1 = 0.7 -> 1 для транспорта.
	if plan.Food != 2 || plan.Activities != 2 || plan.Transport != 1 {
		t.Fatalf("unexpected rounded categories: %+v", plan)
	}
	if plan.Accommodation != 2 {
		t.Fatalf("expected accommodation to absorb remainder, got %v", plan.Accommodation)
	}
	if plan.CategorySum() != 7 {
		t.Fatalf("expected sum 7, got %v", plan.CategorySum())
	}
}

// TestAllocateInvalidInput проверяет защиту от некорректных значений.
func TestAllocateInvalidInput(t *testing.T) {
	plan := Allocate(-50, 0, "USD")
	if plan.Total != 0 || plan.CategorySum() != 0 {
		t.Fatalf("expected zero plan, got %+v", plan)
	}
	if plan.TripLength != 1 {
		t.Fatalf("expected trip length 1, got %d", plan.TripLength)
	}

	plan = Allocate(math.NaN(), 2, "USD")
	if plan.Total != 0 {
		t.Fatalf("expected NaN total to become 0, got %v", plan.Total)
	}
}

// TestNewAllocatorRejectsBadWeights проверяет валидацию долей.
func TestNewAllocatorRejectsBadWeights(t *testing.T) {
	if _, err := NewAllocator(Weights{Accommodation: 0.5, Food: 0.5, Activities: 0.5}); err == nil {
		t.Fatal("expected error for weights above 1")
	}
	if _, err := NewAllocator(Weights{Accommodation: 1.2, Food: -0.2}); err == nil {
		t.Fatal("expected error for negative weight")
	}

	allocator, err := NewAllocator(Weights{Accommodation: 0.3, Food: 0.3, Activities: 0.3, Transport: 0.1})
	if err != nil {
		t.Fatalf("expected valid weights, got %v", err)
	}
	plan := allocator.Allocate(999, 3, "LKR")
	if plan.CategorySum() != 999 {
		t.Fatalf("expected sum 999, got %v", plan.CategorySum())
	}
}

// TestAdjustCategory проверяет изменение категории по виду элемента.
func TestAdjustCategory(t *testing.T) {
	plan := Allocate(1000, 4, "USD")

	plan = AdjustCategory(plan, models.KindTransport, 50)
	if plan.Transport != 150 || plan.Total != 1050 {
		t.Fatalf("unexpected plan after increase: %+v", plan)
	}
	if plan.DailyBudget != 262.5 {
		t.Fatalf("expected daily 262.5, got %v", plan.DailyBudget)
	}

	plan = AdjustCategory(plan, models.KindStay, -10_000)
	if plan.Accommodation != 0 {
		t.Fatalf("expected accommodation clamped to 0, got %v", plan.Accommodation)
	}
	if plan.Total != plan.CategorySum() {
		t.Fatalf("total must follow categories: %+v", plan)
	}
}

// TestBreakdownOf проверяет траты и проценты.
func TestBreakdownOf(t *testing.T) {
	plan := Allocate(1000, 2, "USD")
	itinerary := models.Itinerary{
		{Day: 1, Items: []models.Item{
			{Name: "Hotel", Kind: models.KindStay, Price: 120},
			{Name: "Fort", Kind: models.KindActivity, Price: 30},
		}},
		{Day: 2, Items: []models.Item{
			{Name: "Train", Kind: models.KindTransport, Price: 15},
		}},
	}

	b := BreakdownOf(plan, itinerary)
	if b.Spent.Accommodation != 120 || b.Spent.Activities != 30 || b.Spent.Transport != 15 {
		t.Fatalf("unexpected spending: %+v", b.Spent)
	}
	if b.Spent.Total != 165 || b.Remaining != 835 {
		t.Fatalf("unexpected totals: %+v remaining %v", b.Spent, b.Remaining)
	}
	if b.Percentages.Accommodation != 40 || b.Daily.Food != 125 {
		t.Fatalf("unexpected views: %+v %+v", b.Percentages, b.Daily)
	}
}
