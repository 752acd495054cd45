package budget

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"

	"example.com/travel-planner/backend/internal/models"
)

const weightTolerance = 1e-6

// Weights задает доли категорий бюджета.
type Weights struct {
	Accommodation float64
	Food          float64
	Activities    float64
	Transport     float64
}

// DefaultWeights возвращает стандартное распределение 40/25/25/10.
func DefaultWeights() Weights {
	return Weights{Accommodation: 0.40, Food: 0.25, Activities: 0.25, Transport: 0.10}
}

// Validate проверяет, что доли неотрицательны и в сумме дают 1.
func (w Weights) Validate() error {
	for _, value := range []float64{w.Accommodation, w.Food, w.Activities, w.Transport} {
		if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
			return errors.New("budget weights must be non-negative")
		}
	}
	sum := w.Accommodation + w.Food + w.Activities + w.Transport
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("budget weights must sum to 1, got %.4f", sum)
	}
	return nil
}

type Allocator struct {
	weights Weights
}

func NewAllocator(weights Weights) (*Allocator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Allocator{weights: weights}, nil
}

// Weights возвращает доли, с которыми работает распределитель.
func (a *Allocator) Weights() Weights {
	return a.weights
}

// Allocate стандартными долями.
func Allocate(total float64, tripLength int, currency string) models.BudgetPlan {
	return (&Allocator{weights: DefaultWeights()}).Allocate(total, tripLength, currency)
}

// Allocate делит бюджет по категориям. Каждая категория округляется до
// целого, остаток уходит в категорию с наибольшей долей, так что сумма
// категорий равна total.
func (a *Allocator) Allocate(total float64, tripLength int, currency string) models.BudgetPlan {
	if math.IsNaN(total) || math.IsInf(total, 0) || total < 0 {
		total = 0
	}
	if tripLength < 1 {
		tripLength = 1
	}

	type share struct {
		weight float64
		target *float64
	}

	plan := models.BudgetPlan{Total: total, Currency: currency, TripLength: tripLength}
	shares := []share{
		{a.weights.Accommodation, &plan.Accommodation},
		{a.weights.Food, &plan.Food},
		{a.weights.Activities, &plan.Activities},
		{a.weights.Transport, &plan.Transport},
	}

	allocated := 0.0
	for _, s := range shares {
		*s.target = math.Round(total * s.weight)
		allocated += *s.target
	}

	largest := lo.MaxBy(shares, func(x, y share) bool { return x.weight > y.weight })
	*largest.target += total - allocated

	plan.DailyBudget = total / float64(tripLength)
	return plan
}

// AdjustCategory добавляет delta к категории, соответствующей виду
// элемента, и пересчитывает итог. Категория не уходит ниже нуля.
func AdjustCategory(plan models.BudgetPlan, kind models.ItemKind, delta float64) models.BudgetPlan {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return plan
	}

	target := &plan.Activities
	switch kind {
	case models.KindStay:
		target = &plan.Accommodation
	case models.KindTransport:
		target = &plan.Transport
	}
	*target = math.Max(0, *target+delta)

	plan.Total = plan.CategorySum()
	if plan.TripLength > 0 {
		plan.DailyBudget = plan.Total / float64(plan.TripLength)
	}
	return plan
}
