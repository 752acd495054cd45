package budget

import (
	"math"

	"github.com/samber/lo"

	"example.com/travel-planner/backend/internal/models"
)

// Spending суммирует цены элементов маршрута по видам.
type Spending struct {
	Accommodation float64 `json:"accommodation"`
	Activities    float64 `json:"activities"`
	Transport     float64 `json:"transport"`
	Total         float64 `json:"total"`
}

// CategoryView описывает значения по категориям бюджета.
type CategoryView struct {
	Accommodation float64 `json:"accommodation"`
	Food          float64 `json:"food"`
	Activities    float64 `json:"activities"`
	Transport     float64 `json:"transport"`
}

type Breakdown struct {
	Plan        models.BudgetPlan `json:"plan"`
	Daily       CategoryView      `json:"daily"`
	Percentages CategoryView      `json:"percentages"`
	Spent       Spending          `json:"spent"`
	Remaining   float64           `json:"remaining"`
}

// SpendingOf считает траты маршрута.
func SpendingOf(itinerary models.Itinerary) Spending {
	items := lo.FlatMap(itinerary, func(day models.Day, _ int) []models.Item { return day.Items })

	var s Spending
	for _, item := range items {
		price := item.Price
		if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			continue
		}
		switch item.Kind {
		case models.KindStay:
			s.Accommodation += price
		case models.KindTransport:
			s.Transport += price
		default:
			s.Activities += price
		}
	}
	s.Total = s.Accommodation + s.Activities + s.Transport
	return s
}

// BreakdownOf строит дневной и процентный вид бюджета вместе с тратами.
func BreakdownOf(plan models.BudgetPlan, itinerary models.Itinerary) Breakdown {
	days := float64(plan.TripLength)
	if days < 1 {
		days = 1
	}

	b := Breakdown{
		Plan: plan,
		Daily: CategoryView{
			Accommodation: round2(plan.Accommodation / days),
			Food:          round2(plan.Food / days),
			Activities:    round2(plan.Activities / days),
			Transport:     round2(plan.Transport / days),
		},
		Spent: SpendingOf(itinerary),
	}

	if plan.Total > 0 {
		b.Percentages = CategoryView{
			Accommodation: round2(plan.Accommodation / plan.Total * 100),
			Food:          round2(plan.Food / plan.Total * 100),
			Activities:    round2(plan.Activities / plan.Total * 100),
			Transport:     round2(plan.Transport / plan.Total * 100),
		}
	}
	b.Remaining = plan.Total - b.Spent.Total
	return b
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
