package itinerary

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"example.com/travel-planner/backend/internal/budget"
	"example.com/travel-planner/backend/internal/models"
)

// ApplyChanges применяет правки из чата: удаляет элементы по имени,
// добавляет новые в самый свободный день и сдвигает категорию бюджета на
// CostDelta. Исходный маршрут не изменяется.
func ApplyChanges(classifier *Classifier, itinerary models.Itinerary, plan models.BudgetPlan, changes models.ItineraryChanges) (models.Itinerary, models.BudgetPlan) {
	if classifier == nil {
		classifier = defaultClassifier
	}
	tripLength := len(itinerary)
	if tripLength == 0 {
		tripLength = plan.TripLength
	}
	currency := plan.Currency
	if changes.Currency != "" {
		currency = changes.Currency
	}

	out := cloneItinerary(itinerary)
	var removedKinds, addedKinds []models.ItemKind

	removals := lo.SliceToMap(changes.Removed, func(name string) (string, struct{}) {
		return strings.ToLower(strings.TrimSpace(name)), struct{}{}
	})
	for index := range out {
		out[index].Items = lo.Reject(out[index].Items, func(item models.Item, _ int) bool {
			_, remove := removals[strings.ToLower(strings.TrimSpace(item.Name))]
			if remove {
				removedKinds = append(removedKinds, item.Kind)
			}
			return remove
		})
	}
	out = Backfill(out, tripLength, currency)

	for position, name := range changes.Added {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		kind := classifier.Classify(name, "")
		addedKinds = append(addedKinds, kind)

		target := lightestDay(out)
		out[target].Items = append(lo.Reject(out[target].Items, func(item models.Item, _ int) bool {
			return IsPlaceholder(item)
		}), models.Item{
			ID:          fmt.Sprintf("chat-%d-%d", target+1, position),
			Kind:        kind,
			Name:        name,
			Location:    "Sri Lanka",
			Duration:    "Flexible",
			Price:       0,
			Currency:    currency,
			Description: "Added from chat suggestion",
		})
	}

	deltaKind := models.KindActivity
	switch {
	case len(addedKinds) > 0:
		deltaKind = addedKinds[0]
	case len(removedKinds) > 0:
		deltaKind = removedKinds[0]
	}

	if changes.CostDelta != 0 {
		plan = budget.AdjustCategory(plan, deltaKind, changes.CostDelta)
	}
	return Backfill(out, tripLength, currency), plan
}

// RemoveItem удаляет элемент по id и заполняет опустевший день.
func RemoveItem(itinerary models.Itinerary, itemID, currency string) (models.Itinerary, models.Item, bool) {
	out := cloneItinerary(itinerary)
	for index := range out {
		for position, item := range out[index].Items {
			if item.ID != itemID {
				continue
			}
			out[index].Items = append(out[index].Items[:position], out[index].Items[position+1:]...)
			return Backfill(out, len(itinerary), currency), item, true
		}
	}
	return itinerary, models.Item{}, false
}

// lightestDay возвращает индекс дня с наименьшим числом настоящих элементов.
func lightestDay(itinerary models.Itinerary) int {
	best, bestCount := 0, -1
	for index, day := range itinerary {
		count := lo.CountBy(day.Items, func(item models.Item) bool { return !IsPlaceholder(item) })
		if bestCount < 0 || count < bestCount {
			best, bestCount = index, count
		}
	}
	return best
}

func cloneItinerary(itinerary models.Itinerary) models.Itinerary {
	out := make(models.Itinerary, len(itinerary))
	for index, day := range itinerary {
		out[index] = models.Day{Day: day.Day, Items: append([]models.Item(nil), day.Items...)}
	}
	return out
}
