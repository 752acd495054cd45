package itinerary

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"example.com/travel-planner/backend/internal/models"
)

var (
	dayKeyPattern   = regexp.MustCompile(`(?i)^day[\s_-]?(\d+)$`)
	dayLabelPattern = regexp.MustCompile(`(?i)day\s*(\d+)`)
	timeSlots       = []string{"morning", "afternoon", "evening"}
	mealKeywords    = []string{"restaurant", "dinner", "lunch", "breakfast"}
)

const (
	defaultFoodBudget       = 60
	defaultActivitiesBudget = 50
	mealsPerDay             = 6
	activitiesPerDay        = 4

	maxDayNumber = math.MaxInt32
)

// dayBuilder собирает элементы по номерам дней и следит за уникальностью id.
type dayBuilder struct {
	currency string
	days     map[int][]models.Item
	usedIDs  map[string]struct{}
}

func newDayBuilder(currency string) *dayBuilder {
	return &dayBuilder{
		currency: currency,
		days:     make(map[int][]models.Item),
		usedIDs:  make(map[string]struct{}),
	}
}

func (b *dayBuilder) add(day int, item models.Item) {
	if day < 1 || strings.TrimSpace(item.Name) == "" {
		return
	}

	if item.ID == "" {
		item.ID = fmt.Sprintf("ai-%d-%d", day, len(b.days[day]))
	}
	base := item.ID
	for suffix := 2; ; suffix++ {
		if _, taken := b.usedIDs[item.ID]; !taken {
			break
		}
		item.ID = fmt.Sprintf("%s-%d", base, suffix)
	}
	b.usedIDs[item.ID] = struct{}{}

	item.Name = strings.TrimSpace(item.Name)
	item.Price = clampPrice(item.Price)
	item.Currency = b.currency
	b.days[day] = append(b.days[day], item)
}

func (b *dayBuilder) result() []models.Day {
	numbers := make([]int, 0, len(b.days))
	for number, items := range b.days {
		if len(items) > 0 {
			numbers = append(numbers, number)
		}
	}
	sort.Ints(numbers)

	out := make([]models.Day, 0, len(numbers))
	for _, number := range numbers {
		out = append(out, models.Day{Day: number, Items: b.days[number]})
	}
	return out
}

// dispatch превращает разобранное дерево JSON в дни маршрута,
// распознавая известные формы ответа.
func (n *Normalizer) dispatch(value any, tripLength int, currency string) []models.Day {
	b := newDayBuilder(currency)

	switch typed := value.(type) {
	case map[string]any:
		n.dispatchRecord(b, typed, tripLength)
	case []any:
		n.dispatchList(b, typed, tripLength, nil)
	}

	return b.result()
}

func (n *Normalizer) dispatchRecord(b *dayBuilder, record map[string]any, tripLength int) {
	if daily, ok := listField(record, "daily_itinerary"); ok {
		breakdown, _ := recordField(record, "budget_breakdown")
		n.dispatchList(b, daily, tripLength, breakdown)
		return
	}

	for _, key := range []string{"itinerary", "days", "plan"} {
		switch nested := record[key].(type) {
		case []any:
			breakdown, _ := recordField(record, "budget_breakdown")
			if breakdown == nil {
				breakdown, _ = recordField(record, "budgetBreakdown")
			}
			n.dispatchList(b, nested, tripLength, breakdown)
			return
		case map[string]any:
			n.dispatchRecord(b, nested, tripLength)
			return
		}
	}

	if n.dispatchDayKeys(b, record) {
		return
	}

	if hasAnyKey(record, "day", "morning", "afternoon", "evening", "activities", "hotel", "attraction", "timing") {
		n.dispatchList(b, []any{record}, tripLength, nil)
	}
}

// dispatchDayKeys обрабатывает форму {"day1": {...}, "day2": {...}}.
func (n *Normalizer) dispatchDayKeys(b *dayBuilder, record map[string]any) bool {
	type keyed struct {
		number int
		value  any
	}

	entries := make([]keyed, 0)
	for key, value := range record {
		match := dayKeyPattern.FindStringSubmatch(strings.TrimSpace(key))
		if match == nil {
			continue
		}
		number, err := strconv.Atoi(match[1])
		if err != nil || number > maxDayNumber {
			continue
		}
		entries = append(entries, keyed{number: number, value: value})
	}
	if len(entries) == 0 {
		return false
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].number < entries[j].number })
	for _, entry := range entries {
		n.addDayValue(b, entry.number, entry.value, nil, 0)
	}
	return true
}

func (n *Normalizer) dispatchList(b *dayBuilder, list []any, tripLength int, breakdown map[string]any) {
	if len(list) == 0 {
		return
	}

	if isFlatDatedList(list) {
		n.dispatchDated(b, list)
		return
	}

	positions := dayPositions(list)
	for index, element := range list {
		n.addDayValue(b, positions[index], element, breakdown, tripLength)
	}
}

// dayPositions использует поле day, если оно задано уникально у всех
// записей, иначе порядковый номер.
func dayPositions(list []any) []int {
	positions := make([]int, len(list))
	seen := make(map[int]struct{}, len(list))
	useField := true

	for index, element := range list {
		positions[index] = index + 1
		record, ok := element.(map[string]any)
		if !ok {
			useField = false
			continue
		}
		number, ok := dayNumber(record)
		if !ok {
			useField = false
			continue
		}
		if _, dup := seen[number]; dup {
			useField = false
			continue
		}
		seen[number] = struct{}{}
	}

	if !useField {
		for index := range positions {
			positions[index] = index + 1
		}
		return positions
	}

	for index, element := range list {
		number, _ := dayNumber(element.(map[string]any))
		positions[index] = number
	}
	return positions
}

func dayNumber(record map[string]any) (int, bool) {
	value, ok := record["day"]
	if !ok {
		return 0, false
	}
	if number, ok := toNumber(value); ok && number >= 1 && number <= maxDayNumber {
		return int(number), true
	}
	if label, ok := value.(string); ok {
		if match := dayLabelPattern.FindStringSubmatch(label); match != nil {
			number, err := strconv.Atoi(match[1])
			if err == nil && number >= 1 && number <= maxDayNumber {
				return number, true
			}
		}
	}
	return 0, false
}

func (n *Normalizer) addDayValue(b *dayBuilder, day int, value any, breakdown map[string]any, tripLength int) {
	switch typed := value.(type) {
	case map[string]any:
		for _, item := range n.dayRecordItems(day, typed, breakdown, tripLength) {
			b.add(day, item)
		}
	case []any:
		for index, entry := range typed {
			for _, item := range n.activityEntry(day, index, entry, "") {
				b.add(day, item)
			}
		}
	case string:
		if trimmed := strings.TrimSpace(typed); trimmed != "" {
			b.add(day, n.newItem(fmt.Sprintf("ai-%d-0", day), "", trimmed, "", "", 0, ""))
		}
	}
}

// dayRecordItems разбирает запись одного дня: слоты времени, список
// activities, timing-тройки, hotel/attraction или одиночную запись.
func (n *Normalizer) dayRecordItems(day int, record map[string]any, breakdown map[string]any, tripLength int) []models.Item {
	dayLocation := stringField(record, "destination", "location", "city", "destinationName")
	items := make([]models.Item, 0)

	for _, slot := range timeSlots {
		switch slotValue := record[slot].(type) {
		case map[string]any:
			if item, ok := n.slotItem(day, slot, slotValue, dayLocation); ok {
				items = append(items, item)
			}
		case string:
			if trimmed := strings.TrimSpace(slotValue); trimmed != "" {
				location := n.locationOr(n.extractLocation(trimmed), dayLocation)
				items = append(items, n.newItem(fmt.Sprintf("ai-%d-%s", day, slot), "", trimmed, location, slot, 0, ""))
			}
		}
	}

	if activities, ok := listField(record, "activities"); ok {
		for index, entry := range activities {
			items = append(items, n.activityEntry(day, index, entry, dayLocation)...)
		}
	}

	if timing, ok := listField(record, "timing"); ok {
		items = append(items, n.timingItems(day, timing, breakdown, tripLength, dayLocation)...)
	}

	if hotel, ok := recordField(record, "hotel"); ok {
		name := stringField(hotel, "name", "title")
		if name != "" {
			price, _ := numberField(hotel, "price", "cost", "price_per_night", "cost_per_night")
			location := n.locationOr(stringField(hotel, "location", "address"), dayLocation)
			items = append(items, n.newItem(fmt.Sprintf("ai-%d-hotel", day), "accommodation", name, location, "Overnight", price, stringField(hotel, "description")))
		}
	} else if hotelName := stringField(record, "hotel"); hotelName != "" {
		items = append(items, n.newItem(fmt.Sprintf("ai-%d-hotel", day), "accommodation", hotelName, dayLocation, "Overnight", 0, ""))
	}

	switch attraction := record["attraction"].(type) {
	case string:
		if trimmed := strings.TrimSpace(attraction); trimmed != "" {
			location := n.locationOr(n.extractLocation(trimmed), dayLocation)
			price, _ := numberField(record, "attraction_cost", "cost")
			items = append(items, n.newItem(fmt.Sprintf("ai-%d-attraction", day), "", trimmed, location, "2-3 hours", price, ""))
		}
	case map[string]any:
		items = append(items, n.activityEntry(day, len(items), attraction, dayLocation)...)
	}

	if len(items) == 0 {
		name := stringField(record, "activity", "name", "title")
		if name != "" {
			location := n.locationOr(stringField(record, "location", "place"), dayLocation)
			price, _ := numberField(record, "cost", "price", "estimatedCost")
			duration := stringField(record, "duration", "time")
			items = append(items, n.newItem(fmt.Sprintf("ai-%d-0", day), stringField(record, "activityType", "type"), name, location, duration, price, stringField(record, "description", "note")))
		}
	}

	return items
}

func (n *Normalizer) slotItem(day int, slot string, record map[string]any, dayLocation string) (models.Item, bool) {
	activity := stringField(record, "activity", "name", "title")
	if activity == "" {
		return models.Item{}, false
	}

	location := n.locationOr(stringField(record, "location", "place"), dayLocation)
	at := stringField(record, "time")
	price, _ := numberField(record, "cost", "price")

	duration := slot
	description := fmt.Sprintf("%s at %s", activity, location)
	if at != "" {
		duration = at
		description = fmt.Sprintf("%s: %s at %s", at, activity, location)
	}

	return n.newItem(fmt.Sprintf("ai-%d-%s", day, slot), stringField(record, "activityType", "type"), activity, location, duration, price, description), true
}

func (n *Normalizer) activityEntry(day, index int, entry any, dayLocation string) []models.Item {
	id := fmt.Sprintf("ai-%d-%d", day, index)

	switch typed := entry.(type) {
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return nil
		}
		location := n.locationOr(n.extractLocation(trimmed), dayLocation)
		return []models.Item{n.newItem(id, "", trimmed, location, "2 hours", 0, "")}
	case map[string]any:
		name := stringField(typed, "title", "name", "activity")
		if name == "" {
			return nil
		}
		location := n.locationOr(stringField(typed, "location", "place"), dayLocation)
		price, _ := numberField(typed, "cost", "price")
		duration := stringField(typed, "duration", "time")
		if duration == "" {
			duration = "2 hours"
		}
		description := stringField(typed, "note", "description")
		explicit := stringField(typed, "activityType", "type", "category")
		return []models.Item{n.newItem(id, explicit, name, location, duration, price, description)}
	case []any:
		return n.timingItems(day, []any{typed}, nil, 0, dayLocation)
	}
	return nil
}

// timingItems разбирает тройки [время, место, активность] и распределяет
// стоимость из budget_breakdown.
func (n *Normalizer) timingItems(day int, timing []any, breakdown map[string]any, tripLength int, dayLocation string) []models.Item {
	accommodation, _ := numberField(breakdown, "accommodation")
	food, ok := numberField(breakdown, "food")
	if !ok {
		food = defaultFoodBudget
	}
	activities, ok := numberField(breakdown, "activities")
	if !ok {
		activities = defaultActivitiesBudget
	}
	if tripLength < 1 {
		tripLength = 1
	}

	items := make([]models.Item, 0, len(timing))
	for index, entry := range timing {
		var at, location, activity string
		switch typed := entry.(type) {
		case []any:
			parts := make([]string, 0, len(typed))
			for _, part := range typed {
				parts = append(parts, strings.TrimSpace(fmt.Sprint(part)))
			}
			switch len(parts) {
			case 0:
				continue
			case 1:
				activity = parts[0]
			case 2:
				at, activity = parts[0], parts[1]
			default:
				at, location, activity = parts[0], parts[1], parts[2]
			}
		case map[string]any:
			at = stringField(typed, "time")
			location = stringField(typed, "location", "place")
			activity = stringField(typed, "activity", "name", "title")
		case string:
			activity = strings.TrimSpace(typed)
		}
		if activity == "" {
			continue
		}

		location = n.locationOr(location, dayLocation)
		kind := n.classifier.Classify(activity, location)

		var price float64
		switch {
		case kind == models.KindStay:
			price = accommodation / float64(tripLength)
		case containsAny(strings.ToLower(activity), "", mealKeywords):
			price = food / mealsPerDay
		default:
			price = activities / activitiesPerDay
		}

		description := activity
		if at != "" {
			description = fmt.Sprintf("%s: %s at %s", at, activity, location)
		}
		item := n.newItem(fmt.Sprintf("ai-%d-t%d", day, index), "", activity, location, at, price, description)
		item.Kind = kind
		items = append(items, item)
	}
	return items
}

// newItem создает элемент; вид берется из явного типа источника, иначе
// определяется классификатором.
func (n *Normalizer) newItem(id, explicitType, name, location, duration string, price float64, description string) models.Item {
	if location == "" {
		location = n.defaultLocation
	}
	return models.Item{
		ID:          id,
		Kind:        n.kindFor(explicitType, name, location),
		Name:        name,
		Location:    location,
		Duration:    duration,
		Price:       clampPrice(price),
		Description: description,
	}
}

func (n *Normalizer) kindFor(explicitType, name, location string) models.ItemKind {
	switch strings.ToLower(strings.TrimSpace(explicitType)) {
	case "accommodation", "stay", "hotel", "lodging":
		return models.KindStay
	case "transport", "transportation", "transfer":
		return models.KindTransport
	}
	return n.classifier.Classify(name, location)
}

func (n *Normalizer) locationOr(location, fallback string) string {
	if location != "" {
		return location
	}
	if fallback != "" {
		return fallback
	}
	return n.defaultLocation
}

// extractLocation ищет известное место в свободном тексте.
func (n *Normalizer) extractLocation(text string) string {
	lower := strings.ToLower(text)
	for _, place := range n.places {
		if strings.Contains(lower, strings.ToLower(place)) {
			return place
		}
	}
	return ""
}

// isFlatDatedList распознает плоские записи с полем date без вложенной
// структуры дня.
func isFlatDatedList(list []any) bool {
	for _, element := range list {
		record, ok := element.(map[string]any)
		if !ok {
			return false
		}
		if _, ok := record["date"]; !ok {
			return false
		}
		if hasAnyKey(record, "morning", "afternoon", "evening", "activities", "timing") {
			return false
		}
	}
	return true
}

func (n *Normalizer) dispatchDated(b *dayBuilder, list []any) {
	order := make([]string, 0)
	groups := make(map[string][]map[string]any)

	for _, element := range list {
		record := element.(map[string]any)
		label := stringField(record, "date")
		if label == "" {
			label = "undated"
		}
		if _, ok := groups[label]; !ok {
			order = append(order, label)
		}
		groups[label] = append(groups[label], record)
	}

	for index, label := range order {
		day := index + 1
		for position, record := range groups[label] {
			name := stringField(record, "activity", "name", "title")
			if name == "" {
				continue
			}
			location := n.locationOr(stringField(record, "location", "place"), "")
			duration := stringField(record, "time", "duration")
			if duration == "" {
				duration = "Flexible"
			}
			price, _ := numberField(record, "cost", "price")
			description := stringField(record, "description", "note")
			if description == "" {
				description = fmt.Sprintf("%s: %s", label, name)
			}
			b.add(day, n.newItem(fmt.Sprintf("ai-%d-%d", day, position), stringField(record, "activityType", "type"), name, location, duration, price, description))
		}
	}
}
