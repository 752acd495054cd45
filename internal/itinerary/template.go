package itinerary

import (
	"fmt"
	"math"

	"github.com/samber/lo"

	"example.com/travel-planner/backend/internal/budget"
	"example.com/travel-planner/backend/internal/models"
)

type templateActivity struct {
	name        string
	location    string
	description string
}

// theme описывает тематический шаблон зоны.
type theme struct {
	zone       string
	activeOn   func(day, mid, last int) bool
	hotel      func(view string) string
	location   func(day, mid, last int) string
	activities []templateActivity
	duration   string
	share      float64
}

var templateThemes = []theme{
	{
		zone:     "coastal",
		activeOn: func(day, _, last int) bool { return day <= 3 || day == last },
		hotel: func(view string) string {
			if view == "sea" {
				return "Ocean View Resort"
			}
			return "Beach Hotel"
		},
		location: func(day, _, last int) string {
			switch {
			case day <= 2:
				return "Galle"
			case day == last:
				return "Bentota"
			default:
				return "Mirissa"
			}
		},
		activities: []templateActivity{
			{"Galle Fort Tour", "Galle", "Historic Dutch fort exploration"},
			{"Whale Watching", "Mirissa", "Marine life observation"},
			{"Beach Relaxation", "Bentota", "Relaxing beach time"},
			{"Surfing Lesson", "Hikkaduwa", "Water sports activity"},
			{"Snorkeling", "Unawatuna", "Underwater exploration"},
		},
		duration: "3-4 hours",
		share:    0.30,
	},
	{
		zone:     "hill-country",
		activeOn: func(day, mid, _ int) bool { return day > 3 || day == mid },
		hotel: func(view string) string {
			if view == "hill" {
				return "Hill Country Lodge"
			}
			return "Tea Plantation Hotel"
		},
		location: func(day, mid, _ int) string {
			if day == mid {
				return "Kandy"
			}
			return "Nuwara Eliya"
		},
		activities: []templateActivity{
			{"Tea Factory Visit", "Kandy", "Learn about tea production"},
			{"Temple of the Tooth", "Kandy", "Sacred Buddhist temple"},
			{"Botanical Gardens", "Peradeniya", "Tropical plant collection"},
			{"Hiking in Knuckles", "Matale", "Mountain trekking"},
			{"Waterfall Visit", "Nuwara Eliya", "Scenic waterfall exploration"},
		},
		duration: "2-3 hours",
		share:    0.25,
	},
	{
		zone:     "cultural-triangle",
		activeOn: func(day, _, _ int) bool { return day > 1 },
		hotel:    func(string) string { return "Heritage Hotel" },
		location: func(day, _, _ int) string {
			if day == 2 {
				return "Anuradhapura"
			}
			return "Polonnaruwa"
		},
		activities: []templateActivity{
			{"Ancient City Tour", "Anuradhapura", "UNESCO World Heritage site"},
			{"Sigiriya Rock Fortress", "Sigiriya", "Ancient palace ruins"},
			{"Polonnaruwa Ancient City", "Polonnaruwa", "Medieval capital ruins"},
			{"Dambulla Cave Temple", "Dambulla", "Buddhist cave paintings"},
			{"Mihintale Monastery", "Mihintale", "Ancient Buddhist monastery"},
		},
		duration: "Full day",
		share:    0.35,
	},
	{
		zone:     "northern",
		activeOn: func(day, _, _ int) bool { return day > 2 },
		hotel:    func(string) string { return "Northern Heritage Resort" },
		location: func(int, int, int) string { return "Jaffna" },
		activities: []templateActivity{
			{"Jaffna Fort Tour", "Jaffna", "Dutch colonial fort"},
			{"Nallur Temple Visit", "Jaffna", "Hindu temple complex"},
			{"Point Pedro Lighthouse", "Point Pedro", "Scenic coastal views"},
			{"Delft Island Tour", "Delft", "Wildlife sanctuary"},
			{"Nagadeepa Temple", "Nagadeepa", "Ancient Buddhist temple"},
		},
		duration: "Half day",
		share:    0.30,
	},
	{
		zone:     "southern",
		activeOn: func(day, _, _ int) bool { return day <= 2 },
		hotel:    func(string) string { return "Southern Beach Resort" },
		location: func(int, int, int) string { return "Matara" },
		activities: []templateActivity{
			{"Yala Safari", "Yala", "Wildlife safari experience"},
			{"Tangalle Beach", "Tangalle", "Secluded beach exploration"},
			{"Mulkirigala Rock", "Mulkirigala", "Ancient monastery ruins"},
			{"Whale Watching", "Mirissa", "Marine mammal observation"},
			{"Stilt Fishing", "Koggala", "Traditional fishing method"},
		},
		duration: "4-5 hours",
		share:    0.35,
	},
	{
		zone:     "eastern",
		activeOn: func(day, _, _ int) bool { return day > 1 },
		hotel:    func(string) string { return "Eastern Coastal Hotel" },
		location: func(int, int, int) string { return "Trincomalee" },
		activities: []templateActivity{
			{"Trincomalee Harbour", "Trincomalee", "Natural deep-water harbour"},
			{"Pigeon Island", "Nilaveli", "Marine national park"},
			{"Koneswaram Temple", "Trincomalee", "Ancient Hindu temple"},
			{"Batticaloa Lagoon", "Batticaloa", "Beautiful lagoon views"},
			{"Pasikuda Beach", "Pasikuda", "Golden sand beach"},
		},
		duration: "3-4 hours",
		share:    0.30,
	},
}

var defaultTheme = theme{
	activities: []templateActivity{
		{"Colombo City Tour", "Colombo", "Urban exploration"},
		{"Local Market Visit", "Local Area", "Cultural immersion"},
		{"Scenic Drive", "Highway", "Landscape photography"},
		{"Local Cuisine Experience", "Restaurant", "Food tasting"},
		{"Nature Walk", "Nearby Park", "Light outdoor activity"},
	},
	duration: "2-3 hours",
	share:    0.25,
}

type transportOption struct {
	name        string
	description string
	share       float64
}

var transportOptions = map[string]transportOption{
	"train":      {"Scenic Train Journey", "Enjoy scenic railway views", 0.15},
	"car-driver": {"Private Car with Driver", "Comfortable and convenient travel", 0.25},
	"self-drive": {"Self-Drive Rental Car", "Freedom to explore at your own pace", 0.20},
}

var zoneTransport = []struct {
	zone        string
	name        string
	description string
}{
	{"coastal", "Coastal Road Transfer", "Scenic coastal route"},
	{"hill-country", "Mountain Road Journey", "Winding mountain roads"},
	{"cultural-triangle", "Heritage Route Transfer", "Through ancient landscapes"},
}

// Template строит детерминированный маршрут по зонам и предпочтениям.
type Template struct {
	weights budget.Weights
}

func NewTemplate(weights budget.Weights) *Template {
	return &Template{weights: weights}
}

// Build синтезирует маршрут на весь срок поездки: проживание в первый,
// средний и последний день, одна активность в день по теме зоны и
// переезд начиная со второго дня.
func (t *Template) Build(req Request) models.Itinerary {
	tripLength := req.TripLength
	if tripLength < 1 {
		tripLength = 1
	}
	daily := 0.0
	if req.Budget > 0 && !math.IsInf(req.Budget, 0) {
		daily = req.Budget / float64(tripLength)
	}

	zones := lo.SliceToMap(req.Preferences.Zones, func(zone string) (string, struct{}) {
		return zone, struct{}{}
	})
	mid := (tripLength + 1) / 2
	view := req.Preferences.HotelView
	if view == "" {
		view = "standard"
	}

	itinerary := make(models.Itinerary, 0, tripLength)
	for day := 1; day <= tripLength; day++ {
		items := make([]models.Item, 0, 3)
		active := activeTheme(zones, day, mid, tripLength)

		if day == 1 || day == mid || day == tripLength {
			name, location := "Comfort Hotel", "Colombo"
			if active.zone != "" {
				name = active.hotel(req.Preferences.HotelView)
				location = active.location(day, mid, tripLength)
			}
			items = append(items, models.Item{
				ID:          fmt.Sprintf("stay-%d", day),
				Kind:        models.KindStay,
				Name:        name,
				Location:    location,
				Duration:    "Overnight",
				Price:       clampPrice(daily * t.weights.Accommodation),
				Currency:    req.Currency,
				Description: fmt.Sprintf("%s view accommodation in %s", view, location),
			})
		}

		activity := active.activities[(day-1)%len(active.activities)]
		items = append(items, models.Item{
			ID:          fmt.Sprintf("activity-%d-1", day),
			Kind:        models.KindActivity,
			Name:        activity.name,
			Location:    activity.location,
			Duration:    active.duration,
			Price:       clampPrice(daily * active.share),
			Currency:    req.Currency,
			Description: activity.description,
		})

		if day > 1 {
			option := t.transportFor(req.Preferences.Transport, zones)
			items = append(items, models.Item{
				ID:          fmt.Sprintf("transport-%d", day),
				Kind:        models.KindTransport,
				Name:        option.name,
				Duration:    "2-3 hours",
				Price:       clampPrice(daily * option.share),
				Currency:    req.Currency,
				Description: option.description,
			})
		}

		itinerary = append(itinerary, models.Day{Day: day, Items: items})
	}
	return itinerary
}

func activeTheme(zones map[string]struct{}, day, mid, last int) theme {
	for _, th := range templateThemes {
		if _, ok := zones[th.zone]; ok && th.activeOn(day, mid, last) {
			return th
		}
	}
	return defaultTheme
}

func (t *Template) transportFor(preference string, zones map[string]struct{}) transportOption {
	if option, ok := transportOptions[preference]; ok {
		return option
	}
	for _, candidate := range zoneTransport {
		if _, ok := zones[candidate.zone]; ok {
			return transportOption{candidate.name, candidate.description, t.weights.Transport}
		}
	}
	return transportOption{"Local Bus/Transfer", "Reliable local transportation", t.weights.Transport}
}
