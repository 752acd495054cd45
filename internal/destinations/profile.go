package destinations

import "github.com/samber/lo"

// TravelStyle переводит темп поездки в стиль запроса к планировщику.
func TravelStyle(pace string) string {
	switch pace {
	case "relaxed":
		return "comfort"
	case "moderate":
		return "balanced"
	default:
		return "active"
	}
}

var zoneInterests = []struct {
	zone      string
	interests []string
}{
	{"cultural-triangle", []string{"culture", "history"}},
	{"coastal", []string{"nature", "beaches"}},
	{"hill-country", []string{"nature", "tea-culture"}},
}

// Interests выводит интересы путешественника из выбранных зон.
func (c *Catalog) Interests(zones []string) []string {
	requested := lo.SliceToMap(c.resolveZones(zones), func(zone string) (string, struct{}) {
		return zone, struct{}{}
	})

	out := make([]string, 0, 4)
	for _, entry := range zoneInterests {
		if _, ok := requested[entry.zone]; ok {
			out = append(out, entry.interests...)
		}
	}
	if len(out) == 0 {
		return []string{"culture", "nature"}
	}
	return lo.Uniq(out)
}
