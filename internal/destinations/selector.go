package destinations

import (
	"github.com/samber/lo"
)

const (
	destinationsPerDay = 5
	maxDestinations    = 50
	maxPerZone         = 15
)

// MaxDestinations возвращает размер набора кандидатов: min(days*5, 50).
func MaxDestinations(days int) int {
	if days < 1 {
		days = 1
	}
	return min(days*destinationsPerDay, maxDestinations)
}

// selection собирает упорядоченный список без повторов с ограничением размера.
type selection struct {
	ids   []string
	seen  map[string]struct{}
	limit int
}

func newSelection(limit int) *selection {
	return &selection{ids: make([]string, 0, limit), seen: make(map[string]struct{}, limit), limit: limit}
}

func (s *selection) add(id string) bool {
	if id == "" || len(s.ids) >= s.limit {
		return false
	}
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

func (s *selection) insert(index int, id string) {
	if id == "" || len(s.ids) >= s.limit {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	index = min(index, len(s.ids))
	s.seen[id] = struct{}{}
	s.ids = append(s.ids[:index], append([]string{id}, s.ids[index:]...)...)
}

// Select формирует набор направлений: стартовая точка, приоритетные
// направления запрошенных зон, пулы зон с ограничением на зону, затем
// направления высокого качества. Результат не длиннее maxCount и без повторов.
func (c *Catalog) Select(startingLocation string, zones []string, maxCount int) []string {
	if maxCount < 1 {
		maxCount = 1
	}
	result := newSelection(maxCount)

	start := c.StartID(startingLocation)
	result.add(start)

	requested := c.resolveZones(zones)
	pools := make(map[string]map[string]struct{}, len(requested))
	for _, zone := range requested {
		pools[zone] = lo.SliceToMap(c.Zones[zone].Destinations, func(id string) (string, struct{}) {
			return id, struct{}{}
		})
	}
	inRequested := func(id string) bool {
		for _, pool := range pools {
			if _, ok := pool[id]; ok {
				return true
			}
		}
		return false
	}

	for _, id := range c.Priority {
		if inRequested(id) {
			result.add(id)
		}
	}

	if len(requested) > 0 {
		perZone := min(maxPerZone, (maxCount+len(requested)-1)/len(requested))
		for _, zone := range requested {
			pool := pools[zone]
			count := lo.CountBy(result.ids, func(id string) bool {
				_, ok := pool[id]
				return ok
			})
			for _, id := range c.Zones[zone].Destinations {
				if count >= perZone {
					break
				}
				if result.add(id) {
					count++
				}
			}
		}
	}

	for _, id := range c.HighQuality {
		result.add(id)
	}

	switch {
	case len(result.ids) == 0:
	case start != "":
		result.insert(1, c.Gateway)
	default:
		result.insert(0, c.Gateway)
	}

	if len(result.ids) == 0 {
		for _, id := range c.Core {
			result.add(id)
		}
	}
	return result.ids
}

// resolveZones оставляет известные зоны без повторов в порядке запроса.
func (c *Catalog) resolveZones(zones []string) []string {
	out := make([]string, 0, len(zones))
	for _, zone := range zones {
		if id, ok := c.ZoneID(zone); ok {
			out = append(out, id)
		}
	}
	return lo.Uniq(out)
}
