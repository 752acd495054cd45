package destinations

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownZone = errors.New("unknown zone")

// DestinationInfo описывает направление каталога для поиска.
type DestinationInfo struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Zones []string `json:"zones"`
}

// Search возвращает направления зоны (или всех зон) с названием или
// идентификатором, содержащим query. Порядок: зоны по идентификатору,
// внутри зоны порядок пула.
func (c *Catalog) Search(zone, query string) ([]DestinationInfo, error) {
	zoneIDs := make([]string, 0, len(c.Zones))
	if strings.TrimSpace(zone) != "" {
		id, ok := c.ZoneID(zone)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownZone, zone)
		}
		zoneIDs = append(zoneIDs, id)
	} else {
		for _, info := range c.ZoneList() {
			zoneIDs = append(zoneIDs, info.ID)
		}
	}

	memberOf := c.destinationZones()
	needle := strings.ToLower(strings.TrimSpace(query))

	out := make([]DestinationInfo, 0)
	seen := make(map[string]struct{})
	for _, zoneID := range zoneIDs {
		for _, id := range c.Zones[zoneID].Destinations {
			if _, dup := seen[id]; dup {
				continue
			}
			name := c.Name(id)
			if needle != "" && !strings.Contains(strings.ToLower(name), needle) && strings.ToLower(id) != needle {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, DestinationInfo{ID: id, Name: name, Zones: memberOf[id]})
		}
	}
	return out, nil
}

// destinationZones строит обратный индекс направление -> зоны.
func (c *Catalog) destinationZones() map[string][]string {
	index := make(map[string][]string)
	for _, info := range c.ZoneList() {
		for _, id := range info.Destinations {
			if zones := index[id]; len(zones) > 0 && zones[len(zones)-1] == info.ID {
				continue
			}
			index[id] = append(index[id], info.ID)
		}
	}
	return index
}
