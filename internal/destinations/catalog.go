package destinations

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

type Zone struct {
	Name         string   `yaml:"name" json:"name"`
	Description  string   `yaml:"description" json:"description"`
	Destinations []string `yaml:"destinations" json:"destinations"`
}

// Catalog хранит пулы направлений по зонам и кураторские списки.
type Catalog struct {
	Gateway           string            `yaml:"gateway"`
	DefaultStart      string            `yaml:"default_start"`
	Zones             map[string]Zone   `yaml:"zones"`
	Aliases           map[string]string `yaml:"aliases"`
	StartingLocations map[string]string `yaml:"starting_locations"`
	Priority          []string          `yaml:"priority"`
	HighQuality       []string          `yaml:"high_quality"`
	Core              []string          `yaml:"core"`
	Names             map[string]string `yaml:"names"`
}

// ZoneInfo описывает зону для клиентов API.
type ZoneInfo struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Destinations []string `json:"destinations"`
}

// Default возвращает встроенный каталог.
func Default() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// Load читает каталог из файла; пустой путь означает встроенный каталог.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse разбирает YAML каталога и проверяет его.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Zones) == 0 {
		return errors.New("catalog has no zones")
	}
	if len(c.Core) == 0 {
		return errors.New("catalog core list is empty")
	}
	if c.Gateway == "" {
		return errors.New("catalog gateway is required")
	}
	if c.DefaultStart == "" {
		c.DefaultStart = c.Gateway
	}
	for alias, target := range c.Aliases {
		if _, ok := c.Zones[target]; !ok {
			return fmt.Errorf("catalog alias %q points to unknown zone %q", alias, target)
		}
	}
	return nil
}

// ZoneID приводит название зоны к идентификатору каталога.
func (c *Catalog) ZoneID(zone string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(zone))
	if target, ok := c.Aliases[key]; ok {
		key = target
	}
	_, ok := c.Zones[key]
	return key, ok
}

// StartID возвращает идентификатор стартовой точки. Пустой ввод дает
// пустой результат, для неизвестного названия берется точка по умолчанию.
func (c *Catalog) StartID(location string) string {
	key := strings.ToLower(strings.TrimSpace(location))
	if key == "" {
		return ""
	}
	key = strings.ReplaceAll(key, " ", "-")
	if id, ok := c.StartingLocations[key]; ok {
		return id
	}
	return c.DefaultStart
}

// Name возвращает название направления или сам идентификатор.
func (c *Catalog) Name(id string) string {
	if name, ok := c.Names[id]; ok {
		return name
	}
	return id
}

// ZoneList возвращает зоны, отсортированные по идентификатору.
func (c *Catalog) ZoneList() []ZoneInfo {
	ids := make([]string, 0, len(c.Zones))
	for id := range c.Zones {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]ZoneInfo, 0, len(ids))
	for _, id := range ids {
		zone := c.Zones[id]
		out = append(out, ZoneInfo{ID: id, Name: zone.Name, Description: zone.Description, Destinations: zone.Destinations})
	}
	return out
}
