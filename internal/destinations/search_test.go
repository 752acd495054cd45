package destinations

import (
	"errors"
	"reflect"
	"testing"
)

func searchCatalog(t *testing.T) *Catalog {
	t.Helper()

	c, err := Parse([]byte(`
gateway: d11
core: [d11]
zones:
  coastal:
    destinations: [d4, d6, d4]
  hill-country:
    destinations: [d1, d5]
  cultural-triangle:
    destinations: [d1, d10]
aliases:
  hill: hill-country
names:
  d1: Sigiriya
  d4: Galle
  d5: Ella
  d6: Bentota
  d10: Dambulla
`))
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	return c
}

// TestSearchByZone проверяет выдачу пула зоны через псевдоним.
func TestSearchByZone(t *testing.T) {
	got, err := searchCatalog(t).Search("Hill", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []DestinationInfo{
		{ID: "d1", Name: "Sigiriya", Zones: []string{"cultural-triangle", "hill-country"}},
		{ID: "d5", Name: "Ella", Zones: []string{"hill-country"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

// TestSearchQuery проверяет поиск по названию и идентификатору во всех зонах.
func TestSearchQuery(t *testing.T) {
	c := searchCatalog(t)

	got, err := c.Search("", "GAL")
	if err != nil || len(got) != 1 || got[0].ID != "d4" || !reflect.DeepEqual(got[0].Zones, []string{"coastal"}) {
		t.Fatalf("unexpected result %+v (%v)", got, err)
	}

	got, err = c.Search("", "d10")
	if err != nil || len(got) != 1 || got[0].Name != "Dambulla" {
		t.Fatalf("expected lookup by id, got %+v (%v)", got, err)
	}

	all, err := c.Search("", "")
	if err != nil || len(all) != 5 {
		t.Fatalf("expected 5 unique destinations, got %+v (%v)", all, err)
	}
	if all[0].ID != "d4" {
		t.Fatalf("expected zones in id order, got %+v", all)
	}
}

// TestSearchUnknownZone проверяет ошибку для неизвестной зоны.
func TestSearchUnknownZone(t *testing.T) {
	if _, err := searchCatalog(t).Search("atlantis", ""); !errors.Is(err, ErrUnknownZone) {
		t.Fatalf("expected ErrUnknownZone, got %v", err)
	}
}
