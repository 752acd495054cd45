package database

import (
	"reflect"
	"strings"
	"testing"
)

// TestMigrationNames проверяет порядок встроенных миграций.
func TestMigrationNames(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"001_init.sql"}) {
		t.Fatalf("unexpected migrations %v", names)
	}

	body, err := migrationFiles.ReadFile("migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	for _, table := range []string{"saved_itineraries", "planner_requests"} {
		if !strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS "+table) {
			t.Fatalf("migration must create %s", table)
		}
	}
}
