package migrations

import (
	"strings"
	"testing"
)

func TestNamesAreSortedAndReadable(t *testing.T) {
	names, err := Names()
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	if len(names) == 0 {
		t.Fatalf("expected bundled migrations")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}

	sql, err := Read(names[0])
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !strings.Contains(sql, "CREATE TABLE IF NOT EXISTS tasks") {
		t.Fatalf("first migration should create tasks table")
	}
}
