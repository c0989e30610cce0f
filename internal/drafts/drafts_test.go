package drafts

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/formbind/internal/apperr"
	"github.com/starford/formbind/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "drafts.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertAndGet(t *testing.T) {
	db := testDB(t)
	row := Row{
		ID:      "f1",
		Seed:    "alice",
		Version: 3,
		Model: models.Profile{
			Name:    "Alice",
			Tags:    []string{"go"},
			Address: models.Address{City: "Oslo"},
		},
		Valid:     true,
		Checksum:  "abc",
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := db.Upsert(row); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := db.Get("f1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(row, *got); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}

	row.Version = 4
	row.Model.Name = "Alicia"
	if err := db.Upsert(row); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, _ = db.Get("f1")
	if got.Version != 4 || got.Model.Name != "Alicia" {
		t.Fatalf("row = %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	db := testDB(t)
	if _, err := db.Get("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListAndDelete(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := db.Upsert(Row{ID: id, Seed: "s", UpdatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	if err := db.Delete("b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := db.Delete("b"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}

	rows, err := db.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]string{"c", "a"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}
