// Package testutil provides shared test helpers for seed directories, draft
// databases and form services.
package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/formbind/internal/drafts"
	"github.com/starford/formbind/internal/storage"
)

// AliceSeed is a complete, valid seed document.
const AliceSeed = `title: Alice
model:
  name: Alice
  age: 30
  email: alice@example.com
  tags: [go]
  address:
    street: Main 1
    city: Oslo
    zip: "01234"
`

// TestDrafts creates a temporary draft database that is closed on cleanup.
func TestDrafts(t *testing.T) *drafts.DB {
	t.Helper()
	db, err := drafts.Open(filepath.Join(t.TempDir(), "drafts.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSeeds creates a temporary seed directory holding files (name -> body).
func TestSeeds(t *testing.T, files map[string]string) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	for name, body := range files {
		if err := store.Write(name, []byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	return dir, store
}

// Logger returns a logger that only reports errors.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
