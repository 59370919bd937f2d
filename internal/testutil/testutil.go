// Package testutil provides shared test helpers for setting up journals,
// index databases and entry fixtures.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/jrnl/internal/entry"
	"github.com/starford/jrnl/internal/index"
	"github.com/starford/jrnl/internal/storage"
)

// Date is a fixed Friday morning used by fixtures.
var Date = time.Date(2024, 3, 8, 9, 15, 0, 0, time.FixedZone("", 3600))

// TestDB creates a temporary SQLite index that is automatically closed.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "jrnl-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestJournal creates a temporary journal directory with a storage.Provider.
func TestJournal(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// EntryText encodes an entry titled title at when and returns its filename
// and document bytes.
func EntryText(t *testing.T, title string, when time.Time, body string, tags ...string) (string, []byte) {
	t.Helper()
	r := entry.New(title, when, 0).WithBody(body)
	if len(tags) > 0 {
		r = r.WithTags(tags)
	}
	data, err := entry.Encode(r)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return r.Filename(), data
}

// WriteEntry stores a fixture entry in store and returns its filename.
func WriteEntry(t *testing.T, store storage.Provider, title string, when time.Time, body string, tags ...string) string {
	t.Helper()
	name, data := EntryText(t, title, when, body, tags...)
	if err := store.Write(name, data); err != nil {
		t.Fatal(err)
	}
	return name
}
