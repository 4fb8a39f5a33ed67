// Package testutil provides shared test helpers for setting up a journal and its index.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/journal/internal/index"
	"github.com/starford/journal/internal/journal"
	"github.com/starford/journal/internal/pageservice"
	"github.com/starford/journal/internal/paths"
	"github.com/starford/journal/internal/refsync"
	"github.com/starford/journal/internal/storage"
	"github.com/starford/journal/internal/templates"
)

// Today is the fixed clock used by Journal: Wednesday, 2024-01-31.
var Today = time.Date(2024, time.January, 31, 9, 0, 0, 0, time.Local)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "journal-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestJournal creates a temporary journal directory with a storage.FS.
func TestJournal(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// Journal wires a complete journal service over a temporary directory and
// database, with the clock fixed at Today.
func Journal(t *testing.T) (*journal.Service, *storage.FS) {
	t.Helper()
	_, store := TestJournal(t)
	db := TestDB(t)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	locks := storage.NewPathLocks()
	table, err := templates.NewTable()
	if err != nil {
		t.Fatal(err)
	}
	resolver := paths.NewResolver(paths.DefaultExt)
	sync := refsync.New(store, locks, table, templates.DefaultScope, logger)
	pages := pageservice.New(pageservice.Options{
		Store:    store,
		Locks:    locks,
		Resolver: resolver,
		Table:    table,
		Sync:     sync,
		Locale:   "en",
		Logger:   logger,
		Now:      func() time.Time { return Today },
	})
	t.Cleanup(pages.Wait)
	ix := index.NewIndexer(db, store, resolver, sync, logger)
	return journal.NewService(pages, db, ix, logger), store
}
