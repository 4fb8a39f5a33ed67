package index

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/journal/internal/paths"
	"github.com/starford/journal/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "journal-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// staticRefs reports the same note files for every page.
type staticRefs []string

func (s staticRefs) Referenced(string, []byte) []string { return s }

func testIndexer(t *testing.T, refs RefExtractor) (*Indexer, *storage.FS) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewIndexer(testDB(t), store, paths.NewResolver("md"), refs, logger), store
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM pages`).Scan(&count); err != nil {
		t.Fatalf("pages table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM page_notes`).Scan(&count); err != nil {
		t.Fatalf("page_notes table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := PageRow{
		Path:      "2024/01/31.md",
		Day:       "2024-01-31",
		Title:     "Wednesday, 2024-01-31",
		Checksum:  "abc123",
		Notes:     []string{"plan.md"},
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertPage(row, "## Memos\n- hello"); err != nil {
		t.Fatalf("UpsertPage: %v", err)
	}
	cs, err := db.GetChecksum("2024/01/31.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
	notes, err := db.NotesOf("2024/01/31.md")
	if err != nil {
		t.Fatalf("NotesOf: %v", err)
	}
	if len(notes) != 1 || notes[0] != "plan.md" {
		t.Errorf("notes = %v", notes)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertPage(PageRow{Path: "2024/01/31.md", Day: "2024-01-31", Checksum: "1", Notes: []string{"x.md"}, UpdatedAt: now}, "old body")
	_ = db.UpsertPage(PageRow{Path: "2024/01/31.md", Day: "2024-01-31", Checksum: "2", Notes: []string{"y.md"}, UpdatedAt: now}, "new body")

	cs, _ := db.GetChecksum("2024/01/31.md")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	notes, _ := db.NotesOf("2024/01/31.md")
	if len(notes) != 1 || notes[0] != "y.md" {
		t.Errorf("old note links should be replaced, got %v", notes)
	}
}

func TestDeletePage(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPage(PageRow{Path: "2024/01/30.md", Day: "2024-01-30", Checksum: "x", Notes: []string{"a.md"}, UpdatedAt: time.Now()}, "body")

	if err := db.DeletePage("2024/01/30.md"); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	cs, _ := db.GetChecksum("2024/01/30.md")
	if cs != "" {
		t.Errorf("deleted page still has checksum %q", cs)
	}
	notes, _ := db.NotesOf("2024/01/30.md")
	if len(notes) != 0 {
		t.Errorf("expected no note links after delete, got %v", notes)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("2000/01/01.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestListPages_PrefixAndOrder(t *testing.T) {
	db := testDB(t)
	for _, day := range []string{"2024-01-30", "2024-02-01", "2024-01-31"} {
		p := day[:4] + "/" + day[5:7] + "/" + day[8:] + ".md"
		if err := db.UpsertPage(PageRow{Path: p, Day: day, Checksum: day, UpdatedAt: time.Now()}, ""); err != nil {
			t.Fatalf("UpsertPage: %v", err)
		}
	}

	rows, err := db.ListPages("2024-01", 0)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if len(rows) != 2 || rows[0].Day != "2024-01-31" || rows[1].Day != "2024-01-30" {
		t.Errorf("rows = %+v", rows)
	}

	all, _ := db.ListPages("", 0)
	if len(all) != 3 {
		t.Errorf("expected 3 pages, got %d", len(all))
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPage(PageRow{Path: "2024/01/31.md", Day: "2024-01-31", Title: "Wednesday", Checksum: "1", UpdatedAt: time.Now()}, "uniqueword appears here")

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Day != "2024-01-31" {
		t.Errorf("search results = %+v, want 1 hit for 2024-01-31", results)
	}
}

func TestIndexer_SyncIndexesPagesOnly(t *testing.T) {
	ix, store := testIndexer(t, staticRefs{"plan.md"})
	page := filepath.Join("2024", "01", "31.md")
	if _, err := store.CreateAndLoad(page, []byte("# Wednesday, 2024-01-31\n\n## Memos\n")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateAndLoad(filepath.Join("2024", "01", "31", "plan.md"), []byte("# Plan\n")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateAndLoad("README.md", []byte("# Readme\n")); err != nil {
		t.Fatal(err)
	}

	if err := ix.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	rows, err := ix.DB().ListPages("", 0)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected only the day page, got %+v", rows)
	}
	if rows[0].Title != "Wednesday, 2024-01-31" || rows[0].Day != "2024-01-31" {
		t.Errorf("row = %+v", rows[0])
	}
	if len(rows[0].Notes) != 1 || rows[0].Notes[0] != "plan.md" {
		t.Errorf("notes = %v", rows[0].Notes)
	}
}

func TestIndexer_SyncRemovesStale(t *testing.T) {
	ix, store := testIndexer(t, nil)
	page := filepath.Join("2024", "01", "31.md")
	if _, err := store.CreateAndLoad(page, []byte("# Day\n")); err != nil {
		t.Fatal(err)
	}
	if err := ix.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := os.Remove(filepath.Join(store.Root(), page)); err != nil {
		t.Fatal(err)
	}
	if err := ix.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if cs, _ := ix.DB().GetChecksum(page); cs != "" {
		t.Error("removed page still indexed")
	}
}

func TestPageTitle(t *testing.T) {
	if got := pageTitle([]byte("intro\n# Friday, 2024-02-02\n## Memos\n")); got != "Friday, 2024-02-02" {
		t.Errorf("title = %q", got)
	}
	if got := pageTitle([]byte("## only h2\n")); got != "" {
		t.Errorf("title = %q", got)
	}
}
