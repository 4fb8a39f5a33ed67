package refsync

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/journal/internal/models"
	"github.com/starford/journal/internal/storage"
	"github.com/starford/journal/internal/templates"
)

const pageBody = "# Wednesday, 2024-01-31\n\n## Memos\n\n## Tasks\n\n## Notes\n"

func setup(t *testing.T, body string, notes ...string) (*Synchronizer, *storage.FS, *models.Page) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	page := &models.Page{
		Date:        models.NewDate(2024, time.January, 31),
		Path:        filepath.Join("2024", "01", "31.md"),
		NotesFolder: filepath.Join("2024", "01", "31"),
	}
	if _, err := store.CreateAndLoad(page.Path, []byte(body)); err != nil {
		t.Fatalf("CreateAndLoad: %v", err)
	}
	dir := filepath.Join(store.Root(), page.NotesFolder)
	for _, n := range notes {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, n), []byte(n), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	table, _ := templates.NewTable()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return New(store, storage.NewPathLocks(), table, templates.DefaultScope, logger), store, page
}

func content(t *testing.T, store *storage.FS, page *models.Page) string {
	t.Helper()
	doc, err := store.Load(page.Path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return string(doc.Content)
}

func TestSynchronize_AppendsMissingLinks(t *testing.T) {
	s, store, page := setup(t, pageBody, "Meeting_notes.md", "plan.md")

	added, err := s.Synchronize(context.Background(), page)
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("added = %v", added)
	}
	got := content(t, store, page)
	want := pageBody + "- [Meeting notes](./31/Meeting_notes.md)\n- [plan](./31/plan.md)\n"
	if got != want {
		t.Errorf("content = %q\nwant %q", got, want)
	}
}

func TestSynchronize_Idempotent(t *testing.T) {
	s, store, page := setup(t, pageBody, "a.md", "b b.png")

	if _, err := s.Synchronize(context.Background(), page); err != nil {
		t.Fatalf("first Synchronize: %v", err)
	}
	before := content(t, store, page)

	added, err := s.Synchronize(context.Background(), page)
	if err != nil {
		t.Fatalf("second Synchronize: %v", err)
	}
	if len(added) != 0 {
		t.Errorf("second run added %v", added)
	}
	if after := content(t, store, page); after != before {
		t.Errorf("second run changed the page:\n%q\n%q", before, after)
	}
}

func TestSynchronize_RespectsExistingLinks(t *testing.T) {
	body := pageBody + "- [Custom label](./31/a.md)\n\nSee ![sketch](31/sketch.png) inline.\n"
	s, store, page := setup(t, body, "a.md", "sketch.png", "c.md")

	added, err := s.Synchronize(context.Background(), page)
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	if len(added) != 1 || added[0] != "c.md" {
		t.Fatalf("added = %v", added)
	}
	got := content(t, store, page)
	if strings.Count(got, "a.md") != 1 {
		t.Errorf("a.md duplicated: %q", got)
	}
	if !strings.Contains(got, "- [Custom label](./31/a.md)\n- [c](./31/c.md)\n") {
		t.Errorf("content = %q", got)
	}
}

func TestSynchronize_NoNotesFolder(t *testing.T) {
	s, store, page := setup(t, pageBody)
	added, err := s.Synchronize(context.Background(), page)
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	if len(added) != 0 {
		t.Errorf("added = %v", added)
	}
	if content(t, store, page) != pageBody {
		t.Error("page changed")
	}
}

func TestSynchronize_MissingPageFails(t *testing.T) {
	s, _, page := setup(t, pageBody)
	page.Path = filepath.Join("2024", "01", "30.md")
	if _, err := s.Synchronize(context.Background(), page); err == nil {
		t.Fatal("expected error for missing page")
	}
}

func TestTemplateLineRe(t *testing.T) {
	re := templateLineRe("* {label} -> {link}")
	if re == nil {
		t.Fatal("nil regexp")
	}
	m := re.FindStringSubmatch("  * Plan -> ./31/plan.md  ")
	if m == nil || m[1] != "./31/plan.md" {
		t.Errorf("match = %v", m)
	}
	if templateLineRe("- {label}") != nil {
		t.Error("template without link should not compile")
	}
}

func TestReferencedFiles_CustomTemplateShape(t *testing.T) {
	body := []byte("# Day\n* Plan -> ./31/plan.md\n* Other -> ./30/other.md\n")
	refs := referencedFiles(filepath.Join("2024", "01", "31.md"), body, "* {label} -> {link}")
	if _, ok := refs["plan.md"]; !ok {
		t.Errorf("refs = %v", refs)
	}
	if _, ok := refs["other.md"]; ok {
		t.Error("link into another day should not count")
	}
}

func TestReferenced_Sorted(t *testing.T) {
	s, _, page := setup(t, pageBody)
	body := []byte(pageBody + "- [z](./31/z.md)\n- [a](./31/a.md)\n[elsewhere](./30/b.md)\n")
	got := s.Referenced(page.Path, body)
	if len(got) != 2 || got[0] != "a.md" || got[1] != "z.md" {
		t.Errorf("Referenced = %v", got)
	}
}
