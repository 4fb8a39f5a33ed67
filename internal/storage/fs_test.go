package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/journal/internal/apperr"
	"github.com/starford/journal/internal/models"
)

func tempJournal(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestCreateAndLoad(t *testing.T) {
	s := tempJournal(t)
	doc, err := s.CreateAndLoad("2024/01/31.md", []byte("# Wednesday\n"))
	if err != nil {
		t.Fatalf("CreateAndLoad: %v", err)
	}
	if string(doc.Content) != "# Wednesday\n" {
		t.Errorf("content = %q", doc.Content)
	}
	if doc.Checksum != Checksum(doc.Content) {
		t.Error("checksum mismatch")
	}
	loaded, err := s.Load("2024/01/31.md")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(loaded.Content) != "# Wednesday\n" {
		t.Errorf("loaded = %q", loaded.Content)
	}
}

func TestCreateAndLoad_Exclusive(t *testing.T) {
	s := tempJournal(t)
	if _, err := s.CreateAndLoad("a.md", []byte("first")); err != nil {
		t.Fatalf("CreateAndLoad: %v", err)
	}
	_, err := s.CreateAndLoad("a.md", []byte("second"))
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	doc, _ := s.Load("a.md")
	if string(doc.Content) != "first" {
		t.Errorf("content overwritten: %q", doc.Content)
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := tempJournal(t)
	_, err := s.Load("missing.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoad_DirectoryIsIOError(t *testing.T) {
	s := tempJournal(t)
	if err := os.MkdirAll(filepath.Join(s.Root(), "2024", "01", "31.md"), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load("2024/01/31.md")
	var ioErr *apperr.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if errors.Is(err, apperr.ErrNotFound) {
		t.Error("a directory must not look like a missing page")
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := tempJournal(t)
	doc, _ := s.CreateAndLoad("p.md", []byte("original content"))
	doc.Content = []byte("updated content")
	if err := s.Save(doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ := s.Load("p.md")
	if string(got.Content) != "updated content" {
		t.Errorf("expected updated content, got %q", got.Content)
	}
	if doc.Checksum != got.Checksum {
		t.Error("Save should refresh the checksum")
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, ".journal-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestListDir(t *testing.T) {
	s := tempJournal(t)
	dir := filepath.Join(s.Root(), "2024", "01", "31")
	_ = os.MkdirAll(filepath.Join(dir, "nested"), 0o755)
	_ = os.WriteFile(filepath.Join(dir, "b.md"), []byte("b"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "a.png"), []byte("a"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, ".DS_Store"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "nested", "deep.md"), []byte("d"), 0o644)

	names, err := s.ListDir("2024/01/31")
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}
	if len(names) != 2 || names[0] != "a.png" || names[1] != "b.md" {
		t.Errorf("names = %v", names)
	}
}

func TestListDir_MissingIsEmpty(t *testing.T) {
	s := tempJournal(t)
	names, err := s.ListDir("2024/01/30")
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("names = %v", names)
	}
}

func TestList(t *testing.T) {
	s := tempJournal(t)
	_ = s.Save(&models.Document{Path: "2024/01/30.md", Content: []byte("a")})
	_ = s.Save(&models.Document{Path: "2024/01/31.md", Content: []byte("b")})
	_ = s.Save(&models.Document{Path: "2024/01/readme.txt", Content: []byte("not md")})
	_ = s.Save(&models.Document{Path: ".trash/2024/01/01.md", Content: []byte("hidden")})

	items, err := s.List("", "md")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempJournal(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		_, err := s.Load(p)
		var ioErr *apperr.IOError
		if !errors.As(err, &ioErr) || ioErr.Op != "load" || !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Load(%q) = %v, want load IOError wrapping ErrOutsideRoot", p, err)
		}
		if errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Load(%q) must not report not-found", p)
		}
		err = s.Save(&models.Document{Path: p, Content: []byte("x")})
		if !errors.As(err, &ioErr) || ioErr.Op != "write" {
			t.Errorf("Save(%q) = %v, want write IOError", p, err)
		}
		if _, err := s.CreateAndLoad(p, []byte("x")); !errors.As(err, &ioErr) || ioErr.Op != "create" {
			t.Errorf("CreateAndLoad(%q) = %v, want create IOError", p, err)
		}
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/journal-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "journal-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
