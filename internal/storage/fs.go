package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/journal/internal/apperr"
	"github.com/starford/journal/internal/models"
)

// ErrOutsideRoot is returned for paths that are absolute or escape the journal root.
var ErrOutsideRoot = errors.New("path outside journal root")

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the journal base directory
}

var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute base directory.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative path against the root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}
	return abs, nil
}

// Abs returns the absolute path of rel.
func (f *FS) Abs(rel string) (string, error) {
	return f.safePath(rel)
}

// Load reads a document.
func (f *FS) Load(path string) (*models.Document, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, &apperr.IOError{Op: "load", Path: path, Err: err}
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("storage: load %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, &apperr.IOError{Op: "load", Path: path, Err: err}
	}
	return &models.Document{Path: path, Content: data, Checksum: Checksum(data)}, nil
}

// CreateAndLoad creates the file exclusively, so two writers racing on the
// same path cannot both succeed.
func (f *FS) CreateAndLoad(path string, content []byte) (*models.Document, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, &apperr.IOError{Op: "create", Path: path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, &apperr.IOError{Op: "create", Path: path, Err: err}
	}
	file, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("storage: create %s: %w", path, apperr.ErrAlreadyExists)
	}
	if err != nil {
		return nil, &apperr.IOError{Op: "create", Path: path, Err: err}
	}

	success := false
	defer func() {
		if !success {
			_ = file.Close()
			_ = os.Remove(abs)
		}
	}()

	if _, err := file.Write(content); err != nil {
		return nil, &apperr.IOError{Op: "create", Path: path, Err: err}
	}
	if err := file.Sync(); err != nil {
		return nil, &apperr.IOError{Op: "create", Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return nil, &apperr.IOError{Op: "create", Path: path, Err: err}
	}
	success = true
	return f.Load(path)
}

// Save atomically writes content: tmp file → fsync → rename.
func (f *FS) Save(doc *models.Document) error {
	abs, err := f.safePath(doc.Path)
	if err != nil {
		return &apperr.IOError{Op: "write", Path: doc.Path, Err: err}
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &apperr.IOError{Op: "write", Path: doc.Path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".journal-tmp-*")
	if err != nil {
		return &apperr.IOError{Op: "write", Path: doc.Path, Err: err}
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(doc.Content); err != nil {
		return &apperr.IOError{Op: "write", Path: doc.Path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &apperr.IOError{Op: "write", Path: doc.Path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &apperr.IOError{Op: "write", Path: doc.Path, Err: err}
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return &apperr.IOError{Op: "write", Path: doc.Path, Err: err}
	}
	success = true
	doc.Checksum = Checksum(doc.Content)
	return nil
}

// ListDir lists regular, non-hidden files directly inside dir, sorted by name.
func (f *FS) ListDir(dir string) ([]string, error) {
	abs, err := f.safePath(dir)
	if err != nil {
		return nil, &apperr.IOError{Op: "list", Path: dir, Err: err}
	}
	entries, err := os.ReadDir(abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &apperr.IOError{Op: "list", Path: dir, Err: err}
	}
	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// List walks dir (relative to root) and returns metadata for every file with
// the given extension. Hidden directories are skipped.
func (f *FS) List(dir, ext string) ([]models.PageMetadata, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, &apperr.IOError{Op: "list", Path: dir, Err: err}
	}
	suffix := "." + strings.TrimPrefix(ext, ".")
	var out []models.PageMetadata
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != base && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), suffix) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, models.PageMetadata{
			Path:      rel,
			Checksum:  Checksum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, &apperr.IOError{Op: "list", Path: dir, Err: err}
	}
	return out, nil
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
