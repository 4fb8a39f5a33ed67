package templates

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/starford/journal/internal/apperr"
)

// Template file names inside the templates directory.
const (
	PageTemplateFile = "journal.page-template.md"
	NoteTemplateFile = "journal.note-template.md"
)

//go:embed resources/*.md
var bundled embed.FS

// Files reads the page and note templates from a directory, falling back to
// the bundled copies when a file is absent.
type Files struct {
	Dir string
}

// Bootstrap copies the bundled template files into dir when they are missing.
// Existing files are never overwritten. The copies run concurrently.
func Bootstrap(ctx context.Context, dir string, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &apperr.IOError{Op: "copy", Path: dir, Err: err}
	}
	g, _ := errgroup.WithContext(ctx)
	for _, name := range []string{PageTemplateFile, NoteTemplateFile} {
		g.Go(func() error {
			copied, err := copyIfAbsent(name, filepath.Join(dir, name))
			if err != nil {
				return err
			}
			if copied {
				logger.Info("templates: installed", slog.String("file", name), slog.String("dir", dir))
			}
			return nil
		})
	}
	return g.Wait()
}

func copyIfAbsent(name, dst string) (bool, error) {
	data, err := fs.ReadFile(bundled, "resources/"+name)
	if err != nil {
		return false, fmt.Errorf("templates: bundled %s: %w", name, err)
	}
	f, err := createExclusive(dst)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, &apperr.IOError{Op: "copy", Path: dst, Err: err}
	}
	if err := writeAndClose(f, data); err != nil {
		_ = os.Remove(dst)
		return false, &apperr.IOError{Op: "copy", Path: dst, Err: err}
	}
	return true, nil
}

// createExclusive opens dst for writing, failing when it already exists.
var createExclusive = func(dst string) (io.WriteCloser, error) {
	return os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

func writeAndClose(f io.WriteCloser, data []byte) error {
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Page returns the page template; it contains a {header} placeholder.
func (f Files) Page() (string, error) {
	return f.read(PageTemplateFile)
}

// Note returns the note template; it contains a {content} placeholder.
func (f Files) Note() (string, error) {
	return f.read(NoteTemplateFile)
}

func (f Files) read(name string) (string, error) {
	if f.Dir != "" {
		data, err := os.ReadFile(filepath.Join(f.Dir, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", &apperr.IOError{Op: "load", Path: filepath.Join(f.Dir, name), Err: err}
		}
	}
	data, err := fs.ReadFile(bundled, "resources/"+name)
	if err != nil {
		return "", fmt.Errorf("templates: bundled %s: %w", name, err)
	}
	return string(data), nil
}
