// Package storage defines the journal's document store.
package storage

import "github.com/starford/journal/internal/models"

// Provider is the document store used for pages and notes. All paths are
// relative to the journal base directory.
type Provider interface {
	// Load returns the document at path, or an error wrapping apperr.ErrNotFound.
	Load(path string) (*models.Document, error)
	// CreateAndLoad creates path with content and returns it. It fails with an
	// error wrapping apperr.ErrAlreadyExists if the file is already there.
	CreateAndLoad(path string, content []byte) (*models.Document, error)
	// Save atomically replaces the content of doc.Path.
	Save(doc *models.Document) error
	// ListDir returns the names of regular files directly inside dir.
	// A missing dir yields an empty list.
	ListDir(dir string) ([]string, error)
	// List returns metadata for every file with extension ext under dir.
	List(dir, ext string) ([]models.PageMetadata, error)
	// Abs returns the absolute file system path for path.
	Abs(path string) (string, error)
}
