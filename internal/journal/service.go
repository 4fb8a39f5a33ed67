// Package journal is the query and command surface shared by the CLI, the
// HTTP API and the MCP server.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/starford/journal/internal/apperr"
	"github.com/starford/journal/internal/index"
	"github.com/starford/journal/internal/models"
	"github.com/starford/journal/internal/pageservice"
)

// PageDetail is the full representation of a day page.
type PageDetail struct {
	Date        string   `json:"date"`
	Path        string   `json:"path"`
	NotesFolder string   `json:"notes_folder"`
	Created     bool     `json:"created"`
	Content     string   `json:"content"`
	Notes       []string `json:"notes"`
}

// NoteDetail describes a note file created next to a page.
type NoteDetail struct {
	Path    string `json:"path"`
	Page    string `json:"page"`
	Content string `json:"content"`
}

// PageListItem is a lightweight item in a list response.
type PageListItem struct {
	Date  string   `json:"date"`
	Path  string   `json:"path"`
	Title string   `json:"title"`
	Notes []string `json:"notes"`
}

// Indexer updates the index after a page changes.
type Indexer interface {
	IndexFile(path string, data []byte) error
}

// Service coordinates the page service and the index.
type Service struct {
	pages   *pageservice.Service
	db      index.PageIndex
	indexer Indexer
	logger  *slog.Logger
}

// NewService creates a journal service. indexer may be nil when an fsnotify
// watcher keeps the index current.
func NewService(pages *pageservice.Service, db index.PageIndex, indexer Indexer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{pages: pages, db: db, indexer: indexer, logger: logger}
}

// Pages returns the underlying page service.
func (s *Service) Pages() *pageservice.Service { return s.pages }

// ResolveDate turns a date phrase ("yesterday", "next fri", "2024-01-31")
// into a calendar date. Trailing memo text is rejected.
func (s *Service) ResolveDate(raw string) (models.CalendarDate, error) {
	in, err := s.pages.Tokenize(raw)
	if err != nil {
		return models.CalendarDate{}, err
	}
	if in.HasPayload() {
		return models.CalendarDate{}, &apperr.ParseError{Token: strings.TrimSpace(raw)}
	}
	if in.Date != nil {
		return *in.Date, nil
	}
	return s.pages.Today().AddDays(in.Offset), nil
}

// GetPage loads an existing page without creating it.
func (s *Service) GetPage(ctx context.Context, raw string) (*PageDetail, error) {
	date, err := s.ResolveDate(raw)
	if err != nil {
		return nil, err
	}
	page, err := s.pages.Find(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.buildPageDetail(page)
}

// Enter opens or creates the page named by raw and adds its memo, if any.
func (s *Service) Enter(ctx context.Context, raw string) (*PageDetail, error) {
	page, err := s.pages.Enter(ctx, raw)
	if err != nil {
		return nil, err
	}
	s.reindex(page.Path, page.Content)
	return s.buildPageDetail(page)
}

// CreateNote adds a note titled title to the page named by raw, creating the page if needed.
func (s *Service) CreateNote(ctx context.Context, raw, title string) (*NoteDetail, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("note title is required")
	}
	date, err := s.ResolveDate(raw)
	if err != nil {
		return nil, err
	}
	page, err := s.pages.GetOrCreateDate(ctx, date)
	if err != nil {
		return nil, err
	}
	note, err := s.pages.CreateNote(ctx, page, title)
	if err != nil {
		return nil, err
	}
	s.reindexPath(page.Path)
	return &NoteDetail{Path: note.Path, Page: page.Path, Content: string(note.Content)}, nil
}

// Sync links the unreferenced files of the page named by raw and returns their names.
func (s *Service) Sync(ctx context.Context, raw string) ([]string, error) {
	date, err := s.ResolveDate(raw)
	if err != nil {
		return nil, err
	}
	sync := s.pages.Synchronizer()
	if sync == nil {
		return nil, errors.New("reference synchronization is not configured")
	}
	page, err := s.pages.Find(ctx, date)
	if err != nil {
		return nil, err
	}
	added, err := sync.Synchronize(ctx, page)
	if err != nil {
		return nil, err
	}
	if len(added) > 0 {
		s.reindexPath(page.Path)
	}
	return nonNilSlice(added), nil
}

// ListPages returns indexed pages whose date starts with prefix ("2024-01").
func (s *Service) ListPages(_ context.Context, prefix string, limit int) ([]PageListItem, error) {
	rows, err := s.db.ListPages(prefix, limit)
	if err != nil {
		return nil, err
	}
	items := make([]PageListItem, len(rows))
	for i, r := range rows {
		items[i] = PageListItem{
			Date:  r.Day,
			Path:  r.Path,
			Title: r.Title,
			Notes: nonNilSlice(r.Notes),
		}
	}
	return items, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Abs returns the file system path of a journal-relative path.
func (s *Service) Abs(path string) (string, error) {
	return s.pages.Store().Abs(path)
}

func (s *Service) reindexPath(path string) {
	doc, err := s.pages.Store().Load(path)
	if err != nil {
		s.logger.Warn("index: reload failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	s.reindex(path, doc.Content)
}

func (s *Service) reindex(path string, data []byte) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexFile(path, data); err != nil {
		s.logger.Warn("index: update failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

// buildPageDetail constructs a PageDetail from a loaded page without re-reading it.
func (s *Service) buildPageDetail(page *models.Page) (*PageDetail, error) {
	notes, err := s.pages.Store().ListDir(page.NotesFolder)
	if err != nil {
		return nil, err
	}
	return &PageDetail{
		Date:        page.Date.String(),
		Path:        filepath.ToSlash(page.Path),
		NotesFolder: filepath.ToSlash(page.NotesFolder),
		Created:     !page.Exists,
		Content:     string(page.Content),
		Notes:       nonNilSlice(notes),
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
