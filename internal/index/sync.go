package index

import (
	"bytes"
	"log/slog"
	"strings"
	"time"

	"github.com/starford/journal/internal/paths"
	"github.com/starford/journal/internal/storage"
)

// RefExtractor returns the note files a page links to.
type RefExtractor interface {
	Referenced(pagePath string, content []byte) []string
}

// Indexer keeps the index in step with the pages on disk.
type Indexer struct {
	db       *DB
	store    storage.Provider
	resolver *paths.Resolver
	refs     RefExtractor
	logger   *slog.Logger
}

// NewIndexer creates an Indexer. refs may be nil, in which case note links are not recorded.
func NewIndexer(db *DB, store storage.Provider, resolver *paths.Resolver, refs RefExtractor, logger *slog.Logger) *Indexer {
	return &Indexer{db: db, store: store, resolver: resolver, refs: refs, logger: logger}
}

// DB returns the underlying database.
func (ix *Indexer) DB() *DB { return ix.db }

// Sync walks the journal and brings the index up to date:
//   - new/changed pages are upserted
//   - pages removed from disk are deleted from the index
//
// Files that are not day pages (notes, stray markdown) are ignored.
func (ix *Indexer) Sync() error {
	metas, err := ix.store.List("", ix.resolver.Ext())
	if err != nil {
		return err
	}

	checksums, err := ix.db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if !ix.IsPage(m.Path) {
			continue
		}
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		doc, err := ix.store.Load(m.Path)
		if err != nil {
			ix.logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := ix.IndexFile(m.Path, doc.Content); err != nil {
			ix.logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			ix.logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := ix.db.DeletePage(p); err != nil {
				ix.logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				ix.logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// IsPage reports whether rel is a day page path ("2024/01/31.md").
func (ix *Indexer) IsPage(rel string) bool {
	_, ok := ix.resolver.DateFromPath(rel)
	return ok
}

// IndexFile upserts the page at path with content data.
func (ix *Indexer) IndexFile(path string, data []byte) error {
	date, ok := ix.resolver.DateFromPath(path)
	if !ok {
		return nil
	}
	row := PageRow{
		Path:      path,
		Day:       date.String(),
		Title:     pageTitle(data),
		Checksum:  storage.Checksum(data),
		UpdatedAt: time.Now().UTC(),
	}
	if ix.refs != nil {
		row.Notes = ix.refs.Referenced(path, data)
	}
	return ix.db.UpsertPage(row, string(data))
}

// pageTitle returns the text of the first level-one heading.
func pageTitle(data []byte) string {
	for _, line := range bytes.Split(data, []byte("\n")) {
		s := strings.TrimSpace(string(line))
		if title, ok := strings.CutPrefix(s, "# "); ok {
			return strings.TrimSpace(title)
		}
	}
	return ""
}
