package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/journal/internal/index"
	"github.com/starford/journal/internal/input"
	"github.com/starford/journal/internal/journal"
	"github.com/starford/journal/internal/pageservice"
	"github.com/starford/journal/internal/paths"
	"github.com/starford/journal/internal/refsync"
	"github.com/starford/journal/internal/storage"
	"github.com/starford/journal/internal/templates"
)

var errConfigRequired = errors.New("config is required")

// App holds the wired journal components.
type App struct {
	Config  *Config
	Logger  *slog.Logger
	Store   *storage.FS
	DB      *index.DB
	Indexer *index.Indexer
	Pages   *pageservice.Service
	Journal *journal.Service
}

// NewLogger creates the structured JSON logger described by cfg.
func NewLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     cfg.LogLevel,
		AddSource: cfg.DevLogging,
	}))
}

// Build wires storage, templates, the page service and the index from cfg.
// Close must be called when the App is no longer needed.
func Build(ctx context.Context, cfg *Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errConfigRequired
	}

	if err := os.MkdirAll(cfg.Journal.Base, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Journal.Base)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	table, err := templates.NewTable(cfg.Templates...)
	if err != nil {
		return nil, err
	}
	if err := templates.Bootstrap(ctx, cfg.Journal.TemplatesDir, logger); err != nil {
		// Bundled templates are used when the directory cannot be seeded.
		logger.Warn("templates: bootstrap failed", slog.String("dir", cfg.Journal.TemplatesDir), slog.String("error", err.Error()))
	}

	if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	locks := storage.NewPathLocks()
	resolver := paths.NewResolver(cfg.Journal.Ext)
	sync := refsync.New(store, locks, table, cfg.Journal.Scope, logger)
	pages := pageservice.New(pageservice.Options{
		Store:     store,
		Locks:     locks,
		Resolver:  resolver,
		Table:     table,
		Files:     templates.Files{Dir: cfg.Journal.TemplatesDir},
		Sync:      sync,
		Tokenizer: input.NewTokenizer(cfg.Journal.FlagSigil),
		Scope:     cfg.Journal.Scope,
		Locale:    cfg.Journal.Locale,
		Logger:    logger,
	})
	indexer := index.NewIndexer(db, store, resolver, sync, logger)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		DB:      db,
		Indexer: indexer,
		Pages:   pages,
		Journal: journal.NewService(pages, db, indexer, logger),
	}, nil
}

// Close waits for background work and closes the index.
func (a *App) Close() error {
	a.Pages.Wait()
	return a.DB.Close()
}
