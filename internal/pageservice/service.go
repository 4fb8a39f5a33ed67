// Package pageservice opens, creates and edits daily journal pages.
package pageservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/starford/journal/internal/apperr"
	"github.com/starford/journal/internal/input"
	"github.com/starford/journal/internal/models"
	"github.com/starford/journal/internal/paths"
	"github.com/starford/journal/internal/refsync"
	"github.com/starford/journal/internal/storage"
	"github.com/starford/journal/internal/templates"
)

// Options configures a Service.
type Options struct {
	Store     storage.Provider
	Locks     *storage.PathLocks
	Resolver  *paths.Resolver
	Table     *templates.Table
	Files     templates.Files
	Sync      *refsync.Synchronizer
	Tokenizer *input.Tokenizer
	Scope     string
	Locale    string
	Logger    *slog.Logger
	Now       func() time.Time
	OnCreated func(page *models.Page)
}

// Service coordinates path resolution, templates, the document store and
// reference synchronization.
type Service struct {
	store     storage.Provider
	locks     *storage.PathLocks
	resolver  *paths.Resolver
	table     *templates.Table
	files     templates.Files
	sync      *refsync.Synchronizer
	tokenizer *input.Tokenizer
	scope     string
	locale    string
	logger    *slog.Logger
	now       func() time.Time
	onCreated func(page *models.Page)

	background sync.WaitGroup
}

// New creates a page service.
func New(opts Options) *Service {
	s := &Service{
		store:     opts.Store,
		locks:     opts.Locks,
		resolver:  opts.Resolver,
		table:     opts.Table,
		files:     opts.Files,
		sync:      opts.Sync,
		tokenizer: opts.Tokenizer,
		scope:     opts.Scope,
		locale:    opts.Locale,
		logger:    opts.Logger,
		now:       opts.Now,
		onCreated: opts.OnCreated,
	}
	if s.locks == nil {
		s.locks = storage.NewPathLocks()
	}
	if s.resolver == nil {
		s.resolver = paths.NewResolver(paths.DefaultExt)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.scope == "" {
		s.scope = templates.DefaultScope
	}
	if s.tokenizer == nil {
		s.tokenizer = input.NewTokenizer(input.DefaultSigil)
		s.tokenizer.Now = s.now
	}
	return s
}

// Tokenize parses raw user text with the service's tokenizer.
func (s *Service) Tokenize(raw string) (models.Input, error) {
	return s.tokenizer.Tokenize(raw)
}

// Enter runs the whole pipeline for one line of user text: tokenize, open or
// create the page, then add the memo if there is one. A ParseError is
// returned before anything is read or written.
func (s *Service) Enter(ctx context.Context, raw string) (*models.Page, error) {
	in, err := s.tokenizer.Tokenize(raw)
	if err != nil {
		return nil, err
	}
	page, err := s.GetOrCreateInput(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.AddMemo(ctx, page, in)
}

// Today returns the current calendar date.
func (s *Service) Today() models.CalendarDate {
	return models.DateOf(s.now())
}

// Store returns the underlying document store.
func (s *Service) Store() storage.Provider { return s.store }

// Synchronizer returns the reference synchronizer, which may be nil.
func (s *Service) Synchronizer() *refsync.Synchronizer { return s.sync }

// PageFor returns the page descriptor of date without touching the disk.
func (s *Service) PageFor(date models.CalendarDate) *models.Page {
	res := s.resolver.Resolve(date, "")
	return &models.Page{Date: date, Path: res.PagePath, NotesFolder: res.NotesFolder}
}

// Find loads the page of date without creating it. A missing page yields an
// error wrapping apperr.ErrNotFound.
func (s *Service) Find(ctx context.Context, date models.CalendarDate) (*models.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page := s.PageFor(date)
	doc, err := s.store.Load(page.Path)
	if err != nil {
		return nil, err
	}
	page.Content = doc.Content
	page.Exists = true
	return page, nil
}

// GetOrCreateInput opens the page an input designates.
func (s *Service) GetOrCreateInput(ctx context.Context, in models.Input) (*models.Page, error) {
	if in.Date != nil {
		return s.GetOrCreateDate(ctx, *in.Date)
	}
	return s.GetOrCreate(ctx, in.Offset)
}

// GetOrCreate opens the page offset days from today, creating it from the
// page template when it does not exist yet.
func (s *Service) GetOrCreate(ctx context.Context, offset int) (*models.Page, error) {
	return s.GetOrCreateDate(ctx, s.Today().AddDays(offset))
}

// GetOrCreateDate opens or creates the page of date. Reference synchronization
// is started in the background once the page is stable; use Wait to join it.
func (s *Service) GetOrCreateDate(ctx context.Context, date models.CalendarDate) (*models.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page := s.PageFor(date)

	doc, created, err := s.loadOrCreate(page)
	if err != nil {
		return nil, err
	}
	page.Content = doc.Content
	page.Exists = !created

	if created {
		s.logger.Info("page created", slog.String("path", page.Path))
		if s.onCreated != nil {
			s.onCreated(page)
		}
	} else {
		s.logger.Debug("page loaded", slog.String("path", page.Path))
	}

	s.synchronizeInBackground(ctx, page)
	return page, nil
}

func (s *Service) loadOrCreate(page *models.Page) (*models.Document, bool, error) {
	unlock := s.locks.Lock(page.Path)
	defer unlock()

	doc, err := s.store.Load(page.Path)
	if err == nil {
		return doc, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}

	content, err := s.renderPage(page.Date)
	if err != nil {
		return nil, false, err
	}
	doc, err = s.store.CreateAndLoad(page.Path, []byte(content))
	if errors.Is(err, apperr.ErrAlreadyExists) {
		// Another process created the page first; take the load path.
		doc, err = s.store.Load(page.Path)
		if err != nil {
			return nil, false, err
		}
		return doc, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (s *Service) renderPage(date models.CalendarDate) (string, error) {
	headerTpl, err := s.table.Lookup(s.scope, templates.EntryHeader)
	if err != nil {
		return "", err
	}
	pageTpl, err := s.files.Page()
	if err != nil {
		return "", err
	}
	header := templates.Render(headerTpl.Template, templates.DateVars(date, s.locale))
	vars := templates.DateVars(date, s.locale)
	vars["header"] = header
	return templates.Render(pageTpl, vars), nil
}

func (s *Service) synchronizeInBackground(ctx context.Context, page *models.Page) {
	if s.sync == nil {
		return
	}
	target := &models.Page{Date: page.Date, Path: page.Path, NotesFolder: page.NotesFolder}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		added, err := s.sync.Synchronize(context.WithoutCancel(ctx), target)
		if err != nil {
			s.logger.Warn("refsync: failed", slog.String("path", target.Path), slog.String("error", err.Error()))
			return
		}
		if len(added) > 0 {
			s.logger.Debug("refsync: background pass done", slog.String("path", target.Path), slog.Any("files", added))
		}
	}()
}

// Wait blocks until all background synchronizations have finished.
func (s *Service) Wait() {
	s.background.Wait()
}

// AddMemo inserts the input's memo into page. Input without memo and flags
// leaves the page untouched. The updated page is persisted before it is returned.
func (s *Service) AddMemo(ctx context.Context, page *models.Page, in models.Input) (*models.Page, error) {
	if !in.HasPayload() {
		return page, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tpl, extra, err := s.memoTemplate(in.Flags)
	if err != nil {
		return nil, err
	}
	content := in.Memo
	for _, f := range extra {
		content = strings.TrimSpace(content + " #" + f)
	}
	vars := templates.TimeVars(templates.DateVars(page.Date, s.locale), s.now())
	vars["content"] = content
	line := templates.Render(tpl.Template, vars)

	unlock := s.locks.Lock(page.Path)
	defer unlock()

	doc, err := s.store.Load(page.Path)
	if err != nil {
		return nil, err
	}
	doc.Content = templates.Insert(doc.Content, tpl.After, line)
	if err := s.store.Save(doc); err != nil {
		var ioErr *apperr.IOError
		if errors.As(err, &ioErr) {
			return nil, err
		}
		return nil, &apperr.IOError{Op: "write", Path: page.Path, Err: err}
	}

	updated := *page
	updated.Content = doc.Content
	s.logger.Debug("memo added", slog.String("path", page.Path), slog.String("template", tpl.Key()))
	return &updated, nil
}

// memoTemplate picks the template of the first flag that has one
// ("entry.<flag>"), otherwise the memo template. Flags without a template
// are returned so they can be kept as tags.
func (s *Service) memoTemplate(flags []string) (models.InlineTemplate, []string, error) {
	var chosen *models.InlineTemplate
	var extra []string
	for _, f := range flags {
		if chosen == nil && isEntryPurpose(f) && s.table.Has(s.scope, "entry."+f) {
			tpl, err := s.table.Lookup(s.scope, "entry."+f)
			if err != nil {
				return models.InlineTemplate{}, nil, err
			}
			chosen = &tpl
			continue
		}
		extra = append(extra, f)
	}
	if chosen != nil {
		return *chosen, extra, nil
	}
	tpl, err := s.table.Lookup(s.scope, templates.EntryMemo)
	if err != nil {
		return models.InlineTemplate{}, nil, err
	}
	return tpl, extra, nil
}

// isEntryPurpose keeps flags like "header" or "file" from selecting structural templates.
func isEntryPurpose(flag string) bool {
	switch "entry." + flag {
	case templates.EntryHeader, templates.EntryFile, templates.EntryMemo:
		return false
	}
	return true
}

// CreateNote creates a note file named after title in page's notes folder and
// links it from the page, using title as the link label. An existing note of
// the same normalized name is reused. The page lock is held from the note's
// creation to the link insert, so a concurrent synchronization either misses
// the file or finds the link already written.
func (s *Service) CreateNote(ctx context.Context, page *models.Page, title string) (*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	file := paths.Normalize(title)
	if file == "" {
		return nil, fmt.Errorf("note title %q has no usable characters", title)
	}
	if filepath.Ext(file) == "" {
		file += "." + s.resolver.Ext()
	}
	notePath := filepath.Join(page.NotesFolder, file)

	content, err := s.renderNote(title)
	if err != nil {
		return nil, err
	}
	fileTpl, err := s.table.Lookup(s.scope, templates.EntryFile)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(page.Path)
	defer unlock()

	doc, err := s.store.Load(page.Path)
	if err != nil {
		return nil, err
	}
	note, err := s.store.CreateAndLoad(notePath, []byte(content))
	if errors.Is(err, apperr.ErrAlreadyExists) {
		note, err = s.store.Load(notePath)
	}
	if err != nil {
		return nil, err
	}

	link := paths.NoteLink(page.Path, file)
	if strings.Contains(string(doc.Content), link) {
		return note, nil
	}
	line := templates.Render(fileTpl.Template, templates.Vars{"label": title, "link": link})
	doc.Content = templates.Insert(doc.Content, fileTpl.After, line)
	if err := s.store.Save(doc); err != nil {
		return nil, err
	}
	s.logger.Info("note created", slog.String("path", notePath), slog.String("page", page.Path))
	return note, nil
}

func (s *Service) renderNote(title string) (string, error) {
	headerTpl, err := s.table.Lookup(s.scope, templates.NoteHeader)
	if err != nil {
		return "", err
	}
	noteTpl, err := s.files.Note()
	if err != nil {
		return "", err
	}
	header := templates.Render(headerTpl.Template, templates.Vars{"content": title})
	return templates.Render(noteTpl, templates.Vars{"content": header}), nil
}
