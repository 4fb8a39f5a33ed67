// Package refsync reconciles a day's page with the files present in its notes folder.
package refsync

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/sync/errgroup"

	"github.com/starford/journal/internal/models"
	"github.com/starford/journal/internal/paths"
	"github.com/starford/journal/internal/storage"
	"github.com/starford/journal/internal/templates"
)

var (
	md             = goldmark.New()
	placeholderRe  = regexp.MustCompile(`\\\{[a-z]+\\\}`)
	quotedLinkSlot = regexp.QuoteMeta("{link}")
)

// Synchronizer appends links for note files that the page does not reference yet.
type Synchronizer struct {
	store  storage.Provider
	locks  *storage.PathLocks
	table  *templates.Table
	scope  string
	logger *slog.Logger
}

// New creates a Synchronizer. locks must be shared with every other writer of pages.
func New(store storage.Provider, locks *storage.PathLocks, table *templates.Table, scope string, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{store: store, locks: locks, table: table, scope: scope, logger: logger}
}

// Synchronize links every file in page's notes folder that the page body does
// not reference yet and returns the names of the files it linked. Existing
// links are never removed or duplicated, so a second run without changes in
// between is a no-op.
func (s *Synchronizer) Synchronize(ctx context.Context, page *models.Page) ([]string, error) {
	tpl, err := s.table.Lookup(s.scope, templates.EntryFile)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(page.Path)
	defer unlock()

	var (
		doc        *models.Document
		referenced map[string]struct{}
		files      []string
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.store.Load(page.Path)
		if err != nil {
			return err
		}
		if err := gCtx.Err(); err != nil {
			return err
		}
		doc = d
		referenced = referencedFiles(page.Path, d.Content, tpl.Template)
		return nil
	})
	g.Go(func() error {
		names, err := s.store.ListDir(page.NotesFolder)
		if err != nil {
			return err
		}
		files = names
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("refsync: %s: %w", page.Path, err)
	}

	var added []string
	var lines []string
	for _, f := range files {
		if _, ok := referenced[f]; ok {
			continue
		}
		added = append(added, f)
		lines = append(lines, templates.Render(tpl.Template, templates.Vars{
			"label": paths.Denormalize(f),
			"link":  paths.NoteLink(page.Path, f),
		}))
	}
	if len(added) == 0 {
		s.logger.Debug("refsync: up to date", slog.String("path", page.Path))
		return nil, nil
	}

	doc.Content = templates.Insert(doc.Content, tpl.After, lines...)
	if err := s.store.Save(doc); err != nil {
		return nil, fmt.Errorf("refsync: %s: %w", page.Path, err)
	}
	s.logger.Info("refsync: linked note files",
		slog.String("path", page.Path),
		slog.Int("count", len(added)))
	return added, nil
}

// Referenced returns the sorted names of the notes-folder files the page
// content links to.
func (s *Synchronizer) Referenced(pagePath string, content []byte) []string {
	var tpl string
	if t, err := s.table.Lookup(s.scope, templates.EntryFile); err == nil {
		tpl = t.Template
	}
	refs := referencedFiles(pagePath, content, tpl)
	out := make([]string, 0, len(refs))
	for f := range refs {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// referencedFiles collects the notes-folder files the page already links to.
// Lines shaped like the file-link template are matched first; any other
// markdown link or image pointing into the notes folder counts as well.
func referencedFiles(pagePath string, content []byte, fileTemplate string) map[string]struct{} {
	out := make(map[string]struct{})
	add := func(link string) {
		if f, ok := paths.LinkedFile(pagePath, link); ok {
			out[f] = struct{}{}
		}
	}

	if re := templateLineRe(fileTemplate); re != nil {
		for _, m := range re.FindAllSubmatch(content, -1) {
			add(string(m[1]))
		}
	}

	root := md.Parser().Parse(text.NewReader(content))
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			add(string(node.Destination))
		case *ast.Image:
			add(string(node.Destination))
		}
		return ast.WalkContinue, nil
	})
	return out
}

// templateLineRe turns a file-link template such as "- [{label}]({link})"
// into a line regexp capturing the link. It returns nil when the template has
// no {link} placeholder.
func templateLineRe(tpl string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(strings.TrimSpace(tpl))
	i := strings.Index(quoted, quotedLinkSlot)
	if i < 0 {
		return nil
	}
	before := placeholderRe.ReplaceAllString(quoted[:i], `.*?`)
	after := placeholderRe.ReplaceAllString(quoted[i+len(quotedLinkSlot):], `.*?`)
	re, err := regexp.Compile(`(?m)^\s*` + before + `(\S+?)` + after + `\s*$`)
	if err != nil {
		return nil
	}
	return re
}
