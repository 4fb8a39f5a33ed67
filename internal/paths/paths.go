// Package paths maps calendar dates to page and notes-folder paths.
package paths

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/starford/journal/internal/models"
)

// DefaultExt is the page file extension used when none is configured.
const DefaultExt = "md"

// Separator replaces runs of non-alphanumeric characters in note file names.
const Separator = "_"

var nonAlnumRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Resolution holds the paths derived from one date.
type Resolution struct {
	PagePath    string
	NotesFolder string
}

// Resolver resolves dates against a file extension.
type Resolver struct {
	ext string
}

// NewResolver creates a Resolver; ext may carry a leading dot.
func NewResolver(ext string) *Resolver {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = DefaultExt
	}
	return &Resolver{ext: ext}
}

// Ext returns the page extension without the dot.
func (r *Resolver) Ext() string { return r.ext }

// Resolve returns base/YYYY/MM/DD.<ext> and base/YYYY/MM/DD.
// No I/O is performed.
func (r *Resolver) Resolve(date models.CalendarDate, base string) Resolution {
	dir := filepath.Join(base, fmt.Sprintf("%04d", date.Year), fmt.Sprintf("%02d", int(date.Month)))
	day := fmt.Sprintf("%02d", date.Day)
	return Resolution{
		PagePath:    filepath.Join(dir, day+"."+r.ext),
		NotesFolder: filepath.Join(dir, day),
	}
}

// DateFromPath parses a page path relative to the base ("2024/01/31.md").
func (r *Resolver) DateFromPath(rel string) (models.CalendarDate, bool) {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(rel)), "/")
	if len(parts) != 3 {
		return models.CalendarDate{}, false
	}
	day, ok := strings.CutSuffix(parts[2], "."+r.ext)
	if !ok {
		return models.CalendarDate{}, false
	}
	return parseYMD(parts[0], parts[1], day)
}

// PageForNotesFile maps a note file "YYYY/MM/DD/<file>" to its page date.
func (r *Resolver) PageForNotesFile(rel string) (models.CalendarDate, bool) {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(rel)), "/")
	if len(parts) != 4 {
		return models.CalendarDate{}, false
	}
	return parseYMD(parts[0], parts[1], parts[2])
}

func parseYMD(ys, ms, ds string) (models.CalendarDate, bool) {
	if len(ys) != 4 || len(ms) != 2 || len(ds) != 2 {
		return models.CalendarDate{}, false
	}
	y, err1 := strconv.Atoi(ys)
	m, err2 := strconv.Atoi(ms)
	d, err3 := strconv.Atoi(ds)
	if err1 != nil || err2 != nil || err3 != nil {
		return models.CalendarDate{}, false
	}
	date := models.NewDate(y, time.Month(m), d)
	if date.Year != y || int(date.Month) != m || date.Day != d {
		return models.CalendarDate{}, false
	}
	return date, true
}

// PageBaseName returns the page file name without extension ("31").
func PageBaseName(pagePath string) string {
	base := filepath.Base(pagePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Normalize turns a user supplied note name into a file name: runs of
// non-alphanumeric characters become a single separator and leading or
// trailing separators are dropped. The extension, if any, is kept.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if ext != "" && nonAlnumRe.MatchString(strings.TrimPrefix(ext, ".")) {
		// Not an extension, e.g. "v1. draft".
		stem, ext = name, ""
	}
	stem = strings.Trim(nonAlnumRe.ReplaceAllString(stem, Separator), Separator)
	return stem + strings.ToLower(ext)
}

// Denormalize turns a note file name into a display label.
func Denormalize(file string) string {
	stem := strings.TrimSuffix(file, filepath.Ext(file))
	words := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '_' || r == '-'
	})
	return strings.Join(words, " ")
}

// NoteLink returns the page-relative link "./<page-base-name>/<file>".
func NoteLink(pagePath, file string) string {
	return "./" + path.Join(PageBaseName(pagePath), url.PathEscape(file))
}

// LinkedFile returns the note file a link points to if the link targets the
// notes folder of pagePath.
func LinkedFile(pagePath, link string) (string, bool) {
	link = strings.TrimSpace(link)
	if i := strings.IndexAny(link, "#?"); i >= 0 {
		link = link[:i]
	}
	if unescaped, err := url.PathUnescape(link); err == nil {
		link = unescaped
	}
	link = strings.TrimPrefix(link, "./")
	dir, file := path.Split(link)
	if file == "" || strings.TrimSuffix(dir, "/") != PageBaseName(pagePath) {
		return "", false
	}
	return file, true
}
