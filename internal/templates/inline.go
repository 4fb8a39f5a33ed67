// Package templates provides the inline template table and the page and note
// template files.
package templates

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/journal/internal/apperr"
	"github.com/starford/journal/internal/models"
)

// DefaultScope is the scope every lookup falls back to.
const DefaultScope = "default"

// Template IDs.
const (
	EntryHeader = "entry.header"
	EntryMemo   = "entry.memo"
	EntryTask   = "entry.task"
	EntryFile   = "entry.file"
	NoteHeader  = "note.header"
)

var (
	idRe          = regexp.MustCompile(`^[a-z]+\.[a-z0-9_-]+$`)
	placeholderRe = regexp.MustCompile(`\{[a-z]+\}`)
)

// Defaults returns the built-in inline templates of the default scope.
func Defaults() []models.InlineTemplate {
	return []models.InlineTemplate{
		{Scope: DefaultScope, ID: EntryHeader, Template: "{weekday}, {date}"},
		{Scope: DefaultScope, ID: EntryMemo, Template: "- {content}", After: "## Memos"},
		{Scope: DefaultScope, ID: EntryTask, Template: "- [ ] {content}", After: "## Tasks"},
		{Scope: DefaultScope, ID: EntryFile, Template: "- [{label}]({link})", After: "## Notes"},
		{Scope: DefaultScope, ID: NoteHeader, Template: "# {content}"},
	}
}

// ValidateRecord checks a single template record.
func ValidateRecord(t models.InlineTemplate) error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Scope, validation.Required),
		validation.Field(&t.ID, validation.Required, validation.Match(idRe)),
		validation.Field(&t.Template, validation.Required),
	)
}

// Table is an immutable lookup table of inline templates keyed by
// "<scope>.<page-kind>.<purpose>".
type Table struct {
	byKey map[string]models.InlineTemplate
}

// NewTable builds a table from the built-in defaults overlaid with overrides.
func NewTable(overrides ...models.InlineTemplate) (*Table, error) {
	t := &Table{byKey: make(map[string]models.InlineTemplate)}
	for _, tpl := range Defaults() {
		t.byKey[tpl.Key()] = tpl
	}
	for _, tpl := range overrides {
		if err := ValidateRecord(tpl); err != nil {
			return nil, &apperr.ConfigError{Key: tpl.Key(), Reason: err.Error()}
		}
		t.byKey[tpl.Key()] = tpl
	}
	return t, nil
}

// Lookup finds id in scope, falling back to the default scope.
func (t *Table) Lookup(scope, id string) (models.InlineTemplate, error) {
	if scope == "" {
		scope = DefaultScope
	}
	if tpl, ok := t.byKey[scope+"."+id]; ok {
		return tpl, nil
	}
	if tpl, ok := t.byKey[DefaultScope+"."+id]; ok {
		return tpl, nil
	}
	return models.InlineTemplate{}, &apperr.ConfigError{Key: DefaultScope + "." + id}
}

// Has reports whether id resolves in scope (directly or through the default scope).
func (t *Table) Has(scope, id string) bool {
	_, err := t.Lookup(scope, id)
	return err == nil
}

// Vars holds placeholder values; keys are placeholder names without braces.
type Vars map[string]string

// Render substitutes {name} placeholders in tpl. Unknown placeholders are left as they are.
func Render(tpl string, vars Vars) string {
	return placeholderRe.ReplaceAllStringFunc(tpl, func(m string) string {
		if v, ok := vars[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

// DateVars returns the date placeholders for d in the given locale.
func DateVars(d models.CalendarDate, locale string) Vars {
	names := namesFor(locale)
	return Vars{
		"date":      d.String(),
		"year":      fmt.Sprintf("%04d", d.Year),
		"month":     fmt.Sprintf("%02d", int(d.Month)),
		"day":       fmt.Sprintf("%02d", d.Day),
		"weekday":   names.weekdays[d.Weekday()],
		"monthname": names.months[d.Month-1],
	}
}

// TimeVars adds the time-of-day placeholder.
func TimeVars(vars Vars, now time.Time) Vars {
	vars["time"] = now.Format("15:04")
	return vars
}

type localeNames struct {
	weekdays [7]string
	months   [12]string
}

var locales = map[string]localeNames{
	"en": {
		weekdays: [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		months:   [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	},
	"de": {
		weekdays: [7]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		months:   [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"},
	},
	"fr": {
		weekdays: [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
		months:   [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"},
	},
	"es": {
		weekdays: [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
		months:   [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
	},
}

// SupportedLocale reports whether locale (e.g. "de" or "de-AT") has name tables.
func SupportedLocale(locale string) bool {
	_, ok := locales[baseLanguage(locale)]
	return ok
}

func namesFor(locale string) localeNames {
	if n, ok := locales[baseLanguage(locale)]; ok {
		return n
	}
	return locales["en"]
}

func baseLanguage(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i >= 0 {
		locale = locale[:i]
	}
	return locale
}
