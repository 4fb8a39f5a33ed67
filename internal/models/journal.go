// Package models defines the domain types for the journal.
package models

import (
	"fmt"
	"time"
)

// CalendarDate is a (year, month, day) triple without a time of day.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// NewDate builds a normalized CalendarDate; out-of-range months and days
// roll over into the following month or year.
func NewDate(year int, month time.Month, day int) CalendarDate {
	return DateOf(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

// Time returns noon UTC of the date. Noon keeps day arithmetic clear of DST edges.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later (earlier for negative n).
func (d CalendarDate) AddDays(n int) CalendarDate {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// DaysUntil returns the signed number of days from d to other.
func (d CalendarDate) DaysUntil(other CalendarDate) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

// Weekday returns the day of the week.
func (d CalendarDate) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// IsZero reports whether d is the zero value.
func (d CalendarDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String formats the date as YYYY-MM-DD.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Input is the tokenized form of a line of user text.
//
// Date is nil for relative input ("+2", "tomorrow", "next wed"). For explicit
// dates Offset still holds the distance from the day the input was parsed.
type Input struct {
	Raw    string
	Offset int
	Date   *CalendarDate
	Memo   string
	Flags  []string
}

// HasPayload reports whether the input carries a memo or at least one flag.
func (in Input) HasPayload() bool {
	return in.Memo != "" || len(in.Flags) > 0
}

// Page is a daily journal page. Paths are relative to the journal base.
type Page struct {
	Date        CalendarDate `json:"date"`
	Path        string       `json:"path"`
	NotesFolder string       `json:"notes_folder"`
	// Exists is true when the page was loaded rather than created by this call.
	Exists  bool   `json:"exists"`
	Content []byte `json:"-"`
}

// Document is a file as handed out by the document store.
type Document struct {
	Path     string `json:"path"`
	Content  []byte `json:"-"`
	Checksum string `json:"checksum"`
}

// PageMetadata is a lightweight representation returned by list operations.
type PageMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InlineTemplate is a short snippet used for headers, memos, tasks and file links.
// ID has the form "<page-kind>.<purpose>", e.g. "entry.memo".
type InlineTemplate struct {
	Scope    string `yaml:"scope" json:"scope"`
	ID       string `yaml:"id" json:"id"`
	Template string `yaml:"template" json:"template"`
	After    string `yaml:"after" json:"after"`
}

// Key returns the lookup key "<scope>.<page-kind>.<purpose>".
func (t InlineTemplate) Key() string {
	return t.Scope + "." + t.ID
}
