// Package dateparse turns date phrases such as "yesterday", "+3", "next wed",
// "friday last week" or "2023-01-15" into a day offset or an absolute date.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/starford/journal/internal/apperr"
	"github.com/starford/journal/internal/models"
)

var (
	offsetRe   = regexp.MustCompile(`^[+-]?\d+$`)
	isoRe      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	monthDayRe = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})$`)

	keywords = map[string]int{
		"today":     0,
		"tomorrow":  1,
		"yesterday": -1,
	}

	weekdays = map[string]time.Weekday{
		"sunday": time.Sunday, "sun": time.Sunday,
		"monday": time.Monday, "mon": time.Monday,
		"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
		"wednesday": time.Wednesday, "wed": time.Wednesday,
		"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
		"friday": time.Friday, "fri": time.Friday,
		"saturday": time.Saturday, "sat": time.Saturday,
	}
)

// Result is either a relative day offset or an absolute date.
type Result struct {
	Offset int
	Date   *models.CalendarDate
}

// Absolute reports whether the phrase named a specific calendar date.
func (r Result) Absolute() bool { return r.Date != nil }

// Resolve returns the calendar date the result designates relative to today.
func (r Result) Resolve(today models.CalendarDate) models.CalendarDate {
	if r.Date != nil {
		return *r.Date
	}
	return today.AddDays(r.Offset)
}

// IsWeekday reports whether word names a day of the week.
func IsWeekday(word string) bool {
	_, ok := weekdays[strings.ToLower(word)]
	return ok
}

// IsDirection reports whether word is one of the weekday prefixes "next" or "last".
func IsDirection(word string) bool {
	w := strings.ToLower(word)
	return w == "next" || w == "last"
}

// IsWeekQualifier reports whether the two words form "this week", "last week" or "next week".
func IsWeekQualifier(first, second string) bool {
	f, s := strings.ToLower(first), strings.ToLower(second)
	return s == "week" && (f == "this" || f == "last" || f == "next")
}

// Parse interprets token relative to today. Grammars are tried in order:
// signed integer, keyword, weekday phrase, ISO date.
func Parse(token string, today models.CalendarDate) (Result, error) {
	fields := strings.Fields(strings.ToLower(token))
	if len(fields) == 0 {
		return Result{}, &apperr.ParseError{Token: token}
	}
	phrase := strings.Join(fields, " ")

	if len(fields) == 1 {
		if offsetRe.MatchString(phrase) {
			n, err := strconv.Atoi(phrase)
			if err != nil {
				return Result{}, &apperr.ParseError{Token: token}
			}
			return Result{Offset: n}, nil
		}
		if n, ok := keywords[phrase]; ok {
			return Result{Offset: n}, nil
		}
	}

	if n, ok := parseWeekday(fields, today); ok {
		return Result{Offset: n}, nil
	}

	if len(fields) == 1 {
		if d, ok := parseDate(phrase, today); ok {
			return Result{Offset: today.DaysUntil(d), Date: &d}, nil
		}
	}

	return Result{}, &apperr.ParseError{Token: strings.TrimSpace(token)}
}

// parseWeekday handles "wed", "next wed", "last wed" and "wed last week".
//
// A bare weekday equal to today's resolves to the same day next week; "last"
// with today's weekday goes back a full week.
func parseWeekday(fields []string, today models.CalendarDate) (int, bool) {
	switch len(fields) {
	case 1:
		wd, ok := weekdays[fields[0]]
		if !ok {
			return 0, false
		}
		return forward(today.Weekday(), wd), true
	case 2:
		wd, ok := weekdays[fields[1]]
		if !ok {
			return 0, false
		}
		switch fields[0] {
		case "next":
			return forward(today.Weekday(), wd), true
		case "last":
			return -backward(today.Weekday(), wd), true
		}
		return 0, false
	case 3:
		wd, ok := weekdays[fields[0]]
		if !ok || fields[2] != "week" {
			return 0, false
		}
		shift := 0
		switch fields[1] {
		case "this":
		case "last":
			shift = -7
		case "next":
			shift = 7
		default:
			return 0, false
		}
		return isoIndex(wd) - isoIndex(today.Weekday()) + shift, true
	}
	return 0, false
}

// forward returns the days until the next occurrence of want, in 1..7.
func forward(from, want time.Weekday) int {
	n := (int(want) - int(from) + 7) % 7
	if n == 0 {
		n = 7
	}
	return n
}

// backward returns the days since the previous occurrence of want, in 1..7.
func backward(from, want time.Weekday) int {
	n := (int(from) - int(want) + 7) % 7
	if n == 0 {
		n = 7
	}
	return n
}

// isoIndex maps Monday..Sunday to 0..6.
func isoIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func parseDate(s string, today models.CalendarDate) (models.CalendarDate, bool) {
	var year, month, day int
	if m := isoRe.FindStringSubmatch(s); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
	} else if m := monthDayRe.FindStringSubmatch(s); m != nil {
		year = today.Year
		month, _ = strconv.Atoi(m[1])
		day, _ = strconv.Atoi(m[2])
	} else {
		return models.CalendarDate{}, false
	}
	d := models.NewDate(year, time.Month(month), day)
	// Reject dates that only exist through rollover, e.g. 2023-02-30.
	if d.Year != year || int(d.Month) != month || d.Day != day {
		return models.CalendarDate{}, false
	}
	return d, true
}
