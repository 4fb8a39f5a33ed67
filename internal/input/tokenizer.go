// Package input splits a line of user text into a date phrase, a memo and flags.
package input

import (
	"strings"
	"time"

	"github.com/starford/journal/internal/dateparse"
	"github.com/starford/journal/internal/models"
)

// DefaultSigil marks a word as a flag, e.g. "#task".
const DefaultSigil = "#"

// Tokenizer turns raw text into models.Input.
type Tokenizer struct {
	Sigil string
	Now   func() time.Time
}

// NewTokenizer returns a Tokenizer using sigil (DefaultSigil when empty) and the process clock.
func NewTokenizer(sigil string) *Tokenizer {
	if sigil == "" {
		sigil = DefaultSigil
	}
	return &Tokenizer{Sigil: sigil, Now: time.Now}
}

// Tokenize parses raw. Empty input means today with no memo. The only error
// returned is the *apperr.ParseError of an unrecognized date phrase.
func (t *Tokenizer) Tokenize(raw string) (models.Input, error) {
	in := models.Input{Raw: raw}
	words := strings.Fields(raw)
	if len(words) == 0 {
		return in, nil
	}

	n := phraseLength(words)
	res, err := dateparse.Parse(strings.Join(words[:n], " "), models.DateOf(t.now()))
	if err != nil {
		return models.Input{}, err
	}
	in.Offset = res.Offset
	in.Date = res.Date
	in.Memo, in.Flags = t.splitFlags(words[n:])
	return in, nil
}

// Today returns the current calendar date according to the tokenizer's clock.
func (t *Tokenizer) Today() models.CalendarDate {
	return models.DateOf(t.now())
}

func (t *Tokenizer) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

// phraseLength returns how many leading words form the date phrase.
func phraseLength(words []string) int {
	if len(words) >= 2 && dateparse.IsDirection(words[0]) && dateparse.IsWeekday(words[1]) {
		return 2
	}
	if len(words) >= 3 && dateparse.IsWeekday(words[0]) && dateparse.IsWeekQualifier(words[1], words[2]) {
		return 3
	}
	return 1
}

func (t *Tokenizer) splitFlags(words []string) (string, []string) {
	sigil := t.Sigil
	if sigil == "" {
		sigil = DefaultSigil
	}
	var memo []string
	var flags []string
	seen := make(map[string]struct{})
	for _, w := range words {
		if len(w) > len(sigil) && strings.HasPrefix(w, sigil) {
			f := strings.ToLower(strings.TrimPrefix(w, sigil))
			if _, dup := seen[f]; !dup {
				seen[f] = struct{}{}
				flags = append(flags, f)
			}
			continue
		}
		memo = append(memo, w)
	}
	return strings.Join(memo, " "), flags
}
