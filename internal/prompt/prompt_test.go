package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/starford/journal/internal/apperr"
)

func TestText(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("tomorrow call mum\n"), &out)
	got, err := p.Text("Day")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "tomorrow call mum" {
		t.Errorf("got %q", got)
	}
	if out.String() != "Day: " {
		t.Errorf("prompt = %q", out.String())
	}
}

func TestText_LastLineWithoutNewline(t *testing.T) {
	p := New(strings.NewReader("yesterday"), &bytes.Buffer{})
	got, err := p.Text("Day")
	if err != nil || got != "yesterday" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestText_EmptyCancels(t *testing.T) {
	for _, in := range []string{"", "\n", "   \n"} {
		p := New(strings.NewReader(in), &bytes.Buffer{})
		if _, err := p.Text("Day"); !errors.Is(err, apperr.ErrCancelled) {
			t.Errorf("input %q: expected ErrCancelled, got %v", in, err)
		}
	}
}

func TestPick(t *testing.T) {
	items := []string{"2024-01-31  Wednesday", "2024-01-30  Tuesday", "2024-01-29  Monday"}

	p := New(strings.NewReader("2\n"), &bytes.Buffer{})
	if i, err := p.Pick("Page", items); err != nil || i != 1 {
		t.Errorf("numeric pick = %d, %v", i, err)
	}

	p = New(strings.NewReader("Mon\n"), &bytes.Buffer{})
	if i, err := p.Pick("Page", items); err != nil || i != 2 {
		t.Errorf("fuzzy pick = %d, %v", i, err)
	}

	p = New(strings.NewReader("\n"), &bytes.Buffer{})
	if _, err := p.Pick("Page", items); !errors.Is(err, apperr.ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}

func TestChoose_Errors(t *testing.T) {
	items := []string{"a", "b"}
	if _, err := Choose("3", items); err == nil {
		t.Error("out of range should fail")
	}
	if _, err := Choose("zzz", items); err == nil {
		t.Error("no match should fail")
	}
}

func TestPick_EmptyListCancels(t *testing.T) {
	p := New(strings.NewReader("1\n"), &bytes.Buffer{})
	if _, err := p.Pick("Page", nil); !errors.Is(err, apperr.ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}
