package paths

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/journal/internal/models"
)

func TestResolve(t *testing.T) {
	r := NewResolver("")
	res := r.Resolve(models.NewDate(2024, time.March, 5), "/j")
	if res.PagePath != filepath.Join("/j", "2024", "03", "05.md") {
		t.Errorf("page = %q", res.PagePath)
	}
	if res.NotesFolder != filepath.Join("/j", "2024", "03", "05") {
		t.Errorf("notes = %q", res.NotesFolder)
	}
}

func TestResolve_CustomExt(t *testing.T) {
	r := NewResolver(".txt")
	res := r.Resolve(models.NewDate(2024, time.March, 5), "")
	if res.PagePath != filepath.Join("2024", "03", "05.txt") {
		t.Errorf("page = %q", res.PagePath)
	}
}

func TestResolve_Rollover(t *testing.T) {
	r := NewResolver("md")
	cases := []struct {
		from   models.CalendarDate
		offset int
		want   string
	}{
		{models.NewDate(2024, time.January, 31), 1, filepath.Join("b", "2024", "02", "01.md")},
		{models.NewDate(2023, time.December, 31), 1, filepath.Join("b", "2024", "01", "01.md")},
		{models.NewDate(2024, time.February, 28), 1, filepath.Join("b", "2024", "02", "29.md")},
		{models.NewDate(2023, time.February, 28), 1, filepath.Join("b", "2023", "03", "01.md")},
		{models.NewDate(2024, time.March, 1), -1, filepath.Join("b", "2024", "02", "29.md")},
		{models.NewDate(2024, time.January, 1), -1, filepath.Join("b", "2023", "12", "31.md")},
		{models.NewDate(2024, time.January, 15), 400, filepath.Join("b", "2025", "02", "18.md")},
	}
	for _, c := range cases {
		got := r.Resolve(c.from.AddDays(c.offset), "b").PagePath
		if got != c.want {
			t.Errorf("%s%+d: got %q, want %q", c.from, c.offset, got, c.want)
		}
	}
}

func TestResolve_Deterministic(t *testing.T) {
	r := NewResolver("md")
	d := models.NewDate(2024, time.June, 9)
	if r.Resolve(d, "x") != r.Resolve(d, "x") {
		t.Error("resolve is not deterministic")
	}
}

func TestDateFromPath(t *testing.T) {
	r := NewResolver("md")
	d, ok := r.DateFromPath(filepath.Join("2024", "02", "29.md"))
	if !ok || d.String() != "2024-02-29" {
		t.Errorf("got %v %v", d, ok)
	}
	for _, bad := range []string{"2024/02/30.md", "2024/02/29.txt", "notes.md", "2024/02/29/x.md"} {
		if _, ok := r.DateFromPath(bad); ok {
			t.Errorf("DateFromPath(%q) should fail", bad)
		}
	}
}

func TestPageForNotesFile(t *testing.T) {
	r := NewResolver("md")
	d, ok := r.PageForNotesFile("2024/02/29/meeting.md")
	if !ok || d.String() != "2024-02-29" {
		t.Errorf("got %v %v", d, ok)
	}
	if _, ok := r.PageForNotesFile("2024/02/29.md"); ok {
		t.Error("page path is not a notes file")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Meeting notes: Q1!!": "Meeting_notes_Q1",
		"  a -- b  ":          "a_b",
		"Plan v2.MD":          "Plan_v2.md",
		"__x__":               "x",
		"Café crème":          "Café_crème",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDenormalize(t *testing.T) {
	if got := Denormalize("Meeting_notes_Q1.md"); got != "Meeting notes Q1" {
		t.Errorf("got %q", got)
	}
	if got := Denormalize("draft-2.txt"); got != "draft 2" {
		t.Errorf("got %q", got)
	}
}

func TestNoteLinkRoundTrip(t *testing.T) {
	page := filepath.Join("2024", "01", "31.md")
	link := NoteLink(page, "my file.md")
	if link != "./31/my%20file.md" {
		t.Errorf("link = %q", link)
	}
	file, ok := LinkedFile(page, link)
	if !ok || file != "my file.md" {
		t.Errorf("LinkedFile = %q %v", file, ok)
	}
	if _, ok := LinkedFile(page, "./30/other.md"); ok {
		t.Error("link into another day's folder should not match")
	}
	if f, ok := LinkedFile(page, "31/plain.md"); !ok || f != "plain.md" {
		t.Errorf("relative link without dot: %q %v", f, ok)
	}
}
