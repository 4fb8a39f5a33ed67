// Package prompt asks the user for input on the terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/term"

	"github.com/starford/journal/internal/apperr"
)

// Prompter reads answers line by line. An empty answer or end of input
// cancels the prompt with apperr.ErrCancelled.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// New creates a Prompter over arbitrary streams.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// NewTerminal creates a Prompter on stdin, writing prompts to stderr.
func NewTerminal() *Prompter {
	p := New(os.Stdin, os.Stderr)
	p.interactive = term.IsTerminal(int(os.Stdin.Fd()))
	return p
}

// Interactive reports whether the prompter reads from a terminal.
func (p *Prompter) Interactive() bool { return p.interactive }

// Text asks for one line of free text.
func (p *Prompter) Text(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	return p.readLine()
}

// Pick shows items as a numbered list and returns the index of the chosen
// one. The answer is either a number or a fuzzy filter; the best match wins.
func (p *Prompter) Pick(label string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, apperr.ErrCancelled
	}
	for i, it := range items {
		fmt.Fprintf(p.out, "%3d  %s\n", i+1, it)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	answer, err := p.readLine()
	if err != nil {
		return -1, err
	}
	return Choose(answer, items)
}

// Choose resolves an answer against items: a 1-based number or a fuzzy pattern.
func Choose(answer string, items []string) (int, error) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(items) {
			return -1, fmt.Errorf("choice %d out of range 1-%d", n, len(items))
		}
		return n - 1, nil
	}
	matches := fuzzy.Find(answer, items)
	if len(matches) == 0 {
		return -1, fmt.Errorf("nothing matches %q", answer)
	}
	return matches[0].Index, nil
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", apperr.ErrCancelled
	}
	return line, nil
}
