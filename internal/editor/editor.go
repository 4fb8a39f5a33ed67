// Package editor shows journal documents in the user's editor.
package editor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Fallback is used when neither the config nor the environment names an editor.
const Fallback = "vi"

// groupFlags opens the file in a separate window for editors that support it.
var groupFlags = map[string]string{
	"code":   "--new-window",
	"codium": "--new-window",
	"cursor": "--new-window",
	"subl":   "--new-window",
}

// Resolve returns the editor command: configured, then $VISUAL, then $EDITOR.
func Resolve(configured string) string {
	for _, c := range []string{configured, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return Fallback
}

// Launcher starts the editor on a file and waits for it to exit.
type Launcher struct {
	Command    string
	NewGroup   bool
	RunCommand func(cmd *exec.Cmd) error
}

// NewLauncher creates a Launcher for the configured editor command.
func NewLauncher(configured string, newGroup bool) *Launcher {
	return &Launcher{Command: Resolve(configured), NewGroup: newGroup}
}

// Args returns the argv used to open path.
func (l *Launcher) Args(path string) []string {
	parts := strings.Fields(l.Command)
	if len(parts) == 0 {
		parts = []string{Fallback}
	}
	if l.NewGroup {
		if flag, ok := groupFlags[filepath.Base(parts[0])]; ok {
			parts = append(parts, flag)
		}
	}
	return append(parts, path)
}

// Show opens the file at absPath in the editor, attached to the terminal.
func (l *Launcher) Show(ctx context.Context, absPath string) error {
	argv := l.Args(absPath)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	run := l.RunCommand
	if run == nil {
		run = (*exec.Cmd).Run
	}
	if err := run(cmd); err != nil {
		return fmt.Errorf("editor %s: %w", argv[0], err)
	}
	return nil
}
