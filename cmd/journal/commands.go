package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/starford/journal/internal"
	"github.com/starford/journal/internal/editor"
	"github.com/starford/journal/internal/prompt"
	"github.com/starford/journal/internal/templates"
)

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "open",
			Usage:     "Open or create a day page, optionally adding a memo",
			ArgsUsage: "[date phrase] [memo] [#flags]",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "edit", Aliases: []string{"e"}, Usage: "Show the page in the editor"},
			},
			Action: withApp(openPage),
		},
		{
			Name:      "memo",
			Usage:     "Add a memo to a day page",
			ArgsUsage: "<date phrase> <memo> [#flags]",
			Action:    withApp(addMemo),
		},
		{
			Name:      "note",
			Usage:     "Create a note in a day's notes folder and link it from the page",
			ArgsUsage: "<title>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "day", Aliases: []string{"d"}, Value: "today", Usage: "Date phrase of the page"},
				&cli.BoolFlag{Name: "edit", Aliases: []string{"e"}, Usage: "Show the note in the editor"},
			},
			Action: withApp(createNote),
		},
		{
			Name:      "sync",
			Usage:     "Link files dropped into a day's notes folder",
			ArgsUsage: "[date phrase]",
			Action:    withApp(syncPage),
		},
		{
			Name:  "list",
			Usage: "List indexed pages",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "month", Aliases: []string{"m"}, Usage: "Restrict to YYYY or YYYY-MM"},
				&cli.IntFlag{Name: "limit", Value: 50, Usage: "Maximum number of pages"},
				&cli.BoolFlag{Name: "pick", Aliases: []string{"p"}, Usage: "Choose a page and show it in the editor"},
			},
			Action: withApp(listPages),
		},
		{
			Name:      "search",
			Usage:     "Full-text search over day pages",
			ArgsUsage: "<query>",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum number of results"},
			},
			Action: withApp(search),
		},
		{
			Name:   "init",
			Usage:  "Write a default config file and install the page and note templates",
			Action: initJournal,
		},
		{
			Name:   "serve",
			Usage:  "Run the HTTP API, file watcher and daily page job",
			Action: serve,
		},
		{
			Name:   "mcp",
			Usage:  "Serve the journal over MCP on stdio",
			Action: serveMCP,
		},
	}
}

func openPage(ctx context.Context, cmd *cli.Command, a *internal.App) error {
	raw := strings.Join(cmd.Args().Slice(), " ")
	if raw == "" {
		p := prompt.NewTerminal()
		if !p.Interactive() {
			raw = "today"
		} else {
			answer, err := p.Text("Day (e.g. today, next fri, 2024-01-31)")
			if err != nil {
				return err
			}
			raw = answer
		}
	}
	page, err := a.Journal.Enter(ctx, raw)
	if err != nil {
		return err
	}
	printPage(page.Path, page.Created)
	if cmd.Bool("edit") {
		return show(ctx, a, page.Path)
	}
	return nil
}

func addMemo(ctx context.Context, cmd *cli.Command, a *internal.App) error {
	if cmd.Args().Len() < 2 {
		return errors.New("memo: a date phrase and a memo are required")
	}
	page, err := a.Journal.Enter(ctx, strings.Join(cmd.Args().Slice(), " "))
	if err != nil {
		return err
	}
	printPage(page.Path, page.Created)
	return nil
}

func createNote(ctx context.Context, cmd *cli.Command, a *internal.App) error {
	title := strings.Join(cmd.Args().Slice(), " ")
	note, err := a.Journal.CreateNote(ctx, cmd.String("day"), title)
	if err != nil {
		return err
	}
	fmt.Fprintf(color.Output, "%s %s\n", color.GreenString("note"), note.Path)
	if cmd.Bool("edit") {
		return show(ctx, a, note.Path)
	}
	return nil
}

func syncPage(ctx context.Context, cmd *cli.Command, a *internal.App) error {
	raw := strings.Join(cmd.Args().Slice(), " ")
	if raw == "" {
		raw = "today"
	}
	added, err := a.Journal.Sync(ctx, raw)
	if err != nil {
		return err
	}
	if len(added) == 0 {
		fmt.Fprintln(color.Output, color.New(color.Faint).Sprint("nothing to link"))
		return nil
	}
	for _, f := range added {
		fmt.Fprintf(color.Output, "%s %s\n", color.GreenString("linked"), f)
	}
	return nil
}

func listPages(ctx context.Context, cmd *cli.Command, a *internal.App) error {
	items, err := a.Journal.ListPages(ctx, cmd.String("month"), int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(color.Output, color.New(color.Faint).Sprint("no pages"))
		return nil
	}
	printPageTable(items)

	if !cmd.Bool("pick") {
		return nil
	}
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.Date + " " + it.Title
	}
	i, err := prompt.NewTerminal().Pick("Page", labels)
	if err != nil {
		return err
	}
	return show(ctx, a, items[i].Path)
}

func search(ctx context.Context, cmd *cli.Command, a *internal.App) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("search: a query is required")
	}
	results, err := a.Journal.Search(ctx, query, int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(color.Output, color.New(color.Faint).Sprint("no matches"))
		return nil
	}
	printSearchTable(results)
	return nil
}

func initJournal(ctx context.Context, cmd *cli.Command) error {
	path, err := homedir.Expand(cmd.String("config"))
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		data, err := yaml.Marshal(internal.NewDefaultConfig())
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(color.Output, "%s %s\n", color.GreenString("config"), path)
	} else {
		fmt.Fprintf(color.Output, "%s %s %s\n", color.GreenString("config"), path, color.New(color.Faint).Sprint("(kept)"))
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(cfg.App, os.Stderr)
	if err := templates.Bootstrap(ctx, cfg.Journal.TemplatesDir, logger); err != nil {
		return err
	}
	fmt.Fprintf(color.Output, "%s %s\n", color.GreenString("templates"), cfg.Journal.TemplatesDir)
	fmt.Fprintf(color.Output, "%s %s\n", color.GreenString("journal"), cfg.Journal.Base)
	return nil
}

func show(ctx context.Context, a *internal.App, rel string) error {
	abs, err := a.Journal.Abs(rel)
	if err != nil {
		return err
	}
	return editor.NewLauncher(a.Config.Journal.Editor, a.Config.Journal.OpenInNewGroup).Show(ctx, abs)
}
