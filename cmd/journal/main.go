package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v3"

	"github.com/starford/journal/internal"
	"github.com/starford/journal/internal/apperr"
	pkgconfig "github.com/starford/journal/pkg/config"
)

var version = "dev"

const defaultConfigPath = "~/.config/journal/config.yaml"

// loadConfig reads the config file named by --config; a missing file yields defaults.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	path, err := homedir.Expand(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// withApp loads the config, builds the journal and runs fn with it. Background
// work is joined before returning.
func withApp(fn func(ctx context.Context, cmd *cli.Command, a *internal.App) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logCfg := cfg.App
		if !logCfg.DevLogging && logCfg.LogLevel < slog.LevelWarn {
			logCfg.LogLevel = slog.LevelWarn
		}
		logger := internal.NewLogger(logCfg, os.Stderr)
		slog.SetDefault(logger)

		a, err := internal.Build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, cmd, a)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func main() {
	cmd := &cli.Command{
		Name:    "journal",
		Usage:   "Date-addressed markdown journal with memos, tasks and per-day notes folders",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: defaultConfigPath,
				Value:       defaultConfigPath,
				Sources:     cli.EnvVars("JOURNAL_CONFIG_FILE"),
			},
		},
		Commands: commands(),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if apperr.IsCancelled(err) {
			return
		}
		_, _ = color.New(color.FgRed).Fprintln(os.Stderr, "journal:", err)
		os.Exit(1)
	}
}
