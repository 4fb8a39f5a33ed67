package internal

import (
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mitchellh/go-homedir"
	rcron "github.com/robfig/cron/v3"

	"github.com/starford/journal/internal/models"
	"github.com/starford/journal/internal/templates"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

var extRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig       `yaml:"app"`
	Journal   JournalConfig           `yaml:"journal"`
	Templates []models.InlineTemplate `yaml:"templates"`
	SQLite    SQLiteConfig            `yaml:"sqlite"`
	Auth      AuthConfig              `yaml:"auth"`
}

// Validate validates the configuration and expands "~" in paths.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Journal.Validate(); err != nil {
		return err
	}
	for _, t := range c.Templates {
		if err := templates.ValidateRecord(t); err != nil {
			return fmt.Errorf("templates: %s: %w", t.Key(), err)
		}
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel      slog.Level `yaml:"log_level"`
	DevLogging    bool       `yaml:"dev_logging"`
	HTTP          HTTPConfig `yaml:"http"`
	DailySchedule string     `yaml:"daily_schedule"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.DevLogging {
		c.LogLevel = slog.LevelDebug
	}
	if c.DailySchedule != "" {
		if _, err := rcron.ParseStandard(c.DailySchedule); err != nil {
			return fmt.Errorf("app.daily_schedule: %w", err)
		}
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// JournalConfig holds the location and layout of the journal.
type JournalConfig struct {
	Base           string `yaml:"base"`
	Ext            string `yaml:"ext"`
	Locale         string `yaml:"locale"`
	OpenInNewGroup bool   `yaml:"open_in_new_group"`
	Editor         string `yaml:"editor"`
	Scope          string `yaml:"scope"`
	FlagSigil      string `yaml:"flag_sigil"`
	TemplatesDir   string `yaml:"templates_dir"`
}

// Validate validates the journal configuration.
func (c *JournalConfig) Validate() error {
	if c.Scope == "" {
		c.Scope = templates.DefaultScope
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Base, validation.Required),
		validation.Field(&c.Ext, validation.Required, validation.Match(extRe)),
		validation.Field(&c.Locale, validation.By(func(v any) error {
			if s, _ := v.(string); s != "" && !templates.SupportedLocale(s) {
				return fmt.Errorf("unsupported locale %q", s)
			}
			return nil
		})),
		validation.Field(&c.FlagSigil, validation.Length(0, 1)),
		validation.Field(&c.TemplatesDir, validation.Required),
	); err != nil {
		return err
	}

	var err error
	if c.Base, err = homedir.Expand(c.Base); err != nil {
		return fmt.Errorf("journal.base: %w", err)
	}
	if c.TemplatesDir, err = homedir.Expand(c.TemplatesDir); err != nil {
		return fmt.Errorf("journal.templates_dir: %w", err)
	}
	return nil
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	); err != nil {
		return err
	}
	p, err := homedir.Expand(c.Path)
	if err != nil {
		return fmt.Errorf("sqlite.path: %w", err)
	}
	c.Path = p
	return nil
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			DailySchedule: "0 0 * * *",
		},
		Journal: JournalConfig{
			Base:         "~/journal",
			Ext:          "md",
			Locale:       "en",
			Scope:        templates.DefaultScope,
			FlagSigil:    "#",
			TemplatesDir: "~/.config/journal",
		},
		SQLite: SQLiteConfig{
			Path: "~/journal/.journal.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
