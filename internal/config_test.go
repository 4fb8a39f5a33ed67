package internal

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/starford/journal/internal/models"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if strings.HasPrefix(cfg.Journal.Base, "~") {
		t.Errorf("base not expanded: %q", cfg.Journal.Base)
	}
	if strings.HasPrefix(cfg.SQLite.Path, "~") {
		t.Errorf("sqlite path not expanded: %q", cfg.SQLite.Path)
	}
}

func TestJournalConfig_RejectsBadExt(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Journal.Ext = ".md/x"
	if err := cfg.Validate(); err == nil {
		t.Fatal("extension with separators should fail")
	}
}

func TestJournalConfig_RejectsUnknownLocale(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Journal.Locale = "tlh"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown locale should fail")
	}
}

func TestJournalConfig_EmptyScopeDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Journal.Scope = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Journal.Scope != "default" {
		t.Errorf("scope = %q", cfg.Journal.Scope)
	}
}

func TestConfig_InvalidTemplateRecord(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Templates = []models.InlineTemplate{{Scope: "default", ID: "Entry Memo", Template: "- {content}"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("malformed template id should fail")
	}
}

func TestApplicationConfig_DevLoggingForcesDebug(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.DevLogging = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("level = %v", cfg.App.LogLevel)
	}
}

func TestApplicationConfig_InvalidSchedule(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.DailySchedule = "every morning"
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid cron expression should fail")
	}
	cfg.App.DailySchedule = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty schedule disables the job: %v", err)
	}
}
