package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.OpenLibraryURL != defaultOpenLibraryURL {
		t.Fatalf("OpenLibraryURL = %q, want %q", cfg.OpenLibraryURL, defaultOpenLibraryURL)
	}
	if cfg.RecentInterval != 5*time.Minute {
		t.Fatalf("RecentInterval = %v, want 5m", cfg.RecentInterval)
	}
	if cfg.RecentLimit != defaultRecentLimit {
		t.Fatalf("RecentLimit = %d, want %d", cfg.RecentLimit, defaultRecentLimit)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v, want info", cfg.LogLevel)
	}

	wantLogDir, err := ExpandPath(defaultLogDir)
	if err != nil {
		t.Fatalf("ExpandPath(defaultLogDir) returned error: %v", err)
	}
	if cfg.LogDir != wantLogDir {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, wantLogDir)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
openlibrary_url = "  http://localhost:8080  "
wikipedia_url = "https://fr.wikipedia.org"
user_agent = " folio-ci "
request_timeout = "3s"
wikipedia_timeout = "1500ms"
recent_interval = "90s"
recent_limit = 8
log_dir = "  ~/folio-logs  "
log_level = "DEBUG"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.OpenLibraryURL != "http://localhost:8080" {
		t.Fatalf("OpenLibraryURL = %q", cfg.OpenLibraryURL)
	}
	if cfg.WikipediaURL != "https://fr.wikipedia.org" {
		t.Fatalf("WikipediaURL = %q", cfg.WikipediaURL)
	}
	if cfg.UserAgent != "folio-ci" {
		t.Fatalf("UserAgent = %q, want folio-ci", cfg.UserAgent)
	}
	if cfg.RequestTimeout != 3*time.Second || cfg.WikipediaTimeout != 1500*time.Millisecond {
		t.Fatalf("timeouts = %v/%v", cfg.RequestTimeout, cfg.WikipediaTimeout)
	}
	if cfg.RecentInterval != 90*time.Second || cfg.RecentLimit != 8 {
		t.Fatalf("recent = %v/%d", cfg.RecentInterval, cfg.RecentLimit)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if !strings.HasPrefix(cfg.LogDir, home) {
		t.Fatalf("LogDir = %q, want it under HOME %q", cfg.LogDir, home)
	}
	if cfg.LogPath() != filepath.Join(cfg.LogDir, "folio.log") {
		t.Fatalf("LogPath = %q", cfg.LogPath())
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
openlibrary_url = "   "
request_timeout = ""
log_dir = ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.OpenLibraryURL != defaultOpenLibraryURL {
		t.Fatalf("OpenLibraryURL = %q, want %q", cfg.OpenLibraryURL, defaultOpenLibraryURL)
	}
	if cfg.RequestTimeout != defaultRequestTimeout {
		t.Fatalf("RequestTimeout = %v, want %v", cfg.RequestTimeout, defaultRequestTimeout)
	}
	wantLogDir, err := ExpandPath(defaultLogDir)
	if err != nil {
		t.Fatalf("ExpandPath(defaultLogDir) returned error: %v", err)
	}
	if cfg.LogDir != wantLogDir {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, wantLogDir)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	tests := map[string]string{
		"bad toml":         `openlibrary_url = [`,
		"bad duration":     `recent_interval = "soon"`,
		"negative timeout": `request_timeout = "-1s"`,
		"zero limit":       `recent_limit = 0`,
		"bad level":        `log_level = "loud"`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			if err == nil {
				t.Fatalf("Load returned nil error, want parse error")
			}
			if !strings.Contains(err.Error(), "parse config") {
				t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/a/b")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("ExpandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := ExpandPath("   "); err == nil {
		t.Fatalf("ExpandPath returned nil error, want error")
	}
}

func TestLogPath_DefaultsWhenLogDirEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.LogPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/folio.log")) {
		t.Fatalf("LogPath = %q, want it to end with /folio.log", got)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{"debug": slog.LevelDebug, " WARN ": slog.LevelWarn, "error": slog.LevelError} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
