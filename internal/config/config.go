package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds folio's runtime settings.
type Config struct {
	OpenLibraryURL   string
	WikipediaURL     string
	UserAgent        string
	RequestTimeout   time.Duration
	WikipediaTimeout time.Duration
	RecentInterval   time.Duration
	RecentLimit      int
	LogDir           string
	LogLevel         slog.Level
}

const (
	defaultConfigPath       = "~/.config/folio/config.toml"
	defaultLogDir           = "~/.local/state/folio"
	defaultOpenLibraryURL   = "https://openlibrary.org"
	defaultWikipediaURL     = "https://en.wikipedia.org"
	defaultUserAgent        = "folio/0.1 (+https://github.com/five82/folio)"
	defaultRequestTimeout   = 10 * time.Second
	defaultWikipediaTimeout = 5 * time.Second
	defaultRecentInterval   = 5 * time.Minute
	defaultRecentLimit      = 5
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		OpenLibraryURL:   defaultOpenLibraryURL,
		WikipediaURL:     defaultWikipediaURL,
		UserAgent:        defaultUserAgent,
		RequestTimeout:   defaultRequestTimeout,
		WikipediaTimeout: defaultWikipediaTimeout,
		RecentInterval:   defaultRecentInterval,
		RecentLimit:      defaultRecentLimit,
		LogDir:           mustExpand(defaultLogDir),
		LogLevel:         slog.LevelInfo,
	}
}

// Load reads the config at path (or the default location), falling back to
// defaults when the file is missing. Blank values keep their defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		OpenLibraryURL   string `toml:"openlibrary_url"`
		WikipediaURL     string `toml:"wikipedia_url"`
		UserAgent        string `toml:"user_agent"`
		RequestTimeout   string `toml:"request_timeout"`
		WikipediaTimeout string `toml:"wikipedia_timeout"`
		RecentInterval   string `toml:"recent_interval"`
		RecentLimit      *int   `toml:"recent_limit"`
		LogDir           string `toml:"log_dir"`
		LogLevel         string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	setString(&cfg.OpenLibraryURL, raw.OpenLibraryURL)
	setString(&cfg.WikipediaURL, raw.WikipediaURL)
	setString(&cfg.UserAgent, raw.UserAgent)

	durations := []struct {
		key   string
		value string
		dest  *time.Duration
	}{
		{"request_timeout", raw.RequestTimeout, &cfg.RequestTimeout},
		{"wikipedia_timeout", raw.WikipediaTimeout, &cfg.WikipediaTimeout},
		{"recent_interval", raw.RecentInterval, &cfg.RecentInterval},
	}
	for _, d := range durations {
		if err := setDuration(d.dest, d.key, d.value); err != nil {
			return Config{}, err
		}
	}

	if raw.RecentLimit != nil {
		if *raw.RecentLimit <= 0 {
			return Config{}, fmt.Errorf("parse config: recent_limit must be positive, got %d", *raw.RecentLimit)
		}
		cfg.RecentLimit = *raw.RecentLimit
	}

	if dir := strings.TrimSpace(raw.LogDir); dir != "" {
		cfg.LogDir = mustExpand(dir)
	}

	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		parsed, err := ParseLevel(level)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		cfg.LogLevel = parsed
	}

	return cfg, nil
}

// LogPath returns the file the TUI writes its log to.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/folio.log")
	}
	return filepath.Join(c.LogDir, "folio.log")
}

// ParseLevel maps debug, info, warn and error (case-insensitive) to slog levels.
func ParseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", value, err)
	}
	return level, nil
}

func setString(dest *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dest = trimmed
	}
}

func setDuration(dest *time.Duration, key, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("parse config: %s must be positive, got %s", key, trimmed)
	}
	*dest = d
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath expands a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
