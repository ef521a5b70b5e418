package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/five82/folio/internal/config"
	"github.com/five82/folio/internal/details"
	"github.com/five82/folio/internal/openlibrary"
	"github.com/five82/folio/internal/prefs"
	"github.com/five82/folio/internal/state"
	"github.com/five82/folio/internal/ui"
	"github.com/five82/folio/internal/wikipedia"
)

// Options configure the folio application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/folio/prefs.toml
	LogLevel   string // overrides log_level from the config when set
}

// Run boots the TUI until the user quits or the context is cancelled. Logs go
// to the configured log file so they stay off the alternate screen.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logFile, err := openLogFile(cfg.LogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger := NewLogger(logFile, cfg.LogLevel)
	slog.SetDefault(logger)

	svc, err := NewService(cfg, logger)
	if err != nil {
		return err
	}

	userPrefs := prefs.Load(opts.PrefsPath)
	logger.Info("folio started", "openlibrary", cfg.OpenLibraryURL, "theme", userPrefs.Theme)

	uiOpts := ui.Options{
		Context:   ctx,
		Actions:   svc,
		Store:     svc.Store,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		LogPath:   cfg.LogPath(),
		ErrorText: Message,
	}
	return ui.Run(uiOpts)
}

// NewService builds the catalog clients, the detail assembler and an empty
// store from cfg.
func NewService(cfg config.Config, logger *slog.Logger) (*Service, error) {
	catalog, err := openlibrary.NewClient(cfg.OpenLibraryURL,
		openlibrary.WithTimeout(cfg.RequestTimeout),
		openlibrary.WithUserAgent(cfg.UserAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("init open library client: %w", err)
	}

	wiki, err := wikipedia.NewClient(cfg.WikipediaURL,
		wikipedia.WithTimeout(cfg.WikipediaTimeout),
		wikipedia.WithUserAgent(cfg.UserAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("init wikipedia client: %w", err)
	}

	return &Service{
		Catalog:        catalog,
		Details:        details.NewAssembler(catalog, wiki, cfg.WikipediaTimeout, logger),
		Store:          &state.Store{},
		RecentLimit:    cfg.RecentLimit,
		RecentInterval: cfg.RecentInterval,
		Logger:         logger,
	}, nil
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(opts.LogLevel) != "" {
		level, err := config.ParseLevel(opts.LogLevel)
		if err != nil {
			return config.Config{}, err
		}
		cfg.LogLevel = level
	}
	return cfg, nil
}

// headless prepares a Service whose logs go to stderr.
func headless(opts Options, stderr io.Writer) (*Service, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return NewService(cfg, NewLogger(stderr, cfg.LogLevel))
}
