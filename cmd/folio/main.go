package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/five82/folio/internal/app"
)

// CLI is the folio command tree. Running folio without a command opens the TUI.
type CLI struct {
	Config   string `help:"Override the config file path" type:"path" placeholder:"PATH"`
	Prefs    string `help:"Override the preferences file path" type:"path" placeholder:"PATH"`
	LogLevel string `help:"Log level (debug, info, warn, error)" placeholder:"LEVEL"`

	TUI     TUICmd     `cmd:"" default:"1" name:"tui" help:"Browse the catalog interactively"`
	Search  SearchCmd  `cmd:"" help:"Full-text search of the catalog"`
	Subject SubjectCmd `cmd:"" help:"List works filed under a subject"`
	Show    ShowCmd    `cmd:"" help:"Show the detail page of a work"`
	Recent  RecentCmd  `cmd:"" help:"Print the recent changes feed"`
}

// TUICmd opens the interactive browser.
type TUICmd struct{}

// SearchCmd runs a headless search.
type SearchCmd struct {
	Terms    []string `arg:"" optional:"" help:"Search terms"`
	Language string   `short:"l" help:"Three-letter language code, e.g. eng"`
	Year     int      `short:"y" help:"First publish year"`
	Type     string   `short:"t" help:"Subject type, e.g. fiction"`
	Covers   bool     `help:"Only works with a cover"`
	Format   string   `short:"o" help:"Output format (table, json, yaml)" default:"table"`
}

// SubjectCmd lists works for a subject.
type SubjectCmd struct {
	Subject string `arg:"" help:"Subject name, e.g. science_fiction"`
	Format  string `short:"o" help:"Output format (table, json, yaml)" default:"table"`
}

// ShowCmd prints one work.
type ShowCmd struct {
	Key    string `arg:"" help:"Work key, e.g. OL45883W or /works/OL45883W"`
	Format string `short:"o" help:"Output format (table, json, yaml)" default:"table"`
}

// RecentCmd prints the recent changes feed once.
type RecentCmd struct {
	Limit  int    `short:"n" help:"Maximum number of changes to show (defaults to recent_limit)"`
	Format string `short:"o" help:"Output format (table, json, yaml)" default:"table"`
}

// runEnv carries what every command needs; kong binds it into Run.
type runEnv struct {
	ctx     context.Context
	opts    app.Options
	streams app.Streams
}

var (
	runTUI     = app.Run
	runSearch  = app.RunSearch
	runSubject = app.RunSubject
	runShow    = app.RunShow
	runRecent  = app.RunRecent
)

func (c *TUICmd) Run(env *runEnv) error {
	return runTUI(env.ctx, env.opts)
}

func (c *SearchCmd) Run(env *runEnv) error {
	req := app.SearchRequest{
		Terms:    c.Terms,
		Language: c.Language,
		Year:     c.Year,
		Type:     c.Type,
		Covers:   c.Covers,
	}
	return runSearch(env.ctx, env.opts, req, c.Format, env.streams)
}

func (c *SubjectCmd) Run(env *runEnv) error {
	return runSubject(env.ctx, env.opts, c.Subject, c.Format, env.streams)
}

func (c *ShowCmd) Run(env *runEnv) error {
	return runShow(env.ctx, env.opts, c.Key, c.Format, env.streams)
}

func (c *RecentCmd) Run(env *runEnv) error {
	return runRecent(env.ctx, env.opts, c.Limit, c.Format, env.streams)
}

func (cli *CLI) options() app.Options {
	return app.Options{
		ConfigPath: cli.Config,
		PrefsPath:  cli.Prefs,
		LogLevel:   cli.LogLevel,
	}
}

func newParser(cli *CLI, stdout, stderr io.Writer, extra ...kong.Option) (*kong.Kong, error) {
	opts := []kong.Option{
		kong.Name("folio"),
		kong.Description("Search, browse and follow the Open Library catalog."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
	}
	return kong.New(cli, append(opts, extra...)...)
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var cli CLI
	parser, err := newParser(&cli, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "folio: %v\n", err)
		return 2
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%v", err)
		return 2
	}

	env := &runEnv{
		ctx:     ctx,
		opts:    cli.options(),
		streams: app.Streams{Out: os.Stdout, Err: os.Stderr},
	}
	if err := kctx.Run(env); err != nil {
		fmt.Fprintf(os.Stderr, "folio: %v\n", err)
		return 1
	}
	return 0
}
