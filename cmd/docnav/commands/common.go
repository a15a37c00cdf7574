// Package commands implements the docnav command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/discovery"
	"git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/history"
	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// Global carries process-wide state into every command.
type Global struct {
	Ctx context.Context
	Out io.Writer
}

func (g *Global) context() context.Context {
	if g.Ctx == nil {
		return context.Background()
	}
	return g.Ctx
}

func (g *Global) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docnav.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init     InitCmd     `cmd:"" help:"Write a docnav.yaml carrying the built-in site"`
	Validate ValidateCmd `cmd:"" help:"Lint the site navigation"`
	Show     ShowCmd     `cmd:"" help:"Print the nav tree, or the sidebar a page path resolves to"`
	Export   ExportCmd   `cmd:"" help:"Write the generator configuration"`
	Scaffold ScaffoldCmd `cmd:"" help:"Generate sidebar sections from the content directory"`
	Snapshot SnapshotCmd `cmd:"" help:"Record the current site as a revision"`
	History  HistoryCmd  `cmd:"" help:"Inspect and compare recorded revisions"`
	Watch    WatchCmd    `cmd:"" help:"Re-export whenever the configuration or content changes"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration with paths resolved against its
// directory.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	cfg.ResolvePaths(filepath.Dir(c.Config))
	return cfg, nil
}

func (c *CLI) openHistory(cfg *config.Config) (*history.Store, error) {
	return history.Open(cfg.History.Path)
}

// openStore loads the configuration only to locate the history database.
func (c *CLI) openStore() (*history.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return c.openHistory(cfg)
}

// scanContent indexes dir. A missing directory is not an error when the path
// came from the configuration (explicit=false); the result is then nil.
func scanContent(ctx context.Context, dir string, explicit bool) (*discovery.Index, error) {
	if dir == "" {
		return nil, nil
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		if explicit {
			return nil, errors.NotFoundError("content directory not found").
				WithContext("path", dir).
				Build()
		}
		slog.Debug("Content directory not found", logfields.Path(dir))
		return nil, nil
	}
	return discovery.Scan(ctx, dir)
}
