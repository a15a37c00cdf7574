package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/history"
	"git.home.luguber.info/inful/docnav/internal/lint"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/notify"
	"git.home.luguber.info/inful/docnav/internal/pipeline"
)

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	Format   string `short:"f" help:"Output format: vitepress-ts, vitepress-json, hugo, yaml, json or xlsx (default: output.format)"`
	Output   string `short:"o" help:"Output directory (default: output.directory)" type:"path"`
	Force    bool   `help:"Export even when lint reports errors"`
	NoRecord bool   `name:"no-record" help:"Do not record a revision in the history"`
}

func (e *ExportCmd) Run(g *Global, root *CLI) error {
	ctx := g.context()
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	opts := []pipeline.Option{
		pipeline.WithForce(e.Force),
		pipeline.WithSource(history.SourceExport),
	}
	if e.Format != "" {
		format := config.NormalizeFormat(e.Format)
		if format == "" {
			return errors.ValidationError(fmt.Sprintf("unknown format %q (expected one of %s)", e.Format, formatList())).Build()
		}
		opts = append(opts, pipeline.WithFormat(format))
	}
	if e.Output != "" {
		opts = append(opts, pipeline.WithOutputDir(e.Output))
	}
	if !e.NoRecord {
		store, err := root.openHistory(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, pipeline.WithStore(store))
	}
	pub := openPublisher(ctx, cfg)
	defer func() { _ = pub.Close() }()
	opts = append(opts, pipeline.WithPublisher(pub))

	res, err := pipeline.New(root.Config, opts...).RunOnce(ctx)
	if res != nil && res.Export != nil && res.Export.Lint != nil && res.Export.Lint.HasErrors() && !e.Force {
		if ferr := lint.NewTextFormatter().Format(g.out(), res.Export.Lint, root.Config); ferr != nil {
			slog.Warn("Failed to print lint report", logfields.Error(ferr))
		}
	}
	if err != nil {
		return err
	}

	out := g.out()
	for _, f := range res.Export.Files {
		fmt.Fprintf(out, "Wrote %s\n", f)
	}
	switch {
	case res.Revision == nil:
	case res.Recorded:
		fmt.Fprintf(out, "Recorded revision %s\n", res.Revision.ShortID())
	default:
		fmt.Fprintf(out, "Site unchanged since revision %s\n", res.Revision.ShortID())
	}
	if res.Announced {
		fmt.Fprintf(out, "Announced on %s\n", cfg.Notify.Subject)
	}
	return nil
}

// openPublisher connects the configured publisher. A broker that cannot be
// reached degrades to no announcements rather than failing the export.
func openPublisher(ctx context.Context, cfg *config.Config) notify.Publisher {
	pub, err := notify.New(ctx, cfg.Notify)
	if err != nil {
		slog.Warn("Notifications disabled for this run", logfields.Error(err))
		return notify.Noop{}
	}
	return pub
}

func formatList() string {
	var names []string
	for _, f := range config.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
