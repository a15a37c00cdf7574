// Package pipeline runs one docnav cycle: load the configuration, discover
// content, lint and export the site, record a revision and announce it.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/discovery"
	"git.home.luguber.info/inful/docnav/internal/export"
	"git.home.luguber.info/inful/docnav/internal/history"
	"git.home.luguber.info/inful/docnav/internal/lint"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/notify"
)

// StageName identifies a step of the cycle.
type StageName string

const (
	StageLoad     StageName = "load"
	StageDiscover StageName = "discover"
	StageExport   StageName = "export"
	StageRecord   StageName = "record"
	StageNotify   StageName = "notify"
)

// Notification outcomes reported to the recorder.
const (
	notifyPublished = "published"
	notifySkipped   = "skipped"
	notifyFailed    = "failed"
)

// StageExecution is the outcome of one stage.
type StageExecution struct {
	Name     StageName
	Duration time.Duration
	Skipped  bool
	Err      error
}

// Result collects what a cycle produced. Fields for stages that did not run
// are nil.
type Result struct {
	Config    *config.Config
	Pages     *discovery.Index
	Changed   []string // routes whose fingerprint changed since the previous cycle
	Export    *export.Result
	Revision  *history.Revision
	Recorded  bool
	Announced bool
	Stages    []StageExecution
}

// Stage returns the execution record for name.
func (r *Result) Stage(name StageName) (StageExecution, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageExecution{}, false
}

// Runner executes cycles against one configuration file. A Runner keeps the
// content fingerprints of its previous cycle and must not run concurrently.
type Runner struct {
	configPath string
	store      *history.Store
	publisher  notify.Publisher
	recorder   metrics.Recorder
	force      bool
	format     config.Format
	outputDir  string
	source     string

	fingerprints map[string]string
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore records a revision after every successful export.
func WithStore(s *history.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithPublisher announces new revisions.
func WithPublisher(p notify.Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// WithRecorder reports metrics.
func WithRecorder(m metrics.Recorder) Option {
	return func(r *Runner) { r.recorder = m }
}

// WithForce exports even when lint reports errors.
func WithForce(force bool) Option {
	return func(r *Runner) { r.force = force }
}

// WithFormat overrides output.format.
func WithFormat(f config.Format) Option {
	return func(r *Runner) { r.format = f }
}

// WithOutputDir overrides output.directory.
func WithOutputDir(dir string) Option {
	return func(r *Runner) { r.outputDir = dir }
}

// WithSource sets the source recorded on revisions.
func WithSource(source string) Option {
	return func(r *Runner) { r.source = source }
}

// New creates a Runner for the configuration at configPath.
func New(configPath string, opts ...Option) *Runner {
	r := &Runner{
		configPath: configPath,
		publisher:  notify.Noop{},
		recorder:   metrics.NoopRecorder{},
		source:     history.SourceExport,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOnce performs a full cycle. Stages run in order and the first failing
// stage stops the cycle, except notify: a failed announcement is logged and
// retried on the next cycle since the KV state was not updated.
func (r *Runner) RunOnce(ctx context.Context) (*Result, error) {
	res := &Result{}
	stages := []struct {
		name StageName
		run  func(context.Context, *Result) (skipped bool, err error)
		soft bool
	}{
		{StageLoad, r.load, false},
		{StageDiscover, r.discover, false},
		{StageExport, r.export, false},
		{StageRecord, r.record, false},
		{StageNotify, r.notify, true},
	}

	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		start := time.Now()
		skipped, err := st.run(ctx, res)
		res.Stages = append(res.Stages, StageExecution{
			Name:     st.name,
			Duration: time.Since(start),
			Skipped:  skipped,
			Err:      err,
		})
		if err == nil {
			continue
		}
		if st.soft {
			slog.Warn("Stage failed", slog.String("stage", string(st.name)), logfields.Error(err))
			continue
		}
		return res, err
	}

	attrs := []any{logfields.Hash(res.Export.Hash), slog.Bool("recorded", res.Recorded), slog.Bool("announced", res.Announced)}
	if res.Revision != nil {
		attrs = append(attrs, logfields.Revision(res.Revision.ShortID()))
	}
	slog.Info("Cycle complete", attrs...)
	return res, nil
}

func (r *Runner) load(_ context.Context, res *Result) (bool, error) {
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return false, err
	}
	cfg.ResolvePaths(filepath.Dir(r.configPath))
	if r.format != "" {
		cfg.Output.Format = r.format
		if r.outputDir == "" {
			cfg.Output.Directory = config.DefaultOutputDir(r.format, cfg.Content.Dir)
			cfg.ResolvePaths(filepath.Dir(r.configPath))
		}
	}
	if r.outputDir != "" {
		cfg.Output.Directory = r.outputDir
	}
	res.Config = cfg
	r.recorder.SetSiteStats(cfg.Site.Stats())
	return false, nil
}

func (r *Runner) discover(ctx context.Context, res *Result) (bool, error) {
	dir := res.Config.Content.Dir
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		slog.Debug("Content directory not found, skipping page checks", logfields.Path(dir))
		return true, nil
	}
	ix, err := discovery.Scan(ctx, dir)
	if err != nil {
		return false, err
	}
	res.Pages = ix

	current := ix.Fingerprints()
	if r.fingerprints != nil {
		res.Changed = ix.Changed(r.fingerprints)
		if len(res.Changed) > 0 {
			slog.Info("Content changed", logfields.Pages(len(res.Changed)), slog.Any("routes", res.Changed))
		}
	}
	r.fingerprints = current
	return false, nil
}

func (r *Runner) export(ctx context.Context, res *Result) (bool, error) {
	cfg := res.Config
	opts := export.Options{
		Format:    cfg.Output.Format,
		OutputDir: cfg.Output.Directory,
		Force:     r.force,
		Clean:     cfg.Output.Clean,
		Recorder:  r.recorder,
	}
	if res.Pages != nil {
		opts.Pages = res.Pages
	}
	out, err := export.Export(ctx, cfg.Site, opts)
	res.Export = out
	if out != nil && out.Lint != nil {
		r.recorder.SetLintIssues(lintCounts(out.Lint))
		for _, issue := range out.Lint.Issues {
			if issue.Severity == lint.SeverityError {
				slog.Warn(issue.Message,
					logfields.Rule(issue.Rule),
					slog.String("location", issue.Location))
			}
		}
	}
	return false, err
}

func (r *Runner) record(ctx context.Context, res *Result) (bool, error) {
	if r.store == nil {
		return true, nil
	}
	rev, recorded, err := r.store.Record(ctx, res.Config.Site, history.RecordOptions{Source: r.source})
	if err != nil {
		return false, err
	}
	res.Revision = rev
	res.Recorded = recorded
	if recorded {
		r.recorder.IncRevisionRecorded(r.source)
	}
	return false, nil
}

func (r *Runner) notify(ctx context.Context, res *Result) (bool, error) {
	var revID string
	if res.Revision != nil {
		revID = res.Revision.ID
	}
	ev := notify.NewSiteUpdated(res.Config.Site, revID, res.Config.Output.Format)
	ok, err := r.publisher.Publish(ctx, ev)
	switch {
	case err != nil:
		r.recorder.IncNotifyResult(notifyFailed)
		return false, err
	case ok:
		r.recorder.IncNotifyResult(notifyPublished)
		res.Announced = true
	default:
		r.recorder.IncNotifyResult(notifySkipped)
	}
	return false, nil
}

func lintCounts(res *lint.Result) map[metrics.LintKey]int {
	counts := map[metrics.LintKey]int{}
	for _, issue := range res.Issues {
		counts[metrics.LintKey{Rule: issue.Rule, Severity: strings.ToLower(issue.Severity.String())}]++
	}
	return counts
}
