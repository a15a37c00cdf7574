// Package watch re-runs the export cycle when the configuration or the
// content tree changes, and optionally on a fixed interval.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docnav/internal/discovery"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/metrics"
)

// Trigger names what caused a cycle.
type Trigger string

const (
	TriggerStartup  Trigger = "startup"
	TriggerFile     Trigger = "file"
	TriggerInterval Trigger = "interval"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// RunFunc performs one cycle. Errors are logged and do not stop the watcher.
type RunFunc func(ctx context.Context, trigger Trigger) error

// Options configures a Watcher.
type Options struct {
	ConfigPath string
	ContentDir string // watched recursively when it exists
	Debounce   time.Duration
	Interval   time.Duration // 0 disables the periodic run
	Recorder   metrics.Recorder
}

// Watcher serializes cycles: at most one runs at a time and triggers arriving
// meanwhile collapse into one follow-up run.
type Watcher struct {
	opts       Options
	run        RunFunc
	fs         *fsnotify.Watcher
	configPath string
	contentDir string
	triggers   chan Trigger

	mu    sync.Mutex
	timer *time.Timer
}

// New prepares a watcher; nothing is watched until Run.
func New(opts Options, run RunFunc) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}

	configPath, err := filepath.Abs(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	var contentDir string
	if opts.ContentDir != "" {
		if contentDir, err = filepath.Abs(opts.ContentDir); err != nil {
			return nil, fmt.Errorf("failed to resolve content dir: %w", err)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		opts:       opts,
		run:        run,
		fs:         fw,
		configPath: configPath,
		contentDir: contentDir,
		triggers:   make(chan Trigger, 1),
	}, nil
}

// Run performs a startup cycle and then watches until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fs.Close() }()

	// The directory is watched rather than the file so editors that replace
	// the file on save keep being noticed.
	if err := w.fs.Add(filepath.Dir(w.configPath)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}
	if w.contentDir != "" {
		if err := w.addTree(w.contentDir); err != nil {
			return err
		}
	}

	var sched gocron.Scheduler
	if w.opts.Interval > 0 {
		var err error
		if sched, err = w.schedule(); err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				slog.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	slog.Info("Watching for changes",
		logfields.Path(w.configPath),
		slog.String("content_dir", w.contentDir),
		slog.Duration("interval", w.opts.Interval))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()
	w.enqueue(TriggerStartup)

	w.loop(ctx)

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	wg.Wait()
	slog.Info("Watcher stopped")
	return nil
}

func (w *Watcher) schedule() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(w.enqueue, TriggerInterval),
		gocron.WithName("docnav-interval"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to schedule interval run: %w", err)
	}
	s.Start()
	return s, nil
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.relevant(ev) {
				slog.Debug("Change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
				w.debounce()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

// relevant filters events down to the config file and content pages, and
// starts watching directories created under the content tree.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Name == w.configPath {
		return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
	}
	if w.contentDir == "" || !within(w.contentDir, ev.Name) {
		return false
	}
	rel, err := filepath.Rel(w.contentDir, ev.Name)
	if err != nil {
		return false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, dir := range parts[:len(parts)-1] {
		if discovery.SkipDir(dir) {
			return false
		}
	}
	name := parts[len(parts)-1]

	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if discovery.SkipDir(name) {
				return false
			}
			if err := w.addTree(ev.Name); err != nil {
				slog.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
			}
			return true
		}
	}
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	// removed directories no longer stat; treat a removal of anything
	// visible as relevant
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		return !strings.HasPrefix(name, ".")
	}
	return discovery.IsPage(name)
}

func within(root, p string) bool {
	return p == root || strings.HasPrefix(p, root+string(filepath.Separator))
}

// addTree watches root and every non-skipped directory below it.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && discovery.SkipDir(d.Name()) {
			return fs.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() { w.enqueue(TriggerFile) })
}

// enqueue schedules a cycle; a pending one absorbs it.
func (w *Watcher) enqueue(t Trigger) {
	select {
	case w.triggers <- t:
	default:
		slog.Debug("Run already pending", logfields.Trigger(string(t)))
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-w.triggers:
			w.opts.Recorder.IncWatchTrigger(string(t))
			start := time.Now()
			if err := w.run(ctx, t); err != nil {
				slog.Error("Run failed", logfields.Trigger(string(t)), logfields.Error(err))
				continue
			}
			slog.Debug("Run finished", logfields.Trigger(string(t)), logfields.Duration(time.Since(start)))
		}
	}
}
