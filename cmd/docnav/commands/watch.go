package commands

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/history"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/pipeline"
	"git.home.luguber.info/inful/docnav/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Interval    time.Duration `help:"Also re-export on this interval (default: watch.interval, 0 disables)"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (default: monitoring.metrics_addr)"`
	Force       bool          `help:"Export even when lint reports errors"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx := g.context()
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	addr := w.MetricsAddr
	if addr == "" {
		addr = cfg.Monitoring.MetricsAddr
	}
	if addr != "" {
		stop, err := serveMetrics(addr, reg)
		if err != nil {
			return err
		}
		defer stop()
	}

	store, err := root.openHistory(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	pub := openPublisher(ctx, cfg)
	defer func() { _ = pub.Close() }()

	runner := pipeline.New(root.Config,
		pipeline.WithStore(store),
		pipeline.WithPublisher(pub),
		pipeline.WithRecorder(recorder),
		pipeline.WithForce(w.Force),
		pipeline.WithSource(history.SourceWatch),
	)

	interval := cfg.Watch.Interval
	if w.Interval > 0 {
		interval = w.Interval
	}
	watcher, err := watch.New(watch.Options{
		ConfigPath: root.Config,
		ContentDir: cfg.Content.Dir,
		Debounce:   cfg.Watch.Debounce,
		Interval:   interval,
		Recorder:   recorder,
	}, func(ctx context.Context, trigger watch.Trigger) error {
		_, err := runner.RunOnce(ctx)
		return err
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to start watcher").Build()
	}
	return watcher.Run(ctx)
}

// serveMetrics starts the /metrics endpoint and returns a function that shuts
// it down.
func serveMetrics(addr string, reg *prom.Registry) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.NetworkError("failed to listen for metrics").
			WithContext("addr", addr).
			WithCause(err).
			Build()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	slog.Info("Serving metrics", slog.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Warn("Metrics server shutdown failed", logfields.Error(err))
		}
	}, nil
}
