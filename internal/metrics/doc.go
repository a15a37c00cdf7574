// Package metrics records docnav activity for Prometheus.
//
// Components receive a Recorder through their options. NoopRecorder is the
// default, so code never checks for a nil recorder:
//
//	runner := pipeline.New(cfg, pipeline.WithRecorder(metrics.NoopRecorder{}))
//
// Watch mode swaps in a PrometheusRecorder registered on a private registry
// and serves it with HTTPHandler.
package metrics
