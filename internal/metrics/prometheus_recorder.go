package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docnav/internal/nav"
)

const namespace = "docnav"

// PrometheusRecorder implements Recorder with client_golang collectors.
type PrometheusRecorder struct {
	exportDuration *prom.HistogramVec
	exportOutcomes *prom.CounterVec
	lintIssues     *prom.GaugeVec
	siteEntries    *prom.GaugeVec
	revisions      *prom.CounterVec
	watchTriggers  *prom.CounterVec
	notifyResults  *prom.CounterVec
}

// NewPrometheusRecorder registers the docnav collectors on reg. A nil reg
// gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		exportDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Duration of export runs",
			Buckets:   prom.DefBuckets,
		}, []string{"format"}),
		exportOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "export_outcomes_total",
			Help:      "Export attempts by outcome",
		}, []string{"format", "outcome"}),
		lintIssues: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "lint_issues",
			Help:      "Issues reported by the last lint run",
		}, []string{"rule", "severity"}),
		siteEntries: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "site_entries",
			Help:      "Size of the navigation model of the last loaded site",
		}, []string{"kind"}),
		revisions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "revisions_recorded_total",
			Help:      "Site revisions written to history",
		}, []string{"source"}),
		watchTriggers: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "watch_triggers_total",
			Help:      "Pipeline runs started by watch mode",
		}, []string{"trigger"}),
		notifyResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "notify_results_total",
			Help:      "SiteUpdated announcements by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.exportDuration, pr.exportOutcomes, pr.lintIssues, pr.siteEntries,
		pr.revisions, pr.watchTriggers, pr.notifyResults)
	return pr
}

func (p *PrometheusRecorder) ObserveExportDuration(format string, d time.Duration) {
	if p == nil {
		return
	}
	p.exportDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncExportOutcome(format string, outcome ExportOutcome) {
	if p == nil {
		return
	}
	p.exportOutcomes.WithLabelValues(format, string(outcome)).Inc()
}

// SetLintIssues replaces the gauge set so fixed issues drop to absent.
func (p *PrometheusRecorder) SetLintIssues(counts map[LintKey]int) {
	if p == nil {
		return
	}
	p.lintIssues.Reset()
	for k, n := range counts {
		p.lintIssues.WithLabelValues(k.Rule, k.Severity).Set(float64(n))
	}
}

func (p *PrometheusRecorder) SetSiteStats(stats nav.Stats) {
	if p == nil {
		return
	}
	p.siteEntries.WithLabelValues("nav_items").Set(float64(stats.NavItems))
	p.siteEntries.WithLabelValues("sections").Set(float64(stats.Sections))
	p.siteEntries.WithLabelValues("groups").Set(float64(stats.Groups))
	p.siteEntries.WithLabelValues("sidebar_items").Set(float64(stats.SidebarItems))
	p.siteEntries.WithLabelValues("links").Set(float64(stats.Links))
}

func (p *PrometheusRecorder) IncRevisionRecorded(source string) {
	if p == nil {
		return
	}
	p.revisions.WithLabelValues(source).Inc()
}

func (p *PrometheusRecorder) IncWatchTrigger(trigger string) {
	if p == nil {
		return
	}
	p.watchTriggers.WithLabelValues(trigger).Inc()
}

func (p *PrometheusRecorder) IncNotifyResult(result string) {
	if p == nil {
		return
	}
	p.notifyResults.WithLabelValues(result).Inc()
}
