package metrics

import (
	"time"

	"git.home.luguber.info/inful/docnav/internal/nav"
)

// ExportOutcome labels the result of one export attempt.
type ExportOutcome string

const (
	ExportSuccess   ExportOutcome = "success"
	ExportUnchanged ExportOutcome = "unchanged"
	ExportBlocked   ExportOutcome = "blocked" // lint errors without --force
	ExportFailed    ExportOutcome = "failed"
)

// LintKey identifies one rule/severity pair in lint gauges.
type LintKey struct {
	Rule     string
	Severity string
}

type Recorder interface {
	ObserveExportDuration(format string, d time.Duration)
	IncExportOutcome(format string, outcome ExportOutcome)
	SetLintIssues(counts map[LintKey]int)
	SetSiteStats(stats nav.Stats)
	IncRevisionRecorded(source string)
	IncWatchTrigger(trigger string)
	IncNotifyResult(result string) // published|skipped|failed
}

type NoopRecorder struct{}

func (NoopRecorder) ObserveExportDuration(string, time.Duration) {}
func (NoopRecorder) IncExportOutcome(string, ExportOutcome)      {}
func (NoopRecorder) SetLintIssues(map[LintKey]int)               {}
func (NoopRecorder) SetSiteStats(nav.Stats)                      {}
func (NoopRecorder) IncRevisionRecorded(string)                  {}
func (NoopRecorder) IncWatchTrigger(string)                      {}
func (NoopRecorder) IncNotifyResult(string)                      {}
