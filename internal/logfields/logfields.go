package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyPrefix     = "prefix"
	KeyRule       = "rule"
	KeyFormat     = "format"
	KeyRevision   = "revision"
	KeyHash       = "hash"
	KeyCommit     = "commit"
	KeySubject    = "subject"
	KeyTrigger    = "trigger"
	KeyPages      = "pages"
	KeyIssues     = "issues"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Prefix(p string) slog.Attr     { return slog.String(KeyPrefix, p) }
func Rule(r string) slog.Attr       { return slog.String(KeyRule, r) }
func Format(f string) slog.Attr     { return slog.String(KeyFormat, f) }
func Revision(id string) slog.Attr  { return slog.String(KeyRevision, id) }
func Commit(c string) slog.Attr     { return slog.String(KeyCommit, c) }
func Subject(s string) slog.Attr    { return slog.String(KeySubject, s) }
func Trigger(t string) slog.Attr    { return slog.String(KeyTrigger, t) }
func Pages(n int) slog.Attr         { return slog.Int(KeyPages, n) }
func Issues(n int) slog.Attr        { return slog.Int(KeyIssues, n) }

// Hash logs the first 12 characters of a content hash.
func Hash(h string) slog.Attr {
	if len(h) > 12 {
		h = h[:12]
	}
	return slog.String(KeyHash, h)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
