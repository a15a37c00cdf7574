package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("lint failed").Build(), 2},
		{"not found", NotFoundError("no revision").Build(), 4},
		{"config", ConfigError("bad config").Build(), 7},
		{"wrapped config", fmt.Errorf("load: %w", ConfigError("bad config").Build()), 7},
		{"git", GitError("log failed").Build(), 8},
		{"internal", InternalError("boom").Build(), 10},
		{"export", ExportError("write failed").Build(), 11},
		{"history", HistoryError("sqlite").Build(), 11},
		{"runtime", RuntimeError("watch").Build(), 12},
		{"unclassified", errors.New("unknown error"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	tests := []struct {
		name    string
		adapter *CLIErrorAdapter
		err     error
		want    string
	}{
		{"nil", quiet, nil, ""},
		{"internal hidden", quiet, InternalError("boom").Build(), "Internal error occurred (use -v for details)"},
		{"internal verbose", verbose, InternalError("boom").Build(), "Error: [internal:fatal] boom"},
		{"user facing", quiet, ValidationError("site has 2 errors").Build(), "Error: site has 2 errors"},
		{"user facing with cause", quiet, WrapError(errors.New("permission denied"), CategoryExport, "write config.mts").Build(), "Error: write config.mts: permission denied"},
		{"unclassified", quiet, errors.New("unknown error"), "Error: unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.adapter.FormatError(tt.err); got != tt.want {
				t.Errorf("FormatError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out, logs bytes.Buffer
	adapter := NewCLIErrorAdapter(true, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("missing title").WithContext("path", "docnav.yaml").Build())

	if code != 7 {
		t.Errorf("exit code = %d, want 7", code)
	}
	if !strings.Contains(out.String(), "missing title") {
		t.Errorf("stderr %q missing message", out.String())
	}
	if !strings.Contains(logs.String(), "path=docnav.yaml") {
		t.Errorf("log %q missing context", logs.String())
	}

	code = -1
	adapter.HandleError(nil)
	if code != -1 {
		t.Error("expected nil error not to exit")
	}
}
