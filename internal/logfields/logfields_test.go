package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Prefix", KeyPrefix, "/go/", Prefix("/go/")},
		{"Rule", KeyRule, "sidebar-link", Rule("sidebar-link")},
		{"Format", KeyFormat, "hugo", Format("hugo")},
		{"Revision", KeyRevision, "r1", Revision("r1")},
		{"Commit", KeyCommit, "abc", Commit("abc")},
		{"Subject", KeySubject, "docnav.site.updated", Subject("docnav.site.updated")},
		{"Trigger", KeyTrigger, "fsnotify", Trigger("fsnotify")},
		{"Hash", KeyHash, "0123456789ab", Hash("0123456789abcdef")},
		{"Error", KeyError, "boom", Error(errors.New("boom"))},
		{"NilError", KeyError, "", Error(nil)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.attr.Key != c.attrKey {
				t.Fatalf("key mismatch: got %s want %s", c.attr.Key, c.attrKey)
			}
			if c.attr.Value.String() != c.attrVal {
				t.Fatalf("value mismatch: got %s want %s", c.attr.Value.String(), c.attrVal)
			}
		})
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := Pages(3); a.Key != KeyPages || a.Value.Int64() != 3 {
		t.Fatalf("unexpected pages attr %v", a)
	}
	if a := Issues(2); a.Key != KeyIssues || a.Value.Int64() != 2 {
		t.Fatalf("unexpected issues attr %v", a)
	}
	if a := Duration(1500 * time.Microsecond); a.Key != KeyDurationMS || a.Value.Float64() != 1.5 {
		t.Fatalf("unexpected duration attr %v", a)
	}
}
