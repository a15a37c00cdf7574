// Package lint checks a site model for structures the documentation
// generator would reject or render badly.
package lint

import "git.home.luguber.info/inful/docnav/internal/nav"

// Severity indicates the importance level of a linting issue.
type Severity int

const (
	// SeverityInfo indicates informational messages.
	SeverityInfo Severity = iota
	// SeverityWarning indicates issues that should be fixed but don't block exports.
	SeverityWarning
	// SeverityError indicates issues that block exports unless forced.
	SeverityError
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Issue represents a single problem found in the site.
type Issue struct {
	Rule     string   // Rule identifier (e.g., "sidebar-link")
	Severity Severity // Issue severity level
	Location string   // Where the problem is, e.g. "sidebar /go/ › Go 编程 › 简介"
	Link     string   // Offending link, when the issue is about one
	Message  string   // Brief description of the issue
	Fix      string   // Suggested fix
}

// Result contains all issues found during linting.
type Result struct {
	Issues       []Issue
	EntriesTotal int // nav and sidebar entries checked
	PagesTotal   int // content pages known to the content-page rule
}

// HasErrors returns true if any error-level issues exist.
func (r *Result) HasErrors() bool {
	return r.ErrorCount() > 0
}

// HasWarnings returns true if any warning-level issues exist.
func (r *Result) HasWarnings() bool {
	return r.WarningCount() > 0
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	return r.count(SeverityError)
}

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int {
	return r.count(SeverityWarning)
}

func (r *Result) count(s Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == s {
			n++
		}
	}
	return n
}

// ByRule returns the issues grouped by rule name.
func (r *Result) ByRule() map[string][]Issue {
	out := make(map[string][]Issue)
	for _, issue := range r.Issues {
		out[issue.Rule] = append(out[issue.Rule], issue)
	}
	return out
}

// PageSet answers whether a content page exists for a route.
type PageSet interface {
	Has(route string) bool
	Len() int
}

// Context is the input shared by every rule during one Check.
type Context struct {
	Site    *nav.Site
	Entries []nav.Entry
	Pages   PageSet // nil when no content directory was given
}

// Rule defines one check over the site.
type Rule interface {
	// Name returns the unique identifier for this rule.
	Name() string

	// Check inspects the site and returns any issues found.
	Check(ctx *Context) []Issue
}

// Options configures a Check run.
type Options struct {
	// Pages enables the content-page rule.
	Pages PageSet

	// Quiet drops warnings and infos from the result.
	Quiet bool
}
