package lint

import (
	"log/slog"

	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/nav"
)

// Linter runs a fixed set of rules over a site.
type Linter struct {
	rules []Rule
}

// NewLinter creates a linter with the given rules, or DefaultRules when none
// are passed.
func NewLinter(rules ...Rule) *Linter {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Linter{rules: rules}
}

// Check runs every rule against site. The site is not modified.
func (l *Linter) Check(site *nav.Site, opts Options) *Result {
	ctx := &Context{
		Site:    site,
		Entries: site.Entries(),
		Pages:   opts.Pages,
	}

	result := &Result{
		Issues:       []Issue{},
		EntriesTotal: len(ctx.Entries),
	}
	if opts.Pages != nil {
		result.PagesTotal = opts.Pages.Len()
	}

	for _, rule := range l.rules {
		for _, issue := range rule.Check(ctx) {
			if opts.Quiet && issue.Severity != SeverityError {
				continue
			}
			result.Issues = append(result.Issues, issue)
		}
	}

	slog.Debug("Lint finished",
		logfields.Issues(len(result.Issues)),
		slog.Int("errors", result.ErrorCount()),
		slog.Int("entries", result.EntriesTotal))
	return result
}

// Check lints site with the default rules.
func Check(site *nav.Site, opts Options) *Result {
	return NewLinter().Check(site, opts)
}
