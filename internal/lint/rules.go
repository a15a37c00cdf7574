package lint

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docnav/internal/nav"
)

// Rule names.
const (
	RuleRequiredKeys  = "required-keys"
	RuleNavChildren   = "nav-children"
	RuleNavShape      = "nav-shape"
	RuleSidebarLink   = "sidebar-link"
	RuleSidebarText   = "sidebar-text"
	RuleOrphanSection = "orphan-section"
	RulePrefixFormat  = "prefix-format"
	RuleDuplicateLink = "duplicate-link"
	RuleContentPage   = "content-page"
)

// DefaultRules returns every rule in reporting order.
func DefaultRules() []Rule {
	return []Rule{
		&RequiredKeysRule{},
		&NavChildrenRule{},
		&NavShapeRule{},
		&SidebarLinkRule{},
		&SidebarTextRule{},
		&OrphanSectionRule{},
		&PrefixFormatRule{},
		&DuplicateLinkRule{},
		&ContentPageRule{},
	}
}

// RequiredKeysRule checks the keys every generator config needs.
type RequiredKeysRule struct{}

func (r *RequiredKeysRule) Name() string { return RuleRequiredKeys }

func (r *RequiredKeysRule) Check(ctx *Context) []Issue {
	var issues []Issue
	missing := func(key string) {
		issues = append(issues, Issue{
			Rule:     r.Name(),
			Severity: SeverityError,
			Location: "site",
			Message:  fmt.Sprintf("missing required key %q", key),
			Fix:      fmt.Sprintf("set site.%s", key),
		})
	}
	s := ctx.Site
	if strings.TrimSpace(s.Title) == "" {
		missing("title")
	}
	if strings.TrimSpace(s.Lang) == "" {
		missing("lang")
	}
	if strings.TrimSpace(s.Base) == "" {
		missing("base")
	}
	if len(s.Theme.Nav) == 0 {
		issues = append(issues, Issue{
			Rule:     r.Name(),
			Severity: SeverityError,
			Location: "nav",
			Message:  "top navigation bar is empty",
			Fix:      "add at least one item to site.theme.nav",
		})
	}
	return issues
}

// NavChildrenRule checks drop-down menus in the top navigation bar.
type NavChildrenRule struct{}

func (r *NavChildrenRule) Name() string { return RuleNavChildren }

func (r *NavChildrenRule) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, e := range ctx.Entries {
		if e.Kind != nav.EntryNav {
			continue
		}
		if e.Declared && e.Children == 0 {
			issues = append(issues, Issue{
				Rule:     r.Name(),
				Severity: SeverityError,
				Location: e.Location(),
				Message:  "drop-down menu has no items",
				Fix:      "add items or remove the empty items list",
			})
		}
		if len(e.Trail) > 0 && strings.TrimSpace(e.Text) == "" {
			issues = append(issues, Issue{
				Rule:     r.Name(),
				Severity: SeverityError,
				Location: e.Location(),
				Link:     e.Link,
				Message:  "drop-down item has no text",
			})
		}
	}
	return issues
}

// NavShapeRule checks that each nav item is either a link or a drop-down.
type NavShapeRule struct{}

func (r *NavShapeRule) Name() string { return RuleNavShape }

func (r *NavShapeRule) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, e := range ctx.Entries {
		if e.Kind != nav.EntryNav {
			continue
		}
		if len(e.Trail) == 0 && strings.TrimSpace(e.Text) == "" {
			issues = append(issues, Issue{
				Rule:     r.Name(),
				Severity: SeverityError,
				Location: e.Location(),
				Link:     e.Link,
				Message:  "nav item has no text",
			})
		}
		switch {
		case e.Link == "" && !e.Declared:
			issues = append(issues, Issue{
				Rule:     r.Name(),
				Severity: SeverityWarning,
				Location: e.Location(),
				Message:  "nav item has neither a link nor items",
				Fix:      "add a link or turn it into a drop-down",
			})
		case e.Link != "" && e.Declared:
			issues = append(issues, Issue{
				Rule:     r.Name(),
				Severity: SeverityWarning,
				Location: e.Location(),
				Link:     e.Link,
				Message:  "nav item has both a link and items; the link is ignored by drop-downs",
			})
		}
	}
	return issues
}

// SidebarLinkRule checks that sidebar leaves point at site-relative pages.
type SidebarLinkRule struct{}

func (r *SidebarLinkRule) Name() string { return RuleSidebarLink }

func (r *SidebarLinkRule) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, e := range ctx.Entries {
		if e.Kind != nav.EntrySidebarItem {
			continue
		}
		switch {
		case e.Link == "" && !e.Declared:
			issues = append(issues, Issue{
				Rule:     r.Name(),
				Severity: SeverityError,
				Location: e.Location(),
				Message:  "sidebar item has no link",
				Fix:      "set a link such as " + e.Section,
			})
		case e.Link != "" && !strings.HasPrefix(e.Link, "/"):
			issues = append(issues, Issue{
				Rule:     r.Name(),
				Severity: SeverityError,
				Location: e.Location(),
				Link:     e.Link,
				Message:  "sidebar link must begin with '/'",
				Fix:      "use /" + strings.TrimLeft(e.Link, "./"),
			})
		}
	}
	return issues
}

// SidebarTextRule checks that every group and item has display text.
type SidebarTextRule struct{}

func (r *SidebarTextRule) Name() string { return RuleSidebarText }

func (r *SidebarTextRule) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, e := range ctx.Entries {
		if e.Kind == nav.EntryNav || strings.TrimSpace(e.Text) != "" {
			continue
		}
		what := "sidebar item"
		if e.Kind == nav.EntrySidebarGroup {
			what = "sidebar group"
		}
		issues = append(issues, Issue{
			Rule:     r.Name(),
			Severity: SeverityError,
			Location: e.Location(),
			Link:     e.Link,
			Message:  what + " has no text",
		})
	}
	return issues
}

// OrphanSectionRule reports sidebar sections that nothing links into. Links
// from inside the section itself do not count.
type OrphanSectionRule struct{}

func (r *OrphanSectionRule) Name() string { return RuleOrphanSection }

func (r *OrphanSectionRule) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, prefix := range ctx.Site.Theme.Sidebar.Prefixes() {
		linked := false
		for _, e := range ctx.Entries {
			if e.Link == "" || e.Section == prefix {
				continue
			}
			if linksInto(e.Link, prefix) {
				linked = true
				break
			}
		}
		if !linked {
			issues = append(issues, Issue{
				Rule:     r.Name(),
				Severity: SeverityError,
				Location: "sidebar " + prefix,
				Message:  "sidebar section is not reachable from the nav bar or another section",
				Fix:      "link " + prefix + " from site.theme.nav",
			})
		}
	}
	return issues
}

func linksInto(link, prefix string) bool {
	route := stripRoute(link)
	return strings.HasPrefix(route, prefix) || route+"/" == prefix
}

// PrefixFormatRule checks that section keys are directory-style paths.
type PrefixFormatRule struct{}

func (r *PrefixFormatRule) Name() string { return RulePrefixFormat }

func (r *PrefixFormatRule) Check(ctx *Context) []Issue {
	var issues []Issue
	for _, prefix := range ctx.Site.Theme.Sidebar.Prefixes() {
		if strings.HasPrefix(prefix, "/") && strings.HasSuffix(prefix, "/") {
			continue
		}
		fixed := "/" + strings.Trim(prefix, "/") + "/"
		if fixed == "//" {
			fixed = "/"
		}
		issues = append(issues, Issue{
			Rule:     r.Name(),
			Severity: SeverityError,
			Location: "sidebar " + prefix,
			Message:  fmt.Sprintf("sidebar prefix %q must begin and end with '/'", prefix),
			Fix:      "rename the section to " + fixed,
		})
	}
	return issues
}

// DuplicateLinkRule reports a link listed more than once in one section.
type DuplicateLinkRule struct{}

func (r *DuplicateLinkRule) Name() string { return RuleDuplicateLink }

func (r *DuplicateLinkRule) Check(ctx *Context) []Issue {
	var issues []Issue
	seen := make(map[string]map[string]string) // section -> link -> first location
	for _, e := range ctx.Entries {
		if e.Kind == nav.EntryNav || e.Link == "" {
			continue
		}
		links, ok := seen[e.Section]
		if !ok {
			links = make(map[string]string)
			seen[e.Section] = links
		}
		if first, dup := links[e.Link]; dup {
			issues = append(issues, Issue{
				Rule:     r.Name(),
				Severity: SeverityWarning,
				Location: e.Location(),
				Link:     e.Link,
				Message:  "link already listed at " + first,
			})
			continue
		}
		links[e.Link] = e.Location()
	}
	return issues
}

// ContentPageRule checks that internal links resolve to markdown pages. It
// only runs when a content directory was scanned.
type ContentPageRule struct{}

func (r *ContentPageRule) Name() string { return RuleContentPage }

func (r *ContentPageRule) Check(ctx *Context) []Issue {
	if ctx.Pages == nil {
		return nil
	}
	var issues []Issue
	for _, e := range ctx.Entries {
		if !IsInternalLink(e.Link) {
			continue
		}
		if ctx.Pages.Has(stripRoute(e.Link)) {
			continue
		}
		issues = append(issues, Issue{
			Rule:     r.Name(),
			Severity: SeverityWarning,
			Location: e.Location(),
			Link:     e.Link,
			Message:  "no markdown page found for link",
			Fix:      "create the page or correct the link",
		})
	}
	return issues
}

// IsInternalLink reports whether link is a site-relative path.
func IsInternalLink(link string) bool {
	return strings.HasPrefix(link, "/") && !strings.HasPrefix(link, "//")
}

// stripRoute removes the fragment, query and page extension from a link.
func stripRoute(link string) string {
	if i := strings.IndexAny(link, "#?"); i >= 0 {
		link = link[:i]
	}
	for _, ext := range []string{".html", ".md"} {
		if s, ok := strings.CutSuffix(link, ext); ok {
			return s
		}
	}
	return link
}
