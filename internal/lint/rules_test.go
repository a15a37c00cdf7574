package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnav/internal/nav"
)

func defaultSite(t *testing.T) *nav.Site {
	t.Helper()
	s, err := nav.Default()
	require.NoError(t, err)
	return s
}

func rulesOf(r *Result) []string {
	var out []string
	for _, i := range r.Issues {
		out = append(out, i.Rule)
	}
	return out
}

func TestCheck_DefaultSiteIsClean(t *testing.T) {
	result := Check(defaultSite(t), Options{})
	assert.Empty(t, result.Issues)
	assert.False(t, result.HasErrors())
	assert.Positive(t, result.EntriesTotal)
}

func TestCheck_DoesNotMutate(t *testing.T) {
	s := defaultSite(t)
	s.Theme.Nav = append(s.Theme.Nav, nav.NavItem{Text: "Broken", Items: []nav.NavItem{}})
	before := s.Hash()
	Check(s, Options{})
	assert.Equal(t, before, s.Hash())
}

func TestRules(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(s *nav.Site)
		rule     string
		severity Severity
		location string
	}{
		{
			name:     "missing title",
			mutate:   func(s *nav.Site) { s.Title = "" },
			rule:     RuleRequiredKeys,
			severity: SeverityError,
			location: "site",
		},
		{
			name:     "empty nav",
			mutate:   func(s *nav.Site) { s.Theme.Nav = nil; s.Theme.Sidebar = nil },
			rule:     RuleRequiredKeys,
			severity: SeverityError,
			location: "nav",
		},
		{
			name:     "empty drop-down",
			mutate:   func(s *nav.Site) { s.Theme.Nav[3].Items = []nav.NavItem{} },
			rule:     RuleNavChildren,
			severity: SeverityError,
			location: "nav › HPC",
		},
		{
			name:     "drop-down child without text",
			mutate:   func(s *nav.Site) { s.Theme.Nav[3].Items[1].Text = "" },
			rule:     RuleNavChildren,
			severity: SeverityError,
			location: "nav › HPC › ",
		},
		{
			name:     "nav item with neither link nor items",
			mutate:   func(s *nav.Site) { s.Theme.Nav[0].Link = "" },
			rule:     RuleNavShape,
			severity: SeverityWarning,
			location: "nav › 首页",
		},
		{
			name: "nav item with link and items",
			mutate: func(s *nav.Site) {
				s.Theme.Nav[3].Link = "/hpc/"
			},
			rule:     RuleNavShape,
			severity: SeverityWarning,
			location: "nav › HPC",
		},
		{
			name:     "sidebar item without link",
			mutate:   func(s *nav.Site) { s.Theme.Sidebar["/go/"][0].Items[1].Link = "" },
			rule:     RuleSidebarLink,
			severity: SeverityError,
			location: "sidebar /go/ › Go 编程 › 基础语法",
		},
		{
			name:     "relative sidebar link",
			mutate:   func(s *nav.Site) { s.Theme.Sidebar["/rust/"][0].Items[1].Link = "rust/ownership" },
			rule:     RuleSidebarLink,
			severity: SeverityError,
			location: "sidebar /rust/ › Rust 编程 › 所有权",
		},
		{
			name:     "group without text",
			mutate:   func(s *nav.Site) { s.Theme.Sidebar["/linux/"][0].Text = "" },
			rule:     RuleSidebarText,
			severity: SeverityError,
			location: "sidebar /linux/ › ",
		},
		{
			name: "orphan section",
			mutate: func(s *nav.Site) {
				s.Theme.Sidebar["/java/"] = nav.SidebarSection{{
					Text:  "Java",
					Items: []nav.SidebarItem{{Text: "Intro", Link: "/java/"}},
				}}
			},
			rule:     RuleOrphanSection,
			severity: SeverityError,
			location: "sidebar /java/",
		},
		{
			name: "prefix without trailing slash",
			mutate: func(s *nav.Site) {
				s.Theme.Sidebar["/go"] = s.Theme.Sidebar["/go/"]
				delete(s.Theme.Sidebar, "/go/")
			},
			rule:     RulePrefixFormat,
			severity: SeverityError,
			location: "sidebar /go",
		},
		{
			name: "duplicate link in section",
			mutate: func(s *nav.Site) {
				g := &s.Theme.Sidebar["/go/"][0]
				g.Items = append(g.Items, nav.SidebarItem{Text: "Again", Link: "/go/concurrency"})
			},
			rule:     RuleDuplicateLink,
			severity: SeverityWarning,
			location: "sidebar /go/ › Go 编程 › Again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defaultSite(t)
			tt.mutate(s)
			result := Check(s, Options{})

			var found *Issue
			for i := range result.Issues {
				if result.Issues[i].Rule == tt.rule {
					found = &result.Issues[i]
					break
				}
			}
			require.NotNil(t, found, "expected %s issue, got %v", tt.rule, rulesOf(result))
			assert.Equal(t, tt.severity, found.Severity)
			assert.Equal(t, tt.location, found.Location)
		})
	}
}

func TestCheck_Quiet(t *testing.T) {
	s := defaultSite(t)
	s.Theme.Nav[0].Link = ""
	s.Lang = ""

	loud := Check(s, Options{})
	assert.True(t, loud.HasWarnings())

	quiet := Check(s, Options{Quiet: true})
	assert.False(t, quiet.HasWarnings())
	assert.Equal(t, []string{RuleRequiredKeys}, rulesOf(quiet))
}

type pageSet map[string]bool

func (p pageSet) Has(route string) bool { return p[route] }
func (p pageSet) Len() int              { return len(p) }

func TestContentPageRule(t *testing.T) {
	s := defaultSite(t)
	pages := pageSet{}
	for _, l := range s.Links() {
		pages[l] = true
	}
	delete(pages, "/rust/async")
	s.Theme.SocialLinks = append(s.Theme.SocialLinks, nav.SocialLink{Icon: "x", Link: "https://x.com/notes"})
	s.Theme.Sidebar["/go/"][0].Items[2].Link = "/go/data-structures#maps"

	result := Check(s, Options{Pages: pages})
	require.Len(t, result.Issues, 1, rulesOf(result))
	issue := result.Issues[0]
	assert.Equal(t, RuleContentPage, issue.Rule)
	assert.Equal(t, "/rust/async", issue.Link)
	assert.Equal(t, len(pages), result.PagesTotal)

	// without pages the rule is inactive
	assert.Empty(t, Check(s, Options{}).Issues)
}

func TestIsInternalLink(t *testing.T) {
	assert.True(t, IsInternalLink("/go/"))
	assert.False(t, IsInternalLink("//cdn.example.com/x"))
	assert.False(t, IsInternalLink("https://example.com"))
	assert.False(t, IsInternalLink(""))
}

func TestStripRoute(t *testing.T) {
	tests := map[string]string{
		"/go/":               "/go/",
		"/go/basic-syntax#x": "/go/basic-syntax",
		"/a/b.html":          "/a/b",
		"/a/b.md?x=1":        "/a/b",
	}
	for in, want := range tests {
		assert.Equal(t, want, stripRoute(in), in)
	}
}
