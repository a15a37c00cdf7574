package nav

import (
	"sort"
	"strings"
)

// Sidebar maps a URL path prefix (e.g. "/go/") to the sidebar shown on pages
// under that prefix.
type Sidebar map[string]SidebarSection

// SidebarSection is the ordered list of groups shown for one path prefix.
type SidebarSection []SidebarGroup

// Prefixes returns the configured path prefixes in sorted order.
func (sb Sidebar) Prefixes() []string {
	out := make([]string, 0, len(sb))
	for p := range sb {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Section returns the section registered for exactly prefix.
func (sb Sidebar) Section(prefix string) (SidebarSection, bool) {
	sec, ok := sb[prefix]
	return sec, ok
}

// Resolve selects the section for a page path: the one whose prefix is the longest
// prefix of path. "/go" resolves like "/go/".
func (sb Sidebar) Resolve(path string) (prefix string, sec SidebarSection, ok bool) {
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for p, s := range sb {
		if !strings.HasPrefix(path, p) && path+"/" != p {
			continue
		}
		if len(p) > len(prefix) {
			prefix, sec, ok = p, s, true
		}
	}
	return prefix, sec, ok
}

// Links returns every link in the section in tree order.
func (sec SidebarSection) Links() []string {
	var out []string
	var walk func(items []SidebarItem)
	walk = func(items []SidebarItem) {
		for _, it := range items {
			if it.Link != "" {
				out = append(out, it.Link)
			}
			walk(it.Items)
		}
	}
	for _, g := range sec {
		walk(g.Items)
	}
	return out
}
