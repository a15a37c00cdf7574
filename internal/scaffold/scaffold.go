// Package scaffold derives sidebar sections from a scanned content tree.
package scaffold

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/docnav/internal/discovery"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/nav"
)

// Section is one generated sidebar section.
type Section struct {
	Prefix string
	Title  string
	Groups nav.SidebarSection
}

// Generate builds one section per top-level content directory, in display
// order. Each section holds a single group named after the directory; its
// index page comes first, subdirectories become nested groups.
func Generate(ix *discovery.Index) []Section {
	var out []Section
	for _, c := range ix.Tree().Children() {
		if c.Dir == nil {
			continue // root pages live outside any section
		}
		d := c.Dir
		out = append(out, Section{
			Prefix: d.Route,
			Title:  d.Title(),
			Groups: nav.SidebarSection{{
				Text:      d.Title(),
				Collapsed: nav.Bool(false),
				Items:     items(d),
			}},
		})
	}
	return out
}

func items(d *discovery.Dir) []nav.SidebarItem {
	var out []nav.SidebarItem
	if d.Index != nil {
		out = append(out, nav.SidebarItem{Text: d.Index.Title, Link: d.Index.Route})
	}
	for _, c := range d.Children() {
		if c.Page != nil {
			out = append(out, nav.SidebarItem{Text: c.Page.Title, Link: c.Page.Route})
			continue
		}
		out = append(out, nav.SidebarItem{
			Text:      c.Dir.Title(),
			Collapsed: nav.Bool(false),
			Items:     items(c.Dir),
		})
	}
	return out
}

// Sidebar collects sections into a Sidebar map.
func Sidebar(sections []Section) nav.Sidebar {
	sb := make(nav.Sidebar, len(sections))
	for _, s := range sections {
		sb[s.Prefix] = s.Groups
	}
	return sb
}

// Merge returns a copy of site with the generated sections whose prefixes the
// site does not define yet. Hand-written sections are kept as they are. A nav
// item is appended for every added section nothing links to, so the section
// stays reachable. The second return value lists the added prefixes.
func Merge(site *nav.Site, sections []Section) (*nav.Site, []string) {
	out := site.Clone()
	if out.Theme.Sidebar == nil {
		out.Theme.Sidebar = nav.Sidebar{}
	}

	var added []string
	for _, s := range sections {
		if _, exists := out.Theme.Sidebar[s.Prefix]; exists {
			slog.Debug("Keeping configured sidebar section", logfields.Prefix(s.Prefix))
			continue
		}
		out.Theme.Sidebar[s.Prefix] = s.Groups
		added = append(added, s.Prefix)

		if !navLinksInto(out.Theme.Nav, s.Prefix) {
			out.Theme.Nav = append(out.Theme.Nav, nav.NavItem{Text: s.Title, Link: s.Prefix})
		}
	}
	return out, added
}

func navLinksInto(items []nav.NavItem, prefix string) bool {
	for _, it := range items {
		if it.Link != "" && (strings.HasPrefix(it.Link, prefix) || it.Link+"/" == prefix) {
			return true
		}
		if navLinksInto(it.Items, prefix) {
			return true
		}
	}
	return false
}
