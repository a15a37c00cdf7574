package nav

import "strings"

// EntryKind identifies which tree an Entry belongs to.
type EntryKind string

const (
	EntryNav          EntryKind = "nav"
	EntrySidebarGroup EntryKind = "sidebar-group"
	EntrySidebarItem  EntryKind = "sidebar-item"
)

// Entry is a flattened view of one node in the nav or sidebar trees.
type Entry struct {
	Kind    EntryKind
	Section string   // sidebar path prefix; empty for nav entries
	Trail   []string // texts of the ancestors, outermost first
	Text    string
	Link    string

	// Declared is true when the node carries an items list, even an empty one.
	Declared  bool
	Children  int
	Collapsed *bool // sidebar groups and nested items only
}

// Location renders a human readable position such as "nav › HPC › Slurm".
func (e Entry) Location() string {
	parts := make([]string, 0, len(e.Trail)+2)
	if e.Kind == EntryNav {
		parts = append(parts, "nav")
	} else {
		parts = append(parts, "sidebar "+e.Section)
	}
	parts = append(parts, e.Trail...)
	parts = append(parts, e.Text)
	return strings.Join(parts, " › ")
}

// Entries flattens the nav tree followed by every sidebar section (in prefix
// order), depth-first with parents before children.
func (s *Site) Entries() []Entry {
	var out []Entry

	var walkNav func(trail []string, items []NavItem)
	walkNav = func(trail []string, items []NavItem) {
		for _, it := range items {
			out = append(out, Entry{
				Kind:     EntryNav,
				Trail:    trail,
				Text:     it.Text,
				Link:     it.Link,
				Declared: it.HasChildren(),
				Children: len(it.Items),
			})
			walkNav(appendTrail(trail, it.Text), it.Items)
		}
	}
	walkNav(nil, s.Theme.Nav)

	for _, prefix := range s.Theme.Sidebar.Prefixes() {
		var walkItems func(trail []string, items []SidebarItem)
		walkItems = func(trail []string, items []SidebarItem) {
			for _, it := range items {
				out = append(out, Entry{
					Kind:      EntrySidebarItem,
					Section:   prefix,
					Trail:     trail,
					Text:      it.Text,
					Link:      it.Link,
					Declared:  it.IsGroup(),
					Children:  len(it.Items),
					Collapsed: it.Collapsed,
				})
				walkItems(appendTrail(trail, it.Text), it.Items)
			}
		}
		for _, g := range s.Theme.Sidebar[prefix] {
			out = append(out, Entry{
				Kind:      EntrySidebarGroup,
				Section:   prefix,
				Text:      g.Text,
				Declared:  g.Items != nil,
				Children:  len(g.Items),
				Collapsed: g.Collapsed,
			})
			walkItems([]string{g.Text}, g.Items)
		}
	}
	return out
}

func appendTrail(trail []string, text string) []string {
	out := make([]string, len(trail), len(trail)+1)
	copy(out, trail)
	return append(out, text)
}

// Links returns every nav and sidebar link in Entries order.
func (s *Site) Links() []string {
	var out []string
	for _, e := range s.Entries() {
		if e.Link != "" {
			out = append(out, e.Link)
		}
	}
	return out
}

// Stats summarizes the size of a site's navigation trees.
type Stats struct {
	NavItems     int `json:"nav_items"`
	Sections     int `json:"sections"`
	Groups       int `json:"groups"`
	SidebarItems int `json:"sidebar_items"`
	Links        int `json:"links"`
}

// Stats counts the entries of the site.
func (s *Site) Stats() Stats {
	st := Stats{Sections: len(s.Theme.Sidebar)}
	for _, e := range s.Entries() {
		switch e.Kind {
		case EntryNav:
			st.NavItems++
		case EntrySidebarGroup:
			st.Groups++
		case EntrySidebarItem:
			st.SidebarItems++
		}
		if e.Link != "" {
			st.Links++
		}
	}
	return st
}
