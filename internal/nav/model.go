// Package nav models a documentation site's navigation configuration: site metadata,
// the top navigation bar and the sidebar trees selected by URL path prefix.
//
// The model is plain data. It is built once (from the embedded default or a
// configuration file) and treated as immutable afterwards; operations that need a
// modified site work on a Clone.
package nav

// Site is the root of a site's navigation configuration.
type Site struct {
	Title       string    `yaml:"title" json:"title"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Lang        string    `yaml:"lang,omitempty" json:"lang,omitempty"`
	Base        string    `yaml:"base,omitempty" json:"base,omitempty"`
	LastUpdated bool      `yaml:"last_updated,omitempty" json:"lastUpdated,omitempty"`
	Head        []HeadTag `yaml:"head,omitempty" json:"head,omitempty"`
	Theme       Theme     `yaml:"theme" json:"theme"`
}

// HeadTag is an extra element injected into every page's <head>.
type HeadTag struct {
	Tag   string `yaml:"tag" json:"tag"`
	Attrs Attrs  `yaml:"attrs,omitempty" json:"attrs,omitempty"`
}

// Theme holds the theme-level configuration: logo, menus and page chrome.
type Theme struct {
	Logo        string       `yaml:"logo,omitempty" json:"logo,omitempty"`
	Nav         []NavItem    `yaml:"nav,omitempty" json:"nav,omitempty"`
	Sidebar     Sidebar      `yaml:"sidebar,omitempty" json:"sidebar,omitempty"`
	SocialLinks []SocialLink `yaml:"social_links,omitempty" json:"socialLinks,omitempty"`
	Footer      *Footer      `yaml:"footer,omitempty" json:"footer,omitempty"`
	Search      *Search      `yaml:"search,omitempty" json:"search,omitempty"`
	Outline     *Outline     `yaml:"outline,omitempty" json:"outline,omitempty"`
}

// NavItem is a top navigation entry. Well-formed entries carry either a Link or a
// drop-down list of Items; the model itself does not enforce this.
type NavItem struct {
	Text  string    `yaml:"text" json:"text"`
	Link  string    `yaml:"link,omitempty" json:"link,omitempty"`
	Items []NavItem `yaml:"items,omitempty" json:"items,omitempty"`
}

// HasChildren reports whether the item declares a drop-down list (possibly empty).
func (n NavItem) HasChildren() bool { return n.Items != nil }

// SidebarGroup is a titled, optionally collapsible cluster of sidebar links.
// A nil Collapsed means the group cannot be collapsed.
type SidebarGroup struct {
	Text      string        `yaml:"text" json:"text"`
	Collapsed *bool         `yaml:"collapsed,omitempty" json:"collapsed,omitempty"`
	Items     []SidebarItem `yaml:"items,omitempty" json:"items,omitempty"`
}

// SidebarItem is a sidebar link. An item with Items is itself a nested group.
type SidebarItem struct {
	Text      string        `yaml:"text" json:"text"`
	Link      string        `yaml:"link,omitempty" json:"link,omitempty"`
	Collapsed *bool         `yaml:"collapsed,omitempty" json:"collapsed,omitempty"`
	Items     []SidebarItem `yaml:"items,omitempty" json:"items,omitempty"`
}

// IsGroup reports whether the item nests further items.
func (i SidebarItem) IsGroup() bool { return i.Items != nil }

// SocialLink is an icon link shown in the navigation bar.
type SocialLink struct {
	Icon string `yaml:"icon" json:"icon"`
	Link string `yaml:"link" json:"link"`
}

// Footer is the text shown at the bottom of every page.
type Footer struct {
	Message   string `yaml:"message,omitempty" json:"message,omitempty"`
	Copyright string `yaml:"copyright,omitempty" json:"copyright,omitempty"`
}

// Search selects the site search provider (e.g. "local", "algolia").
type Search struct {
	Provider string `yaml:"provider" json:"provider"`
}

// Outline configures the in-page table of contents. Level holds either a single
// heading level or a [min, max] range.
type Outline struct {
	Level []int  `yaml:"level,omitempty,flow" json:"level,omitempty"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Bool returns a pointer to b, for the optional Collapsed flags.
func Bool(b bool) *bool { return &b }
