package discovery

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortPages orders pages for display: pages with an explicit front matter
// order come first by that value, the rest follow by title under Chinese
// collation so CJK titles sort by reading rather than code point.
func SortPages(pages []Page) {
	c := collate.New(language.Chinese)
	sort.SliceStable(pages, func(i, j int) bool {
		return less(c, pages[i], pages[j])
	})
}

func sortDirs(dirs []*Dir) {
	c := collate.New(language.Chinese)
	sort.SliceStable(dirs, func(i, j int) bool {
		return less(c, dirs[i].sortKey(), dirs[j].sortKey())
	})
}

func less(c *collate.Collator, a, b Page) bool {
	switch {
	case a.HasOrder && b.HasOrder && a.Order != b.Order:
		return a.Order < b.Order
	case a.HasOrder != b.HasOrder:
		return a.HasOrder
	}
	if r := c.CompareString(a.Title, b.Title); r != 0 {
		return r < 0
	}
	return a.Route < b.Route
}

// Child is either a page or a subdirectory of a Dir.
type Child struct {
	Page *Page
	Dir  *Dir
}

func (c Child) key() Page {
	if c.Dir != nil {
		return c.Dir.sortKey()
	}
	return *c.Page
}

// Children returns the non-index pages and subdirectories of d interleaved in
// display order. Empty subdirectories are left out.
func (d *Dir) Children() []Child {
	out := make([]Child, 0, len(d.Pages)+len(d.Dirs))
	for i := range d.Pages {
		out = append(out, Child{Page: &d.Pages[i]})
	}
	for _, sub := range d.Dirs {
		if !sub.Empty() {
			out = append(out, Child{Dir: sub})
		}
	}
	c := collate.New(language.Chinese)
	sort.SliceStable(out, func(i, j int) bool {
		return less(c, out[i].key(), out[j].key())
	})
	return out
}
