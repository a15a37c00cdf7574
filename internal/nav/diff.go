package nav

import (
	"fmt"
	"strconv"
	"strings"
)

// ChangeOp classifies a difference between two sites.
type ChangeOp string

const (
	ChangeAdded   ChangeOp = "added"
	ChangeRemoved ChangeOp = "removed"
	ChangeChanged ChangeOp = "changed"
)

// Change is one difference between two revisions of a site.
type Change struct {
	Op       ChangeOp `json:"op"`
	Location string   `json:"location"`
	Before   string   `json:"before,omitempty"`
	After    string   `json:"after,omitempty"`
}

func (c Change) String() string {
	switch c.Op {
	case ChangeAdded:
		return fmt.Sprintf("+ %s %s", c.Location, c.After)
	case ChangeRemoved:
		return fmt.Sprintf("- %s %s", c.Location, c.Before)
	default:
		return fmt.Sprintf("~ %s: %q -> %q", c.Location, c.Before, c.After)
	}
}

// Diff lists what changed from a to b: site metadata and page chrome, head tags,
// social links, sidebar sections, and nav or sidebar entries matched by their
// location in the tree. Added and changed entries follow b's order; removed
// entries follow a's order and come after them. A reordering that changes no
// entry is reported as one "entry order" change.
func Diff(a, b *Site) []Change {
	var out []Change

	field := func(name, before, after string) {
		switch {
		case before == after:
		case before == "":
			out = append(out, Change{Op: ChangeAdded, Location: name, After: after})
		case after == "":
			out = append(out, Change{Op: ChangeRemoved, Location: name, Before: before})
		default:
			out = append(out, Change{Op: ChangeChanged, Location: name, Before: before, After: after})
		}
	}
	field("title", a.Title, b.Title)
	field("description", a.Description, b.Description)
	field("lang", a.Lang, b.Lang)
	field("base", a.Base, b.Base)
	field("last_updated", strconv.FormatBool(a.LastUpdated), strconv.FormatBool(b.LastUpdated))
	for i := range max(len(a.Head), len(b.Head)) {
		field(fmt.Sprintf("head[%d]", i), headAt(a.Head, i), headAt(b.Head, i))
	}
	field("theme.logo", a.Theme.Logo, b.Theme.Logo)
	for i := range max(len(a.Theme.SocialLinks), len(b.Theme.SocialLinks)) {
		field(fmt.Sprintf("theme.social_links[%d]", i), socialAt(a.Theme.SocialLinks, i), socialAt(b.Theme.SocialLinks, i))
	}
	fa, fb := a.Theme.Footer, b.Theme.Footer
	field("theme.footer.message", footerMessage(fa), footerMessage(fb))
	field("theme.footer.copyright", footerCopyright(fa), footerCopyright(fb))
	field("theme.search.provider", searchProvider(a.Theme.Search), searchProvider(b.Theme.Search))
	field("theme.outline.level", outlineLevel(a.Theme.Outline), outlineLevel(b.Theme.Outline))
	field("theme.outline.label", outlineLabel(a.Theme.Outline), outlineLabel(b.Theme.Outline))

	for _, p := range b.Theme.Sidebar.Prefixes() {
		if _, ok := a.Theme.Sidebar[p]; !ok {
			out = append(out, Change{Op: ChangeAdded, Location: "sidebar section", After: p})
		}
	}
	for _, p := range a.Theme.Sidebar.Prefixes() {
		if _, ok := b.Theme.Sidebar[p]; !ok {
			out = append(out, Change{Op: ChangeRemoved, Location: "sidebar section", Before: p})
		}
	}

	before := keyedEntries(a)
	after := keyedEntries(b)
	for _, ke := range after.order {
		old, ok := before.byKey[ke]
		cur := after.byKey[ke]
		switch {
		case !ok:
			out = append(out, Change{Op: ChangeAdded, Location: ke, After: cur.Link})
		case old.Link != cur.Link:
			out = append(out, Change{Op: ChangeChanged, Location: ke, Before: old.Link, After: cur.Link})
		}
		if ok && collapsedString(old.Collapsed) != collapsedString(cur.Collapsed) {
			out = append(out, Change{
				Op:       ChangeChanged,
				Location: ke + " (collapsed)",
				Before:   collapsedString(old.Collapsed),
				After:    collapsedString(cur.Collapsed),
			})
		}
	}
	for _, ke := range before.order {
		if _, ok := after.byKey[ke]; !ok {
			out = append(out, Change{Op: ChangeRemoved, Location: ke, Before: before.byKey[ke].Link})
		}
	}
	if was, now, moved := firstMove(before, after); moved {
		out = append(out, Change{Op: ChangeChanged, Location: "entry order", Before: was, After: now})
	}
	return out
}

// firstMove compares the order of the entries both sites share and returns the
// keys found at the first position where they disagree.
func firstMove(a, b entryIndex) (before, after string, moved bool) {
	common := func(x, y entryIndex) []string {
		var keys []string
		for _, k := range x.order {
			if _, ok := y.byKey[k]; ok {
				keys = append(keys, k)
			}
		}
		return keys
	}
	ka, kb := common(a, b), common(b, a)
	for i := range ka {
		if ka[i] != kb[i] {
			return ka[i], kb[i], true
		}
	}
	return "", "", false
}

func headAt(tags []HeadTag, i int) string {
	if i >= len(tags) {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<" + tags[i].Tag)
	for _, kv := range tags[i].Attrs {
		fmt.Fprintf(&sb, " %s=%q", kv.Key, kv.Value)
	}
	sb.WriteString(">")
	return sb.String()
}

func socialAt(links []SocialLink, i int) string {
	if i >= len(links) {
		return ""
	}
	return links[i].Icon + " " + links[i].Link
}

func footerMessage(f *Footer) string {
	if f == nil {
		return ""
	}
	return f.Message
}

func footerCopyright(f *Footer) string {
	if f == nil {
		return ""
	}
	return f.Copyright
}

func searchProvider(s *Search) string {
	if s == nil {
		return ""
	}
	return s.Provider
}

func outlineLevel(o *Outline) string {
	if o == nil || len(o.Level) == 0 {
		return ""
	}
	return fmt.Sprint(o.Level)
}

func outlineLabel(o *Outline) string {
	if o == nil {
		return ""
	}
	return o.Label
}

func collapsedString(c *bool) string {
	if c == nil {
		return "unset"
	}
	return strconv.FormatBool(*c)
}

type entryIndex struct {
	order []string
	byKey map[string]Entry
}

// keyedEntries indexes entries by location; repeated locations get a "#n" suffix so
// siblings sharing a text stay distinguishable.
func keyedEntries(s *Site) entryIndex {
	idx := entryIndex{byKey: map[string]Entry{}}
	seen := map[string]int{}
	for _, e := range s.Entries() {
		key := e.Location()
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s#%d", key, n)
		}
		idx.order = append(idx.order, key)
		idx.byKey[key] = e
	}
	return idx
}
