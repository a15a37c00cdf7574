package nav

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrEmptyDocument is returned when decoding input that holds no site document.
var ErrEmptyDocument = errors.New("empty site document")

// EncodeYAML writes the site as YAML with two-space indentation.
func EncodeYAML(w io.Writer, s *Site) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode site yaml: %w", err)
	}
	return enc.Close()
}

// DecodeYAML reads a site from YAML. Unknown keys are rejected.
func DecodeYAML(r io.Reader) (*Site, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Site
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, fmt.Errorf("decode site yaml: %w", err)
	}
	return &s, nil
}

// EncodeJSON writes the site as indented JSON without HTML escaping.
func EncodeJSON(w io.Writer, s *Site) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode site json: %w", err)
	}
	return nil
}

// DecodeJSON reads a site from JSON. Unknown keys are rejected.
func DecodeJSON(r io.Reader) (*Site, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var s Site
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, fmt.Errorf("decode site json: %w", err)
	}
	return &s, nil
}

// Hash returns a stable hex sha256 over the canonical JSON form. Map keys are
// sorted by encoding/json, so equal sites always hash equally.
func (s *Site) Hash() string {
	if s == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, s); err != nil {
		return ""
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// Clone returns a deep copy of the site.
func (s *Site) Clone() *Site {
	if s == nil {
		return nil
	}
	out := *s
	if s.Head != nil {
		out.Head = make([]HeadTag, len(s.Head))
		for i, h := range s.Head {
			out.Head[i] = HeadTag{Tag: h.Tag}
			if h.Attrs != nil {
				out.Head[i].Attrs = append(Attrs{}, h.Attrs...)
			}
		}
	}
	out.Theme.Nav = cloneNav(s.Theme.Nav)
	if s.Theme.Sidebar != nil {
		out.Theme.Sidebar = make(Sidebar, len(s.Theme.Sidebar))
		for prefix, section := range s.Theme.Sidebar {
			out.Theme.Sidebar[prefix] = section.clone()
		}
	}
	if s.Theme.SocialLinks != nil {
		out.Theme.SocialLinks = append([]SocialLink{}, s.Theme.SocialLinks...)
	}
	if s.Theme.Footer != nil {
		f := *s.Theme.Footer
		out.Theme.Footer = &f
	}
	if s.Theme.Search != nil {
		sr := *s.Theme.Search
		out.Theme.Search = &sr
	}
	if s.Theme.Outline != nil {
		o := *s.Theme.Outline
		if o.Level != nil {
			o.Level = append([]int{}, o.Level...)
		}
		out.Theme.Outline = &o
	}
	return &out
}

func cloneNav(items []NavItem) []NavItem {
	if items == nil {
		return nil
	}
	out := make([]NavItem, len(items))
	for i, it := range items {
		out[i] = NavItem{Text: it.Text, Link: it.Link, Items: cloneNav(it.Items)}
	}
	return out
}

func (sec SidebarSection) clone() SidebarSection {
	if sec == nil {
		return nil
	}
	out := make(SidebarSection, len(sec))
	for i, g := range sec {
		out[i] = SidebarGroup{Text: g.Text, Collapsed: cloneBool(g.Collapsed), Items: cloneSidebarItems(g.Items)}
	}
	return out
}

func cloneSidebarItems(items []SidebarItem) []SidebarItem {
	if items == nil {
		return nil
	}
	out := make([]SidebarItem, len(items))
	for i, it := range items {
		out[i] = SidebarItem{
			Text:      it.Text,
			Link:      it.Link,
			Collapsed: cloneBool(it.Collapsed),
			Items:     cloneSidebarItems(it.Items),
		}
	}
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// The item types encode through these shapes so that a declared but empty
// items list is written as [] instead of being dropped; nil stays omitted.

type navItemDoc struct {
	Text  string     `yaml:"text" json:"text"`
	Link  string     `yaml:"link,omitempty" json:"link,omitempty"`
	Items *[]NavItem `yaml:"items,omitempty" json:"items,omitempty"`
}

type sidebarGroupDoc struct {
	Text      string         `yaml:"text" json:"text"`
	Collapsed *bool          `yaml:"collapsed,omitempty" json:"collapsed,omitempty"`
	Items     *[]SidebarItem `yaml:"items,omitempty" json:"items,omitempty"`
}

type sidebarItemDoc struct {
	Text      string         `yaml:"text" json:"text"`
	Link      string         `yaml:"link,omitempty" json:"link,omitempty"`
	Collapsed *bool          `yaml:"collapsed,omitempty" json:"collapsed,omitempty"`
	Items     *[]SidebarItem `yaml:"items,omitempty" json:"items,omitempty"`
}

func itemsRef[T any](items []T) *[]T {
	if items == nil {
		return nil
	}
	return &items
}

func (n NavItem) doc() navItemDoc {
	return navItemDoc{Text: n.Text, Link: n.Link, Items: itemsRef(n.Items)}
}

func (g SidebarGroup) doc() sidebarGroupDoc {
	return sidebarGroupDoc{Text: g.Text, Collapsed: g.Collapsed, Items: itemsRef(g.Items)}
}

func (i SidebarItem) doc() sidebarItemDoc {
	return sidebarItemDoc{Text: i.Text, Link: i.Link, Collapsed: i.Collapsed, Items: itemsRef(i.Items)}
}

func (n NavItem) MarshalYAML() (any, error)      { return n.doc(), nil }
func (g SidebarGroup) MarshalYAML() (any, error) { return g.doc(), nil }
func (i SidebarItem) MarshalYAML() (any, error)  { return i.doc(), nil }

func (n NavItem) MarshalJSON() ([]byte, error)      { return marshalJSON(n.doc()) }
func (g SidebarGroup) MarshalJSON() ([]byte, error) { return marshalJSON(g.doc()) }
func (i SidebarItem) MarshalJSON() ([]byte, error)  { return marshalJSON(i.doc()) }

// marshalJSON encodes v without HTML escaping, matching EncodeJSON.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
