package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/nav"
)

// ShowCmd implements the 'show' command.
type ShowCmd struct {
	Path    string `arg:"" optional:"" help:"Page path such as /slurm/install/controller; omit to print the nav tree"`
	Format  string `short:"f" default:"text" help:"Output format (text, yaml or json)" enum:"text,yaml,json"`
	Builtin bool   `help:"Show the built-in site instead of the configuration"`
}

// sidebarView is the structured form of a resolved sidebar.
type sidebarView struct {
	Path   string             `json:"path" yaml:"path"`
	Prefix string             `json:"prefix" yaml:"prefix"`
	Groups nav.SidebarSection `json:"groups" yaml:"groups"`
}

func (s *ShowCmd) Run(g *Global, root *CLI) error {
	site, err := s.site(root)
	if err != nil {
		return err
	}
	out := g.out()

	if s.Path == "" {
		if s.Format != "text" {
			return encode(out, s.Format, site.Theme.Nav)
		}
		return printNav(out, site)
	}

	prefix, sec, ok := site.Theme.Sidebar.Resolve(s.Path)
	if !ok {
		return errors.NotFoundError("no sidebar configured for path").
			WithContext("path", s.Path).
			Build()
	}
	if s.Format != "text" {
		return encode(out, s.Format, sidebarView{Path: s.Path, Prefix: prefix, Groups: sec})
	}
	return printSidebar(out, s.Path, prefix, sec)
}

func (s *ShowCmd) site(root *CLI) (*nav.Site, error) {
	if s.Builtin {
		return nav.Default()
	}
	cfg, err := root.loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Site, nil
}

func encode(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func printNav(w io.Writer, site *nav.Site) error {
	p := &treePrinter{w: w}
	p.line(0, site.Title, site.Base)
	var walk func(depth int, items []nav.NavItem)
	walk = func(depth int, items []nav.NavItem) {
		for _, it := range items {
			p.line(depth, it.Text, it.Link)
			walk(depth+1, it.Items)
		}
	}
	walk(1, site.Theme.Nav)
	return p.err
}

func printSidebar(w io.Writer, path, prefix string, sec nav.SidebarSection) error {
	p := &treePrinter{w: w, mark: path}
	p.line(0, "sidebar "+prefix, "")
	var walk func(depth int, items []nav.SidebarItem)
	walk = func(depth int, items []nav.SidebarItem) {
		for _, it := range items {
			p.line(depth, it.Text+collapsedMark(it.Collapsed), it.Link)
			walk(depth+1, it.Items)
		}
	}
	for _, grp := range sec {
		p.line(1, grp.Text+collapsedMark(grp.Collapsed), "")
		walk(2, grp.Items)
	}
	return p.err
}

func collapsedMark(c *bool) string {
	switch {
	case c == nil:
		return ""
	case *c:
		return " [+]"
	default:
		return " [-]"
	}
}

// treePrinter writes indented "text  link" lines and remembers the first
// write error. The line whose link equals mark is flagged with an arrow.
type treePrinter struct {
	w    io.Writer
	mark string
	err  error
}

func (p *treePrinter) line(depth int, text, link string) {
	if p.err != nil {
		return
	}
	prefix := "  "
	if p.mark != "" && link != "" && strings.TrimSuffix(link, "/") == strings.TrimSuffix(p.mark, "/") {
		prefix = "→ "
	}
	s := prefix + strings.Repeat("  ", depth) + text
	if link != "" {
		s += "  " + link
	}
	_, p.err = fmt.Fprintln(p.w, s)
}
