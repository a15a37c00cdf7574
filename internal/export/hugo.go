package export

import (
	"bytes"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/nav"
)

const (
	hugoConfigFile  = "hugo.yaml"
	hugoHeadPartial = "layouts/partials/custom/head-end.html"
	weightStep      = 10
)

type hugoRenderer struct{}

func (hugoRenderer) Format() config.Format { return config.FormatHugo }

func (hugoRenderer) Render(site *nav.Site) ([]File, error) {
	root := hugoConfig(site)
	data, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal Hugo config: %w", err)
	}

	head, err := renderHead(site.Head)
	if err != nil {
		return nil, fmt.Errorf("failed to render head partial: %w", err)
	}

	return []File{
		{Path: hugoConfigFile, Data: data},
		{Path: hugoHeadPartial, Data: head},
	}, nil
}

// hugoConfig builds the hugo.yaml document. The top bar becomes menu.main
// with parent/identifier pairs for drop-downs; each sidebar section becomes
// its own menu named sidebar_<section>.
func hugoConfig(site *nav.Site) map[string]any {
	params := map[string]any{}
	root := map[string]any{
		"title":        site.Title,
		"baseURL":      site.Base,
		"languageCode": site.Lang,
		"params":       params,
	}
	if site.Description != "" {
		params["description"] = site.Description
	}
	if site.LastUpdated {
		root["enableGitInfo"] = true
	}

	prefixes := site.Theme.Sidebar.Prefixes()
	menuName := menuNames(prefixes)
	menus := map[string]any{}
	if len(site.Theme.Nav) > 0 {
		menus["main"] = navMenu(site.Theme.Nav, "", "nav")
	}
	for _, prefix := range prefixes {
		name := menuName[prefix]
		menus[name] = sidebarMenu(site.Theme.Sidebar[prefix], name)
	}
	if len(menus) > 0 {
		root["menu"] = menus
	}

	if site.Theme.Logo != "" {
		params["logo"] = site.Theme.Logo
	}
	if f := site.Theme.Footer; f != nil {
		params["footer"] = map[string]any{"message": f.Message, "copyright": f.Copyright}
	}
	if s := site.Theme.Search; s != nil {
		params["search"] = map[string]any{"enable": true, "provider": s.Provider}
	}
	if o := site.Theme.Outline; o != nil {
		toc := map[string]any{}
		if len(o.Level) > 0 {
			toc["startLevel"] = o.Level[0]
			toc["endLevel"] = o.Level[len(o.Level)-1]
		}
		if o.Label != "" {
			toc["label"] = o.Label
		}
		params["outline"] = toc
	}
	if len(site.Theme.SocialLinks) > 0 {
		var social []map[string]any
		for _, l := range site.Theme.SocialLinks {
			social = append(social, map[string]any{"icon": l.Icon, "url": l.Link})
		}
		params["social"] = social
	}
	sections := map[string]any{}
	for _, prefix := range prefixes {
		sections[prefix] = menuName[prefix]
	}
	if len(sections) > 0 {
		params["sidebarMenus"] = sections
	}
	return root
}

func navMenu(items []nav.NavItem, parent, idPrefix string) []map[string]any {
	var out []map[string]any
	for i, it := range items {
		id := fmt.Sprintf("%s-%d", idPrefix, i+1)
		entry := map[string]any{
			"name":       it.Text,
			"identifier": id,
			"weight":     (i + 1) * weightStep,
		}
		if it.Link != "" {
			entry["url"] = it.Link
		}
		if parent != "" {
			entry["parent"] = parent
		}
		out = append(out, entry)
		out = append(out, navMenu(it.Items, id, id)...)
	}
	return out
}

func sidebarMenu(sec nav.SidebarSection, menu string) []map[string]any {
	var out []map[string]any
	for gi, g := range sec {
		id := fmt.Sprintf("%s-%d", menu, gi+1)
		entry := map[string]any{
			"name":       g.Text,
			"identifier": id,
			"weight":     (gi + 1) * weightStep,
		}
		if g.Collapsed != nil {
			entry["params"] = map[string]any{"collapsed": *g.Collapsed}
		}
		out = append(out, entry)
		out = append(out, sidebarItems(g.Items, id)...)
	}
	return out
}

func sidebarItems(items []nav.SidebarItem, parent string) []map[string]any {
	var out []map[string]any
	for i, it := range items {
		id := fmt.Sprintf("%s-%d", parent, i+1)
		entry := map[string]any{
			"name":       it.Text,
			"identifier": id,
			"parent":     parent,
			"weight":     (i + 1) * weightStep,
		}
		if it.Link != "" {
			entry["url"] = it.Link
		}
		if it.Collapsed != nil {
			entry["params"] = map[string]any{"collapsed": *it.Collapsed}
		}
		out = append(out, entry)
		out = append(out, sidebarItems(it.Items, id)...)
	}
	return out
}

// renderHead renders head tags as HTML elements, one per line, for the
// theme's head-end hook.
func renderHead(tags []nav.HeadTag) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{{/* Generated by docnav from docnav.yaml. */}}\n")
	for _, t := range tags {
		n := &html.Node{
			Type:     html.ElementNode,
			Data:     t.Tag,
			DataAtom: atom.Lookup([]byte(t.Tag)),
		}
		for _, a := range t.Attrs {
			n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Value})
		}
		if err := html.Render(&buf, n); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
