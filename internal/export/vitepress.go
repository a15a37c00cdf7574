package export

import (
	"bytes"
	"encoding/json"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/nav"
)

const tsHeader = `// Generated by docnav from docnav.yaml. Edits here are overwritten.
import { defineConfig } from 'vitepress'

export default defineConfig(`

// vpConfig mirrors the VitePress UserConfig object. Field order is the
// order VitePress documents them in.
type vpConfig struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Lang        string  `json:"lang,omitempty"`
	LastUpdated bool    `json:"lastUpdated,omitempty"`
	Base        string  `json:"base,omitempty"`
	Head        []vpTag `json:"head,omitempty"`
	ThemeConfig vpTheme `json:"themeConfig"`
}

// vpTag encodes as the [tag, attrs] tuple VitePress expects.
type vpTag nav.HeadTag

func (t vpTag) MarshalJSON() ([]byte, error) {
	attrs := t.Attrs
	if attrs == nil {
		attrs = nav.Attrs{}
	}
	return json.Marshal([]any{t.Tag, attrs})
}

type vpTheme struct {
	Logo        string           `json:"logo,omitempty"`
	Nav         []nav.NavItem    `json:"nav,omitempty"`
	Sidebar     nav.Sidebar      `json:"sidebar,omitempty"`
	SocialLinks []nav.SocialLink `json:"socialLinks,omitempty"`
	Footer      *nav.Footer      `json:"footer,omitempty"`
	Search      *nav.Search      `json:"search,omitempty"`
	Outline     *vpOutline       `json:"outline,omitempty"`
}

// vpOutline writes a single level as a number and a range as a pair.
type vpOutline struct {
	Level any    `json:"level,omitempty"`
	Label string `json:"label,omitempty"`
}

func toVitePress(site *nav.Site) vpConfig {
	cfg := vpConfig{
		Title:       site.Title,
		Description: site.Description,
		Lang:        site.Lang,
		LastUpdated: site.LastUpdated,
		Base:        site.Base,
		ThemeConfig: vpTheme{
			Logo:        site.Theme.Logo,
			Nav:         site.Theme.Nav,
			Sidebar:     site.Theme.Sidebar,
			SocialLinks: site.Theme.SocialLinks,
			Footer:      site.Theme.Footer,
			Search:      site.Theme.Search,
		},
	}
	for _, h := range site.Head {
		cfg.Head = append(cfg.Head, vpTag(h))
	}
	if o := site.Theme.Outline; o != nil {
		out := &vpOutline{Label: o.Label}
		switch len(o.Level) {
		case 0:
		case 1:
			out.Level = o.Level[0]
		default:
			out.Level = o.Level
		}
		cfg.ThemeConfig.Outline = out
	}
	return cfg
}

type vitePressRenderer struct {
	format config.Format
}

func (r vitePressRenderer) Format() config.Format { return r.format }

func (r vitePressRenderer) Render(site *nav.Site) ([]File, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toVitePress(site)); err != nil {
		return nil, err
	}

	if r.format == config.FormatVitePressJSON {
		return []File{{Path: "config.json", Data: buf.Bytes()}}, nil
	}

	var ts bytes.Buffer
	ts.WriteString(tsHeader)
	ts.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	ts.WriteString(")\n")
	return []File{{Path: "config.mts", Data: ts.Bytes()}}, nil
}
