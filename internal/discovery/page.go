// Package discovery indexes the markdown pages of a documentation content
// directory so links can be checked and sidebars generated from the tree.
package discovery

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/inful/mdfp"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// TitleSource records where a page title came from.
type TitleSource string

const (
	TitleFromFrontMatter TitleSource = "frontmatter"
	TitleFromHeading     TitleSource = "heading"
	TitleFromFileName    TitleSource = "filename"
)

// Page is one markdown file mapped to its site route.
type Page struct {
	Route       string // e.g. "/go/basic-syntax", "/go/" for go/index.md
	File        string // slash-separated path relative to the content root
	Title       string
	TitleSource TitleSource
	Order       int
	HasOrder    bool
	Fingerprint string
}

// IsIndex reports whether the page is a directory index.
func (p Page) IsIndex() bool {
	return strings.HasSuffix(p.Route, "/")
}

// ErrUnterminatedFrontMatter is returned for a document that opens a front
// matter block without closing it.
var ErrUnterminatedFrontMatter = errors.New("front matter opened with --- but never closed")

// RouteFor maps a content-relative markdown path to its route.
func RouteFor(rel string) string {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	dir, base := path.Split(rel)
	if base == "index" {
		return "/" + dir
	}
	return "/" + rel
}

// parsePage builds a Page from the raw file contents.
func parsePage(rel string, content []byte) (Page, error) {
	page := Page{Route: RouteFor(rel), File: rel}

	raw, body, err := splitFrontMatter(content)
	if err != nil {
		return page, fmt.Errorf("%s: %w", rel, err)
	}

	fields := map[string]any{}
	if len(raw) > 0 {
		if err := yaml.Unmarshal(raw, &fields); err != nil {
			return page, fmt.Errorf("%s: front matter: %w", rel, err)
		}
		if fields == nil {
			fields = map[string]any{}
		}
	}

	if t, ok := fields["title"].(string); ok && strings.TrimSpace(t) != "" {
		page.Title, page.TitleSource = strings.TrimSpace(t), TitleFromFrontMatter
	} else if h := firstHeading(body); h != "" {
		page.Title, page.TitleSource = h, TitleFromHeading
	} else {
		page.Title, page.TitleSource = titleFromName(rel), TitleFromFileName
	}

	if o, ok := fields["order"].(int); ok {
		page.Order, page.HasOrder = o, true
	}

	fp, err := fingerprint(fields, body)
	if err != nil {
		return page, fmt.Errorf("%s: fingerprint: %w", rel, err)
	}
	page.Fingerprint = fp
	return page, nil
}

// splitFrontMatter separates a leading "---" YAML block from the body.
// Documents without one return a nil block and the full input.
func splitFrontMatter(content []byte) (frontMatter, body []byte, err error) {
	nl := []byte("\n")
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		nl = []byte("\r\n")
	}
	open := append([]byte("---"), nl...)
	if !bytes.HasPrefix(content, open) {
		return nil, content, nil
	}
	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], nil
	}

	closing := append(append([]byte{}, nl...), open...)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		// a closing delimiter at EOF without a trailing newline
		if bytes.HasSuffix(rest, append(append([]byte{}, nl...), "---"...)) {
			return rest[:len(rest)-len(nl)-3], nil, nil
		}
		return nil, nil, ErrUnterminatedFrontMatter
	}
	return rest[:idx+len(nl)], rest[idx+len(closing):], nil
}

// firstHeading returns the plain text of the first level-1 heading.
func firstHeading(body []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok && h.Level == 1 {
			title = strings.TrimSpace(plainText(h, body))
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return title
}

func plainText(n gmast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *gmast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(node.Value)
		default:
			b.WriteString(plainText(c, source))
		}
	}
	return b.String()
}

// titleFromName turns "basic-syntax.md" into "Basic Syntax". Index pages
// take the name of their directory.
func titleFromName(rel string) string {
	name := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	if name == "index" {
		name = path.Base(path.Dir(rel))
		if name == "." || name == "/" {
			return "Home"
		}
	}
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return cases.Title(language.Und).String(name)
}

// fingerprint hashes the page body together with its front matter, leaving
// out fields that tooling rewrites on its own.
func fingerprint(fields map[string]any, body []byte) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField || k == "lastmod" {
			continue
		}
		hashed[k] = v
	}

	fm := ""
	if len(hashed) > 0 {
		out, err := yaml.Marshal(hashed)
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(out), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}
