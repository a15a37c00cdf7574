package discovery

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// skippedDirs are never descended into, in addition to hidden directories.
var skippedDirs = map[string]bool{
	"node_modules": true,
	"public":       true,
	".vitepress":   true,
}

// SkipDir reports whether a directory named name is left out of the content
// tree.
func SkipDir(name string) bool {
	return strings.HasPrefix(name, ".") || skippedDirs[name]
}

// IsPage reports whether a file named name is a content page.
func IsPage(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.EqualFold(filepath.Ext(name), ".md")
}

// Dir is one directory of the content tree.
type Dir struct {
	Route string // "/go/"
	Name  string // "go"; "" for the root
	Index *Page  // the directory's index.md, if any
	Pages []Page // non-index pages, ordered
	Dirs  []*Dir // subdirectories, ordered
}

// Title returns the index page title, or the title-cased directory name.
func (d *Dir) Title() string {
	if d.Index != nil {
		return d.Index.Title
	}
	if d.Name == "" {
		return "Home"
	}
	return titleFromName(d.Name + "/index.md")
}

func (d *Dir) sortKey() Page {
	if d.Index != nil {
		return *d.Index
	}
	return Page{Route: d.Route, Title: d.Title()}
}

// Empty reports whether the directory holds no pages at any depth.
func (d *Dir) Empty() bool {
	if d.Index != nil || len(d.Pages) > 0 {
		return false
	}
	for _, sub := range d.Dirs {
		if !sub.Empty() {
			return false
		}
	}
	return true
}

// Index is the set of pages found under a content root.
type Index struct {
	root    string
	tree    *Dir
	pages   []Page
	byRoute map[string]int
}

// Scan walks root and indexes every markdown page. Unreadable or malformed
// pages are logged and skipped.
func Scan(ctx context.Context, root string) (*Index, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "content directory not accessible").
			WithContext("path", root).
			Build()
	}
	if !info.IsDir() {
		return nil, errors.ContentError("content path is not a directory").
			WithContext("path", root).
			Build()
	}

	ix := &Index{
		root:    root,
		tree:    &Dir{Route: "/"},
		byRoute: make(map[string]int),
	}
	dirs := map[string]*Dir{"/": ix.tree}

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p == root {
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if SkipDir(name) {
				return fs.SkipDir
			}
			return nil
		}
		if !IsPage(name) {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		content, err := os.ReadFile(p)
		if err != nil {
			slog.Warn("Skipping unreadable page", logfields.Path(rel), logfields.Error(err))
			return nil
		}
		page, err := parsePage(rel, content)
		if err != nil {
			slog.Warn("Skipping malformed page", logfields.Path(rel), logfields.Error(err))
			return nil
		}
		ix.add(page, dirs)
		return nil
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.WrapError(walkErr, errors.CategoryContent, "failed to scan content directory").
			WithContext("path", root).
			Build()
	}

	ix.sortTree(ix.tree)
	sort.Slice(ix.pages, func(i, j int) bool { return ix.pages[i].Route < ix.pages[j].Route })
	for i, p := range ix.pages {
		ix.byRoute[p.Route] = i
	}

	slog.Debug("Indexed content", logfields.Path(root), logfields.Pages(len(ix.pages)))
	return ix, nil
}

func (ix *Index) add(page Page, dirs map[string]*Dir) {
	ix.pages = append(ix.pages, page)

	dirRoute := page.Route
	if !page.IsIndex() {
		dirRoute = path.Dir(page.Route)
		if dirRoute != "/" {
			dirRoute += "/"
		}
	}
	d := ensureDir(dirs, dirRoute)
	if page.IsIndex() {
		p := page
		d.Index = &p
		return
	}
	d.Pages = append(d.Pages, page)
}

func ensureDir(dirs map[string]*Dir, route string) *Dir {
	if d, ok := dirs[route]; ok {
		return d
	}
	parentRoute := path.Dir(strings.TrimSuffix(route, "/"))
	if parentRoute != "/" {
		parentRoute += "/"
	}
	parent := ensureDir(dirs, parentRoute)
	d := &Dir{Route: route, Name: path.Base(strings.TrimSuffix(route, "/"))}
	parent.Dirs = append(parent.Dirs, d)
	dirs[route] = d
	return d
}

func (ix *Index) sortTree(d *Dir) {
	SortPages(d.Pages)
	sortDirs(d.Dirs)
	for _, sub := range d.Dirs {
		ix.sortTree(sub)
	}
}

// Root returns the content directory the index was built from.
func (ix *Index) Root() string { return ix.root }

// Tree returns the root directory of the content tree.
func (ix *Index) Tree() *Dir { return ix.tree }

// Pages returns all pages ordered by route.
func (ix *Index) Pages() []Page {
	out := make([]Page, len(ix.pages))
	copy(out, ix.pages)
	return out
}

// Len returns the number of indexed pages.
func (ix *Index) Len() int { return len(ix.pages) }

// Get returns the page for route. "/go" also finds "/go/".
func (ix *Index) Get(route string) (Page, bool) {
	if i, ok := ix.byRoute[route]; ok {
		return ix.pages[i], true
	}
	if !strings.HasSuffix(route, "/") {
		if i, ok := ix.byRoute[route+"/"]; ok {
			return ix.pages[i], true
		}
	}
	return Page{}, false
}

// Has reports whether a page exists for route.
func (ix *Index) Has(route string) bool {
	_, ok := ix.Get(route)
	return ok
}

// Fingerprints maps each route to its content fingerprint.
func (ix *Index) Fingerprints() map[string]string {
	out := make(map[string]string, len(ix.pages))
	for _, p := range ix.pages {
		out[p.Route] = p.Fingerprint
	}
	return out
}

// Changed lists routes that were added, removed or edited since prev, in
// sorted order.
func (ix *Index) Changed(prev map[string]string) []string {
	var out []string
	cur := ix.Fingerprints()
	for route, fp := range cur {
		if old, ok := prev[route]; !ok || old != fp {
			out = append(out, route)
		}
	}
	for route := range prev {
		if _, ok := cur[route]; !ok {
			out = append(out, route)
		}
	}
	sort.Strings(out)
	return out
}
