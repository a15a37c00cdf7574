package nav

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDefault(t *testing.T) *Site {
	t.Helper()
	s, err := Default()
	require.NoError(t, err)
	return s
}

func TestDefault_GoSection(t *testing.T) {
	s := mustDefault(t)

	sec, ok := s.Theme.Sidebar.Section("/go/")
	require.True(t, ok)
	require.Len(t, sec, 1)
	assert.Equal(t, "Go 编程", sec[0].Text)
	assert.Equal(t, []string{"/go/", "/go/basic-syntax", "/go/data-structures", "/go/concurrency"}, sec.Links())
}

func TestDefault_Metadata(t *testing.T) {
	s := mustDefault(t)

	assert.Equal(t, "zh-CN", s.Lang)
	assert.Equal(t, "/", s.Base)
	assert.True(t, s.LastUpdated)
	require.NotNil(t, s.Theme.Search)
	assert.Equal(t, "local", s.Theme.Search.Provider)
	require.NotNil(t, s.Theme.Outline)
	assert.Equal(t, []int{2, 3}, s.Theme.Outline.Level)

	rels := make([]string, 0, len(s.Head))
	for _, h := range s.Head {
		rel, _ := h.Attrs.Get("rel")
		rels = append(rels, rel)
	}
	assert.Equal(t, []string{"icon", "apple-touch-icon", "mask-icon"}, rels)
}

func TestDefault_ReturnsIndependentCopies(t *testing.T) {
	a := mustDefault(t)
	b := mustDefault(t)
	a.Theme.Nav[0].Text = "changed"
	assert.NotEqual(t, a.Theme.Nav[0].Text, b.Theme.Nav[0].Text)
}

func TestSidebar_Resolve(t *testing.T) {
	sb := Sidebar{
		"/slurm/":         {{Text: "Slurm"}},
		"/slurm/install/": {{Text: "Install"}},
		"/go/":            {{Text: "Go"}},
	}

	tests := []struct {
		path   string
		prefix string
		ok     bool
	}{
		{"/go/", "/go/", true},
		{"/go", "/go/", true},
		{"/go/concurrency", "/go/", true},
		{"go/concurrency", "/go/", true},
		{"/slurm/jobs/srun", "/slurm/", true},
		{"/slurm/install/controller", "/slurm/install/", true},
		{"/rust/", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			prefix, _, ok := sb.Resolve(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.prefix, prefix)
		})
	}
}

func TestSidebar_Prefixes_Sorted(t *testing.T) {
	s := mustDefault(t)
	assert.Equal(t, []string{"/go/", "/linux/", "/rust/", "/slurm/"}, s.Theme.Sidebar.Prefixes())
}

func TestEntries_NestedSlurmTree(t *testing.T) {
	s := mustDefault(t)

	var slurm []Entry
	for _, e := range s.Entries() {
		if e.Section == "/slurm/" {
			slurm = append(slurm, e)
		}
	}
	require.NotEmpty(t, slurm)
	assert.Equal(t, EntrySidebarGroup, slurm[0].Kind)

	var install Entry
	for _, e := range slurm {
		if e.Text == "控制节点" {
			install = e
		}
	}
	assert.Equal(t, []string{"Slurm", "安装部署"}, install.Trail)
	assert.Equal(t, "/slurm/install/controller", install.Link)
	assert.Equal(t, "sidebar /slurm/ › Slurm › 安装部署 › 控制节点", install.Location())
}

func TestEntries_NavDropDown(t *testing.T) {
	s := mustDefault(t)

	var hpc Entry
	for _, e := range s.Entries() {
		if e.Kind == EntryNav && e.Text == "HPC" {
			hpc = e
		}
	}
	assert.True(t, hpc.Declared)
	assert.Equal(t, 2, hpc.Children)
	assert.Empty(t, hpc.Link)
}

func TestStats(t *testing.T) {
	s := mustDefault(t)
	st := s.Stats()
	assert.Equal(t, 6, st.NavItems)
	assert.Equal(t, 4, st.Sections)
	assert.Equal(t, 4, st.Groups)
	assert.Equal(t, len(s.Links()), st.Links)
}

func TestClone_DeepCopy(t *testing.T) {
	s := mustDefault(t)
	c := s.Clone()
	require.Equal(t, s, c)

	c.Theme.Sidebar["/go/"][0].Items[0].Text = "x"
	*c.Theme.Sidebar["/go/"][0].Collapsed = true
	c.Head[0].Attrs[0].Value = "x"
	c.Theme.Nav[3].Items[0].Link = "/x/"
	c.Theme.Outline.Level[0] = 1

	assert.Equal(t, "简介", s.Theme.Sidebar["/go/"][0].Items[0].Text)
	assert.False(t, *s.Theme.Sidebar["/go/"][0].Collapsed)
	assert.Equal(t, "icon", s.Head[0].Attrs[0].Value)
	assert.Equal(t, "/slurm/", s.Theme.Nav[3].Items[0].Link)
	assert.Equal(t, 2, s.Theme.Outline.Level[0])
}

func TestHash_StableAndSensitive(t *testing.T) {
	a := mustDefault(t)
	b := mustDefault(t)
	require.Equal(t, a.Hash(), b.Hash())
	require.Len(t, a.Hash(), 64)

	b.Theme.Sidebar["/go/"][0].Items[1].Link = "/go/syntax"
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.Empty(t, (*Site)(nil).Hash())
}

func TestDiff(t *testing.T) {
	a := mustDefault(t)
	b := a.Clone()
	b.Title = "笔记"
	delete(b.Theme.Sidebar, "/rust/")
	b.Theme.Nav = append(b.Theme.Nav[:2], b.Theme.Nav[3:]...)
	b.Theme.Sidebar["/go/"][0].Items[1].Link = "/go/syntax"
	b.Theme.Sidebar["/go/"][0].Items = append(b.Theme.Sidebar["/go/"][0].Items, SidebarItem{Text: "泛型", Link: "/go/generics"})

	changes := Diff(a, b)

	find := func(op ChangeOp, loc string) *Change {
		for i := range changes {
			if changes[i].Op == op && changes[i].Location == loc {
				return &changes[i]
			}
		}
		return nil
	}

	require.NotNil(t, find(ChangeChanged, "title"))
	sec := find(ChangeRemoved, "sidebar section")
	require.NotNil(t, sec)
	assert.Equal(t, "/rust/", sec.Before)
	require.NotNil(t, find(ChangeRemoved, "nav › Rust"))

	changed := find(ChangeChanged, "sidebar /go/ › Go 编程 › 基础语法")
	require.NotNil(t, changed)
	assert.Equal(t, "/go/basic-syntax", changed.Before)
	assert.Equal(t, "/go/syntax", changed.After)

	added := find(ChangeAdded, "sidebar /go/ › Go 编程 › 泛型")
	require.NotNil(t, added)
	assert.Equal(t, "/go/generics", added.After)

	assert.Empty(t, Diff(a, a.Clone()))
}

func TestDiff_PageChrome(t *testing.T) {
	a := mustDefault(t)

	tests := []struct {
		name   string
		mutate func(s *Site)
		want   Change
	}{
		{"footer", func(s *Site) { s.Theme.Footer.Message = "bye" }, Change{Op: ChangeChanged, Location: "theme.footer.message", Before: a.Theme.Footer.Message, After: "bye"}},
		{"search", func(s *Site) { s.Theme.Search.Provider = "algolia" }, Change{Op: ChangeChanged, Location: "theme.search.provider", Before: "local", After: "algolia"}},
		{"last updated", func(s *Site) { s.LastUpdated = false }, Change{Op: ChangeChanged, Location: "last_updated", Before: "true", After: "false"}},
		{"outline", func(s *Site) { s.Theme.Outline.Level = []int{2} }, Change{Op: ChangeChanged, Location: "theme.outline.level", Before: "[2 3]", After: "[2]"}},
		{"head removed", func(s *Site) { s.Head = s.Head[:len(s.Head)-1] }, Change{Op: ChangeRemoved, Location: "head[2]", Before: `<link rel="mask-icon" href="/safari-pinned-tab.svg" color="#3c8772">`}},
		{"social added", func(s *Site) {
			s.Theme.SocialLinks = append(s.Theme.SocialLinks, SocialLink{Icon: "x", Link: "https://x.com/notes"})
		}, Change{Op: ChangeAdded, Location: fmt.Sprintf("theme.social_links[%d]", len(a.Theme.SocialLinks)), After: "x https://x.com/notes"}},
		{"collapsed", func(s *Site) { s.Theme.Sidebar["/go/"][0].Collapsed = Bool(true) }, Change{Op: ChangeChanged, Location: "sidebar /go/ › Go 编程 (collapsed)", Before: "false", After: "true"}},
		{"reorder", func(s *Site) { s.Theme.Nav[1], s.Theme.Nav[2] = s.Theme.Nav[2], s.Theme.Nav[1] }, Change{Op: ChangeChanged, Location: "entry order", Before: "nav › Go", After: "nav › Rust"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := a.Clone()
			tt.mutate(b)
			require.NotEqual(t, a.Hash(), b.Hash())
			assert.Equal(t, []Change{tt.want}, Diff(a, b))
		})
	}
}

func TestDiff_DuplicateSiblingTexts(t *testing.T) {
	a := &Site{Theme: Theme{Nav: []NavItem{{Text: "Docs", Link: "/a/"}, {Text: "Docs", Link: "/b/"}}}}
	b := a.Clone()
	b.Theme.Nav[1].Link = "/c/"

	changes := Diff(a, b)
	require.Len(t, changes, 1)
	assert.Equal(t, "nav › Docs#2", changes[0].Location)
	assert.Equal(t, "~ nav › Docs#2: \"/b/\" -> \"/c/\"", changes[0].String())
}
