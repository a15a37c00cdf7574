package pipeline

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/history"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/notify"
)

type fakePublisher struct {
	last   string
	events []*notify.SiteUpdated
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev *notify.SiteUpdated) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if ev.Hash == f.last {
		return false, nil
	}
	ev.PreviousHash = f.last
	f.last = ev.Hash
	f.events = append(f.events, ev)
	return true, nil
}

func (f *fakePublisher) Close() error { return nil }

type countingRecorder struct {
	metrics.NoopRecorder
	mu        sync.Mutex
	revisions int
	notify    map[string]int
	lint      map[metrics.LintKey]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{notify: map[string]int{}}
}

func (c *countingRecorder) IncRevisionRecorded(string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revisions++
}

func (c *countingRecorder) IncNotifyResult(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify[result]++
}

func (c *countingRecorder) SetLintIssues(counts map[metrics.LintKey]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lint = counts
}

func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultPath)
	require.NoError(t, config.Init(path, false))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs", "go"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "go", "index.md"), []byte("# Go\n"), 0o600))
	return path
}

func openStore(t *testing.T) *history.Store {
	t.Helper()
	s, err := history.Open(history.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()
	path := setupProject(t)
	dir := filepath.Dir(path)
	pub := &fakePublisher{}
	rec := newCountingRecorder()
	r := New(path, WithStore(openStore(t)), WithPublisher(pub), WithRecorder(rec))

	res, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "docs", ".vitepress", "config.mts")}, res.Export.Files)
	assert.FileExists(t, res.Export.Files[0])
	require.NotNil(t, res.Pages)
	assert.Equal(t, 1, res.Pages.Len())
	assert.Nil(t, res.Changed)
	assert.True(t, res.Recorded)
	assert.True(t, res.Announced)
	require.Len(t, pub.events, 1)
	assert.Equal(t, res.Revision.ID, pub.events[0].RevisionID)
	assert.Equal(t, "vitepress-ts", pub.events[0].Format)
	assert.Equal(t, 1, rec.revisions)
	assert.Equal(t, 1, rec.notify["published"])
	assert.Positive(t, rec.lint[metrics.LintKey{Rule: "content-page", Severity: "warning"}])

	var names []StageName
	for _, s := range res.Stages {
		require.NoError(t, s.Err)
		names = append(names, s.Name)
	}
	assert.Equal(t, []StageName{StageLoad, StageDiscover, StageExport, StageRecord, StageNotify}, names)

	// a new page does not change the site
	first := res.Revision.ID
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "go", "basics.md"), []byte("# Basics\n"), 0o600))
	res, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, res.Recorded)
	assert.False(t, res.Announced)
	assert.Equal(t, first, res.Revision.ID)
	assert.Equal(t, []string{"/go/basics"}, res.Changed)
	assert.Equal(t, 1, rec.notify["skipped"])
}

func TestRunOnce_Overrides(t *testing.T) {
	path := setupProject(t)
	dir := filepath.Dir(path)

	res, err := New(path, WithFormat(config.FormatYAML)).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "dist", "site.yaml")}, res.Export.Files)

	out := filepath.Join(t.TempDir(), "out")
	res, err = New(path, WithFormat(config.FormatJSON), WithOutputDir(out)).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(out, "site.json")}, res.Export.Files)

	st, ok := res.Stage(StageRecord)
	require.True(t, ok)
	assert.True(t, st.Skipped)
}

func TestRunOnce_LintBlocksExport(t *testing.T) {
	path := setupProject(t)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	cfg.Site.Theme.Sidebar["/go/"][0].Items[0].Link = ""
	require.NoError(t, config.Save(path, cfg))

	store := openStore(t)
	res, err := New(path, WithStore(store)).RunOnce(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.True(t, res.Export.Lint.HasErrors())

	_, ok := res.Stage(StageRecord)
	assert.False(t, ok)
	revs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, revs)

	res, err = New(path, WithStore(store), WithForce(true)).RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Recorded)
}

func TestRunOnce_NotifyFailureIsSoft(t *testing.T) {
	path := setupProject(t)
	rec := newCountingRecorder()
	pub := &fakePublisher{err: stderrors.New("nats down")}

	res, err := New(path, WithPublisher(pub), WithRecorder(rec)).RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Announced)
	st, ok := res.Stage(StageNotify)
	require.True(t, ok)
	require.Error(t, st.Err)
	assert.Equal(t, 1, rec.notify["failed"])
}

func TestRunOnce_MissingConfig(t *testing.T) {
	res, err := New(filepath.Join(t.TempDir(), "docnav.yaml")).RunOnce(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	require.Len(t, res.Stages, 1)
	assert.Equal(t, StageLoad, res.Stages[0].Name)
}

func TestRunOnce_WithoutContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultPath)
	require.NoError(t, config.Init(path, false))

	res, err := New(path, WithFormat(config.FormatYAML)).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res.Pages)
	st, _ := res.Stage(StageDiscover)
	assert.True(t, st.Skipped)
	assert.Zero(t, res.Export.Lint.PagesTotal)
}
