package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/nav"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func siteTitled(t *testing.T, title string) *nav.Site {
	t.Helper()
	s, err := nav.Default()
	require.NoError(t, err)
	s.Title = title
	return s
}

func TestRecord_SkipsUnchanged(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	first, recorded, err := s.Record(ctx, siteTitled(t, "A"), RecordOptions{Label: "v1"})
	require.NoError(t, err)
	assert.True(t, recorded)
	assert.Equal(t, SourceSnapshot, first.Source)
	assert.NotEmpty(t, first.ID)

	again, recorded, err := s.Record(ctx, siteTitled(t, "A"), RecordOptions{Label: "v1 again"})
	require.NoError(t, err)
	assert.False(t, recorded)
	assert.Equal(t, first.ID, again.ID)

	_, recorded, err = s.Record(ctx, siteTitled(t, "B"), RecordOptions{Source: SourceExport})
	require.NoError(t, err)
	assert.True(t, recorded)

	// an earlier state recorded again is a new revision
	_, recorded, err = s.Record(ctx, siteTitled(t, "A"), RecordOptions{})
	require.NoError(t, err)
	assert.True(t, recorded)

	revs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, revs, 3)
	assert.Equal(t, "v1", revs[0].Label)
	assert.Equal(t, SourceExport, revs[1].Source)
	assert.Nil(t, revs[0].Site)
}

func TestLatestAndGet(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, err = s.Get(ctx, "latest")
	require.ErrorIs(t, err, ErrNotFound)

	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a, _, err := s.Record(ctx, siteTitled(t, "A"), RecordOptions{Label: "first", CreatedAt: when})
	require.NoError(t, err)
	b, _, err := s.Record(ctx, siteTitled(t, "B"), RecordOptions{})
	require.NoError(t, err)

	latest, err = s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, latest.ID)
	assert.Equal(t, "B", latest.Site.Title)

	byID, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", byID.Site.Title)
	assert.True(t, when.Equal(byID.CreatedAt))
	assert.Equal(t, a.Hash, byID.Site.Hash())

	byPrefix, err := s.Get(ctx, a.ShortID())
	require.NoError(t, err)
	assert.Equal(t, a.ID, byPrefix.ID)

	byLabel, err := s.Get(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byLabel.ID)

	_, err = s.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestGet_AmbiguousPrefix(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("abcd%04d-0000-0000-0000-000000000000", n)
	}

	for _, title := range []string{"A", "B"} {
		_, _, err := s.Record(ctx, siteTitled(t, title), RecordOptions{})
		require.NoError(t, err)
	}

	_, err := s.Get(ctx, "abcd")
	require.ErrorIs(t, err, ErrAmbiguous)

	rev, err := s.Get(ctx, "abcd0002")
	require.NoError(t, err)
	assert.Equal(t, "B", rev.Site.Title)
}

func TestCompare(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	a, _, err := s.Record(ctx, siteTitled(t, "A"), RecordOptions{})
	require.NoError(t, err)
	b := siteTitled(t, "B")
	b.Theme.Nav = b.Theme.Nav[:len(b.Theme.Nav)-1]
	_, _, err = s.Record(ctx, b, RecordOptions{})
	require.NoError(t, err)

	cmp, err := s.Compare(ctx, a.ID, "latest")
	require.NoError(t, err)
	assert.Equal(t, a.ID, cmp.From.ID)
	require.NotEmpty(t, cmp.Changes)
	assert.Equal(t, nav.Change{Op: nav.ChangeChanged, Location: "title", Before: "A", After: "B"}, cmp.Changes[0])

	var removed int
	for _, c := range cmp.Changes {
		if c.Op == nav.ChangeRemoved {
			removed++
		}
	}
	assert.Equal(t, 3, removed, "HPC and its two children")

	_, err = s.Compare(ctx, "missing", "latest")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_PersistsToFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".docnav", "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	rev, _, err := s.Record(ctx, siteTitled(t, "A"), RecordOptions{Label: "kept"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.Get(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, rev.ID, got.ID)

	ok, err := s.HasLabel(ctx, "kept")
	require.NoError(t, err)
	assert.True(t, ok)
}
