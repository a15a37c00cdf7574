package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

type testRepo struct {
	t    *testing.T
	dir  string
	wt   *git.Worktree
	when time.Time
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &testRepo{t: t, dir: dir, wt: wt, when: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (r *testRepo) commit(name, content, msg string) string {
	r.t.Helper()
	require.NoError(r.t, os.WriteFile(filepath.Join(r.dir, name), []byte(content), 0o600))
	_, err := r.wt.Add(name)
	require.NoError(r.t, err)
	r.when = r.when.Add(time.Hour)
	hash, err := r.wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "t@example.com", When: r.when},
	})
	require.NoError(r.t, err)
	return hash.String()
}

func TestImportGit(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	c1 := repo.commit("docnav.yaml", "site:\n  title: First\n", "initial")
	repo.commit("README.md", "# notes\n", "unrelated")
	repo.commit("docnav.yaml", "site:\n  title: First\noutput:\n  format: hugo\n", "output only")
	repo.commit("docnav.yaml", "site: [broken\n", "typo")
	c4 := repo.commit("docnav.yaml", "site:\n  title: Second\n", "rename")

	s := openMemory(t)
	res, err := s.ImportGit(ctx, repo.dir, "docnav.yaml")
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Commits: 4, Recorded: 2, Unchanged: 1, Skipped: 1}, res)

	revs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, c1, revs[0].Label)
	assert.Equal(t, SourceGit, revs[0].Source)
	assert.True(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC).Equal(revs[0].CreatedAt))
	assert.Equal(t, c4, revs[1].Label)

	got, err := s.Get(ctx, c4)
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Site.Title)

	// a second import finds nothing new
	res, err = s.ImportGit(ctx, repo.dir, filepath.Join(repo.dir, "docnav.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Recorded)
	assert.Equal(t, 4, res.Commits)
}

func TestImportGit_Errors(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	_, err := s.ImportGit(ctx, t.TempDir(), "docnav.yaml")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryGit))

	repo := newTestRepo(t)
	repo.commit("docnav.yaml", "site:\n  title: A\n", "initial")
	_, err = s.ImportGit(ctx, repo.dir, filepath.Join(t.TempDir(), "docnav.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}
