package history

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// ImportResult counts what an import did with each commit touching the file.
type ImportResult struct {
	Commits   int // commits that changed the file
	Recorded  int // new revisions
	Unchanged int // site identical to the previous revision, or already imported
	Skipped   int // file deleted or not decodable
}

// ImportGit walks the history of file in the repository at repoPath, oldest
// commit first, and records each committed site as a revision labelled with
// the commit hash and dated with the commit time. Commits already imported
// are not recorded twice.
func (s *Store) ImportGit(ctx context.Context, repoPath, file string) (*ImportResult, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "failed to open repository").
			WithContext("path", repoPath).
			Build()
	}

	rel, err := repoRelative(repo, file)
	if err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "failed to resolve HEAD").
			WithContext("path", repoPath).
			Build()
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash(), FileName: &rel, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "failed to read history").
			WithContext("file", rel).
			Build()
	}
	var commits []*object.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, c)
		return nil
	})
	iter.Close()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryGit, "failed to walk history").
			WithContext("file", rel).
			Build()
	}
	slices.Reverse(commits)

	res := &ImportResult{Commits: len(commits)}
	for _, c := range commits {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		commit := c.Hash.String()

		imported, err := s.HasLabel(ctx, commit)
		if err != nil {
			return res, err
		}
		if imported {
			res.Unchanged++
			continue
		}

		f, err := c.File(rel)
		if stderrors.Is(err, object.ErrFileNotFound) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, errors.WrapError(err, errors.CategoryGit, "failed to read file at commit").
				WithContext("commit", commit).
				Build()
		}
		contents, err := f.Contents()
		if err != nil {
			return res, errors.WrapError(err, errors.CategoryGit, "failed to read file contents").
				WithContext("commit", commit).
				Build()
		}

		site, err := config.SiteFromBytes(rel, []byte(contents))
		if err != nil {
			slog.Warn("Skipping undecodable revision",
				logfields.Commit(commit[:12]),
				logfields.Path(rel),
				logfields.Error(err))
			res.Skipped++
			continue
		}

		rev, recorded, err := s.Record(ctx, site, RecordOptions{
			Label:     commit,
			Source:    SourceGit,
			CreatedAt: c.Committer.When,
		})
		if err != nil {
			return res, err
		}
		if !recorded {
			res.Unchanged++
			continue
		}
		res.Recorded++
		slog.Debug("Imported revision",
			logfields.Revision(rev.ShortID()),
			logfields.Commit(commit[:12]))
	}

	slog.Info("Imported git history",
		logfields.Path(rel),
		slog.Int("commits", res.Commits),
		slog.Int("recorded", res.Recorded),
		slog.Int("skipped", res.Skipped))
	return res, nil
}

// repoRelative turns file into a slash-separated path relative to the
// repository root. Relative input is taken as already relative to the root.
func repoRelative(repo *git.Repository, file string) (string, error) {
	if !filepath.IsAbs(file) {
		return filepath.ToSlash(filepath.Clean(file)), nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryGit, "repository has no worktree").Build()
	}
	rel, err := filepath.Rel(wt.Filesystem.Root(), file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.ValidationError("file is outside the repository").
			WithContext("file", file).
			Build()
	}
	return filepath.ToSlash(rel), nil
}
