// Package history records successive revisions of a site configuration in a
// local SQLite database and compares them.
package history

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/nav"
)

// MemoryPath opens a private in-memory store.
const MemoryPath = ":memory:"

// Revision sources.
const (
	SourceSnapshot = "snapshot"
	SourceExport   = "export"
	SourceWatch    = "watch"
	SourceGit      = "git"
)

var (
	ErrNotFound  = errors.NotFoundError("revision not found").Build()
	ErrAmbiguous = errors.ValidationError("revision reference is ambiguous").Build()
)

// Revision is one recorded version of the site. Site is nil for revisions
// returned by List.
type Revision struct {
	ID        string    `json:"id"`
	Label     string    `json:"label,omitempty"`
	Hash      string    `json:"hash"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	Site      *nav.Site `json:"site,omitempty"`
}

// ShortID returns the first eight characters of the revision id.
func (r *Revision) ShortID() string {
	if len(r.ID) > 8 {
		return r.ID[:8]
	}
	return r.ID
}

// RecordOptions describes a revision being recorded.
type RecordOptions struct {
	Label     string
	Source    string
	CreatedAt time.Time // zero means now
}

// Store is a SQLite-backed revision log. Revisions are ordered by insertion.
type Store struct {
	db    *sql.DB
	mu    sync.RWMutex
	newID func() string
	now   func() time.Time
}

// Open opens (creating if necessary) the store at path. Use MemoryPath for a
// throwaway store.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create history directory").
				WithContext("path", path).
				Build()
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryHistory, "failed to open history database").
			WithContext("path", path).
			Build()
	}
	// A second connection to ":memory:" would see a different database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, newID: uuid.NewString, now: time.Now}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.WrapError(err, errors.CategoryHistory, "failed to initialize history schema").
			WithContext("path", path).
			Build()
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS revisions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		label TEXT NOT NULL DEFAULT '',
		hash TEXT NOT NULL,
		source TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		document BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_revisions_label ON revisions(label);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores site as a new revision unless the latest revision already has
// the same hash, in which case the latest revision is returned with
// recorded=false.
func (s *Store) Record(ctx context.Context, site *nav.Site, opts RecordOptions) (rev *Revision, recorded bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := site.Hash()
	latest, err := s.latest(ctx, false)
	if err != nil {
		return nil, false, err
	}
	if latest != nil && latest.Hash == hash {
		latest.Site = site
		return latest, false, nil
	}

	var doc bytes.Buffer
	if err := nav.EncodeJSON(&doc, site); err != nil {
		return nil, false, fmt.Errorf("encode revision: %w", err)
	}

	created := opts.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	source := opts.Source
	if source == "" {
		source = SourceSnapshot
	}
	rev = &Revision{
		ID:        s.newID(),
		Label:     opts.Label,
		Hash:      hash,
		Source:    source,
		CreatedAt: created.UTC(),
		Site:      site,
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO revisions (id, label, hash, source, created_at, document) VALUES (?, ?, ?, ?, ?, ?)",
		rev.ID, rev.Label, rev.Hash, rev.Source, rev.CreatedAt.UnixNano(), doc.Bytes(),
	)
	if err != nil {
		return nil, false, errors.WrapError(err, errors.CategoryHistory, "failed to insert revision").Build()
	}
	return rev, true, nil
}

// List returns every revision, oldest first, without site documents.
func (s *Store) List(ctx context.Context) ([]Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.query(ctx, false, "ORDER BY seq")
}

// Latest returns the most recently recorded revision, or nil when the store is
// empty.
func (s *Store) Latest(ctx context.Context) (*Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest(ctx, true)
}

func (s *Store) latest(ctx context.Context, withSite bool) (*Revision, error) {
	revs, err := s.query(ctx, withSite, "ORDER BY seq DESC LIMIT 1")
	if err != nil || len(revs) == 0 {
		return nil, err
	}
	return &revs[0], nil
}

// Get resolves ref to a revision. ref is "latest", a full id, a unique id
// prefix, or a label.
func (s *Store) Get(ctx context.Context, ref string) (*Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ref == "latest" {
		rev, err := s.latest(ctx, true)
		if err != nil {
			return nil, err
		}
		if rev == nil {
			return nil, ErrNotFound.WithContext("ref", ref)
		}
		return rev, nil
	}

	revs, err := s.query(ctx, true, "WHERE substr(id, 1, ?) = ? OR label = ? ORDER BY seq", len(ref), ref, ref)
	if err != nil {
		return nil, err
	}
	switch len(revs) {
	case 0:
		return nil, ErrNotFound.WithContext("ref", ref)
	case 1:
		return &revs[0], nil
	}
	// an exact id wins over a label colliding with it
	for i := range revs {
		if revs[i].ID == ref {
			return &revs[i], nil
		}
	}
	return nil, ErrAmbiguous.WithContext("ref", ref).WithContext("matches", len(revs))
}

// HasLabel reports whether a revision with label exists.
func (s *Store) HasLabel(ctx context.Context, label string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM revisions WHERE label = ?", label).Scan(&n); err != nil {
		return false, fmt.Errorf("count revisions: %w", err)
	}
	return n > 0, nil
}

func (s *Store) query(ctx context.Context, withSite bool, clause string, args ...any) ([]Revision, error) {
	cols := "id, label, hash, source, created_at, document"
	if !withSite {
		cols = "id, label, hash, source, created_at, NULL"
	}
	rows, err := s.db.QueryContext(ctx, "SELECT "+cols+" FROM revisions "+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Revision
	for rows.Next() {
		var r Revision
		var created int64
		var doc []byte
		if err := rows.Scan(&r.ID, &r.Label, &r.Hash, &r.Source, &created, &doc); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		r.CreatedAt = time.Unix(0, created).UTC()
		if withSite {
			site, err := nav.DecodeJSON(bytes.NewReader(doc))
			if err != nil {
				return nil, errors.WrapError(err, errors.CategoryHistory, "stored revision is corrupt").
					WithContext("revision", r.ID).
					Build()
			}
			r.Site = site
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}
	return out, nil
}

// Comparison is the difference between two revisions.
type Comparison struct {
	From    *Revision
	To      *Revision
	Changes []nav.Change
}

// Compare resolves both references and diffs their sites.
func (s *Store) Compare(ctx context.Context, fromRef, toRef string) (*Comparison, error) {
	from, err := s.Get(ctx, fromRef)
	if err != nil {
		return nil, err
	}
	to, err := s.Get(ctx, toRef)
	if err != nil {
		return nil, err
	}
	return &Comparison{From: from, To: to, Changes: nav.Diff(from.Site, to.Site)}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
