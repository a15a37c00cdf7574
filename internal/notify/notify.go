// Package notify announces exported site changes to other services.
package notify

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/nav"
)

// SiteUpdated is published after an export produced a site hash that was not
// announced before.
type SiteUpdated struct {
	Title        string    `json:"title"`
	Hash         string    `json:"hash"`
	PreviousHash string    `json:"previous_hash,omitempty"`
	RevisionID   string    `json:"revision_id,omitempty"`
	Format       string    `json:"format,omitempty"`
	Stats        nav.Stats `json:"stats"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewSiteUpdated builds the event for site.
func NewSiteUpdated(site *nav.Site, revisionID string, format config.Format) *SiteUpdated {
	return &SiteUpdated{
		Title:      site.Title,
		Hash:       site.Hash(),
		RevisionID: revisionID,
		Format:     string(format),
		Stats:      site.Stats(),
	}
}

// Publisher delivers SiteUpdated events. Publish reports false when the hash
// was already announced.
type Publisher interface {
	Publish(ctx context.Context, ev *SiteUpdated) (bool, error)
	Close() error
}

// Noop discards every event. It is used when notifications are disabled.
type Noop struct{}

func (Noop) Publish(context.Context, *SiteUpdated) (bool, error) { return false, nil }
func (Noop) Close() error                                        { return nil }

// New returns a NATS publisher when cfg enables notifications and Noop
// otherwise.
func New(ctx context.Context, cfg config.NotifyConfig) (Publisher, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	return NewNATSPublisher(ctx, cfg)
}
