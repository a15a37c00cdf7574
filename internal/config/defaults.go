package config

import (
	"fmt"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/docnav/internal/nav"
)

const (
	defaultContentDir  = "docs"
	defaultHistoryPath = ".docnav/history.db"
	defaultSubject     = "docnav.site.updated"
	defaultKVBucket    = "docnav"
	defaultDebounce    = 500 * time.Millisecond
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier runs every domain applier in order.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier creates a composite applier covering all domains.
// Content runs before output because the output directory derives from it.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&SiteDefaultApplier{},
			&ContentDefaultApplier{},
			&OutputDefaultApplier{},
			&HistoryDefaultApplier{},
			&NotifyDefaultApplier{},
			&WatchDefaultApplier{},
		},
	}
}

func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, a := range c.appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("%s defaults: %w", a.Domain(), err)
		}
	}
	return nil
}

// SiteDefaultApplier substitutes the built-in site when none is configured.
type SiteDefaultApplier struct{}

func (s *SiteDefaultApplier) Domain() string { return "site" }

func (s *SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site != nil {
		return nil
	}
	site, err := nav.Default()
	if err != nil {
		return err
	}
	cfg.Site = site
	return nil
}

type ContentDefaultApplier struct{}

func (c *ContentDefaultApplier) Domain() string { return "content" }

func (c *ContentDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Content.Dir == "" {
		cfg.Content.Dir = defaultContentDir
	}
	return nil
}

// OutputDefaultApplier normalizes the format and picks a directory that
// matches where the selected generator expects its configuration.
type OutputDefaultApplier struct{}

func (o *OutputDefaultApplier) Domain() string { return "output" }

func (o *OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatVitePressTS
	} else if f := NormalizeFormat(string(cfg.Output.Format)); f != "" {
		cfg.Output.Format = f
	}
	// unknown formats are left for validation to reject

	if cfg.Output.Directory == "" {
		cfg.Output.Directory = DefaultOutputDir(cfg.Output.Format, cfg.Content.Dir)
	}
	return nil
}

// DefaultOutputDir returns the conventional output directory for format.
func DefaultOutputDir(format Format, contentDir string) string {
	switch {
	case format.IsVitePress():
		return filepath.Join(contentDir, ".vitepress")
	case format == FormatHugo:
		return "."
	default:
		return "dist"
	}
}

type HistoryDefaultApplier struct{}

func (h *HistoryDefaultApplier) Domain() string { return "history" }

func (h *HistoryDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.History.Path == "" {
		cfg.History.Path = defaultHistoryPath
	}
	return nil
}

type NotifyDefaultApplier struct{}

func (n *NotifyDefaultApplier) Domain() string { return "notify" }

func (n *NotifyDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = defaultSubject
	}
	if cfg.Notify.KVBucket == "" {
		cfg.Notify.KVBucket = defaultKVBucket
	}
	return nil
}

type WatchDefaultApplier struct{}

func (w *WatchDefaultApplier) Domain() string { return "watch" }

func (w *WatchDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = defaultDebounce
	}
	return nil
}
