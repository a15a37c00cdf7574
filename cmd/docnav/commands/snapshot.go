package commands

import (
	"fmt"

	"git.home.luguber.info/inful/docnav/internal/history"
)

// SnapshotCmd implements the 'snapshot' command.
type SnapshotCmd struct {
	Label string `short:"l" help:"Label stored with the revision"`
}

func (s *SnapshotCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	store, err := root.openHistory(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rev, recorded, err := store.Record(g.context(), cfg.Site, history.RecordOptions{
		Label:  s.Label,
		Source: history.SourceSnapshot,
	})
	if err != nil {
		return err
	}
	if !recorded {
		_, err = fmt.Fprintf(g.out(), "Site unchanged since revision %s\n", rev.ShortID())
		return err
	}
	_, err = fmt.Fprintf(g.out(), "Recorded revision %s (%s)\n", rev.ShortID(), shortHash(rev.Hash))
	return err
}
