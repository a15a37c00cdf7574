package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/docnav/internal/history"
	"git.home.luguber.info/inful/docnav/internal/nav"
)

// HistoryCmd groups the revision history subcommands.
type HistoryCmd struct {
	List      HistoryListCmd      `cmd:"" default:"1" help:"List recorded revisions"`
	Show      HistoryShowCmd      `cmd:"" help:"Print a recorded site"`
	Diff      HistoryDiffCmd      `cmd:"" help:"Compare two revisions"`
	ImportGit HistoryImportGitCmd `cmd:"" name:"import-git" help:"Record every committed version of the configuration file"`
}

// HistoryListCmd implements 'history list'.
type HistoryListCmd struct {
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
}

func (h *HistoryListCmd) Run(g *Global, root *CLI) error {
	store, err := root.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	revs, err := store.List(g.context())
	if err != nil {
		return err
	}
	out := g.out()
	if h.Format == "json" {
		if revs == nil {
			revs = []history.Revision{}
		}
		return encode(out, "json", revs)
	}
	if len(revs) == 0 {
		_, err := fmt.Fprintln(out, "No revisions recorded")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSOURCE\tHASH\tLABEL")
	for i := range revs {
		r := &revs[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ShortID(), r.CreatedAt.Local().Format(time.DateTime), r.Source, shortHash(r.Hash), r.Label)
	}
	return tw.Flush()
}

// HistoryShowCmd implements 'history show'.
type HistoryShowCmd struct {
	Ref    string `arg:"" optional:"" default:"latest" help:"Revision id prefix, label or 'latest'"`
	Format string `short:"f" default:"yaml" help:"Output format (yaml or json)" enum:"yaml,json"`
}

func (h *HistoryShowCmd) Run(g *Global, root *CLI) error {
	store, err := root.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rev, err := store.Get(g.context(), h.Ref)
	if err != nil {
		return err
	}
	out := g.out()
	if h.Format == "json" {
		return encode(out, "json", rev)
	}
	fmt.Fprintf(out, "# revision %s\n# created %s by %s\n# hash %s\n",
		rev.ID, rev.CreatedAt.Local().Format(time.RFC3339), rev.Source, rev.Hash)
	if rev.Label != "" {
		fmt.Fprintf(out, "# label %s\n", rev.Label)
	}
	return nav.EncodeYAML(out, rev.Site)
}

// HistoryDiffCmd implements 'history diff'.
type HistoryDiffCmd struct {
	From   string `arg:"" help:"Older revision"`
	To     string `arg:"" optional:"" default:"latest" help:"Newer revision"`
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
}

type diffView struct {
	From    string       `json:"from"`
	To      string       `json:"to"`
	Changes []nav.Change `json:"changes"`
}

func (h *HistoryDiffCmd) Run(g *Global, root *CLI) error {
	store, err := root.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	cmp, err := store.Compare(g.context(), h.From, h.To)
	if err != nil {
		return err
	}
	out := g.out()
	if h.Format == "json" {
		changes := cmp.Changes
		if changes == nil {
			changes = []nav.Change{}
		}
		return encode(out, "json", diffView{From: cmp.From.ID, To: cmp.To.ID, Changes: changes})
	}
	return printChanges(out, cmp)
}

func printChanges(w io.Writer, cmp *history.Comparison) error {
	if _, err := fmt.Fprintf(w, "%s..%s\n", cmp.From.ShortID(), cmp.To.ShortID()); err != nil {
		return err
	}
	if len(cmp.Changes) == 0 {
		_, err := fmt.Fprintln(w, "No changes")
		return err
	}
	for _, c := range cmp.Changes {
		if _, err := fmt.Fprintln(w, c.String()); err != nil {
			return err
		}
	}
	return nil
}

// HistoryImportGitCmd implements 'history import-git'.
type HistoryImportGitCmd struct {
	Repo string `default:"." help:"Repository containing the configuration file" type:"path"`
	File string `help:"Committed file to import (default: --config)" type:"path"`
}

func (h *HistoryImportGitCmd) Run(g *Global, root *CLI) error {
	store, err := root.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	file := h.File
	if file == "" {
		file = root.Config
	}
	res, err := store.ImportGit(g.context(), h.Repo, file)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.out(), "Imported %d commit(s): %d recorded, %d unchanged, %d skipped\n",
		res.Commits, res.Recorded, res.Unchanged, res.Skipped)
	return err
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
