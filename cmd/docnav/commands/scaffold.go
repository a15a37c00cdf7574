package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/scaffold"
)

// ScaffoldCmd implements the 'scaffold' command.
type ScaffoldCmd struct {
	Content string `help:"Content directory (default: content.dir)" type:"path"`
	Write   bool   `help:"Merge sections missing from the sidebar into the configuration file"`
}

func (s *ScaffoldCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	resolved := *cfg
	resolved.ResolvePaths(filepath.Dir(root.Config))
	dir := resolved.Content.Dir
	if s.Content != "" {
		dir = s.Content
	}

	ix, err := scanContent(g.context(), dir, true)
	if err != nil {
		return err
	}
	sections := scaffold.Generate(ix)
	out := g.out()
	if len(sections) == 0 {
		_, err := fmt.Fprintf(out, "No sections found in %s\n", dir)
		return err
	}

	merged, added := scaffold.Merge(cfg.Site, sections)
	if !s.Write {
		if err := encode(out, "yaml", map[string]any{"sidebar": scaffold.Sidebar(sections)}); err != nil {
			return err
		}
		if len(added) > 0 {
			fmt.Fprintf(out, "# not yet in %s: %s (use --write to add)\n", root.Config, strings.Join(added, ", "))
		}
		return nil
	}

	if len(added) == 0 {
		_, err := fmt.Fprintln(out, "Sidebar already covers every section")
		return err
	}
	cfg.Site = merged
	if err := config.Save(root.Config, cfg); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "Added %d section(s) to %s: %s\n", len(added), root.Config, strings.Join(added, ", "))
	return err
}
