package commands

import (
	"fmt"

	"git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/lint"
	"git.home.luguber.info/inful/docnav/internal/nav"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	Content string `help:"Content directory to check links against (default: content.dir)" type:"path"`
	Format  string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Quiet   bool   `short:"q" help:"Quiet mode: only show errors, suppress warnings"`
	Builtin bool   `help:"Validate the built-in site instead of the configuration"`
}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	site, source, contentDir, err := v.resolve(root)
	if err != nil {
		return err
	}

	opts := lint.Options{Quiet: v.Quiet}
	ix, err := scanContent(g.context(), contentDir, v.Content != "")
	if err != nil {
		return err
	}
	if ix != nil {
		opts.Pages = ix
	}

	result := lint.Check(site, opts)
	if err := lint.NewFormatter(v.Format).Format(g.out(), result, source); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	if result.HasErrors() {
		return errors.ValidationError(fmt.Sprintf("site has %d lint error(s)", result.ErrorCount())).
			WithContext("source", source).
			Build()
	}
	return nil
}

func (v *ValidateCmd) resolve(root *CLI) (site *nav.Site, source, contentDir string, err error) {
	if v.Builtin {
		site, err = nav.Default()
		return site, "built-in site", v.Content, err
	}
	cfg, err := root.loadConfig()
	if err != nil {
		return nil, "", "", err
	}
	contentDir = cfg.Content.Dir
	if v.Content != "" {
		contentDir = v.Content
	}
	return cfg.Site, root.Config, contentDir, nil
}
