// Package export turns a site model into the configuration files consumed by
// the external documentation generator.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/lint"
	"git.home.luguber.info/inful/docnav/internal/logfields"
	"git.home.luguber.info/inful/docnav/internal/metrics"
	"git.home.luguber.info/inful/docnav/internal/nav"
)

// File is one generated file, with Path relative to the output directory.
type File struct {
	Path string
	Data []byte
}

// Renderer produces the files for one format.
type Renderer interface {
	Format() config.Format
	Render(site *nav.Site) ([]File, error)
}

var renderers = map[config.Format]Renderer{}

func register(r Renderer) { renderers[r.Format()] = r }

func init() {
	register(vitePressRenderer{format: config.FormatVitePressTS})
	register(vitePressRenderer{format: config.FormatVitePressJSON})
	register(hugoRenderer{})
	register(canonicalRenderer{format: config.FormatYAML})
	register(canonicalRenderer{format: config.FormatJSON})
	register(xlsxRenderer{})
}

// RendererFor returns the renderer registered for format.
func RendererFor(format config.Format) (Renderer, error) {
	r, ok := renderers[format]
	if !ok {
		return nil, errors.ExportError(fmt.Sprintf("unsupported export format %q", format)).
			WithContext("format", string(format)).
			Build()
	}
	return r, nil
}

// Render produces the files for format without writing them.
func Render(site *nav.Site, format config.Format) ([]File, error) {
	r, err := RendererFor(format)
	if err != nil {
		return nil, err
	}
	files, err := r.Render(site)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryExport, "failed to render site").
			WithContext("format", string(format)).
			Build()
	}
	return files, nil
}

// Options configures one Export call.
type Options struct {
	Format    config.Format
	OutputDir string
	Force     bool // write even when lint reports errors
	Clean     bool // remove this format's previous files first
	Pages     lint.PageSet
	Recorder  metrics.Recorder
}

// Result describes a finished export.
type Result struct {
	Format   config.Format
	Files    []string // written paths
	Hash     string   // site hash at export time
	Lint     *lint.Result
	Duration time.Duration
}

// Export lints site and, unless blocked, writes the generator configuration
// into opts.OutputDir. Each file is replaced atomically. When lint reports
// errors and Force is unset, nothing is written and the returned Result still
// carries the lint outcome.
func Export(ctx context.Context, site *nav.Site, opts Options) (*Result, error) {
	start := time.Now()
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	format := string(opts.Format)

	res := &Result{
		Format: opts.Format,
		Hash:   site.Hash(),
		Lint:   lint.Check(site, lint.Options{Pages: opts.Pages}),
	}
	if res.Lint.HasErrors() {
		if !opts.Force {
			rec.IncExportOutcome(format, metrics.ExportBlocked)
			return res, errors.ValidationError("site has lint errors; fix them or export with --force").
				WithContext("errors", res.Lint.ErrorCount()).
				Build()
		}
		slog.Warn("Exporting despite lint errors", slog.Int("errors", res.Lint.ErrorCount()))
	}

	files, err := Render(site, opts.Format)
	if err != nil {
		rec.IncExportOutcome(format, metrics.ExportFailed)
		return res, err
	}

	if opts.Clean {
		if err := clean(opts.OutputDir, files); err != nil {
			rec.IncExportOutcome(format, metrics.ExportFailed)
			return res, err
		}
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			rec.IncExportOutcome(format, metrics.ExportFailed)
			return res, err
		}
		target := filepath.Join(opts.OutputDir, filepath.FromSlash(f.Path))
		if err := WriteFileAtomic(target, f.Data); err != nil {
			rec.IncExportOutcome(format, metrics.ExportFailed)
			return res, err
		}
		res.Files = append(res.Files, target)
	}

	res.Duration = time.Since(start)
	rec.ObserveExportDuration(format, res.Duration)
	rec.IncExportOutcome(format, metrics.ExportSuccess)
	slog.Info("Exported site",
		logfields.Format(format),
		logfields.Path(opts.OutputDir),
		logfields.Hash(res.Hash),
		logfields.Duration(res.Duration))
	return res, nil
}

// WriteFileAtomic writes data to a temporary file beside path and renames it
// into place, creating parent directories as needed.
func WriteFileAtomic(path string, data []byte) error {
	fail := func(err error, msg string) error {
		return errors.WrapError(err, errors.CategoryFileSystem, msg).
			WithContext("path", path).
			Build()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fail(err, "failed to create output directory")
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fail(err, "failed to create temporary file")
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fail(err, "failed to write temporary file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fail(err, "failed to sync temporary file")
	}
	if err := tmp.Close(); err != nil {
		return fail(err, "failed to close temporary file")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fail(err, "failed to set file mode")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fail(err, "failed to move file into place")
	}
	return nil
}

// clean removes the files a previous export of the same format left behind.
// Only the format's own file names are touched; the output directory may hold
// theme files owned by the generator.
func clean(outputDir string, files []File) error {
	for _, f := range files {
		target := filepath.Join(outputDir, filepath.FromSlash(f.Path))
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to remove previous export").
				WithContext("path", target).
				Build()
		}
	}
	return nil
}

// sectionName turns a sidebar prefix such as "/slurm/install/" into a menu
// identifier fragment ("slurm_install"); "/" becomes "root".
func sectionName(prefix string) string {
	name := strings.Trim(prefix, "/")
	if name == "" {
		return "root"
	}
	return strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(name)
}

// menuNames assigns each sidebar prefix a unique Hugo menu name. Prefixes that
// reduce to the same section name ("/a-b/" and "/a_b/") keep the plain name for
// the first prefix in sorted order; later ones get a numeric suffix.
func menuNames(prefixes []string) map[string]string {
	natural := make(map[string]bool, len(prefixes))
	for _, p := range prefixes {
		natural["sidebar_"+sectionName(p)] = true
	}
	names := make(map[string]string, len(prefixes))
	used := map[string]bool{}
	for _, p := range prefixes {
		base := "sidebar_" + sectionName(p)
		name := base
		for n := 2; used[name] || (name != base && natural[name]); n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		names[p] = name
	}
	return names
}
