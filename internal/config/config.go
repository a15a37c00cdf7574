// Package config loads docnav.yaml, the project file that carries the site
// model together with content, output, history, notification and watch
// settings.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/nav"
)

// DefaultPath is the configuration file used when --config is not given.
const DefaultPath = "docnav.yaml"

// Config is the top-level docnav.yaml document.
type Config struct {
	Site       *nav.Site        `yaml:"site,omitempty"`
	Content    ContentConfig    `yaml:"content"`
	Output     OutputConfig     `yaml:"output"`
	History    HistoryConfig    `yaml:"history"`
	Notify     NotifyConfig     `yaml:"notify"`
	Watch      WatchConfig      `yaml:"watch"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// ContentConfig points at the generator's markdown source directory.
type ContentConfig struct {
	Dir string `yaml:"dir"`
}

// OutputConfig controls where and in which format exports are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Format    Format `yaml:"format"`
	Clean     bool   `yaml:"clean"` // remove previously exported files first
}

// HistoryConfig locates the revision database.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// NotifyConfig configures SiteUpdated announcements over NATS JetStream.
type NotifyConfig struct {
	Enabled  bool   `yaml:"enabled"`
	NATSURL  string `yaml:"nats_url"`
	Subject  string `yaml:"subject"`
	KVBucket string `yaml:"kv_bucket"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Interval time.Duration `yaml:"interval"` // 0 disables the periodic re-run
}

// MonitoringConfig exposes Prometheus metrics while watching.
type MonitoringConfig struct {
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// Load reads, expands, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to load environment files").Build()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found (run 'docnav init' to create one)").
				WithContext("path", path).
				WithCause(err).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read configuration").
			WithContext("path", path).
			Build()
	}

	cfg, err := parse(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").
			WithContext("path", path).
			Build()
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to apply defaults").Build()
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid configuration").
			WithContext("path", path).
			Build()
	}
	return cfg, nil
}

// parse decodes an expanded docnav.yaml document. An empty document yields
// an empty Config.
func parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(strings.NewReader(expandEnv(data)))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) error {
	return NewDefaultApplier().ApplyDefaults(cfg)
}

// Init writes an example configuration carrying the built-in site.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	site, err := nav.Default()
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to load built-in site").Build()
	}
	cfg := &Config{Site: site}
	if err := applyDefaults(cfg); err != nil {
		return err
	}
	return Save(path, cfg)
}

// ResolvePaths makes the relative content, output and history paths relative
// to base, normally the directory holding the configuration file. The result
// is meant for use, not for Save.
func (c *Config) ResolvePaths(base string) {
	c.Content.Dir = resolvePath(base, c.Content.Dir)
	c.Output.Directory = resolvePath(base, c.Output.Directory)
	c.History.Path = resolvePath(base, c.History.Path)
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Save writes cfg to path as YAML, replacing the file atomically.
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	buf.WriteString("# docnav configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal configuration").Build()
	}
	if err := enc.Close(); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal configuration").Build()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to create configuration directory").
				WithContext("path", dir).
				Build()
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write configuration").
			WithContext("path", path).
			Build()
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to replace configuration").
			WithContext("path", path).
			Build()
	}
	return nil
}

// SiteFromBytes decodes a site from a committed file. name selects the codec:
// ".json" files hold a bare site in JSON form, anything else is YAML holding
// either a full docnav.yaml or a bare site document.
func SiteFromBytes(name string, data []byte) (*nav.Site, error) {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return nav.DecodeJSON(bytes.NewReader(data))
	}

	if cfg, err := parse(data); err == nil {
		if cfg.Site == nil {
			return nil, fmt.Errorf("%s: no site section", name)
		}
		return cfg.Site, nil
	}
	return nav.DecodeYAML(strings.NewReader(expandEnv(data)))
}

var envRef = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*\}`)

// expandEnv replaces ${NAME} references with the environment value. Bare
// $NAME and $1 are left alone so site text keeps its dollar signs.
func expandEnv(data []byte) string {
	return envRef.ReplaceAllStringFunc(string(data), func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}
