package config

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"time"
)

var bucketName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateConfig checks a defaulted configuration for settings that cannot work.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if cv.config == nil {
		return errors.New("configuration is nil")
	}
	for _, check := range []func() error{
		cv.validateOutput,
		cv.validateHistory,
		cv.validateNotify,
		cv.validateWatch,
		cv.validateMonitoring,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) validateOutput() error {
	if NormalizeFormat(string(cv.config.Output.Format)) == "" {
		return fmt.Errorf("invalid output.format: %s (allowed: %s)", cv.config.Output.Format, formatNames())
	}
	if cv.config.Output.Directory == "" {
		return errors.New("output.directory cannot be empty")
	}
	return nil
}

func (cv *configurationValidator) validateHistory() error {
	if cv.config.History.Path == "" {
		return errors.New("history.path cannot be empty")
	}
	return nil
}

func (cv *configurationValidator) validateNotify() error {
	n := cv.config.Notify
	if !n.Enabled {
		return nil
	}
	if n.NATSURL == "" {
		return errors.New("notify.nats_url is required when notify.enabled is true")
	}
	if n.Subject == "" {
		return errors.New("notify.subject cannot be empty")
	}
	if !bucketName.MatchString(n.KVBucket) {
		return fmt.Errorf("invalid notify.kv_bucket: %q (letters, digits, '-' and '_' only)", n.KVBucket)
	}
	return nil
}

func (cv *configurationValidator) validateWatch() error {
	w := cv.config.Watch
	if w.Debounce < 0 {
		return fmt.Errorf("watch.debounce cannot be negative: %s", w.Debounce)
	}
	if w.Interval < 0 || (w.Interval > 0 && w.Interval < time.Second) {
		return fmt.Errorf("watch.interval must be 0 (disabled) or at least 1s: %s", w.Interval)
	}
	return nil
}

func (cv *configurationValidator) validateMonitoring() error {
	addr := cv.config.Monitoring.MetricsAddr
	if addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid monitoring.metrics_addr %q: %w", addr, err)
	}
	return nil
}
