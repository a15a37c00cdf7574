package nav

import (
	"bytes"
	_ "embed"
	"fmt"
)

//go:embed site.yaml
var defaultSiteYAML []byte

// Default returns a fresh copy of the built-in site definition.
func Default() (*Site, error) {
	s, err := DecodeYAML(bytes.NewReader(defaultSiteYAML))
	if err != nil {
		return nil, fmt.Errorf("built-in site: %w", err)
	}
	return s, nil
}

// DefaultYAML returns the built-in site definition as written.
func DefaultYAML() []byte {
	return bytes.Clone(defaultSiteYAML)
}
