package export

import (
	"bytes"

	"git.home.luguber.info/inful/docnav/internal/config"
	"git.home.luguber.info/inful/docnav/internal/nav"
)

// canonicalRenderer writes the model itself, for tools that read docnav's
// own schema.
type canonicalRenderer struct {
	format config.Format
}

func (r canonicalRenderer) Format() config.Format { return r.format }

func (r canonicalRenderer) Render(site *nav.Site) ([]File, error) {
	var buf bytes.Buffer
	if r.format == config.FormatJSON {
		if err := nav.EncodeJSON(&buf, site); err != nil {
			return nil, err
		}
		return []File{{Path: "site.json", Data: buf.Bytes()}}, nil
	}
	if err := nav.EncodeYAML(&buf, site); err != nil {
		return nil, err
	}
	return []File{{Path: "site.yaml", Data: buf.Bytes()}}, nil
}
