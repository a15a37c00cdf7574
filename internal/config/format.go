package config

import "strings"

// Format selects which generator configuration the export step produces.
type Format string

const (
	FormatVitePressTS   Format = "vitepress-ts"
	FormatVitePressJSON Format = "vitepress-json"
	FormatHugo          Format = "hugo"
	FormatYAML          Format = "yaml"
	FormatJSON          Format = "json"
	FormatXLSX          Format = "xlsx"
)

// Formats lists every supported export format in display order.
func Formats() []Format {
	return []Format{FormatVitePressTS, FormatVitePressJSON, FormatHugo, FormatYAML, FormatJSON, FormatXLSX}
}

// NormalizeFormat returns the canonical Format for s, or "" when s names no
// supported format. Matching is case-insensitive and accepts "ts" and
// "vitepress" as shorthands for vitepress-ts.
func NormalizeFormat(s string) Format {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "ts", "vitepress":
		return FormatVitePressTS
	case "yml":
		return FormatYAML
	}
	for _, f := range Formats() {
		if string(f) == v {
			return f
		}
	}
	return ""
}

// IsVitePress reports whether f targets a VitePress config file.
func (f Format) IsVitePress() bool {
	return f == FormatVitePressTS || f == FormatVitePressJSON
}

func formatNames() string {
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, "|")
}
