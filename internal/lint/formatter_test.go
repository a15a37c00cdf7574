package lint

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	return &Result{
		EntriesTotal: 12,
		Issues: []Issue{
			{Rule: RuleSidebarLink, Severity: SeverityError, Location: "sidebar /go/ › Go 编程 › 简介", Message: "sidebar item has no link", Fix: "set a link such as /go/"},
			{Rule: RuleDuplicateLink, Severity: SeverityWarning, Location: "sidebar /go/ › Go 编程 › Again", Link: "/go/", Message: "link already listed"},
		},
	}
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter("text").Format(&buf, sampleResult(), "docnav.yaml"))

	out := buf.String()
	assert.Contains(t, out, "Linting site from: docnav.yaml")
	assert.Contains(t, out, "✗ sidebar /go/ › Go 编程 › 简介")
	assert.Contains(t, out, "ERROR [sidebar-link]: sidebar item has no link")
	assert.Contains(t, out, "Fix: set a link such as /go/")
	assert.Contains(t, out, "Link: /go/")
	assert.Contains(t, out, "1 error (blocks export)")
	assert.Contains(t, out, "1 warning (should fix)")
	assert.Contains(t, out, "docnav export --force")
}

func TestTextFormatter_Clean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextFormatter().Format(&buf, &Result{EntriesTotal: 3}, "built-in"))
	assert.Contains(t, buf.String(), "passes linting")
	assert.NotContains(t, buf.String(), "error")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter("json").Format(&buf, sampleResult(), "docnav.yaml"))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "docnav.yaml", out.Source)
	assert.Equal(t, 12, out.EntriesTotal)
	assert.Equal(t, 1, out.ErrorCount)
	assert.Equal(t, 1, out.WarningCount)
	require.Len(t, out.Issues, 2)
	assert.Equal(t, "error", out.Issues[0].Severity)
	assert.Equal(t, "warning", out.Issues[1].Severity)
	assert.Contains(t, buf.String(), "sidebar /go/ › Go 编程 › 简介")
}

func TestJSONFormatter_EmptyIssuesIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&buf, &Result{}, "x"))
	assert.Contains(t, buf.String(), `"issues": []`)
}
