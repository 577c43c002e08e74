package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	out := string(ToHTML("# Correctness\n\nThe loop is **correct**."))
	assert.Contains(t, out, "<h1>Correctness</h1>")
	assert.Contains(t, out, "<strong>correct</strong>")
}

func TestToHTMLDropsRawHTML(t *testing.T) {
	out := string(ToHTML("before\n\n<script>alert(1)</script>\n\nafter"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "after")
}

func TestToText(t *testing.T) {
	md := "## Complexity\n\n- O(n) time\n- O(1) space\n\n```go\nfor i := range nums {\n}\n```\n\nUse a *hash map* & done."
	out := ToText(md)

	assert.Contains(t, out, "Complexity\n\n- O(n) time\n- O(1) space")
	assert.Contains(t, out, "for i := range nums {\n}")
	assert.Contains(t, out, "Use a hash map & done.")
	assert.NotContains(t, out, "<")
}

func TestHTMLToTextNestedList(t *testing.T) {
	out, err := HTMLToText("<ul><li>outer<ul><li>inner</li></ul></li></ul>")
	require.NoError(t, err)
	assert.Equal(t, "- outer\n  - inner", out)
}
