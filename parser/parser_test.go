package parser_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eo-tracker/parser"
)

const sampleXHTML = `<html>
<head><title>Executive Order 14999</title></head>
<body>
<article>
<h1>Executive Order 14999 of June 1, 2025</h1>
<p>By the authority vested in me as President by the Constitution and the
laws of the United States of America, it is hereby ordered as follows.</p>
<p>Section 1. Policy. It is the policy of the United States to maintain
clear and consistent administrative records for all executive actions,
and to make those records available to the public in machine readable
form through the appropriate channels of publication.</p>
<p>Sec. 2. Implementation. The heads of executive departments and
agencies shall, within ninety days of the date of this order, review
their publication practices and report to the Director of the Office of
Management and Budget on their conformance with the policy set forth in
section 1 of this order.</p>
<p>Sec. 3. General Provisions. Nothing in this order shall be construed
to impair or otherwise affect the authority granted by law to an
executive department or agency, or the head thereof.</p>
</article>
</body>
</html>`

func TestExtractPlainTextFromXHTML(t *testing.T) {
	text, err := parser.ExtractPlainText(sampleXHTML, "application/xhtml+xml")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
	assert.Contains(t, text, "it is hereby ordered")
	assert.Contains(t, text, "General Provisions")
	// Markup must not leak through.
	assert.NotContains(t, text, "<p>")
}

func TestExtractPlainTextPassesThroughPlainBodies(t *testing.T) {
	raw := "  Executive Order 14999\n\nSection 1. Policy.  "
	text, err := parser.ExtractPlainText(raw, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "Executive Order 14999\n\nSection 1. Policy.", text)
}

func TestExtractPlainTextSniffsHTMLWithoutContentType(t *testing.T) {
	text, err := parser.ExtractPlainText(sampleXHTML, "")
	require.NoError(t, err)
	assert.NotContains(t, text, "<article>")
	assert.Contains(t, text, "hereby ordered")
}

func TestExtractPlainTextEmptyDocument(t *testing.T) {
	_, err := parser.ExtractPlainText("   \n\t  ", "text/plain")
	assert.ErrorIs(t, err, parser.ErrEmptyDocument)
}

func TestExtractPlainTextLongDocument(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body><article>")
	for i := 0; i < 40; i++ {
		b.WriteString("<p>The agencies shall coordinate with one another on the reporting requirements described in this order and shall publish their findings.</p>")
	}
	b.WriteString("</article></body></html>")

	text, err := parser.ExtractPlainText(b.String(), "text/html")
	require.NoError(t, err)
	assert.Contains(t, text, "coordinate with one another")
}
