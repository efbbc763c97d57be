package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/gmail-assistant/internal/format"
)

func TestHTML2Text(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "paragraphs",
			input:    `<html><body><p>Hello   Alice,</p><p>The milestone&nbsp;slipped.</p></body></html>`,
			expected: "Hello Alice,\n\nThe milestone slipped.",
		},
		{
			name:     "drops_head_script_style",
			input:    `<html><head><title>T</title><style>p{color:red}</style></head><body><script>alert(1)</script>Visible</body></html>`,
			expected: "Visible",
		},
		{
			name:     "line_breaks",
			input:    `<div>line one<br>line two<br/>line three</div>`,
			expected: "line one\nline two\nline three",
		},
		{
			name:     "lists",
			input:    `<p>Agenda:</p><ul><li>Budget</li><li>Hiring</li></ul>`,
			expected: "Agenda:\n\n- Budget\n\n- Hiring",
		},
		{
			name:     "links_keep_target",
			input:    `<p>See <a href="https://example.com/doc">the doc</a> and <a href="https://example.com">https://example.com</a>.</p>`,
			expected: "See the doc (https://example.com/doc) and https://example.com.",
		},
		{
			name:     "layout_table",
			input:    `<table id="main"><tr><td>Row 1</td></tr><tr><td>Row 2</td><td>More</td></tr></table>`,
			expected: "Row 1\n\nRow 2 More",
		},
		{
			name:     "entities_and_images",
			input:    `<p>Fish &amp; chips <img src="x.png" alt="[logo]"></p>`,
			expected: "Fish & chips [logo]",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := format.HTML2Text([]byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b\n\nc", format.Normalize("  a \t b \r\n\n\n\n  c  \n"))
	assert.Empty(t, format.Normalize(" \n \n"))
}
