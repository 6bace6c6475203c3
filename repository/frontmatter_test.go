package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantFields map[string]any
		wantBody   string
	}{
		{"no frontmatter", "# Title\n", map[string]any{}, "# Title\n"},
		{"empty frontmatter", "---\n---\nbody\n", map[string]any{}, "body\n"},
		{"fields", "---\ntitle: Hello\nweight: 2\n---\nbody\n", map[string]any{"title": "Hello", "weight": 2}, "body\n"},
		{"crlf", "---\r\ntitle: Hello\r\n---\r\nbody\r\n", map[string]any{"title": "Hello"}, "body\n"},
		{"closing at eof", "---\ntitle: Hello\n---", map[string]any{"title": "Hello"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, body, err := splitFrontmatter([]byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.wantFields, fields)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestSplitFrontmatterErrors(t *testing.T) {
	_, _, err := splitFrontmatter([]byte("---\ntitle: Hello\nbody"))
	assert.ErrorIs(t, err, ErrMissingClosingDelimiter)

	_, _, err = splitFrontmatter([]byte("---\ntitle: [unterminated\n---\n"))
	assert.Error(t, err)
}
