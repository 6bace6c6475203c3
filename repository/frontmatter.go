package repository

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates a document opened YAML frontmatter but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// splitFrontmatter separates `---` delimited YAML frontmatter from the markdown body.
func splitFrontmatter(content []byte) (map[string]any, []byte, error) {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	open := []byte("---\n")
	if !bytes.HasPrefix(content, open) {
		return map[string]any{}, content, nil
	}

	rest := content[len(open):]
	var raw, body []byte
	switch {
	case bytes.HasPrefix(rest, open):
		body = rest[len(open):]
	default:
		idx := bytes.Index(rest, []byte("\n---\n"))
		if idx < 0 {
			if !bytes.HasSuffix(rest, []byte("\n---")) {
				return nil, nil, ErrMissingClosingDelimiter
			}
			idx = len(rest) - len("\n---")
			raw, body = rest[:idx+1], nil
			break
		}
		raw, body = rest[:idx+1], rest[idx+len("\n---\n"):]
	}

	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, body, nil
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, body, nil
}
