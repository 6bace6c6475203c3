package vo

import (
	"strings"

	"github.com/spf13/cast"
)

// DocsRoot is the URL under which every page is rendered.
const DocsRoot = "/docs"

// Path is a normalized slug: ordered, non-empty segments. The empty path is the docs root.
type Path []string

// NormalizePath converts the slug shapes produced by content pipelines into a Path.
// Unknown shapes yield the root path.
func NormalizePath(slug any) Path {
	segments := Path{}
	switch v := slug.(type) {
	case nil:
	case Path:
		for _, s := range v {
			segments = appendSegments(segments, s)
		}
	case []string:
		for _, s := range v {
			segments = appendSegments(segments, s)
		}
	case []any:
		for _, item := range v {
			s, err := cast.ToStringE(item)
			if err != nil {
				continue
			}
			segments = appendSegments(segments, s)
		}
	case string:
		segments = appendSegments(segments, v)
	}
	return segments
}

func appendSegments(p Path, value string) Path {
	for _, s := range strings.Split(value, "/") {
		s = strings.TrimSpace(s)
		if s != "" {
			p = append(p, s)
		}
	}
	return p
}

// NormalizeLink normalizes a raw link reference extracted from page content.
// ok is false for references that can never point at a docs page.
func NormalizeLink(ref any) (Path, bool) {
	s, isString := ref.(string)
	if !isString {
		return Path{}, false
	}
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "#?"); i >= 0 {
		s = s[:i]
	}
	if s == "" || strings.HasPrefix(s, "//") || hasScheme(s) {
		return Path{}, false
	}
	if s == DocsRoot || strings.HasPrefix(s, DocsRoot+"/") {
		s = strings.TrimPrefix(s, DocsRoot)
	}
	p := NormalizePath(s)
	if n := len(p); n > 0 {
		last := strings.TrimSuffix(strings.TrimSuffix(p[n-1], ".mdx"), ".md")
		switch {
		case last == "index" || last == "_index":
			p = p[:n-1]
		case last == "":
			p = p[:n-1]
		default:
			p[n-1] = last
		}
	}
	return p, true
}

// hasScheme reports whether s starts with a URI scheme such as https: or mailto:.
func hasScheme(s string) bool {
	for i, r := range s {
		switch {
		case r == ':':
			return i > 0
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return false
}

// URL renders the canonical docs URL.
func (p Path) URL() string {
	if len(p) == 0 {
		return DocsRoot
	}
	return DocsRoot + "/" + strings.Join(p, "/")
}

func (p Path) String() string {
	return strings.Join(p, "/")
}

// First returns the first segment or "" for the root path.
func (p Path) First() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

func (p Path) Depth() int {
	return len(p)
}

func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Parent returns the enclosing path; the root has no parent.
func (p Path) Parent() (Path, bool) {
	if len(p) == 0 {
		return nil, false
	}
	return p[:len(p)-1], true
}

func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func (p Path) HasPrefix(prefix Path) bool {
	return len(prefix) <= len(p) && p[:len(prefix)].Equal(prefix)
}
