package vo

import (
	"strings"

	"github.com/spf13/cast"
)

// Page is a published documentation page as supplied by a repository.
type Page struct {
	Path         Path     `json:"path"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Links        []string `json:"links,omitempty"` // Raw outbound link references
	AbsolutePath string   `json:"-"`               // Source location for timestamp lookups
}

// NewPage is the single point where upstream values are coerced into a Page.
func NewPage(slug, title, description, links any, absolutePath string) Page {
	return Page{
		Path:         NormalizePath(slug),
		Title:        strings.TrimSpace(cast.ToString(title)),
		Description:  strings.TrimSpace(cast.ToString(description)),
		Links:        coerceLinks(links),
		AbsolutePath: absolutePath,
	}
}

func coerceLinks(links any) []string {
	var values []any
	switch v := links.(type) {
	case nil:
		return nil
	case []string:
		return append([]string(nil), v...)
	case []any:
		values = v
	case string:
		return []string{v}
	default:
		return nil
	}
	ret := make([]string, 0, len(values))
	for _, value := range values {
		// non-string references are kept as empty strings and never resolve
		s, _ := value.(string)
		ret = append(ret, s)
	}
	return ret
}

func (p Page) URL() string {
	return p.Path.URL()
}

func (p Page) Category() Category {
	return CategoryOf(p.Path)
}

func (p Page) Summary() DocumentSummary {
	return DocumentSummary{
		URL:         p.URL(),
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category(),
	}
}
