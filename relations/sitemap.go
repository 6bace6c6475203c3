package relations

import (
	"strings"
	"time"

	"github.com/foomo/contentserver-docgraph/service/vo"
)

// LastModifiedFunc looks up the modification time of a page source.
type LastModifiedFunc func(absolutePath string) (time.Time, error)

// SitemapDeriver derives crawl hints for pages.
type SitemapDeriver struct {
	// BaseURL is prepended to rendered page URLs, e.g. https://example.com
	BaseURL      string
	LastModified LastModifiedFunc
	// Now defaults to time.Now
	Now func() time.Time
	// OnFallback is called when a timestamp lookup failed and Now was used instead.
	OnFallback func(page vo.Page, err error)
}

// Entries derives one sitemap entry per page, in page order.
func (d SitemapDeriver) Entries(pages []vo.Page) []vo.SitemapEntry {
	entries := make([]vo.SitemapEntry, 0, len(pages))
	for _, page := range pages {
		url := d.URL(page.Path)
		entries = append(entries, vo.SitemapEntry{
			URL:             url,
			LastModified:    d.lastModified(page),
			ChangeFrequency: ChangeFrequency(page.Path),
			Priority:        d.Priority(url, page.Path),
		})
	}
	return entries
}

// URL renders the absolute URL of path.
func (d SitemapDeriver) URL(path vo.Path) string {
	return strings.TrimSuffix(d.BaseURL, "/") + path.URL()
}

// Priority maps a page URL and path to a crawl priority in [0.3, 1.0].
func (d SitemapDeriver) Priority(url string, path vo.Path) float64 {
	if path.IsRoot() || d.isRootURL(url) {
		return 1.0
	}
	switch path.First() {
	case "getting-started":
		return 0.9
	case "api-reference":
		return 0.8
	case "examples":
		return 0.7
	case "guides":
		return 0.6
	}
	// tenths keep the result exact, 0.9 - 0.1*depth is not
	return float64(max(3, 9-path.Depth())) / 10
}

func (d SitemapDeriver) isRootURL(url string) bool {
	base := strings.TrimSuffix(d.BaseURL, "/")
	switch strings.TrimSuffix(url, "/") {
	case "", vo.DocsRoot, base, base + vo.DocsRoot:
		return true
	}
	return false
}

// ChangeFrequency hints how often a page changes.
func ChangeFrequency(path vo.Path) vo.ChangeFrequency {
	switch path.First() {
	case "api-reference", "examples":
		return vo.ChangeFrequencyMonthly
	case "getting-started":
		return vo.ChangeFrequencyWeekly
	default:
		return vo.ChangeFrequencyWeekly
	}
}

func (d SitemapDeriver) lastModified(page vo.Page) time.Time {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	if d.LastModified == nil {
		return now()
	}
	t, err := d.LastModified(page.AbsolutePath)
	if err != nil || t.IsZero() {
		if d.OnFallback != nil {
			d.OnFallback(page, err)
		}
		return now()
	}
	return t
}
