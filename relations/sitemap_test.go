package relations

import (
	"errors"
	"testing"
	"time"

	"github.com/foomo/contentserver-docgraph/service/vo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriority(t *testing.T) {
	d := SitemapDeriver{BaseURL: "https://example.com"}
	tests := []struct {
		url  string
		path vo.Path
		want float64
	}{
		{"https://example.com/docs", vo.Path{}, 1.0},
		{"https://example.com", vo.Path{"ignored"}, 1.0},
		{"https://example.com/", vo.Path{"ignored"}, 1.0},
		{"/docs", vo.Path{"ignored"}, 1.0},
		{"https://example.com/docs/getting-started/intro", vo.Path{"getting-started", "intro"}, 0.9},
		{"https://example.com/docs/api-reference/foo", vo.Path{"api-reference", "foo"}, 0.8},
		{"https://example.com/docs/examples/chat", vo.Path{"examples", "chat"}, 0.7},
		{"https://example.com/docs/guides/x", vo.Path{"guides", "x"}, 0.6},
		{"https://example.com/docs/blog", vo.Path{"blog"}, 0.8},
		{"https://example.com/docs/a/b/c/d", vo.Path{"a", "b", "c", "d"}, 0.5},
		{"https://example.com/docs/a/b/c/d/e/f/g/h", vo.Path{"a", "b", "c", "d", "e", "f", "g", "h"}, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := d.Priority(tt.url, tt.path)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.3)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestChangeFrequency(t *testing.T) {
	assert.Equal(t, vo.ChangeFrequencyMonthly, ChangeFrequency(vo.Path{"api-reference", "foo"}))
	assert.Equal(t, vo.ChangeFrequencyMonthly, ChangeFrequency(vo.Path{"examples"}))
	assert.Equal(t, vo.ChangeFrequencyWeekly, ChangeFrequency(vo.Path{"getting-started"}))
	assert.Equal(t, vo.ChangeFrequencyWeekly, ChangeFrequency(vo.Path{"guides", "x"}))
	assert.Equal(t, vo.ChangeFrequencyWeekly, ChangeFrequency(vo.Path{}))
}

func TestSitemapEntries(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	modified := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	pages := []vo.Page{
		vo.NewPage(nil, "Docs", "", nil, "/src/index.mdx"),
		vo.NewPage("api-reference/foo", "Foo", "", nil, "/src/api-reference/foo.mdx"),
		vo.NewPage("guides/missing", "Missing", "", nil, "/src/guides/missing.mdx"),
	}

	var fallbacks []string
	d := SitemapDeriver{
		BaseURL: "https://example.com/",
		Now:     func() time.Time { return now },
		LastModified: func(absolutePath string) (time.Time, error) {
			if absolutePath == "/src/guides/missing.mdx" {
				return time.Time{}, errors.New("no such file")
			}
			return modified, nil
		},
		OnFallback: func(page vo.Page, err error) {
			fallbacks = append(fallbacks, page.URL())
		},
	}

	entries := d.Entries(pages)
	require.Len(t, entries, 3)

	assert.Equal(t, vo.SitemapEntry{
		URL:             "https://example.com/docs",
		LastModified:    modified,
		ChangeFrequency: vo.ChangeFrequencyWeekly,
		Priority:        1.0,
	}, entries[0])
	assert.Equal(t, "https://example.com/docs/api-reference/foo", entries[1].URL)
	assert.Equal(t, vo.ChangeFrequencyMonthly, entries[1].ChangeFrequency)
	assert.InDelta(t, 0.8, entries[1].Priority, 1e-9)
	assert.Equal(t, now, entries[2].LastModified)
	assert.Equal(t, []string{"/docs/guides/missing"}, fallbacks)
}

func TestSitemapEntriesWithoutLookup(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	d := SitemapDeriver{Now: func() time.Time { return now }}

	entries := d.Entries([]vo.Page{vo.NewPage("guides/x", "", "", nil, "")})
	require.Len(t, entries, 1)
	assert.Equal(t, "/docs/guides/x", entries[0].URL)
	assert.Equal(t, now, entries[0].LastModified)
}
