package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/foomo/contentserver-docgraph/service/vo"
)

const (
	Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	// FeedPath is the site relative location of the docs feed
	FeedPath = "/feed.xml"
)

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []url    `xml:"url"`
}

type url struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Entries returns the fixed site entries, the site root and the feed, followed by entries.
func Entries(baseURL string, entries []vo.SitemapEntry, now time.Time) []vo.SitemapEntry {
	baseURL = strings.TrimSuffix(baseURL, "/")
	ret := make([]vo.SitemapEntry, 0, len(entries)+2)
	ret = append(ret,
		vo.SitemapEntry{
			URL:             baseURL + "/",
			LastModified:    now,
			ChangeFrequency: vo.ChangeFrequencyDaily,
			Priority:        1.0,
		},
		vo.SitemapEntry{
			URL:             baseURL + FeedPath,
			LastModified:    now,
			ChangeFrequency: vo.ChangeFrequencyDaily,
			Priority:        0.5,
		},
	)
	return append(ret, entries...)
}

// Write renders the sitemap document for the fixed site entries and entries.
func Write(w io.Writer, baseURL string, entries []vo.SitemapEntry, now time.Time) error {
	set := urlSet{Xmlns: Namespace}
	for _, entry := range Entries(baseURL, entries, now) {
		set.URLs = append(set.URLs, url{
			Loc:        entry.URL,
			LastMod:    entry.LastModified.UTC().Format(time.RFC3339),
			ChangeFreq: string(entry.ChangeFrequency),
			Priority:   fmt.Sprintf("%.1f", entry.Priority),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
