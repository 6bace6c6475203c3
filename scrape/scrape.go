package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/foomo/contentserver-docgraph/service/vo"
	"golang.org/x/net/html"
)

// Summary describes a scraped page.
type Summary struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
	Links       []string `json:"links,omitempty"` // hrefs found inside the selected node
}

// Scrape downloads pageURL, extracts the meta data of the document and converts the
// node matching selector to markdown.
func Scrape(ctx context.Context, httpClient *http.Client, pageURL, selector string) (*Summary, vo.Markdown, error) {
	doc, err := fetch(ctx, httpClient, pageURL)
	if err != nil {
		return nil, "", err
	}

	// Extract node using selector
	selectedNode, err := extractNodeBySelector(doc, selector)
	if err != nil {
		return nil, "", fmt.Errorf("failed to extract node with selector '%s': %w", selector, err)
	}

	summary := &Summary{
		URL:         pageURL,
		Title:       extractTitle(doc),
		Description: extractMetaDescription(doc),
		Keywords:    extractMetaKeywords(doc),
		Links:       extractLinks(selectedNode, pageURL),
	}

	// Convert HTML node to markdown
	markdownBytes, err := htmltomarkdown.ConvertNode(selectedNode)
	if err != nil {
		return nil, "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
	}

	return summary, vo.Markdown(string(markdownBytes)), nil
}

// Links returns the link references found in the node matching selector.
// Links to the same host are returned as paths.
func Links(ctx context.Context, httpClient *http.Client, pageURL, selector string) ([]string, error) {
	doc, err := fetch(ctx, httpClient, pageURL)
	if err != nil {
		return nil, err
	}
	selectedNode, err := extractNodeBySelector(doc, selector)
	if err != nil {
		return nil, fmt.Errorf("failed to extract node with selector '%s': %w", selector, err)
	}
	return extractLinks(selectedNode, pageURL), nil
}

func fetch(ctx context.Context, httpClient *http.Client, pageURL string) (*html.Node, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if _, err := url.Parse(pageURL); err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	// Download HTML from URL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download HTML: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	// Parse HTML
	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
