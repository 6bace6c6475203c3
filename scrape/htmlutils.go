package scrape

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// extractNodeBySelector finds a node by a simple selector: #id, .class or tag name.
func extractNodeBySelector(doc *html.Node, selector string) (*html.Node, error) {
	selector = strings.TrimSpace(selector)
	var match func(n *html.Node) bool
	var kind string
	switch {
	case selector == "":
		return doc, nil
	case strings.HasPrefix(selector, "#"):
		id := strings.TrimPrefix(selector, "#")
		kind, match = "id", func(n *html.Node) bool { return attr(n, "id") == id }
	case strings.HasPrefix(selector, "."):
		class := strings.TrimPrefix(selector, ".")
		kind, match = "class", func(n *html.Node) bool {
			for _, c := range strings.Fields(attr(n, "class")) {
				if c == class {
					return true
				}
			}
			return false
		}
	default:
		kind, match = "tag", func(n *html.Node) bool { return n.Data == selector }
	}

	if n := findElement(doc, match); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("element with %s '%s' not found", kind, strings.TrimLeft(selector, "#."))
}

// findElement returns the first element in document order for which match is true.
func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findElement(c, match); result != nil {
			return result
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// extractTitle extracts the title from the HTML document
func extractTitle(doc *html.Node) string {
	n := findElement(doc, func(n *html.Node) bool { return n.Data == "title" })
	if n == nil || n.FirstChild == nil || n.FirstChild.Type != html.TextNode {
		return ""
	}
	return strings.TrimSpace(n.FirstChild.Data)
}

func extractMeta(doc *html.Node, name string) string {
	n := findElement(doc, func(n *html.Node) bool {
		return n.Data == "meta" && attr(n, "name") == name && attr(n, "content") != ""
	})
	if n == nil {
		return ""
	}
	return attr(n, "content")
}

func extractMetaDescription(doc *html.Node) string {
	return extractMeta(doc, "description")
}

// extractMetaKeywords splits the comma separated keywords meta tag
func extractMetaKeywords(doc *html.Node) []string {
	var keywords []string
	for _, keyword := range strings.Split(extractMeta(doc, "keywords"), ",") {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}

// extractLinks collects anchor hrefs below n. hrefs pointing at the host of
// pageURL are reduced to their path so they can be matched against page slugs.
func extractLinks(n *html.Node, pageURL string) []string {
	base, _ := url.Parse(pageURL)
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := strings.TrimSpace(attr(n, "href")); href != "" {
				links = append(links, localHref(base, href))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return links
}

func localHref(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	resolved := base.ResolveReference(u)
	if resolved.Host != base.Host || resolved.Scheme != base.Scheme {
		return href
	}
	if strings.HasPrefix(href, "#") {
		return href
	}
	return resolved.Path
}
