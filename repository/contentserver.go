package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/foomo/contentserver-docgraph/scrape"
	"github.com/foomo/contentserver-docgraph/service/vo"
	contentserverclient "github.com/foomo/contentserver/client"
	"github.com/foomo/contentserver/content"
	"github.com/foomo/contentserver/requests"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// Item data fields read from contentserver items.
const (
	DataFieldTitle       = "title"
	DataFieldDescription = "description"
	DataFieldLinks       = "links"
	DataFieldSourcePath  = "sourcePath"
)

// ContentServerClient is the subset of the contentserver client used by ContentServer.
type ContentServerClient interface {
	GetContent(ctx context.Context, request *requests.Content) (*content.SiteContent, error)
	GetNodes(ctx context.Context, env *requests.Env, nodes map[string]*requests.Node) (map[string]*content.Node, error)
}

type ContentServerSettings struct {
	Env *requests.Env
	// RootID is the id of the node holding the documentation tree
	RootID string
	// URIPrefix is stripped from item URIs to get the page slug, e.g. /docs
	URIPrefix string
	MimeTypes []string
	// ScrapeLinks fetches BaseURL+URI and collects links below ContentSelector
	// for items without a links data field.
	ScrapeLinks     bool
	BaseURL         string
	ContentSelector string
}

// ContentServer reads the documentation tree from a foomo contentserver.
// Pages are enumerated depth first following each node's index.
type ContentServer struct {
	client     ContentServerClient
	httpClient *http.Client
	settings   ContentServerSettings
	logger     *zap.Logger
}

func NewContentServer(settings ContentServerSettings, client ContentServerClient, httpClient *http.Client, logger *zap.Logger) *ContentServer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentServer{
		client:     client,
		httpClient: httpClient,
		settings:   settings,
		logger:     logger,
	}
}

// NewContentServerHTTPClient creates a contentserver client talking HTTP to url.
func NewContentServerHTTPClient(url string, httpClient *http.Client) *contentserverclient.Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return contentserverclient.New(
		contentserverclient.NewHTTPTransport(
			url,
			contentserverclient.HTTPTransportWithHTTPClient(httpClient),
		))
}

func (c *ContentServer) GetPages(ctx context.Context) ([]vo.Page, error) {
	nodes, err := c.client.GetNodes(ctx, c.settings.Env, map[string]*requests.Node{
		c.settings.RootID: {
			ID:         c.settings.RootID,
			MimeTypes:  c.settings.MimeTypes,
			Expand:     true,
			DataFields: []string{DataFieldTitle, DataFieldDescription, DataFieldLinks, DataFieldSourcePath},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get nodes: %w", err)
	}
	root, ok := nodes[c.settings.RootID]
	if !ok || root == nil {
		return nil, errors.New("root node not found")
	}

	pages := []vo.Page{}
	var walk func(node *content.Node)
	walk = func(node *content.Node) {
		switch {
		case node.Item == nil || !isValidURI(node.Item.URI):
		case !c.inPrefix(node.Item.URI):
			c.logger.Debug("skipping item outside of uri prefix", zap.String("uri", node.Item.URI))
		default:
			pages = append(pages, c.page(ctx, node.Item))
		}
		for _, id := range node.Index {
			child, ok := node.Nodes[id]
			if !ok || child == nil {
				c.logger.Warn("indexed node not found", zap.String("id", id))
				continue
			}
			walk(child)
		}
	}
	walk(root)
	return pages, nil
}

func (c *ContentServer) GetPage(ctx context.Context, path vo.Path) (*vo.Page, error) {
	siteContent, err := c.client.GetContent(ctx, &requests.Content{
		URI:   c.uri(path),
		Env:   c.settings.Env,
		Nodes: map[string]*requests.Node{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	if siteContent == nil || siteContent.Item == nil || !c.inPrefix(siteContent.Item.URI) {
		return nil, nil
	}
	page := c.page(ctx, siteContent.Item)
	// not found responses carry the item of the configured error page
	if !page.Path.Equal(path) {
		return nil, nil
	}
	return &page, nil
}

func (c *ContentServer) uri(path vo.Path) string {
	prefix := strings.TrimSuffix(c.settings.URIPrefix, "/")
	if len(path) == 0 {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	return prefix + "/" + path.String()
}

// inPrefix reports whether uri lies below the configured URIPrefix.
func (c *ContentServer) inPrefix(uri string) bool {
	prefix := strings.TrimSuffix(c.settings.URIPrefix, "/")
	return prefix == "" || uri == prefix || strings.HasPrefix(uri, prefix+"/")
}

func (c *ContentServer) page(ctx context.Context, item *content.Item) vo.Page {
	slug := strings.TrimPrefix(item.URI, strings.TrimSuffix(c.settings.URIPrefix, "/"))

	title := item.Data[DataFieldTitle]
	if cast.ToString(title) == "" {
		title = item.Name
	}

	links := item.Data[DataFieldLinks]
	if links == nil && c.settings.ScrapeLinks {
		scraped, err := scrape.Links(ctx, c.httpClient, c.settings.BaseURL+item.URI, c.settings.ContentSelector)
		if err != nil {
			c.logger.Warn("failed to scrape links", zap.String("uri", item.URI), zap.Error(err))
		} else {
			links = scraped
		}
	}

	return vo.NewPage(slug, title, item.Data[DataFieldDescription], links, cast.ToString(item.Data[DataFieldSourcePath]))
}

// isValidURI checks if a URI is valid for processing
func isValidURI(uri string) bool {
	return uri != "" && strings.HasPrefix(uri, "/")
}
