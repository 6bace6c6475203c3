package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/foomo/contentserver-docgraph/metrics"
	"github.com/foomo/contentserver-docgraph/scrape"
	"github.com/foomo/contentserver-docgraph/service"
	"github.com/foomo/contentserver-docgraph/service/vo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const Version = "0.1.0"

type ScrapeRequest struct {
	URL      string `json:"url"`      // The URL to scrape
	Selector string `json:"selector"` // CSS selector to extract content
}

type ScrapeResponse struct {
	Summary  *scrape.Summary `json:"summary"`
	Markdown string          `json:"markdown"` // The extracted content in markdown format
}

type GetDocumentRequest struct {
	Path string `json:"path"` // The path to get the document for
}

type GetDocumentResponse struct {
	Document *vo.Document `json:"document"`
}

type GetGraphRequest struct{}

type GetGraphResponse struct {
	Graph *vo.Graph `json:"graph"`
}

type GetRelatedPagesRequest struct {
	Path  string `json:"path"`
	Limit int    `json:"limit,omitempty"`
}

type GetRelatedPagesResponse struct {
	Related []vo.DocumentSummary `json:"related"`
}

type GetAdjacentPagesRequest struct {
	Path string `json:"path"`
}

type GetAdjacentPagesResponse struct {
	Adjacent *service.Adjacent `json:"adjacent"`
}

type GetSitemapRequest struct{}

type GetSitemapResponse struct {
	Entries []vo.SitemapEntry `json:"entries"`
}

// NewServer creates a new MCP server with the scrape tool and, if a service is given, the docs graph tools
func NewServer(client *http.Client, serviceInstance service.Service, recorder metrics.Recorder) *server.MCPServer {
	if client == nil {
		client = http.DefaultClient
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	s := server.NewMCPServer(
		"Docs Graph MCP",
		Version,
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape",
		mcp.WithDescription("Scrape content from a webpage and convert it to markdown"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the webpage to scrape"),
		),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("CSS selector to extract specific content (e.g., '#content', '.article', 'article')"),
		),
	)
	s.AddTool(scrapeTool, mcp.NewTypedToolHandler(observed(recorder, "scrape", getScrapeHandler(client))))

	if serviceInstance == nil {
		return s
	}

	getDocumentTool := mcp.NewTool("getDocument",
		mcp.WithDescription("Get a documentation page with breadcrumbs, children, previous/next, related pages and links"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("The page slug or docs URL, e.g. 'guides/routing' or '/docs/guides/routing'"),
		),
	)
	s.AddTool(getDocumentTool, mcp.NewTypedToolHandler(observed(recorder, "getDocument", getDocumentHandler(serviceInstance))))

	getGraphTool := mcp.NewTool("getGraph",
		mcp.WithDescription("Get the link graph of all documentation pages"),
	)
	s.AddTool(getGraphTool, mcp.NewTypedToolHandler(observed(recorder, "getGraph", getGraphHandler(serviceInstance))))

	getRelatedPagesTool := mcp.NewTool("getRelatedPages",
		mcp.WithDescription("Get the pages most related to a documentation page"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("The page slug or docs URL"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of related pages (default 3)"),
		),
	)
	s.AddTool(getRelatedPagesTool, mcp.NewTypedToolHandler(observed(recorder, "getRelatedPages", getRelatedPagesHandler(serviceInstance))))

	getAdjacentPagesTool := mcp.NewTool("getAdjacentPages",
		mcp.WithDescription("Get the previous and next page of a documentation page in reading order"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("The page slug or docs URL"),
		),
	)
	s.AddTool(getAdjacentPagesTool, mcp.NewTypedToolHandler(observed(recorder, "getAdjacentPages", getAdjacentPagesHandler(serviceInstance))))

	getSitemapTool := mcp.NewTool("getSitemap",
		mcp.WithDescription("Get sitemap entries with priority and change frequency for all documentation pages"),
	)
	s.AddTool(getSitemapTool, mcp.NewTypedToolHandler(observed(recorder, "getSitemap", getSitemapHandler(serviceInstance))))

	return s
}

// observed records duration and outcome of a tool handler
func observed[T any](recorder metrics.Recorder, name string, handler mcp.TypedToolHandlerFunc[T]) mcp.TypedToolHandlerFunc[T] {
	return func(ctx context.Context, request mcp.CallToolRequest, args T) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := handler(ctx, request, args)
		observedErr := err
		if observedErr == nil && result != nil && result.IsError {
			observedErr = fmt.Errorf("%s failed", name)
		}
		recorder.ObserveTool(name, time.Since(start), observedErr)
		return result, err
	}
}

func jsonResult(response any) (*mcp.CallToolResult, error) {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseBytes)), nil
}

func getScrapeHandler(client *http.Client) mcp.TypedToolHandlerFunc[ScrapeRequest] {
	return func(ctx context.Context, request mcp.CallToolRequest, args ScrapeRequest) (*mcp.CallToolResult, error) {
		if args.URL == "" {
			return mcp.NewToolResultError("url is required"), nil
		}
		if args.Selector == "" {
			return mcp.NewToolResultError("selector is required"), nil
		}

		summary, markdown, err := scrape.Scrape(ctx, client, args.URL, args.Selector)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to scrape content: %v", err)), nil
		}
		return jsonResult(ScrapeResponse{
			Summary:  summary,
			Markdown: string(markdown),
		})
	}
}

func getDocumentHandler(serviceInstance service.Service) mcp.TypedToolHandlerFunc[GetDocumentRequest] {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetDocumentRequest) (*mcp.CallToolResult, error) {
		if args.Path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		document, err := serviceInstance.GetDocument(ctx, args.Path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get document: %v", err)), nil
		}
		return jsonResult(GetDocumentResponse{Document: document})
	}
}

func getGraphHandler(serviceInstance service.Service) mcp.TypedToolHandlerFunc[GetGraphRequest] {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetGraphRequest) (*mcp.CallToolResult, error) {
		graph, err := serviceInstance.GetGraph(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get graph: %v", err)), nil
		}
		return jsonResult(GetGraphResponse{Graph: graph})
	}
}

func getRelatedPagesHandler(serviceInstance service.Service) mcp.TypedToolHandlerFunc[GetRelatedPagesRequest] {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetRelatedPagesRequest) (*mcp.CallToolResult, error) {
		if args.Path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		if args.Limit < 0 {
			return mcp.NewToolResultError("limit must not be negative"), nil
		}
		related, err := serviceInstance.GetRelated(ctx, args.Path, args.Limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get related pages: %v", err)), nil
		}
		return jsonResult(GetRelatedPagesResponse{Related: related})
	}
}

func getAdjacentPagesHandler(serviceInstance service.Service) mcp.TypedToolHandlerFunc[GetAdjacentPagesRequest] {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetAdjacentPagesRequest) (*mcp.CallToolResult, error) {
		if args.Path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		adjacent, err := serviceInstance.GetAdjacent(ctx, args.Path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get adjacent pages: %v", err)), nil
		}
		return jsonResult(GetAdjacentPagesResponse{Adjacent: adjacent})
	}
}

func getSitemapHandler(serviceInstance service.Service) mcp.TypedToolHandlerFunc[GetSitemapRequest] {
	return func(ctx context.Context, request mcp.CallToolRequest, args GetSitemapRequest) (*mcp.CallToolResult, error) {
		entries, err := serviceInstance.GetSitemap(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get sitemap: %v", err)), nil
		}
		return jsonResult(GetSitemapResponse{Entries: entries})
	}
}
