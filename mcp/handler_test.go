package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/foomo/contentserver-docgraph/repository"
	"github.com/foomo/contentserver-docgraph/service"
	"github.com/foomo/contentserver-docgraph/service/vo"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) service.Service {
	t.Helper()
	repo := repository.NewMemory(
		vo.NewPage(nil, "Documentation", "Welcome", nil, ""),
		vo.NewPage("guides", "Guides", "", []string{"guides/routing"}, ""),
		vo.NewPage("guides/routing", "Routing", "How routing works", []string{"/docs/api-reference/router"}, ""),
		vo.NewPage("api-reference/router", "Router", "", []string{"/docs/guides/routing"}, ""),
	)
	return service.NewService(service.SiteSettings{Source: "memory", BaseURL: "https://example.com"}, repo, zaptest.NewLogger(t), nil)
}

func newCallToolRequest(name string, args any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	switch content := result.Content[0].(type) {
	case mcp.TextContent:
		return content.Text
	case *mcp.TextContent:
		return content.Text
	}
	t.Fatalf("unexpected content type %T", result.Content[0])
	return ""
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer(http.DefaultClient, nil, nil))
	assert.NotNil(t, NewServer(nil, newTestService(t), nil))
}

func TestScrapeHandler(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, `<html><head><title>Test</title></head><body><main><h1>Hello</h1><p>World</p></main></body></html>`)
	}))
	defer ts.Close()

	args := ScrapeRequest{URL: ts.URL, Selector: "main"}
	result, err := getScrapeHandler(ts.Client())(context.Background(), newCallToolRequest("scrape", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var response ScrapeResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, "Test", response.Summary.Title)
	assert.Contains(t, response.Markdown, "# Hello")
}

func TestScrapeHandlerValidation(t *testing.T) {
	scrapeHandler := getScrapeHandler(http.DefaultClient)
	for _, args := range []ScrapeRequest{
		{URL: "", Selector: "body"},
		{URL: "https://example.com", Selector: ""},
	} {
		result, err := scrapeHandler(context.Background(), newCallToolRequest("scrape", args), args)
		require.NoError(t, err)
		assert.True(t, result.IsError)
	}
}

func TestGetDocumentHandler(t *testing.T) {
	handler := getDocumentHandler(newTestService(t))

	args := GetDocumentRequest{Path: "/docs/guides/routing"}
	result, err := handler(context.Background(), newCallToolRequest("getDocument", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var response GetDocumentResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	require.NotNil(t, response.Document)
	assert.Equal(t, "Routing", response.Document.DocumentSummary.Title)
	require.Len(t, response.Document.Breadcrump, 2)
	assert.Equal(t, "/docs", response.Document.Breadcrump[0].URL)
	assert.Equal(t, "/docs/guides", response.Document.Breadcrump[1].URL)

	args = GetDocumentRequest{Path: "missing"}
	result, err = handler(context.Background(), newCallToolRequest("getDocument", args), args)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "page not found")

	args = GetDocumentRequest{}
	result, err = handler(context.Background(), newCallToolRequest("getDocument", args), args)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestGetGraphHandler(t *testing.T) {
	result, err := getGraphHandler(newTestService(t))(context.Background(), newCallToolRequest("getGraph", nil), GetGraphRequest{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var response GetGraphResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Len(t, response.Graph.Nodes, 4)
	assert.Equal(t, []vo.GraphEdge{
		{From: "/docs/guides", To: "/docs/guides/routing"},
		{From: "/docs/guides/routing", To: "/docs/api-reference/router"},
		{From: "/docs/api-reference/router", To: "/docs/guides/routing"},
	}, response.Graph.Edges)
}

func TestGetRelatedPagesHandler(t *testing.T) {
	handler := getRelatedPagesHandler(newTestService(t))

	args := GetRelatedPagesRequest{Path: "guides/routing", Limit: 1}
	result, err := handler(context.Background(), newCallToolRequest("getRelatedPages", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var response GetRelatedPagesResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	require.Len(t, response.Related, 1)
	assert.Equal(t, "/docs/guides", response.Related[0].URL)

	args = GetRelatedPagesRequest{Path: "guides/routing", Limit: -1}
	result, err = handler(context.Background(), newCallToolRequest("getRelatedPages", args), args)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestGetAdjacentPagesHandler(t *testing.T) {
	args := GetAdjacentPagesRequest{Path: "guides/routing"}
	result, err := getAdjacentPagesHandler(newTestService(t))(context.Background(), newCallToolRequest("getAdjacentPages", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var response GetAdjacentPagesResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	require.NotNil(t, response.Adjacent.Previous)
	require.NotNil(t, response.Adjacent.Next)
	assert.Equal(t, "/docs/guides", response.Adjacent.Previous.URL)
	assert.Equal(t, "/docs/api-reference/router", response.Adjacent.Next.URL)
}

func TestGetSitemapHandler(t *testing.T) {
	result, err := getSitemapHandler(newTestService(t))(context.Background(), newCallToolRequest("getSitemap", nil), GetSitemapRequest{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var response GetSitemapResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	require.Len(t, response.Entries, 4)
	assert.Equal(t, "https://example.com/docs", response.Entries[0].URL)
	assert.InDelta(t, 1.0, response.Entries[0].Priority, 0.001)
}

type recordedTool struct {
	name string
	err  error
}

type testRecorder struct {
	mu    sync.Mutex
	tools []recordedTool
}

func (r *testRecorder) ObserveTool(name string, duration time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools = append(r.tools, recordedTool{name: name, err: err})
}

func (r *testRecorder) ObservePages(string, int) {}

func TestObserved(t *testing.T) {
	recorder := &testRecorder{}

	ok := observed(recorder, "ok", func(ctx context.Context, request mcp.CallToolRequest, args GetGraphRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("{}"), nil
	})
	toolError := observed(recorder, "toolError", func(ctx context.Context, request mcp.CallToolRequest, args GetGraphRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("nope"), nil
	})
	failure := observed(recorder, "failure", func(ctx context.Context, request mcp.CallToolRequest, args GetGraphRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("boom")
	})

	result, err := ok(context.Background(), newCallToolRequest("ok", nil), GetGraphRequest{})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = toolError(context.Background(), newCallToolRequest("toolError", nil), GetGraphRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	_, err = failure(context.Background(), newCallToolRequest("failure", nil), GetGraphRequest{})
	require.EqualError(t, err, "boom")

	require.Len(t, recorder.tools, 3)
	assert.NoError(t, recorder.tools[0].err)
	assert.Error(t, recorder.tools[1].err)
	assert.EqualError(t, recorder.tools[2].err, "boom")
}
