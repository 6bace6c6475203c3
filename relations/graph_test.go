package relations

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/foomo/contentserver-docgraph/service/vo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGraph(t *testing.T) {
	pages := fixture()
	graph := BuildGraph(pages, lookupFor(pages))

	require.Len(t, graph.Nodes, 4, spew.Sdump(graph))
	assert.Equal(t, vo.GraphNode{ID: "/docs", Label: "Documentation", URL: "/docs", Category: vo.CategoryOther}, graph.Nodes[0])
	assert.Equal(t, vo.CategoryGettingStarted, graph.Nodes[1].Category)
	assert.Equal(t, vo.CategoryGuide, graph.Nodes[2].Category)

	assert.Equal(t, []vo.GraphEdge{
		{From: "/docs/guides/x", To: "/docs/guides/y"},
		{From: "/docs/guides/x", To: "/docs/getting-started/intro"},
	}, graph.Edges, spew.Sdump(graph))
}

func TestBuildGraphDropsDanglingAndMalformedReferences(t *testing.T) {
	pages := []vo.Page{
		vo.NewPage("guides/a", "A", "", []any{"/docs/guides/missing", 12, "", "https://example.com", "#top", "guides/b"}, ""),
		vo.NewPage("guides/b", "B", "", nil, ""),
	}
	graph := BuildGraph(pages, lookupFor(pages))

	assert.Equal(t, []vo.GraphEdge{{From: "/docs/guides/a", To: "/docs/guides/b"}}, graph.Edges)
	assertNoDanglingEdges(t, graph)
}

func TestBuildGraphIgnoresTargetsOutsideNodeSet(t *testing.T) {
	pages := []vo.Page{
		vo.NewPage("guides/a", "A", "", []string{"guides/hidden"}, ""),
	}
	lookup := func(path vo.Path) (vo.Page, bool) {
		return vo.NewPage(path, "Hidden", "", nil, ""), true
	}
	graph := BuildGraph(pages, lookup)

	assert.Len(t, graph.Nodes, 1)
	assert.Empty(t, graph.Edges)
}

func TestBuildGraphKeepsSelfLoopsAndDuplicates(t *testing.T) {
	pages := []vo.Page{
		vo.NewPage("guides/a", "A", "", []string{"/docs/guides/a", "guides/b", "/docs/guides/b#intro"}, ""),
		vo.NewPage("guides/b", "B", "", nil, ""),
	}
	graph := BuildGraph(pages, lookupFor(pages))

	assert.Equal(t, []vo.GraphEdge{
		{From: "/docs/guides/a", To: "/docs/guides/a"},
		{From: "/docs/guides/a", To: "/docs/guides/b"},
		{From: "/docs/guides/a", To: "/docs/guides/b"},
	}, graph.Edges)
}

func TestBuildGraphDeduplicatesNodes(t *testing.T) {
	pages := []vo.Page{
		vo.NewPage("guides/a", "First", "", nil, ""),
		vo.NewPage([]string{"guides", "a"}, "Second", "", nil, ""),
		vo.NewPage("guides/b", "B", "", nil, ""),
	}
	graph := BuildGraph(pages, nil)

	require.Len(t, graph.Nodes, 2)
	assert.Equal(t, "First", graph.Nodes[0].Label)
	assert.Empty(t, graph.Edges)
}

func TestBuildGraphNoLinksNoEdges(t *testing.T) {
	pages := []vo.Page{
		vo.NewPage("a", "A", "", nil, ""),
		vo.NewPage("b", "B", "", []string{}, ""),
	}
	graph := BuildGraph(pages, lookupFor(pages))
	assert.Len(t, graph.Nodes, 2)
	assert.Empty(t, graph.Edges)
}

func TestInboundOutbound(t *testing.T) {
	pages := fixture()
	pages[3].Links = []string{"guides/x", "guides/x"}
	graph := BuildGraph(pages, lookupFor(pages))

	assert.Equal(t, []string{"/docs/guides/y", "/docs/getting-started/intro"}, Outbound(graph, "/docs/guides/x"))
	assert.Equal(t, []string{"/docs/guides/y"}, Inbound(graph, "/docs/guides/x"))
	assert.Equal(t, []string{"/docs/guides/x"}, Inbound(graph, "/docs/guides/y"))
	assert.Empty(t, Outbound(graph, "/docs"))
}

func assertNoDanglingEdges(t *testing.T, graph vo.Graph) {
	t.Helper()
	ids := map[string]bool{}
	for _, n := range graph.Nodes {
		ids[n.ID] = true
	}
	for _, e := range graph.Edges {
		assert.True(t, ids[e.From], "dangling from %s", e.From)
		assert.True(t, ids[e.To], "dangling to %s", e.To)
	}
}
