package relations

import "github.com/foomo/contentserver-docgraph/service/vo"

// Lookup resolves a normalized path to a page of the same snapshot.
type Lookup func(path vo.Path) (vo.Page, bool)

// BuildGraph creates one node per distinct page URL and one edge per resolvable
// link reference. References that do not resolve to a node are dropped.
func BuildGraph(pages []vo.Page, lookup Lookup) vo.Graph {
	graph := vo.Graph{
		Nodes: make([]vo.GraphNode, 0, len(pages)),
		Edges: []vo.GraphEdge{},
	}

	nodeIDs := make(map[string]struct{}, len(pages))
	for _, page := range pages {
		url := page.URL()
		if _, ok := nodeIDs[url]; ok {
			continue
		}
		nodeIDs[url] = struct{}{}
		graph.Nodes = append(graph.Nodes, vo.GraphNode{
			ID:       url,
			Label:    page.Title,
			URL:      url,
			Category: page.Category(),
		})
	}

	if lookup == nil {
		return graph
	}
	for _, page := range pages {
		from := page.URL()
		for _, ref := range page.Links {
			path, ok := vo.NormalizeLink(ref)
			if !ok {
				continue
			}
			target, ok := lookup(path)
			if !ok {
				continue
			}
			to := target.URL()
			if _, ok := nodeIDs[to]; !ok {
				continue
			}
			graph.Edges = append(graph.Edges, vo.GraphEdge{From: from, To: to})
		}
	}
	return graph
}

// Outbound returns the targets of edges leaving url, in edge order without duplicates.
func Outbound(graph vo.Graph, url string) []string {
	return neighbours(graph, url, func(e vo.GraphEdge) (string, string) { return e.From, e.To })
}

// Inbound returns the sources of edges pointing at url, in edge order without duplicates.
func Inbound(graph vo.Graph, url string) []string {
	return neighbours(graph, url, func(e vo.GraphEdge) (string, string) { return e.To, e.From })
}

func neighbours(graph vo.Graph, url string, ends func(vo.GraphEdge) (string, string)) []string {
	var ret []string
	seen := map[string]struct{}{}
	for _, edge := range graph.Edges {
		self, other := ends(edge)
		if self != url {
			continue
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		ret = append(ret, other)
	}
	return ret
}
