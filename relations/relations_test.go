package relations

import (
	"github.com/foomo/contentserver-docgraph/service/vo"
)

// fixture returns the docs tree used across tests, in repository order.
func fixture() []vo.Page {
	return []vo.Page{
		vo.NewPage(nil, "Documentation", "Welcome", nil, ""),
		vo.NewPage("getting-started/intro", "Introduction", "Start here", nil, ""),
		vo.NewPage("guides/x", "Guide X", "", []string{"/docs/guides/y", "/docs/getting-started/intro"}, ""),
		vo.NewPage("guides/y", "Guide Y", "", nil, ""),
	}
}

func lookupFor(pages []vo.Page) Lookup {
	return func(path vo.Path) (vo.Page, bool) {
		for _, p := range pages {
			if p.Path.Equal(path) {
				return p, true
			}
		}
		return vo.Page{}, false
	}
}

func urls(pages []vo.Page) []string {
	ret := make([]string, len(pages))
	for i, p := range pages {
		ret[i] = p.URL()
	}
	return ret
}
