package relations

import "github.com/foomo/contentserver-docgraph/service/vo"

// Adjacent returns the pages before and after page in the enumeration order of pages.
// A page that is not part of pages has neither.
func Adjacent(page vo.Page, pages []vo.Page) vo.Adjacent {
	url := page.URL()
	index := -1
	for i, p := range pages {
		if p.URL() == url {
			index = i
			break
		}
	}
	if index < 0 {
		return vo.Adjacent{}
	}

	var adjacent vo.Adjacent
	if index > 0 {
		previous := pages[index-1]
		adjacent.Previous = &previous
	}
	if index+1 < len(pages) {
		next := pages[index+1]
		adjacent.Next = &next
	}
	return adjacent
}
