package relations

import (
	"slices"
	"strings"

	"github.com/foomo/contentserver-docgraph/service/vo"
)

const DefaultRelatedLimit = 3

const (
	sameSectionScore   = 10
	sharedSegmentScore = 2
	sharedWordScore    = 1
)

type scoredCandidate struct {
	page  vo.Page
	score int
}

// RelatedPages ranks every other page of the set against page and returns the best limit pages.
// Ties keep the order of pages.
func RelatedPages(page vo.Page, pages []vo.Page, limit int) []vo.Page {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	candidates := make([]scoredCandidate, 0, len(pages))
	for _, candidate := range pages {
		if candidate.Path.Equal(page.Path) {
			continue
		}
		candidates = append(candidates, scoredCandidate{page: candidate, score: Score(page, candidate)})
	}

	slices.SortStableFunc(candidates, func(a, b scoredCandidate) int {
		return b.score - a.score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	ret := make([]vo.Page, len(candidates))
	for i, c := range candidates {
		ret[i] = c.page
	}
	return ret
}

// Score computes the relatedness of candidate to source.
func Score(source, candidate vo.Page) int {
	score := 0
	if source.Path.First() == candidate.Path.First() {
		score += sameSectionScore
	}
	score += sharedSegmentScore * countShared(source.Path, candidate.Path)
	score += sharedWordScore * countShared(titleWords(source.Title), titleWords(candidate.Title))
	return score
}

func titleWords(title string) []string {
	return strings.Fields(strings.ToLower(title))
}

// countShared counts the distinct values present in both a and b.
func countShared(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	counted := make(map[string]struct{}, len(a))
	n := 0
	for _, s := range a {
		if _, ok := inB[s]; !ok {
			continue
		}
		if _, ok := counted[s]; ok {
			continue
		}
		counted[s] = struct{}{}
		n++
	}
	return n
}
