package repository

import (
	"context"
	"os"
	"time"

	"github.com/foomo/contentserver-docgraph/service/vo"
)

// Repository supplies published pages.
//
// GetPages returns the full snapshot in tree traversal order; callers rely on that
// order for adjacency and tie-breaking, so implementations must keep it stable.
// GetPage returns nil and no error when no page has the given path.
type Repository interface {
	GetPages(ctx context.Context) ([]vo.Page, error)
	GetPage(ctx context.Context, path vo.Path) (*vo.Page, error)
}

// Snapshot is an immutable index over one GetPages result.
type Snapshot struct {
	pages []vo.Page
	byURL map[string]int
}

func NewSnapshot(pages []vo.Page) *Snapshot {
	s := &Snapshot{
		pages: append([]vo.Page(nil), pages...),
		byURL: make(map[string]int, len(pages)),
	}
	for i, page := range s.pages {
		if _, ok := s.byURL[page.URL()]; !ok {
			s.byURL[page.URL()] = i
		}
	}
	return s
}

// Load reads one snapshot from repo.
func Load(ctx context.Context, repo Repository) (*Snapshot, error) {
	pages, err := repo.GetPages(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(pages), nil
}

func (s *Snapshot) Pages() []vo.Page {
	return s.pages
}

// Lookup finds the first page with path.
func (s *Snapshot) Lookup(path vo.Path) (vo.Page, bool) {
	i, ok := s.byURL[path.URL()]
	if !ok {
		return vo.Page{}, false
	}
	return s.pages[i], true
}

// FileModTime returns the modification time of a page source file.
func FileModTime(absolutePath string) (time.Time, error) {
	info, err := os.Stat(absolutePath)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
