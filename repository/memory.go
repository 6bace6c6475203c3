package repository

import (
	"context"

	"github.com/foomo/contentserver-docgraph/service/vo"
)

// Memory serves a fixed list of pages.
type Memory struct {
	snapshot *Snapshot
}

func NewMemory(pages ...vo.Page) *Memory {
	return &Memory{snapshot: NewSnapshot(pages)}
}

func (m *Memory) GetPages(ctx context.Context) ([]vo.Page, error) {
	return append([]vo.Page(nil), m.snapshot.Pages()...), nil
}

func (m *Memory) GetPage(ctx context.Context, path vo.Path) (*vo.Page, error) {
	page, ok := m.snapshot.Lookup(path)
	if !ok {
		return nil, nil
	}
	return &page, nil
}
