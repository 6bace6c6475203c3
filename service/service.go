package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/foomo/contentserver-docgraph/metrics"
	"github.com/foomo/contentserver-docgraph/relations"
	"github.com/foomo/contentserver-docgraph/repository"
	"github.com/foomo/contentserver-docgraph/service/vo"
	"go.uber.org/zap"
)

var ErrPageNotFound = errors.New("page not found")

type Service interface {
	GetGraph(ctx context.Context) (*vo.Graph, error)
	GetRelated(ctx context.Context, path string, limit int) ([]vo.DocumentSummary, error)
	GetAdjacent(ctx context.Context, path string) (*Adjacent, error)
	GetSitemap(ctx context.Context) ([]vo.SitemapEntry, error)
	GetDocument(ctx context.Context, path string) (*vo.Document, error)
}

type Adjacent struct {
	Previous *vo.DocumentSummary `json:"prev,omitempty"`
	Next     *vo.DocumentSummary `json:"next,omitempty"`
}

type SiteSettings struct {
	// Source names the repository in metrics and logs
	Source       string
	BaseURL      string
	RelatedLimit int
	LastModified relations.LastModifiedFunc
}

type service struct {
	repo         repository.Repository
	siteSettings SiteSettings
	logger       *zap.Logger
	recorder     metrics.Recorder
}

func NewService(
	siteSettings SiteSettings,
	repo repository.Repository,
	logger *zap.Logger,
	recorder metrics.Recorder,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if siteSettings.RelatedLimit <= 0 {
		siteSettings.RelatedLimit = relations.DefaultRelatedLimit
	}
	return &service{
		repo:         repo,
		siteSettings: siteSettings,
		logger:       logger,
		recorder:     recorder,
	}
}

// snapshot reads the repository once for the current call.
func (s *service) snapshot(ctx context.Context) (*repository.Snapshot, error) {
	snapshot, err := repository.Load(ctx, s.repo)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	s.recorder.ObservePages(s.siteSettings.Source, len(snapshot.Pages()))
	return snapshot, nil
}

func (s *service) GetGraph(ctx context.Context) (*vo.Graph, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	graph := relations.BuildGraph(snapshot.Pages(), snapshot.Lookup)
	s.logger.Debug("built graph", zap.Int("nodes", len(graph.Nodes)), zap.Int("edges", len(graph.Edges)))
	return &graph, nil
}

func (s *service) GetRelated(ctx context.Context, path string, limit int) ([]vo.DocumentSummary, error) {
	if limit <= 0 {
		limit = s.siteSettings.RelatedLimit
	}
	page, err := s.page(ctx, path)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return summaries(relations.RelatedPages(page, snapshot.Pages(), limit)), nil
}

// GetAdjacent returns an empty result for unknown pages.
func (s *service) GetAdjacent(ctx context.Context, path string) (*Adjacent, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	page := vo.Page{Path: parsePath(path)}
	return adjacent(relations.Adjacent(page, snapshot.Pages())), nil
}

func (s *service) GetSitemap(ctx context.Context) ([]vo.SitemapEntry, error) {
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.sitemapDeriver().Entries(snapshot.Pages()), nil
}

func (s *service) sitemapDeriver() relations.SitemapDeriver {
	return relations.SitemapDeriver{
		BaseURL:      s.siteSettings.BaseURL,
		LastModified: s.siteSettings.LastModified,
		OnFallback: func(page vo.Page, err error) {
			s.logger.Debug("using current time as last modified", zap.String("url", page.URL()), zap.Error(err))
		},
	}
}

func (s *service) GetDocument(ctx context.Context, path string) (*vo.Document, error) {
	page, err := s.page(ctx, path)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	pages := snapshot.Pages()

	doc := &vo.Document{
		DocumentSummary: page.Summary(),
		Related:         summaries(relations.RelatedPages(page, pages, s.siteSettings.RelatedLimit)),
	}

	// breadcrump lists the ancestors present in the snapshot, root first
	for parent, ok := page.Path.Parent(); ok; parent, ok = parent.Parent() {
		if ancestor, found := snapshot.Lookup(parent); found {
			doc.Breadcrump = append([]vo.DocumentSummary{ancestor.Summary()}, doc.Breadcrump...)
		}
	}

	for _, p := range pages {
		if parent, ok := p.Path.Parent(); ok && parent.Equal(page.Path) {
			doc.Children = append(doc.Children, p.Summary())
		}
	}

	adj := adjacent(relations.Adjacent(page, pages))
	doc.Previous, doc.Next = adj.Previous, adj.Next

	graph := relations.BuildGraph(pages, snapshot.Lookup)
	doc.Outbound = lookupSummaries(snapshot, relations.Outbound(graph, page.URL()))
	doc.Inbound = lookupSummaries(snapshot, relations.Inbound(graph, page.URL()))
	return doc, nil
}

// page resolves the requested page through the repository.
func (s *service) page(ctx context.Context, path string) (vo.Page, error) {
	page, err := s.repo.GetPage(ctx, parsePath(path))
	if err != nil {
		return vo.Page{}, fmt.Errorf("failed to get page: %w", err)
	}
	if page == nil {
		return vo.Page{}, fmt.Errorf("%w: %s", ErrPageNotFound, path)
	}
	return *page, nil
}

// parsePath accepts slugs as well as rendered docs URLs.
func parsePath(path string) vo.Path {
	if p, ok := vo.NormalizeLink(path); ok {
		return p
	}
	return vo.NormalizePath(path)
}

func summaries(pages []vo.Page) []vo.DocumentSummary {
	ret := make([]vo.DocumentSummary, len(pages))
	for i, p := range pages {
		ret[i] = p.Summary()
	}
	return ret
}

func lookupSummaries(snapshot *repository.Snapshot, urls []string) []vo.DocumentSummary {
	var ret []vo.DocumentSummary
	for _, url := range urls {
		if page, ok := snapshot.Lookup(parsePath(url)); ok {
			ret = append(ret, page.Summary())
		}
	}
	return ret
}

func adjacent(a vo.Adjacent) *Adjacent {
	ret := &Adjacent{}
	if a.Previous != nil {
		summary := a.Previous.Summary()
		ret.Previous = &summary
	}
	if a.Next != nil {
		summary := a.Next.Summary()
		ret.Next = &summary
	}
	return ret
}
