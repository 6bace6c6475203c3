package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/foomo/contentserver-docgraph/config"
	"github.com/foomo/contentserver-docgraph/mcp"
	"github.com/foomo/contentserver-docgraph/metrics"
	"github.com/foomo/contentserver-docgraph/repository"
	"github.com/foomo/contentserver-docgraph/service"
	"github.com/foomo/contentserver-docgraph/sitemap"
	"github.com/foomo/contentserver/requests"
	"github.com/mark3labs/mcp-go/server"
	prom "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type app struct {
	config     *config.Config
	logger     *zap.Logger
	httpClient *http.Client
	registry   *prom.Registry
	recorder   metrics.Recorder
	service    service.Service
}

func newApp(configPath string, logger *zap.Logger) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return newAppFromConfig(cfg, logger), nil
}

func newAppFromConfig(cfg *config.Config, logger *zap.Logger) *app {
	a := &app{
		config:     cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		recorder:   metrics.NoopRecorder{},
	}
	if cfg.Metrics.Enabled {
		a.registry = prom.NewRegistry()
		a.recorder = metrics.NewPrometheusRecorder(a.registry)
	}
	repo, siteSettings := a.newRepository()
	a.service = service.NewService(siteSettings, repo, logger, a.recorder)
	return a
}

func (a *app) newRepository() (repository.Repository, service.SiteSettings) {
	siteSettings := service.SiteSettings{
		Source:       a.config.Source,
		BaseURL:      a.config.BaseURL,
		RelatedLimit: a.config.Related.Limit,
	}
	switch a.config.Source {
	case config.SourceContentServer:
		cs := a.config.ContentServer
		client := repository.NewContentServerHTTPClient(cs.URL, a.httpClient)
		return repository.NewContentServer(repository.ContentServerSettings{
			Env: &requests.Env{
				Dimensions: cs.Dimensions,
				Groups:     cs.Groups,
			},
			RootID:          cs.RootID,
			URIPrefix:       cs.URIPrefix,
			MimeTypes:       cs.MimeTypes,
			ScrapeLinks:     cs.ScrapeLinks,
			BaseURL:         a.config.BaseURL,
			ContentSelector: cs.ContentSelector,
		}, client, a.httpClient, a.logger.Named("contentserver")), siteSettings
	default:
		siteSettings.LastModified = repository.FileModTime
		return repository.NewMarkdown(a.config.Markdown.Dir, a.logger.Named("markdown")), siteSettings
	}
}

func (a *app) serve(ctx context.Context, addr string) error {
	s := mcp.NewServer(a.httpClient, a.service, a.recorder)
	if addr == "" {
		a.logger.Info("starting MCP server in stdio mode")
		return server.ServeStdio(s)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %q: %w", addr, err)
	}
	return a.serveHTTP(ctx, s, listener)
}

// serveHTTP serves the MCP and SSE endpoints on listener until ctx is done.
func (a *app) serveHTTP(ctx context.Context, s *server.MCPServer, listener net.Listener) error {
	sse := a.config.MCP.SSE
	handler := mcp.NewMcpHTTPSSEServer(a.logger.Named("sse"), s, a.service, a.httpClient, a.config.MCP.Endpoint, &mcp.SSEServerConfig{
		KeepaliveInterval: sse.KeepaliveInterval,
		BufferSize:        sse.BufferSize,
		ClientTimeout:     sse.ClientTimeout,
	})
	defer handler.GetSSEServer().Close()
	if a.registry != nil {
		handler.Handle(a.config.Metrics.Path, metrics.HTTPHandler(a.registry))
	}

	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// SSE streams never go idle, they have to be ended for Shutdown to return
	httpServer.RegisterOnShutdown(handler.GetSSEServer().Close)

	errs := make(chan error, 1)
	go func() {
		a.logger.Info("starting MCP server", zap.String("addr", listener.Addr().String()), zap.String("endpoint", a.config.MCP.Endpoint))
		errs <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.logger.Info("shutting down MCP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

func (a *app) writeGraph(ctx context.Context, output string) error {
	graph, err := a.service.GetGraph(ctx)
	if err != nil {
		return err
	}
	return writeOutput(output, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(graph)
	})
}

func (a *app) writeRelated(ctx context.Context, w io.Writer, path string, limit int) error {
	related, err := a.service.GetRelated(ctx, path, limit)
	if err != nil {
		return err
	}
	for _, summary := range related {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", summary.URL, summary.Title); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) writeSitemap(ctx context.Context, output string) error {
	entries, err := a.service.GetSitemap(ctx)
	if err != nil {
		return err
	}
	return writeOutput(output, func(w io.Writer) error {
		return sitemap.Write(w, a.config.BaseURL, entries, time.Now())
	})
}

// writeOutput calls write with the file at path, or stdout for an empty path
func writeOutput(path string, write func(w io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
