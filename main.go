package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"docgraph.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct {
		HTTP string `help:"HTTP server address (e.g., ':8080'), stdio is used when empty"`
	} `cmd:"" default:"1" help:"Start the MCP server"`

	Graph struct {
		Output string `short:"o" help:"Output file, stdout when empty"`
	} `cmd:"" help:"Print the page link graph as JSON"`

	Related struct {
		Path  string `arg:"" help:"Page slug or docs URL"`
		Limit int    `short:"l" help:"Maximum number of related pages" default:"0"`
	} `cmd:"" help:"Print the pages related to a page"`

	Sitemap struct {
		Output string `short:"o" help:"Output file, stdout when empty"`
	} `cmd:"" help:"Print the sitemap XML"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("docgraph"),
		kong.Description("Relationships between documentation pages"),
	)

	logger := newLogger(CLI.Verbose)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(CLI.Config, logger)
	if err != nil {
		logger.Error("failed to set up", zap.Error(err))
		os.Exit(1)
	}

	switch kctx.Command() {
	case "serve":
		err = a.serve(ctx, CLI.Serve.HTTP)
	case "graph":
		err = a.writeGraph(ctx, CLI.Graph.Output)
	case "related <path>":
		err = a.writeRelated(ctx, os.Stdout, CLI.Related.Path, CLI.Related.Limit)
	case "sitemap":
		err = a.writeSitemap(ctx, CLI.Sitemap.Output)
	default:
		err = kctx.PrintUsage(false)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", kctx.Command()), zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
