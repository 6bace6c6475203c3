package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SourceMarkdown      = "markdown"
	SourceContentServer = "contentserver"
)

var ErrInvalidSource = errors.New("invalid source")

type Config struct {
	// Source selects the page repository: markdown or contentserver
	Source        string        `yaml:"source"`
	BaseURL       string        `yaml:"baseURL"`
	Markdown      Markdown      `yaml:"markdown"`
	ContentServer ContentServer `yaml:"contentServer"`
	Related       Related       `yaml:"related"`
	MCP           MCP           `yaml:"mcp"`
	Metrics       Metrics       `yaml:"metrics"`
}

type Markdown struct {
	Dir string `yaml:"dir"`
}

type ContentServer struct {
	URL             string   `yaml:"url"`
	RootID          string   `yaml:"rootID"`
	URIPrefix       string   `yaml:"uriPrefix"`
	Dimensions      []string `yaml:"dimensions"`
	Groups          []string `yaml:"groups"`
	MimeTypes       []string `yaml:"mimeTypes"`
	ScrapeLinks     bool     `yaml:"scrapeLinks"`
	ContentSelector string   `yaml:"contentSelector"`
}

type Related struct {
	Limit int `yaml:"limit"`
}

type MCP struct {
	Endpoint string `yaml:"endpoint"`
	SSE      SSE    `yaml:"sse"`
}

type SSE struct {
	KeepaliveInterval time.Duration `yaml:"keepaliveInterval"`
	BufferSize        int           `yaml:"bufferSize"`
	ClientTimeout     time.Duration `yaml:"clientTimeout"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Source:   SourceMarkdown,
		Markdown: Markdown{Dir: "content/docs"},
		ContentServer: ContentServer{
			URIPrefix:       "/docs",
			ContentSelector: "main",
		},
		Related: Related{Limit: 3},
		MCP: MCP{
			Endpoint: "/mcp",
			SSE: SSE{
				KeepaliveInterval: 30 * time.Second,
				BufferSize:        100,
				ClientTimeout:     60 * time.Second,
			},
		},
		Metrics: Metrics{Path: "/metrics"},
	}
}

// Load reads a YAML configuration file. ${VAR} references are expanded from the
// environment after loading .env and .env.local from the working directory.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	// .env files are optional, values already set in the environment win
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	default:
		if err := Parse([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML data on top of cfg.
func Parse(data []byte, cfg *Config) error {
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) Validate() error {
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
	switch c.Source {
	case SourceMarkdown:
		if c.Markdown.Dir == "" {
			return errors.New("markdown.dir is required")
		}
	case SourceContentServer:
		if c.ContentServer.URL == "" {
			return errors.New("contentServer.url is required")
		}
		if c.ContentServer.RootID == "" {
			return errors.New("contentServer.rootID is required")
		}
		if c.ContentServer.ScrapeLinks && c.BaseURL == "" {
			return errors.New("baseURL is required to scrape links")
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSource, c.Source)
	}
	if c.Related.Limit < 0 {
		return errors.New("related.limit must not be negative")
	}
	if c.MCP.Endpoint == "" || !strings.HasPrefix(c.MCP.Endpoint, "/") {
		return fmt.Errorf("mcp.endpoint must start with /: %q", c.MCP.Endpoint)
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	return nil
}
