package vo

import "time"

type Markdown string

type Category string

const (
	CategoryExample        Category = "example"
	CategoryAPI            Category = "api"
	CategoryGettingStarted Category = "getting-started"
	CategoryGuide          Category = "guide"
	CategoryOther          Category = "other"
)

type ChangeFrequency string

const (
	ChangeFrequencyAlways  ChangeFrequency = "always"
	ChangeFrequencyHourly  ChangeFrequency = "hourly"
	ChangeFrequencyDaily   ChangeFrequency = "daily"
	ChangeFrequencyWeekly  ChangeFrequency = "weekly"
	ChangeFrequencyMonthly ChangeFrequency = "monthly"
	ChangeFrequencyYearly  ChangeFrequency = "yearly"
	ChangeFrequencyNever   ChangeFrequency = "never"
)

type GraphNode struct {
	ID       string   `json:"id"`    // Rendered URL
	Label    string   `json:"label"` // Page title
	URL      string   `json:"url"`
	Category Category `json:"category"`
}

type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

type Adjacent struct {
	Previous *Page `json:"previous,omitempty"`
	Next     *Page `json:"next,omitempty"`
}

type SitemapEntry struct {
	URL             string          `json:"url"`
	LastModified    time.Time       `json:"lastModified"`
	ChangeFrequency ChangeFrequency `json:"changeFrequency"`
	Priority        float64         `json:"priority"`
}

type DocumentSummary struct {
	URL         string   `json:"url"`         // Rendered docs URL
	Title       string   `json:"title"`       // Page title
	Description string   `json:"description"` // Short abstract
	Category    Category `json:"category"`
}

type Document struct {
	DocumentSummary DocumentSummary `json:"summary"`

	Breadcrump []DocumentSummary `json:"breadcrump,omitempty"`
	Children   []DocumentSummary `json:"children,omitempty"`
	Previous   *DocumentSummary  `json:"prev,omitempty"`
	Next       *DocumentSummary  `json:"next,omitempty"`
	Related    []DocumentSummary `json:"related,omitempty"`
	Outbound   []DocumentSummary `json:"outbound,omitempty"` // Pages this page links to
	Inbound    []DocumentSummary `json:"inbound,omitempty"`  // Pages linking here
}
