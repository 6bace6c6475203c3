package repository

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/foomo/contentserver-docgraph/service/vo"
	"github.com/spf13/cast"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"go.uber.org/zap"
)

var (
	markdownExtensions = []string{".md", ".mdx"}
	indexNames         = []string{"index", "_index"}
)

// Markdown reads pages from a directory of markdown files with YAML frontmatter.
//
// Pages are enumerated depth first. A directory's index page precedes its
// children and siblings are ordered by frontmatter weight, then by name.
type Markdown struct {
	dir    string
	logger *zap.Logger
	md     goldmark.Markdown
}

func NewMarkdown(dir string, logger *zap.Logger) *Markdown {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Markdown{
		dir:    dir,
		logger: logger,
		md:     goldmark.New(),
	}
}

type markdownEntry struct {
	name   string
	file   string // absolute path of the page source, empty for directories without index
	dir    string // absolute path for directories
	weight int
}

func (m *Markdown) GetPages(ctx context.Context) ([]vo.Page, error) {
	pages := []vo.Page{}
	if err := m.walk(ctx, vo.Path{}, m.dir, &pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// GetPage resolves p with the same skip and ordering rules as GetPages,
// so both agree on which source file a path belongs to.
func (m *Markdown) GetPage(ctx context.Context, p vo.Path) (*vo.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := m.dir
	if len(p) == 0 {
		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %q: %w", dir, err)
		}
		return m.firstPage(p, []markdownEntry{{file: findIndex(dir, dirEntries)}})
	}

	for _, segment := range p[:len(p)-1] {
		if skipEntry(segment) {
			return nil, nil
		}
		dir = filepath.Join(dir, segment)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return nil, nil
		}
	}
	name := p[len(p)-1]
	if skipEntry(name) {
		return nil, nil
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %q: %w", dir, err)
	}
	var candidates []markdownEntry
	for _, entry := range m.entries(dir, dirEntries) {
		if entry.name == name {
			candidates = append(candidates, entry)
		}
	}
	sortEntries(candidates)
	return m.firstPage(p, candidates)
}

// firstPage returns the first candidate that yields a page, skipping drafts and broken files like the walk does.
func (m *Markdown) firstPage(p vo.Path, candidates []markdownEntry) (*vo.Page, error) {
	for _, candidate := range candidates {
		file := candidate.file
		if candidate.dir != "" {
			sub, err := os.ReadDir(candidate.dir)
			if err != nil {
				continue
			}
			file = findIndex(candidate.dir, sub)
		}
		if file == "" {
			continue
		}
		page, ok, err := m.readPage(p, file)
		if err != nil {
			m.logger.Warn("skipping unreadable page", zap.String("file", file), zap.Error(err))
			continue
		}
		if ok {
			return &page, nil
		}
	}
	return nil, nil
}

func (m *Markdown) walk(ctx context.Context, dirPath vo.Path, dir string, pages *[]vo.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %q: %w", dir, err)
	}

	if index := findIndex(dir, dirEntries); index != "" {
		if err := m.appendPage(dirPath, index, pages); err != nil {
			return err
		}
	}

	entries := m.entries(dir, dirEntries)
	sortEntries(entries)

	for _, entry := range entries {
		childPath := append(append(vo.Path{}, dirPath...), entry.name)
		if entry.dir != "" {
			if err := m.walk(ctx, childPath, entry.dir, pages); err != nil {
				return err
			}
			continue
		}
		if err := m.appendPage(childPath, entry.file, pages); err != nil {
			return err
		}
	}
	return nil
}

// entries lists the visible child pages and sections of dir, unsorted.
func (m *Markdown) entries(dir string, dirEntries []os.DirEntry) []markdownEntry {
	entries := make([]markdownEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if skipEntry(name) {
			continue
		}
		abs := filepath.Join(dir, name)
		switch {
		case de.IsDir():
			entry := markdownEntry{name: name, dir: abs}
			if sub, err := os.ReadDir(abs); err == nil {
				if index := findIndex(abs, sub); index != "" {
					entry.weight = m.weightOf(index)
				}
			}
			entries = append(entries, entry)
		case isMarkdownFile(name) && !isIndexFile(name):
			entries = append(entries, markdownEntry{
				name:   strings.TrimSuffix(name, filepath.Ext(name)),
				file:   abs,
				weight: m.weightOf(abs),
			})
		}
	}
	return entries
}

func sortEntries(entries []markdownEntry) {
	slices.SortStableFunc(entries, func(a, b markdownEntry) int {
		if c := cmp.Compare(a.weight, b.weight); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
}

// skipEntry reports whether a file or directory is hidden from the docs tree.
func skipEntry(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") && !isIndexFile(name)
}

func (m *Markdown) appendPage(p vo.Path, file string, pages *[]vo.Page) error {
	page, ok, err := m.readPage(p, file)
	if err != nil {
		// a broken document must not fail the whole snapshot
		m.logger.Warn("skipping unreadable page", zap.String("file", file), zap.Error(err))
		return nil
	}
	if ok {
		*pages = append(*pages, page)
	}
	return nil
}

// readPage parses one source file; ok is false for drafts.
func (m *Markdown) readPage(p vo.Path, file string) (vo.Page, bool, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return vo.Page{}, false, fmt.Errorf("failed to read %q: %w", file, err)
	}
	fields, body, err := splitFrontmatter(content)
	if err != nil {
		return vo.Page{}, false, fmt.Errorf("failed to parse frontmatter of %q: %w", file, err)
	}
	if cast.ToBool(fields["draft"]) {
		m.logger.Debug("skipping draft", zap.String("file", file))
		return vo.Page{}, false, nil
	}

	title := fields["title"]
	if cast.ToString(title) == "" {
		title = m.firstHeading(body)
	}
	if cast.ToString(title) == "" && len(p) > 0 {
		title = p[len(p)-1]
	}

	baseDir := p.String()
	if !isIndexFile(filepath.Base(file)) {
		parent, _ := p.Parent()
		baseDir = parent.String()
	}
	links := m.extractLinks(body)
	for i, link := range links {
		links[i] = resolveLink(baseDir, link)
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		abs = file
	}
	return vo.NewPage(p, title, fields["description"], links, abs), true, nil
}

func (m *Markdown) weightOf(file string) int {
	content, err := os.ReadFile(file)
	if err != nil {
		return 0
	}
	fields, _, err := splitFrontmatter(content)
	if err != nil {
		return 0
	}
	return cast.ToInt(fields["weight"])
}

// extractLinks returns the destinations of all inline and reference links in body.
func (m *Markdown) extractLinks(body []byte) []string {
	root := m.md.Parser().Parse(text.NewReader(body))
	links := []string{}
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if link, ok := n.(*gmast.Link); ok {
			links = append(links, string(link.Destination))
		}
		return gmast.WalkContinue, nil
	})
	return links
}

func (m *Markdown) firstHeading(body []byte) string {
	root := m.md.Parser().Parse(text.NewReader(body))
	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if heading, ok := n.(*gmast.Heading); ok && heading.Level == 1 {
			var sb strings.Builder
			_ = gmast.Walk(heading, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
				if !entering {
					return gmast.WalkContinue, nil
				}
				switch t := c.(type) {
				case *gmast.Text:
					sb.Write(t.Segment.Value(body))
					if t.SoftLineBreak() || t.HardLineBreak() {
						sb.WriteByte(' ')
					}
				case *gmast.String:
					sb.Write(t.Value)
				}
				return gmast.WalkContinue, nil
			})
			title = strings.TrimSpace(sb.String())
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return title
}

// resolveLink turns a link relative to baseDir into a docs URL.
// Absolute, external and fragment-only links are returned unchanged.
func resolveLink(baseDir, link string) string {
	if link == "" || strings.HasPrefix(link, "/") || strings.HasPrefix(link, "#") || strings.Contains(link, ":") {
		return link
	}
	return vo.DocsRoot + "/" + strings.TrimPrefix(path.Join(baseDir, link), "/")
}

// findIndex returns the index page of dir, index before _index.
// The extension is matched case-insensitively like any other page.
func findIndex(dir string, entries []os.DirEntry) string {
	for _, name := range indexNames {
		for _, de := range entries {
			if !de.IsDir() && isMarkdownFile(de.Name()) && strings.TrimSuffix(de.Name(), filepath.Ext(de.Name())) == name {
				return filepath.Join(dir, de.Name())
			}
		}
	}
	return ""
}

func isMarkdownFile(name string) bool {
	return slices.Contains(markdownExtensions, strings.ToLower(filepath.Ext(name)))
}

func isIndexFile(name string) bool {
	return isMarkdownFile(name) && slices.Contains(indexNames, strings.TrimSuffix(name, filepath.Ext(name)))
}
