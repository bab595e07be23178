// Package content serves the site's static pages (rules, lore, guide).
// Pages are markdown files with a YAML front matter block, rendered to HTML
// once at startup.
package content

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// Page is one rendered content page.
type Page struct {
	Slug    string
	Title   string
	Summary string
	Order   int
	HTML    string
}

type frontMatter struct {
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
	Order   int    `yaml:"order"`
}

// Library holds the rendered pages, keyed by slug.
type Library struct {
	pages map[string]*Page
	order []string
}

// Load reads every .md file under dir. A missing directory yields an empty
// library rather than an error so the ticket system keeps serving.
func Load(dir string, logger *zap.Logger) (*Library, error) {
	lib := &Library{pages: make(map[string]*Page)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("content directory missing; no pages served", zap.String("dir", dir))
			return lib, nil
		}
		return nil, fmt.Errorf("read content dir: %w", err)
	}

	md := goldmark.New()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read content page %s: %w", entry.Name(), err)
		}

		slug := strings.TrimSuffix(entry.Name(), ".md")
		page, err := renderPage(md, slug, raw)
		if err != nil {
			return nil, fmt.Errorf("render content page %s: %w", entry.Name(), err)
		}
		lib.pages[slug] = page
		lib.order = append(lib.order, slug)
	}

	sort.Slice(lib.order, func(i, j int) bool {
		a, b := lib.pages[lib.order[i]], lib.pages[lib.order[j]]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Slug < b.Slug
	})

	logger.Info("content pages loaded", zap.Int("count", len(lib.pages)))
	return lib, nil
}

// Get returns the page for slug.
func (l *Library) Get(slug string) (*Page, bool) {
	page, ok := l.pages[slug]
	return page, ok
}

// List returns all pages in display order.
func (l *Library) List() []*Page {
	out := make([]*Page, 0, len(l.order))
	for _, slug := range l.order {
		out = append(out, l.pages[slug])
	}
	return out
}

func renderPage(md goldmark.Markdown, slug string, raw []byte) (*Page, error) {
	meta, body := splitFrontMatter(raw)

	var fm frontMatter
	if len(meta) > 0 {
		if err := yaml.Unmarshal(meta, &fm); err != nil {
			return nil, fmt.Errorf("parse front matter: %w", err)
		}
	}
	if fm.Title == "" {
		fm.Title = strings.Title(slug) //nolint:staticcheck
	}

	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return nil, err
	}

	return &Page{
		Slug:    slug,
		Title:   fm.Title,
		Summary: fm.Summary,
		Order:   fm.Order,
		HTML:    buf.String(),
	}, nil
}

// splitFrontMatter separates an optional leading "---" YAML block from the
// markdown body.
func splitFrontMatter(raw []byte) (meta, body []byte) {
	text := string(raw)
	if !strings.HasPrefix(text, frontMatterDelimiter+"\n") {
		return nil, raw
	}
	rest := text[len(frontMatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontMatterDelimiter)
	if end < 0 {
		return nil, raw
	}
	meta = []byte(rest[:end])
	body = []byte(strings.TrimPrefix(rest[end+1+len(frontMatterDelimiter):], "\n"))
	return meta, body
}
