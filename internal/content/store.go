// Package content loads and serves the site's articles. Articles are
// markdown files with a small header block (key: value lines up to the
// first blank line); the store keeps them in memory and reloads on demand.
package content

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Article is one piece of site content.
type Article struct {
	Slug    string
	Title   string
	Tags    []string
	Status  string
	Updated time.Time
	Body    string
}

// HasTag reports whether the article carries the given tag.
func (a Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Store is an in-memory article collection backed by a directory of
// markdown files. Load and Reload swap the collection wholesale.
type Store struct {
	dir    string
	logger *slog.Logger

	mu       sync.RWMutex
	articles map[string]Article
}

// NewStore creates a store over dir. Call Load before serving.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:      dir,
		logger:   logger,
		articles: make(map[string]Article),
	}
}

// Load scans the content directory and replaces the collection. Files
// that fail to parse are skipped with a log line; one bad article must
// not take the site down.
func (s *Store) Load() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("content: reading %s: %w", s.dir, err)
	}

	articles := make(map[string]Article)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		article, err := parseFile(path)
		if err != nil {
			s.logger.Warn("skipping article", "path", path, "error", err)
			continue
		}
		articles[article.Slug] = article
	}

	s.mu.Lock()
	s.articles = articles
	s.mu.Unlock()

	s.logger.Info("content loaded", "dir", s.dir, "articles", len(articles))
	return nil
}

// Get returns the article with the given slug.
func (s *Store) Get(slug string) (Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[slug]
	return a, ok
}

// Count returns the number of loaded articles.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}

// List returns articles matching the given filters, newest first. The
// recognized filter keys are "status" and "tag"; unknown keys are
// ignored, and an empty filter value matches everything.
func (s *Store) List(filters map[string]string) []Article {
	status := filters["status"]
	tag := filters["tag"]

	s.mu.RLock()
	out := make([]Article, 0, len(s.articles))
	for _, a := range s.articles {
		if status != "" && a.Status != status {
			continue
		}
		if tag != "" && !a.HasTag(tag) {
			continue
		}
		out = append(out, a)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Updated.Equal(out[j].Updated) {
			return out[i].Updated.After(out[j].Updated)
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}

// parseFile reads one article file: a header of "key: value" lines up to
// the first blank line, then the markdown body.
func parseFile(path string) (Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return Article{}, err
	}
	defer f.Close()

	article := Article{
		Slug:   strings.TrimSuffix(filepath.Base(path), ".md"),
		Status: "published",
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	inHeader := true
	var body strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if inHeader {
			if strings.TrimSpace(line) == "" {
				inHeader = false
				continue
			}
			key, value, found := strings.Cut(line, ":")
			if !found {
				return Article{}, fmt.Errorf("malformed header line %q", line)
			}
			applyHeader(&article, strings.TrimSpace(key), strings.TrimSpace(value))
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return Article{}, err
	}

	if article.Title == "" {
		return Article{}, fmt.Errorf("missing title")
	}
	article.Body = body.String()
	return article, nil
}

func applyHeader(a *Article, key, value string) {
	switch key {
	case "title":
		a.Title = value
	case "status":
		a.Status = value
	case "tags":
		for _, t := range strings.Split(value, ",") {
			if t = strings.TrimSpace(t); t != "" {
				a.Tags = append(a.Tags, t)
			}
		}
	case "updated":
		if t, err := time.Parse("2006-01-02", value); err == nil {
			a.Updated = t
		}
	}
}
