// Package archive writes the daily record of newly processed articles.
package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/eltonkola/bleta/internal/news"
)

const dateLayout = "2006-01-02"

// Project is the metadata embedded in every record.
type Project struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version" yaml:"version"`
	Language    string `json:"language" yaml:"language"`
}

// Record is one day's archive file.
type Record struct {
	Date          string         `json:"date"`
	Timestamp     string         `json:"timestamp"`
	Project       Project        `json:"project"`
	Articles      []news.Article `json:"articles"`
	TotalArticles int            `json:"total_articles"`
	Sources       []string       `json:"sources"`
}

// NewRecord assembles the record for articles captured at now.
func NewRecord(articles []news.Article, project Project, now time.Time) Record {
	return Record{
		Date:          now.Format(dateLayout),
		Timestamp:     now.Format(time.RFC3339),
		Project:       project,
		Articles:      articles,
		TotalArticles: len(articles),
		Sources:       sourceNames(articles),
	}
}

// sourceNames lists contributing sources once each, in first-appearance order.
func sourceNames(articles []news.Article) []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range articles {
		if seen[a.Source] {
			continue
		}
		seen[a.Source] = true
		names = append(names, a.Source)
	}
	return names
}

// Writer stores records as <archiveDir>/<date>.json and, when publicDir is
// set, mirrors them to <publicDir>/archive/<date>.json.
type Writer struct {
	archiveDir string
	publicDir  string
	now        func() time.Time
	logger     *slog.Logger
}

func NewWriter(archiveDir, publicDir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{archiveDir: archiveDir, publicDir: publicDir, now: time.Now, logger: logger}
}

// PathFor returns the primary archive path for the day of t.
func (w *Writer) PathFor(t time.Time) string {
	return filepath.Join(w.archiveDir, t.Format(dateLayout)+".json")
}

// Write stores today's record and returns its path. With no articles nothing
// is written and any existing file for today is left as is; the returned
// path is then empty. A record for the same day is replaced.
func (w *Writer) Write(articles []news.Article, project Project) (string, error) {
	if len(articles) == 0 {
		w.logger.Info("No new articles to archive")
		return "", nil
	}

	now := w.now()
	data, err := encode(NewRecord(articles, project, now))
	if err != nil {
		return "", fmt.Errorf("failed to encode archive record: %w", err)
	}

	path := w.PathFor(now)
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	w.logger.Info("Saved archive", "articles", len(articles), "path", path)

	if w.publicDir != "" {
		public := filepath.Join(w.publicDir, "archive", filepath.Base(path))
		if err := writeFile(public, data); err != nil {
			return path, fmt.Errorf("failed to mirror archive: %w", err)
		}
		w.logger.Debug("Mirrored archive", "path", public)
	}
	return path, nil
}

// Read loads the record stored for the day of t.
func (w *Writer) Read(t time.Time) (*Record, error) {
	data, err := os.ReadFile(w.PathFor(t))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse archive record: %w", err)
	}
	return &rec, nil
}

func encode(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create archive dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	return nil
}
