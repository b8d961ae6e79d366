package metrics

import (
	"log/slog"
	"time"
)

// Metrics holds the counters of a single run. Runs are sequential, so there
// is no locking and no package-level instance.
type Metrics struct {
	// Counters
	SourcesTotal       int64
	SourcesFailed      int64
	ArticlesFetched    int64
	DuplicatesFiltered int64
	NewArticles        int64
	AISummaries        int64
	FallbackSummaries  int64
	ArticlesArchived   int64

	// Timings
	StartedAt  time.Time
	FinishedAt time.Time

	// Status
	LastError string
}

func New(now time.Time) *Metrics {
	return &Metrics{StartedAt: now}
}

func (m *Metrics) RecordSource(fetched int, failed bool) {
	m.SourcesTotal++
	m.ArticlesFetched += int64(fetched)
	if failed {
		m.SourcesFailed++
	}
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementNewArticles() {
	m.NewArticles++
}

// RecordSummary counts a summary by where it came from.
func (m *Metrics) RecordSummary(fromAI bool) {
	if fromAI {
		m.AISummaries++
	} else {
		m.FallbackSummaries++
	}
}

func (m *Metrics) SetArchived(n int) {
	m.ArticlesArchived = int64(n)
}

func (m *Metrics) SetError(err string) {
	m.LastError = err
}

func (m *Metrics) Finish(now time.Time) {
	m.FinishedAt = now
}

func (m *Metrics) Duration() time.Duration {
	if m.FinishedAt.IsZero() {
		return 0
	}
	return m.FinishedAt.Sub(m.StartedAt)
}

func (m *Metrics) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"sources_total":       m.SourcesTotal,
		"sources_failed":      m.SourcesFailed,
		"articles_fetched":    m.ArticlesFetched,
		"duplicates_filtered": m.DuplicatesFiltered,
		"new_articles":        m.NewArticles,
		"ai_summaries":        m.AISummaries,
		"fallback_summaries":  m.FallbackSummaries,
		"articles_archived":   m.ArticlesArchived,
		"duration_ms":         m.Duration().Milliseconds(),
		"last_error":          m.LastError,
	}
}

// Log writes the counters as one structured line.
func (m *Metrics) Log(logger *slog.Logger) {
	logger.Info("run metrics",
		"sources_total", m.SourcesTotal,
		"sources_failed", m.SourcesFailed,
		"fetched", m.ArticlesFetched,
		"duplicates", m.DuplicatesFiltered,
		"new", m.NewArticles,
		"ai_summaries", m.AISummaries,
		"fallback_summaries", m.FallbackSummaries,
		"archived", m.ArticlesArchived,
		"duration", m.Duration(),
	)
}
