package metrics

import (
	"testing"
	"time"
)

func TestMetricsCounters(t *testing.T) {
	start := time.Date(2025, 1, 1, 6, 0, 0, 0, time.UTC)
	m := New(start)

	m.RecordSource(3, false)
	m.RecordSource(0, true)
	m.IncrementDuplicatesFiltered()
	m.IncrementNewArticles()
	m.IncrementNewArticles()
	m.RecordSummary(true)
	m.RecordSummary(false)
	m.SetArchived(2)
	m.Finish(start.Add(1500 * time.Millisecond))

	stats := m.GetStats()
	want := map[string]int64{
		"sources_total":       2,
		"sources_failed":      1,
		"articles_fetched":    3,
		"duplicates_filtered": 1,
		"new_articles":        2,
		"ai_summaries":        1,
		"fallback_summaries":  1,
		"articles_archived":   2,
		"duration_ms":         1500,
	}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("%s = %v, want %d", k, stats[k], v)
		}
	}
}

func TestDurationBeforeFinish(t *testing.T) {
	if d := New(time.Now()).Duration(); d != 0 {
		t.Fatalf("unfinished run should report zero duration, got %v", d)
	}
}
