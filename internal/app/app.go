// Package app runs one ingestion pass: fetch every enabled source, drop
// articles seen before, summarize the rest, archive them and save the
// dedup state.
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/eltonkola/bleta/internal/archive"
	"github.com/eltonkola/bleta/internal/metrics"
	"github.com/eltonkola/bleta/internal/news"
	"github.com/eltonkola/bleta/internal/rss"
	"github.com/eltonkola/bleta/internal/storage"
	"github.com/eltonkola/bleta/internal/summarize"
)

// Pipeline holds the collaborators of a run. Sources are processed one at a
// time in order; there is no concurrency.
type Pipeline struct {
	Sources    []rss.Source
	Fetcher    Fetcher
	Summarizer Summarizer
	Store      storage.Backend
	Archiver   Archiver
	Project    archive.Project
	Resolver   news.Resolver

	// Delay is the pause between two source fetches.
	Delay  time.Duration
	Logger *slog.Logger

	Now   func() time.Time
	Sleep func(time.Duration)
}

// Report is what a finished run tells its caller.
type Report struct {
	Fetched     int
	New         int
	Archived    int
	ArchivePath string
	Articles    []news.Article
	Metrics     *metrics.Metrics
}

// Run performs one pass. It always completes: source, summary and
// persistence failures are logged and absorbed.
func (p *Pipeline) Run(ctx context.Context) Report {
	p.defaults()
	m := metrics.New(p.Now())

	p.Logger.Info("Starting news aggregation", "project", p.Project.Name, "sources", len(p.Sources))

	store := storage.LoadOrEmpty(ctx, p.Store, p.Logger)
	p.Logger.Info("Loaded processed articles", "count", store.Len())

	raw := p.fetchAll(ctx, m)
	fresh := p.filterNew(raw, store, m)
	p.summarizeAll(ctx, fresh, m)
	path := p.finalize(ctx, fresh, store, m)

	m.Finish(p.Now())
	m.Log(p.Logger)

	return Report{
		Fetched:     len(raw),
		New:         len(fresh),
		Archived:    int(m.ArticlesArchived),
		ArchivePath: path,
		Articles:    fresh,
		Metrics:     m,
	}
}

func (p *Pipeline) defaults() {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Sleep == nil {
		p.Sleep = time.Sleep
	}
	if p.Resolver.Now == nil {
		p.Resolver.Now = p.Now
	}
}

// fetchAll keeps source order, and feed order within a source.
func (p *Pipeline) fetchAll(ctx context.Context, m *metrics.Metrics) []news.Article {
	var all []news.Article
	for i, src := range p.Sources {
		if i > 0 && p.Delay > 0 {
			p.Sleep(p.Delay)
		}

		p.Logger.Info("Fetching news", "source", src.Name, "url", src.URL)
		articles, err := p.Fetcher.Fetch(ctx, src)
		if err != nil {
			attrs := []any{"source", src.Name, "error", err}
			var fe *rss.FetchError
			if errors.As(err, &fe) {
				attrs = append(attrs, "kind", fe.Kind)
			}
			p.Logger.Warn("Failed to fetch source", attrs...)
			m.RecordSource(0, true)
			continue
		}

		p.Logger.Info("Fetched articles", "source", src.Name, "count", len(articles))
		m.RecordSource(len(articles), false)
		all = append(all, articles...)
	}
	return all
}

// filterNew marks each identity as soon as it is kept, so the first of
// several entries sharing an identity wins within a run too.
func (p *Pipeline) filterNew(raw []news.Article, store *storage.DedupStore, m *metrics.Metrics) []news.Article {
	var fresh []news.Article
	for _, a := range raw {
		id := p.Resolver.Identity(a)
		if store.Contains(id) {
			m.IncrementDuplicatesFiltered()
			continue
		}
		store.Add(id)
		fresh = append(fresh, a)
		m.IncrementNewArticles()
	}
	p.Logger.Info("Filtered articles", "fetched", len(raw), "new", len(fresh))
	return fresh
}

func (p *Pipeline) summarizeAll(ctx context.Context, articles []news.Article, m *metrics.Metrics) {
	for i := range articles {
		a := &articles[i]
		lang := a.Language
		if lang == "" {
			lang = p.Project.Language
		}

		res := p.Summarizer.SummarizeResult(ctx, a.SummaryInput(), lang)
		a.SetSummary(res.Text)
		m.RecordSummary(res.Origin == summarize.OriginAI)
		if res.Origin == summarize.OriginFallback {
			p.Logger.Debug("Using fallback summary", "title", a.Title, "reason", res.Reason)
		}
	}
}

// finalize archives first, then saves the dedup state whatever happened.
func (p *Pipeline) finalize(ctx context.Context, articles []news.Article, store *storage.DedupStore, m *metrics.Metrics) string {
	path, err := p.Archiver.Write(articles, p.Project)
	if err != nil {
		p.Logger.Error("Error saving archive", "error", err)
		m.SetError(err.Error())
	}
	if path != "" {
		m.SetArchived(len(articles))
	}

	if err := p.Store.Save(ctx, store); err != nil {
		p.Logger.Error("Error saving processed articles", "error", err)
		m.SetError(err.Error())
	} else {
		p.Logger.Debug("Saved processed articles", "count", store.Len())
	}
	return path
}
