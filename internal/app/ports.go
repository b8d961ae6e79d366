package app

import (
	"context"

	"github.com/eltonkola/bleta/internal/archive"
	"github.com/eltonkola/bleta/internal/news"
	"github.com/eltonkola/bleta/internal/rss"
	"github.com/eltonkola/bleta/internal/summarize"
)

// Fetcher returns the normalized entries of one source.
// *rss.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, src rss.Source) ([]news.Article, error)
}

// Summarizer never fails; Result tells whether the text came from the AI.
// *summarize.Summarizer implements it.
type Summarizer interface {
	SummarizeResult(ctx context.Context, text, language string) summarize.Result
}

// Archiver persists the enriched articles of a run.
// *archive.Writer implements it.
type Archiver interface {
	Write(articles []news.Article, project archive.Project) (string, error)
}
