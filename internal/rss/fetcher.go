package rss

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/eltonkola/bleta/internal/news"
	"github.com/eltonkola/bleta/internal/textclean"
)

const (
	// DefaultUserAgent is a desktop browser identifier; several feed servers
	// reject unknown clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	acceptHeader = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.9, */*;q=0.8"
	maxBodyBytes = 10 << 20
)

// FailureKind classifies why a source yielded nothing.
type FailureKind string

const (
	FailureRequest    FailureKind = "request"
	FailureTimeout    FailureKind = "timeout"
	FailureNetwork    FailureKind = "network"
	FailureHTTPStatus FailureKind = "http_status"
	FailureParse      FailureKind = "parse"
)

// FetchError is returned by Fetch for every source-level failure.
type FetchError struct {
	Source     string
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == FailureHTTPStatus {
		return fmt.Sprintf("fetch %s: %s %d", e.Source, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetcherConfig holds the fixed request policy.
type FetcherConfig struct {
	Timeout    time.Duration
	UserAgent  string
	MaxEntries int
}

// Fetcher downloads one source feed and turns its entries into articles.
// It has no side effects besides the HTTP request.
type Fetcher struct {
	client     *http.Client
	parser     *gofeed.Parser
	userAgent  string
	maxEntries int
	now        func() time.Time
}

// NewFetcher builds a Fetcher. A nil client gets one with cfg.Timeout.
func NewFetcher(cfg FetcherConfig, client *http.Client) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Fetcher{
		client:     client,
		parser:     gofeed.NewParser(),
		userAgent:  cfg.UserAgent,
		maxEntries: cfg.MaxEntries,
		now:        time.Now,
	}
}

// Fetch performs one GET against src.URL and returns at most MaxEntries
// articles in feed order. Every failure comes back as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]news.Article, error) {
	body, err := f.download(ctx, src)
	if err != nil {
		return nil, err
	}

	feed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Source: src.Name, Kind: FailureParse, Err: err}
	}

	items := feed.Items
	if f.maxEntries > 0 && len(items) > f.maxEntries {
		items = items[:f.maxEntries]
	}

	fetchedAt := f.now()
	articles := make([]news.Article, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		articles = append(articles, toArticle(item, src, fetchedAt))
	}
	return articles, nil
}

func (f *Fetcher) download(ctx context.Context, src Source) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Kind: FailureRequest, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Source:     src.Name,
			Kind:       FailureHTTPStatus,
			StatusCode: resp.StatusCode,
			Err:        errors.New(resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Source: src.Name, Kind: classify(err), Err: err}
	}
	return body, nil
}

func classify(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureNetwork
}

// toArticle maps a parsed entry; missing fields stay empty strings.
func toArticle(item *gofeed.Item, src Source, fetchedAt time.Time) news.Article {
	link := strings.TrimSpace(item.Link)
	guid := strings.TrimSpace(item.GUID)
	if guid == "" {
		guid = link
	}

	return news.Article{
		Title:       textclean.Clean(item.Title),
		Description: textclean.Clean(item.Description),
		Link:        link,
		Published:   strings.TrimSpace(item.Published),
		Source:      src.Name,
		SourceURL:   src.URL,
		Language:    src.Language,
		GUID:        guid,
		FetchedAt:   fetchedAt,
	}
}
