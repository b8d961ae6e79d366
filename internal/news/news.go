package news

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Article is one feed entry normalized for the archive.
//
// Title and Description hold cleaned plain text. Published is whatever the
// feed reported and may be empty. AISummary stays nil until the summarizer
// has run on the article.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Published   string    `json:"published,omitempty"`
	Source      string    `json:"source"`
	SourceURL   string    `json:"source_url"`
	Language    string    `json:"language"`
	GUID        string    `json:"guid"`
	FetchedAt   time.Time `json:"fetched_at"`
	AISummary   *string   `json:"ai_summary,omitempty"`
}

// SummaryInput is the text the summarizer works on: the description when
// present, otherwise the title.
func (a Article) SummaryInput() string {
	if a.Description != "" {
		return a.Description
	}
	return a.Title
}

// SetSummary attaches the summarizer output.
func (a *Article) SetSummary(s string) {
	a.AISummary = &s
}

// Resolver derives dedup identities for articles.
type Resolver struct {
	// Now is used by the time-based fallback; defaults to time.Now.
	Now func() time.Time

	// StableFallback replaces the time-based fallback for titled entries
	// without link and published date with a hash of the normalized title.
	// Off by default to keep identities compatible with existing dedup state.
	StableFallback bool
}

// Identity returns the dedup key for a:
//  1. the link when present;
//  2. title + "_" + published when both are present;
//  3. title (or "unknown") + "_" + current time, or with StableFallback
//     "title:" + hash of the normalized title.
//
// The default fallback embeds the current time, so such articles never
// dedup across runs.
func (r Resolver) Identity(a Article) string {
	if a.Link != "" {
		return a.Link
	}
	if a.Title != "" && a.Published != "" {
		return a.Title + "_" + a.Published
	}

	if r.StableFallback && a.Title != "" {
		return "title:" + titleHash(a.Title)
	}

	title := a.Title
	if title == "" {
		title = "unknown"
	}
	return title + "_" + r.now().Format(time.RFC3339Nano)
}

func (r Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func titleHash(title string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(title)), " ")
	h := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(h[:])[:16]
}
