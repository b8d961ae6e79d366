// Package summarize produces short article summaries through an AI
// completion call, falling back to plain truncation whenever the call is
// unavailable or fails. It never returns an error.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eltonkola/bleta/internal/cache"
	"github.com/eltonkola/bleta/internal/ratelimit"
)

const (
	DefaultPromptTemplate = "Summarize the following Albanian news article in 1-2 concise sentences, in {language}, keeping key facts: {text}"
	DefaultSystemPrompt   = "You are a helpful assistant that summarizes news articles in Albanian."

	DefaultFallbackChars = 200
	DefaultInputChars    = 4000

	ellipsis = "..."
)

// Completer is an AI text completion backend.
type Completer interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Origin tells where a summary came from.
type Origin string

const (
	OriginAI       Origin = "ai"
	OriginFallback Origin = "fallback"
)

// Reason explains a fallback summary.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonEmptyInput      Reason = "empty_input"
	ReasonUnconfigured    Reason = "unconfigured"
	ReasonBudgetExhausted Reason = "budget_exhausted"
	ReasonCallFailed      Reason = "call_failed"
	ReasonEmptyResponse   Reason = "empty_response"
)

// Result is the outcome of one summarization.
type Result struct {
	Text   string
	Origin Origin
	Reason Reason
	Err    error
}

type Config struct {
	PromptTemplate string
	FallbackChars  int
	InputChars     int
	CallTimeout    time.Duration
	MaxRequests    int // per run, 0 = unlimited

	// MaxProviderRequests caps calls to the configured completer on top of
	// MaxRequests; 0 = no extra cap.
	MaxProviderRequests int
}

// Summarizer is safe to use in degraded mode: a nil Completer means every
// summary is a truncation.
type Summarizer struct {
	completer Completer
	cfg       Config
	limiter   *ratelimit.AIRateLimiter
	memo      *cache.Cache
	logger    *slog.Logger
}

func New(completer Completer, cfg Config, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PromptTemplate == "" {
		cfg.PromptTemplate = DefaultPromptTemplate
	}
	if cfg.FallbackChars <= 0 {
		cfg.FallbackChars = DefaultFallbackChars
	}
	if cfg.InputChars <= 0 {
		cfg.InputChars = DefaultInputChars
	}
	limiter := ratelimit.NewAIRateLimiter(cfg.MaxRequests, logger)
	if completer != nil && cfg.MaxProviderRequests > 0 {
		limiter.SetProviderLimit(completer.Name(), cfg.MaxProviderRequests)
	}
	return &Summarizer{
		completer: completer,
		cfg:       cfg,
		limiter:   limiter,
		memo:      cache.New(),
		logger:    logger,
	}
}

// Degraded reports whether no AI backend is configured.
func (s *Summarizer) Degraded() bool {
	return s.completer == nil
}

// Summarize returns a usable summary of text in language.
func (s *Summarizer) Summarize(ctx context.Context, text, language string) string {
	return s.SummarizeResult(ctx, text, language).Text
}

// SummarizeResult is Summarize with the origin of the text made explicit.
// One completion attempt at most; no retries.
func (s *Summarizer) SummarizeResult(ctx context.Context, text, language string) Result {
	if text == "" {
		return Result{Origin: OriginFallback, Reason: ReasonEmptyInput}
	}
	if s.completer == nil {
		return s.fallback(text, ReasonUnconfigured, nil)
	}

	key := s.memo.GenerateKey(language, text)
	if cached, ok := s.memo.Get(key); ok {
		return Result{Text: cached, Origin: OriginAI}
	}

	provider := s.completer.Name()
	if err := s.limiter.Use(provider); err != nil {
		return s.fallback(text, ReasonBudgetExhausted, err)
	}

	prompt := BuildPrompt(s.cfg.PromptTemplate, language, TruncateRunes(text, s.cfg.InputChars))
	out, err := s.complete(ctx, prompt)
	if err != nil {
		s.logger.Error("AI summarization failed", "provider", provider, "error", err)
		return s.fallback(text, ReasonCallFailed, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		s.logger.Error("AI summarization returned empty response", "provider", provider)
		return s.fallback(text, ReasonEmptyResponse, nil)
	}

	s.memo.Set(key, out)
	return Result{Text: out, Origin: OriginAI}
}

// complete runs one call under the per-call timeout and turns a panicking
// client into an error.
func (s *Summarizer) complete(ctx context.Context, prompt string) (out string, err error) {
	if s.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("completion panicked: %v", r)
		}
	}()
	return s.completer.Complete(ctx, prompt)
}

func (s *Summarizer) fallback(text string, reason Reason, err error) Result {
	return Result{
		Text:   Truncate(text, s.cfg.FallbackChars),
		Origin: OriginFallback,
		Reason: reason,
		Err:    err,
	}
}

// Stats exposes AI budget and memo counters.
func (s *Summarizer) Stats() map[string]interface{} {
	stats := s.limiter.GetStats()
	stats["degraded"] = s.Degraded()
	for k, v := range s.memo.GetStats() {
		stats["memo_"+k] = v
	}
	return stats
}

// Truncate cuts text to budget runes and appends "..." when it was longer.
func Truncate(text string, budget int) string {
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	return string(runes[:budget]) + ellipsis
}

// TruncateRunes cuts text to at most n runes without a marker.
func TruncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
