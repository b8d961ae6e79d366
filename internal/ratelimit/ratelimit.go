package ratelimit

import (
	"fmt"
	"log/slog"
)

// AIRateLimiter caps AI completion calls for one run, per provider and in total.
// A limit of 0 means unlimited. The pipeline is sequential, so no locking.
type AIRateLimiter struct {
	counts   map[string]int
	limits   map[string]int
	total    int
	maxTotal int
	denied   int
	logger   *slog.Logger
}

// NewAIRateLimiter creates a limiter with a total budget.
func NewAIRateLimiter(maxTotal int, logger *slog.Logger) *AIRateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &AIRateLimiter{
		counts:   make(map[string]int),
		limits:   make(map[string]int),
		maxTotal: maxTotal,
		logger:   logger,
	}
}

// SetProviderLimit sets a per-provider cap on top of the total budget.
func (rl *AIRateLimiter) SetProviderLimit(provider string, max int) {
	rl.limits[provider] = max
}

// CanUse reports whether provider may make another call.
func (rl *AIRateLimiter) CanUse(provider string) bool {
	if max := rl.limits[provider]; max > 0 && rl.counts[provider] >= max {
		return false
	}
	if rl.maxTotal > 0 && rl.total >= rl.maxTotal {
		return false
	}
	return true
}

// Use records one call for provider, or fails when the budget is spent.
func (rl *AIRateLimiter) Use(provider string) error {
	if !rl.CanUse(provider) {
		rl.denied++
		if rl.denied == 1 {
			rl.logger.Warn("AI request budget exhausted", "provider", provider, "used", rl.total, "limit", rl.maxTotal)
		}
		return fmt.Errorf("%s rate limit exceeded", provider)
	}

	rl.counts[provider]++
	rl.total++
	rl.logger.Debug("AI usage", "provider", provider, "used", rl.counts[provider], "total", rl.total, "limit", rl.maxTotal)
	return nil
}

// GetStats returns usage counters.
func (rl *AIRateLimiter) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"total_used":  rl.total,
		"total_limit": rl.maxTotal,
		"denied":      rl.denied,
	}
	for provider, n := range rl.counts {
		stats[provider+"_used"] = n
	}
	return stats
}
