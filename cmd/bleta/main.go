// Bleta pulls Albanian news feeds, summarizes new articles and writes a
// daily archive.
//
// Usage:
//
//	bleta run       # one ingestion pass
//	bleta sources   # list enabled sources
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eltonkola/bleta/internal/app"
	"github.com/eltonkola/bleta/internal/archive"
	"github.com/eltonkola/bleta/internal/chatgpt"
	"github.com/eltonkola/bleta/internal/config"
	"github.com/eltonkola/bleta/internal/gemini"
	"github.com/eltonkola/bleta/internal/logger"
	"github.com/eltonkola/bleta/internal/news"
	"github.com/eltonkola/bleta/internal/rss"
	"github.com/eltonkola/bleta/internal/storage"
	"github.com/eltonkola/bleta/internal/summarize"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "bleta",
		Short:         "Albanian news archive with AI summaries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(sourcesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var stats bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, dedup, summarize and archive once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), stats)
		},
	}

	cmd.Flags().BoolVar(&stats, "stats", false, "print run counters as JSON")
	return cmd
}

func sourcesCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List enabled news sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			sources := cfg.Registry().Enabled()
			if all {
				sources = cfg.Registry().All()
			}
			for _, s := range sources {
				state := ""
				if !s.Enabled {
					state = " (disabled)"
				}
				fmt.Printf("%-22s %-3s %s%s\n", s.Name, s.Language, s.URL, state)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include disabled sources")
	return cmd
}

func run(ctx context.Context, printStats bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.Init().With("run_id", uuid.NewString())

	cfg, err := config.Load()
	if err != nil {
		log.Error("Configuration error", "error", err)
		return err
	}

	completer, closeAI := newCompleter(ctx, cfg, log)
	defer closeAI()

	backend, closeStore := storage.Open(ctx, cfg.DatabaseURL, cfg.ProcessedFile, log)
	defer closeStore()

	summarizer := summarize.New(completer, summarize.Config{
		PromptTemplate:      cfg.PromptTemplate,
		FallbackChars:       cfg.SummaryFallbackChars,
		InputChars:          cfg.SummaryInputChars,
		CallTimeout:         cfg.AITimeout,
		MaxRequests:         cfg.MaxAIRequests,
		MaxProviderRequests: cfg.MaxProviderRequests,
	}, log)

	p := &app.Pipeline{
		Sources: cfg.Registry().Enabled(),
		Fetcher: rss.NewFetcher(rss.FetcherConfig{
			Timeout:    cfg.RequestTimeout,
			UserAgent:  cfg.UserAgent,
			MaxEntries: cfg.MaxArticlesPerSource,
		}, nil),
		Summarizer: summarizer,
		Store:      backend,
		Archiver:   archive.NewWriter(cfg.ArchiveDir, cfg.PublicDir, log),
		Project:    cfg.Project,
		Resolver:   news.Resolver{StableFallback: cfg.IdentityStableFallback},
		Delay:      cfg.RequestDelay,
		Logger:     log,
	}

	report := p.Run(ctx)
	log.Info("Aggregation completed", "project", cfg.Project.Name)

	fmt.Printf("fetched=%d new=%d archived=%d\n", report.Fetched, report.New, report.Archived)
	if printStats {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		stats := report.Metrics.GetStats()
		for k, v := range summarizer.Stats() {
			stats["ai_"+k] = v
		}
		return enc.Encode(stats)
	}
	return nil
}

// newCompleter returns nil (degraded mode) when the provider has no key or
// its client cannot be built.
func newCompleter(ctx context.Context, cfg *config.Config, log *slog.Logger) (summarize.Completer, func()) {
	noop := func() {}
	if cfg.AIKey() == "" {
		log.Warn("No AI API key configured, summaries will be truncated text", "provider", cfg.AIProvider)
		return nil, noop
	}

	switch cfg.AIProvider {
	case config.ProviderOpenAI:
		c, err := chatgpt.NewClient(chatgpt.Config{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.AIModel,
			SystemPrompt: cfg.SystemPrompt,
			MaxTokens:    cfg.AIMaxTokens,
			Temperature:  cfg.AITemperature,
		})
		if err != nil {
			log.Error("Failed to initialize OpenAI client", "error", err)
			return nil, noop
		}
		return c, noop
	default:
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:       cfg.GeminiAPIKey,
			Model:        cfg.AIModel,
			SystemPrompt: cfg.SystemPrompt,
			MaxTokens:    int32(cfg.AIMaxTokens),
			Temperature:  cfg.AITemperature,
		})
		if err != nil {
			log.Error("Failed to initialize Gemini client", "error", err)
			return nil, noop
		}
		return c, c.Close
	}
}
