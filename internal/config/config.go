// Package config loads run settings from the environment and the sources
// file. Validate failures are the only fatal errors of a run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eltonkola/bleta/internal/archive"
	"github.com/eltonkola/bleta/internal/rss"
	"github.com/eltonkola/bleta/internal/summarize"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// ErrInvalid marks configuration failures.
var ErrInvalid = errors.New("invalid configuration")

// File is the YAML document holding project metadata, prompts and sources.
type File struct {
	Project archive.Project `yaml:"project"`
	Summary Prompts         `yaml:"summary"`
	Sources []rss.Source    `yaml:"sources"`
}

// Prompts are the AI summary instructions; empty fields keep the built-in wording.
type Prompts struct {
	PromptTemplate string `yaml:"prompt_template"`
	SystemPrompt   string `yaml:"system_prompt"`
}

type Config struct {
	// Sources settings
	ConfigPath string
	Project    archive.Project
	Sources    []rss.Source

	// Storage settings
	DataDir       string
	ProcessedFile string
	ArchiveDir    string
	PublicDir     string
	DatabaseURL   string

	// AI settings
	AIProvider           string
	GeminiAPIKey         string
	OpenAIAPIKey         string
	AIModel              string // empty = provider default
	AIMaxTokens          int
	AITemperature        float32
	AITimeout            time.Duration
	MaxAIRequests        int // maximum AI requests per run (0 = unlimited)
	MaxProviderRequests  int // MAX_GEMINI_REQUESTS or MAX_OPENAI_REQUESTS for the selected provider
	PromptTemplate       string
	SystemPrompt         string
	SummaryFallbackChars int
	SummaryInputChars    int

	// RSS settings
	MaxArticlesPerSource int
	RequestTimeout       time.Duration
	RequestDelay         time.Duration
	UserAgent            string

	// App settings
	IdentityStableFallback bool
}

// Load reads the environment and the sources file, then validates.
func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		AIProvider:           ProviderGemini,
		AIMaxTokens:          150,
		AITemperature:        0.3,
		AITimeout:            30 * time.Second,
		SummaryFallbackChars: 200,
		SummaryInputChars:    4000,
		MaxArticlesPerSource: 10,
		RequestTimeout:       30 * time.Second,
		RequestDelay:         time.Second,
		UserAgent:            rss.DefaultUserAgent,
	}

	cfg.ConfigPath = getEnvOrDefault("BLETA_CONFIG", "configs/bleta.yaml")

	// Storage settings
	cfg.DataDir = getEnvOrDefault("DATA_DIR", "data")
	cfg.ProcessedFile = getEnvOrDefault("PROCESSED_FILE", filepath.Join(cfg.DataDir, "processed.json"))
	cfg.ArchiveDir = getEnvOrDefault("ARCHIVE_DIR", filepath.Join(cfg.DataDir, "archive"))
	cfg.PublicDir = "public"
	if v, ok := os.LookupEnv("PUBLIC_DIR"); ok {
		cfg.PublicDir = v
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	// AI settings
	cfg.AIProvider = getEnvOrDefault("AI_PROVIDER", cfg.AIProvider)
	cfg.GeminiAPIKey = getEnvOrDefault("GOOGLE_API_KEY", os.Getenv("GEMINI_API_KEY"))
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.AIModel = os.Getenv("AI_MODEL")
	cfg.AIMaxTokens = getEnvIntOrDefault("AI_MAX_TOKENS", cfg.AIMaxTokens)
	if v := os.Getenv("AI_TEMPERATURE"); v != "" {
		if val, err := strconv.ParseFloat(v, 32); err == nil && val >= 0 {
			cfg.AITemperature = float32(val)
		}
	}
	cfg.AITimeout = getEnvDurationOrDefault("AI_TIMEOUT", cfg.AITimeout)
	if v := os.Getenv("MAX_AI_REQUESTS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.MaxAIRequests = val
		}
	}
	providerLimitKey := "MAX_GEMINI_REQUESTS"
	if cfg.AIProvider == ProviderOpenAI {
		providerLimitKey = "MAX_OPENAI_REQUESTS"
	}
	if v := os.Getenv(providerLimitKey); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.MaxProviderRequests = val
		}
	}
	cfg.SummaryFallbackChars = getEnvIntOrDefault("SUMMARY_FALLBACK_CHARS", cfg.SummaryFallbackChars)
	cfg.SummaryInputChars = getEnvIntOrDefault("SUMMARY_INPUT_CHARS", cfg.SummaryInputChars)

	// RSS settings
	cfg.MaxArticlesPerSource = getEnvIntOrDefault("MAX_ARTICLES_PER_SOURCE", cfg.MaxArticlesPerSource)
	cfg.RequestTimeout = getEnvDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RequestDelay = getEnvDurationOrDefault("REQUEST_DELAY", cfg.RequestDelay)
	cfg.UserAgent = getEnvOrDefault("USER_AGENT", cfg.UserAgent)

	if os.Getenv("IDENTITY_STABLE_FALLBACK") == "true" {
		cfg.IdentityStableFallback = true
	}

	f, err := LoadFile(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.Project = f.Project
	cfg.Sources = f.Sources
	cfg.PromptTemplate = f.Summary.PromptTemplate
	if cfg.PromptTemplate == "" {
		cfg.PromptTemplate = summarize.DefaultPromptTemplate
	}
	cfg.SystemPrompt = f.Summary.SystemPrompt
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = summarize.DefaultSystemPrompt
	}

	return cfg, cfg.Validate()
}

// LoadFile reads the project metadata and sources document.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrInvalid, path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalid, path, err)
	}
	return &f, nil
}

// Registry builds the source registry from the loaded sources.
func (c *Config) Registry() *rss.Registry {
	return rss.NewRegistry(c.Sources)
}

// AIKey returns the credential of the selected provider; empty means degraded mode.
func (c *Config) AIKey() string {
	if c.AIProvider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("30s") and bare seconds ("30").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.AIProvider != ProviderGemini && c.AIProvider != ProviderOpenAI {
		return fmt.Errorf("%w: AI_PROVIDER must be '%s' or '%s'", ErrInvalid, ProviderGemini, ProviderOpenAI)
	}
	if c.MaxArticlesPerSource <= 0 {
		return fmt.Errorf("%w: MAX_ARTICLES_PER_SOURCE must be positive", ErrInvalid)
	}
	for i, s := range c.Sources {
		if s.Name == "" {
			return fmt.Errorf("%w: source #%d has no name", ErrInvalid, i+1)
		}
		if s.URL == "" {
			return fmt.Errorf("%w: source %q has no url", ErrInvalid, s.Name)
		}
	}
	if len(c.Registry().Enabled()) == 0 {
		return fmt.Errorf("%w: no enabled sources in %s", ErrInvalid, c.ConfigPath)
	}
	return nil
}
