package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eltonkola/bleta/internal/summarize"
)

const validYAML = `
project:
  name: Bleta
  description: Albanian News Archive with AI Summaries
  version: 1.0.0
  language: sq
sources:
  - name: Top Channel
    url: https://top-channel.tv/feed/
    language: sq
    enabled: true
  - name: Telegrafi
    url: https://telegrafi.com/feed/
    language: sq
  - name: Exit.al
    url: https://exit.al/feed/
    language: en
    enabled: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bleta.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATA_DIR", "PROCESSED_FILE", "ARCHIVE_DIR", "PUBLIC_DIR", "DATABASE_URL",
		"AI_PROVIDER", "GOOGLE_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "AI_MODEL",
		"AI_MAX_TOKENS", "AI_TEMPERATURE", "AI_TIMEOUT", "MAX_AI_REQUESTS", "MAX_GEMINI_REQUESTS", "MAX_OPENAI_REQUESTS",
		"SUMMARY_FALLBACK_CHARS", "SUMMARY_INPUT_CHARS", "MAX_ARTICLES_PER_SOURCE",
		"REQUEST_TIMEOUT", "REQUEST_DELAY", "USER_AGENT", "DEBUG", "IDENTITY_STABLE_FALLBACK",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BLETA_CONFIG", writeConfig(t, validYAML))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Project.Name != "Bleta" || cfg.Project.Language != "sq" {
		t.Errorf("project not loaded: %+v", cfg.Project)
	}
	if cfg.ProcessedFile != filepath.Join("data", "processed.json") || cfg.ArchiveDir != filepath.Join("data", "archive") {
		t.Errorf("unexpected paths: %s %s", cfg.ProcessedFile, cfg.ArchiveDir)
	}
	if cfg.PublicDir != "public" {
		t.Errorf("PublicDir = %q", cfg.PublicDir)
	}
	if cfg.AIProvider != ProviderGemini || cfg.AIMaxTokens != 150 || cfg.AITemperature != 0.3 {
		t.Errorf("unexpected AI defaults: %+v", cfg)
	}
	if cfg.MaxArticlesPerSource != 10 || cfg.RequestTimeout != 30*time.Second || cfg.RequestDelay != time.Second {
		t.Errorf("unexpected RSS defaults: %+v", cfg)
	}
	if cfg.AIKey() != "" {
		t.Errorf("no key expected")
	}
	if cfg.PromptTemplate != summarize.DefaultPromptTemplate || cfg.SystemPrompt != summarize.DefaultSystemPrompt {
		t.Errorf("built-in prompts expected: %q / %q", cfg.PromptTemplate, cfg.SystemPrompt)
	}

	enabled := cfg.Registry().Enabled()
	if len(enabled) != 2 || enabled[1].Name != "Telegrafi" {
		t.Fatalf("source without enabled key should be enabled: %+v", enabled)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BLETA_CONFIG", writeConfig(t, validYAML))
	t.Setenv("DATA_DIR", "/var/bleta")
	t.Setenv("PUBLIC_DIR", "")
	t.Setenv("AI_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REQUEST_DELAY", "0")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("MAX_AI_REQUESTS", "7")
	t.Setenv("MAX_GEMINI_REQUESTS", "2")
	t.Setenv("MAX_OPENAI_REQUESTS", "3")
	t.Setenv("IDENTITY_STABLE_FALLBACK", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProcessedFile != filepath.Join("/var/bleta", "processed.json") {
		t.Errorf("ProcessedFile = %s", cfg.ProcessedFile)
	}
	if cfg.PublicDir != "" {
		t.Errorf("empty PUBLIC_DIR should disable the mirror, got %q", cfg.PublicDir)
	}
	if cfg.AIKey() != "sk-test" {
		t.Errorf("AIKey = %q", cfg.AIKey())
	}
	if cfg.RequestDelay != 0 || cfg.AITimeout != 5*time.Second || cfg.MaxAIRequests != 7 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.MaxProviderRequests != 3 {
		t.Errorf("MaxProviderRequests should follow the selected provider, got %d", cfg.MaxProviderRequests)
	}
	if !cfg.IdentityStableFallback {
		t.Errorf("IdentityStableFallback not set")
	}
}

func TestLoadGeminiKeyAliases(t *testing.T) {
	clearEnv(t)
	t.Setenv("BLETA_CONFIG", writeConfig(t, validYAML))
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AIKey() != "g-key" {
		t.Fatalf("GEMINI_API_KEY should be used when GOOGLE_API_KEY is unset")
	}
}

func TestLoadPromptsFromFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("BLETA_CONFIG", writeConfig(t, validYAML+`
summary:
  prompt_template: "Përmblidh në {language}: {text}"
  system_prompt: "Ti je redaktor lajmesh."
`))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PromptTemplate != "Përmblidh në {language}: {text}" || cfg.SystemPrompt != "Ti je redaktor lajmesh." {
		t.Fatalf("prompts not read from file: %q / %q", cfg.PromptTemplate, cfg.SystemPrompt)
	}
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "missing file", env: map[string]string{"BLETA_CONFIG": "/nonexistent/bleta.yaml"}},
		{name: "unparseable", yaml: "sources: [this is: not valid"},
		{name: "no enabled sources", yaml: "sources:\n  - name: A\n    url: https://a\n    enabled: false\n"},
		{name: "source without url", yaml: "sources:\n  - name: A\n"},
		{name: "source without name", yaml: "sources:\n  - url: https://a\n"},
		{name: "unknown provider", yaml: validYAML, env: map[string]string{"AI_PROVIDER": "llama"}},
		{name: "non-positive bound", yaml: validYAML, env: map[string]string{"MAX_ARTICLES_PER_SOURCE": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.yaml != "" {
				t.Setenv("BLETA_CONFIG", writeConfig(t, tt.yaml))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected configuration failure, got %v", err)
			}
		})
	}
}
