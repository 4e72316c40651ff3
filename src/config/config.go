// Package config resolves runtime settings from the environment.
package config

import (
	"fmt"
	"os"
)

// Supported provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// DefaultModels maps each provider to the model used when LLM_MODEL is unset.
var DefaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4o",
	ProviderAnthropic: "claude-sonnet-4-20250514",
	ProviderGemini:    "gemini-2.0-flash",
}

// Config carries everything the service needs to talk to the tool server and
// the chosen LLM backend.
type Config struct {
	MCPServerURL string
	Provider     string
	APIKey       string
	Model        string

	// BaseURL overrides the provider API endpoint. Empty means the provider
	// default.
	BaseURL string
}

// FromEnv builds a Config from environment variables. The API key falls back
// to the provider vendor's conventional variable when LLM_API_KEY is unset.
func FromEnv() Config {
	cfg := Config{
		MCPServerURL: envOr("MCP_SERVER_URL", "http://localhost:10000"),
		Provider:     envOr("LLM_PROVIDER", ProviderOpenAI),
		APIKey:       os.Getenv("LLM_API_KEY"),
		Model:        os.Getenv("LLM_MODEL"),
		BaseURL:      os.Getenv("LLM_BASE_URL"),
	}
	if cfg.APIKey == "" {
		switch cfg.Provider {
		case ProviderOpenAI:
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		case ProviderAnthropic:
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case ProviderGemini:
			cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModels[cfg.Provider]
	}
	return cfg
}

// Validate rejects unknown providers. A missing API key is not an error here;
// the engine layer degrades to a fixed not-configured response instead.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return nil
	default:
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
