package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config selects a vendor and carries the settings of every vendor, so a
// single config file can switch between them.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter" or "mock".
	Provider string `mapstructure:"provider"`

	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Retry      RetryConfig      `mapstructure:"retry"`

	// Timeout bounds one Generate call, retries included. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout"`
}

// Model fields accept the friendly names of each vendor's model table or
// a raw vendor model id.

type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"` // any OpenAI compatible endpoint
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"` // vendor qualified, used as is
	BaseURL string `mapstructure:"base_url"`
}

// RetryConfig shapes the backoff of WithRetry. MaxAttempts of 1 means a
// single call.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// DefaultConfig has retries off: a failed lesson call goes straight back
// to the pipeline, which decides what to do with it.
func DefaultConfig() Config {
	return Config{
		Provider: "anthropic",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// vendors lists the key-holding providers in discovery order, along with
// the conventional environment variable of each.
var vendors = []struct {
	name string
	env  string
	key  func(*Config) *string
}{
	{"anthropic", "ANTHROPIC_API_KEY", func(c *Config) *string { return &c.Anthropic.APIKey }},
	{"openai", "OPENAI_API_KEY", func(c *Config) *string { return &c.OpenAI.APIKey }},
	{"gemini", "GEMINI_API_KEY", func(c *Config) *string { return &c.Gemini.APIKey }},
	{"openrouter", "OPENROUTER_API_KEY", func(c *Config) *string { return &c.OpenRouter.APIKey }},
}

// DiscoverConfig picks the first vendor whose conventional API key
// variable is set and returns base switched over to it. It returns base
// unchanged and false when none is set.
func DiscoverConfig(base Config) (Config, bool) {
	for _, v := range vendors {
		if k := os.Getenv(v.env); k != "" {
			cfg := base
			cfg.Provider = v.name
			*v.key(&cfg) = k
			return cfg, true
		}
	}
	return base, false
}

// HasKey reports whether the selected provider can authenticate. The
// mock provider always can.
func (c Config) HasKey() bool {
	if c.Provider == "mock" {
		return true
	}
	for _, v := range vendors {
		if v.name == c.Provider {
			return *v.key(&c) != ""
		}
	}
	return false
}

func (c Config) Validate() error {
	known := c.Provider == "mock"
	for _, v := range vendors {
		if v.name != c.Provider {
			continue
		}
		known = true
		if *v.key(&c) == "" {
			return fmt.Errorf("no API key for %s: set FLUENTZ_LLM_%s_API_KEY or %s",
				v.name, strings.ToUpper(v.name), v.env)
		}
	}
	if !known {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("llm.retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
