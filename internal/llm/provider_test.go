package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/abhisek/fluentz/internal/logging"
)

func TestMockProvider_Script(t *testing.T) {
	ctx := context.Background()
	mock := NewMockProvider(
		MockResponse{Text: `{"a":1}`, Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Err: &ErrRateLimit{}},
	)

	resp, err := mock.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("call 1: %v", err)
	}
	if resp.Text != `{"a":1}` || resp.Usage.TotalTokens != 15 || resp.StopReason != "end" || resp.Model != "mock" {
		t.Fatalf("call 1 response = %+v", resp)
	}

	var rl *ErrRateLimit
	if _, err := mock.Generate(ctx, Request{}); !errors.As(err, &rl) {
		t.Fatalf("call 2: got %T, want ErrRateLimit", err)
	}

	var unavail *ErrProviderUnavailable
	if _, err := mock.Generate(ctx, Request{}); !errors.As(err, &unavail) {
		t.Fatalf("exhausted script: got %T, want ErrProviderUnavailable", err)
	}

	if mock.CallCount() != 3 || mock.Calls[0].System != "sys" {
		t.Fatalf("recorded calls = %+v", mock.Calls)
	}
	if mock.ModelID() != "mock" {
		t.Fatalf("ModelID = %q", mock.ModelID())
	}
}

func TestResolveModel(t *testing.T) {
	models := map[string]string{"fast": "model-fast-2025"}
	if got := resolveModel("fast", models); got != "model-fast-2025" {
		t.Errorf("resolveModel(fast) = %q", got)
	}
	if got := resolveModel("vendor/custom", models); got != "vendor/custom" {
		t.Errorf("unknown names pass through, got %q", got)
	}
}

func TestNewProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	cfg.Retry.MaxAttempts = 2

	p, err := NewProvider(context.Background(), cfg, nil, logging.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*timeoutProvider); !ok {
		t.Fatalf("outermost provider = %T, want the timeout wrapper", p)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q, want mock", p.ModelID())
	}

	cfg.Provider = "carrier-pigeon"
	if _, err := NewProvider(context.Background(), cfg, nil, logging.Discard()); err == nil {
		t.Error("expected error for an unknown provider")
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "lesson-gen")
	if p := PurposeFrom(ctx); p != "lesson-gen" {
		t.Fatalf("expected 'lesson-gen', got %q", p)
	}
}

func TestMockProvider_Prompts(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "a"}, MockResponse{Text: "b"})
	_, _ = mock.Generate(context.Background(), UserPrompt("reading 1"))
	_, _ = mock.Generate(context.Background(), UserPrompt("reading 2"))

	got := mock.Prompts()
	if len(got) != 2 || got[0] != "reading 1" || got[1] != "reading 2" {
		t.Fatalf("prompts = %v", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	withProvider := func(provider string, mutate func(*Config)) Config {
		cfg := DefaultConfig()
		cfg.Provider = provider
		if mutate != nil {
			mutate(&cfg)
		}
		return cfg
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", withProvider("anthropic", nil), true},
		{"anthropic with key", withProvider("anthropic", func(c *Config) { c.Anthropic.APIKey = "sk-test" }), false},
		{"openai without key", withProvider("openai", nil), true},
		{"openai with key", withProvider("openai", func(c *Config) { c.OpenAI.APIKey = "sk-test" }), false},
		{"gemini without key", withProvider("gemini", nil), true},
		{"openrouter with key", withProvider("openrouter", func(c *Config) { c.OpenRouter.APIKey = "sk-or" }), false},
		{"mock needs no key", withProvider("mock", nil), false},
		{"unknown provider", withProvider("unknown", nil), true},
		{"zero attempts", withProvider("mock", func(c *Config) { c.Retry.MaxAttempts = 0 }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig_NoRetries(t *testing.T) {
	if got := DefaultConfig().Retry.MaxAttempts; got != 1 {
		t.Fatalf("default max attempts = %d, want 1", got)
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}

	if _, ok := DiscoverConfig(DefaultConfig()); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	cfg, ok := DiscoverConfig(DefaultConfig())
	if !ok {
		t.Fatal("expected a provider")
	}
	if cfg.Provider != "gemini" || cfg.Gemini.APIKey != "g-key" {
		t.Fatalf("got provider %q key %q, want gemini", cfg.Provider, cfg.Gemini.APIKey)
	}
	if !cfg.HasKey() {
		t.Fatal("discovered config should have a key")
	}
}
