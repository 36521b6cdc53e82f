package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{
		client: &client,
		model:  "claude-haiku-4-5-20251001",
	}
}

func anthropicMessage(text, stopReason string) map[string]any {
	content := []map[string]any{}
	if text != "" {
		content = append(content, map[string]any{"type": "text", "text": text})
	}
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     content,
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stopReason,
		"usage": map[string]any{
			"input_tokens":  50,
			"output_tokens": 30,
		},
	}
}

func TestAnthropicProvider_HappyPath(t *testing.T) {
	const body = `Here is your lesson: {"title":"At the market","text":"...","questions":[]}`

	var gotPrompt string
	handler := func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) == 1 && len(req.Messages[0].Content) == 1 {
			gotPrompt = req.Messages[0].Content[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(body, "end_turn"))
	}

	p := newTestAnthropicProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "Create a reading lesson."}},
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPrompt != "Create a reading lesson." {
		t.Fatalf("prompt = %q", gotPrompt)
	}
	if resp.Text != body {
		t.Fatalf("text = %q, want raw model text", resp.Text)
	}
	if resp.Usage.InputTokens != 50 || resp.Usage.TotalTokens != 80 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}
}

func anthropicError(status int, errType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if status == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", "7")
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": errType, "message": "failed"},
		})
	}
}

func anthropicReply(text, stopReason string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicMessage(text, stopReason))
	}
}

func TestAnthropicProvider_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		schema  bool
		check   func(t *testing.T, err error)
	}{
		{
			name:    "empty content",
			handler: anthropicReply("", "end_turn"),
			check: func(t *testing.T, err error) {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) || inv.Content != "" {
					t.Fatalf("got %T (%v), want ErrInvalidResponse without content", err, err)
				}
			},
		},
		{
			name:    "truncated",
			handler: anthropicReply(`{"title":"cut`, "max_tokens"),
			check: func(t *testing.T, err error) {
				var maxTok *ErrMaxTokensExceeded
				if !errors.As(err, &maxTok) || !strings.HasPrefix(maxTok.Content, `{"title"`) {
					t.Fatalf("got %T (%v), want ErrMaxTokensExceeded keeping the text", err, err)
				}
			},
		},
		{
			name:    "refusal",
			handler: anthropicReply("I can't help with that.", "refusal"),
			check: func(t *testing.T, err error) {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("got %T (%v), want ErrInvalidResponse", err, err)
				}
			},
		},
		{
			name:    "schema mismatch",
			handler: anthropicReply(`{"name":"Ana"}`, "end_turn"),
			schema:  true,
			check: func(t *testing.T, err error) {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) || inv.Content == "" {
					t.Fatalf("got %T (%v), want ErrInvalidResponse with content", err, err)
				}
			},
		},
		{
			name:    "rate limit",
			handler: anthropicError(http.StatusTooManyRequests, "rate_limit_error"),
			check: func(t *testing.T, err error) {
				var rl *ErrRateLimit
				if !errors.As(err, &rl) {
					t.Fatalf("got %T (%v), want ErrRateLimit", err, err)
				}
				if rl.RetryAfter != 7*time.Second {
					t.Errorf("RetryAfter = %v, want 7s", rl.RetryAfter)
				}
			},
		},
		{
			name:    "server error",
			handler: anthropicError(http.StatusInternalServerError, "api_error"),
			check: func(t *testing.T, err error) {
				var unavail *ErrProviderUnavailable
				if !errors.As(err, &unavail) {
					t.Fatalf("got %T (%v), want ErrProviderUnavailable", err, err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAnthropicProvider(t, tt.handler)
			req := UserPrompt("test")
			req.MaxTokens = 100
			if tt.schema {
				req.Schema = testSchema()
			}

			_, err := p.Generate(context.Background(), req)
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestRetryAfter(t *testing.T) {
	tests := map[string]time.Duration{
		"":      0,
		"3":     3 * time.Second,
		" 10 ":  10 * time.Second,
		"-1":    0,
		"later": 0,
	}
	for in, want := range tests {
		if got := retryAfter(in); got != want {
			t.Errorf("retryAfter(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"claude-sonnet", "claude-sonnet-4-5-20250929"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-opus", "claude-opus-4-5-20251101"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4-20250514"}, // pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, anthropicModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(AnthropicConfig{Model: "claude-haiku"}); err == nil {
		t.Fatal("expected error for empty API key")
	}
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: "claude-haiku", BaseURL: "http://localhost:1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "claude-haiku-4-5-20251001" {
		t.Fatalf("model = %q", p.ModelID())
	}
}
