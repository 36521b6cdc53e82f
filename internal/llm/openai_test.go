package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	clientCfg := openai.DefaultConfig("test-key")
	clientCfg.BaseURL = server.URL + "/v1"
	return &OpenAIProvider{client: openai.NewClientWithConfig(clientCfg), model: "gpt-4o-mini"}
}

func chatCompletion(content, finish string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-test",
			"model": "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finish,
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var body map[string]any
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		chatCompletion("```json\n{\"title\":\"Greetings\",\"questions\":[]}\n```", "stop")(w, r)
	})

	req := UserPrompt("Create a vocabulary lesson.")
	req.MaxTokens = 256
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage != (Usage{InputTokens: 40, OutputTokens: 25, TotalTokens: 65}) {
		t.Errorf("Usage = %+v", resp.Usage)
	}
	if resp.StopReason != "end" {
		t.Errorf("StopReason = %q, want end", resp.StopReason)
	}
	if !strings.Contains(resp.Text, `"title":"Greetings"`) {
		t.Errorf("Text = %q, want the fenced model output", resp.Text)
	}
	if body["max_completion_tokens"] != float64(256) {
		t.Errorf("max_completion_tokens = %v, want 256", body["max_completion_tokens"])
	}
	if _, ok := body["response_format"]; ok {
		t.Error("response_format sent without a schema")
	}
}

func TestOpenAIProvider_SchemaRequest(t *testing.T) {
	var body struct {
		ResponseFormat struct {
			Type       string `json:"type"`
			JSONSchema struct {
				Name   string         `json:"name"`
				Schema map[string]any `json:"schema"`
				Strict bool           `json:"strict"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		chatCompletion(`{"word":"Apfel","points":3}`, "stop")(w, r)
	})

	req := UserPrompt("test")
	req.Schema = testSchema()
	if _, err := p.Generate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.ResponseFormat.Type != "json_schema" {
		t.Errorf("response_format.type = %q", body.ResponseFormat.Type)
	}
	if body.ResponseFormat.JSONSchema.Name != req.Schema.Name {
		t.Errorf("schema name = %q, want %q", body.ResponseFormat.JSONSchema.Name, req.Schema.Name)
	}
	if body.ResponseFormat.JSONSchema.Strict {
		t.Error("strict schema mode requested")
	}
	if body.ResponseFormat.JSONSchema.Schema["type"] != "object" {
		t.Errorf("schema = %v", body.ResponseFormat.JSONSchema.Schema)
	}
}

func TestOpenAIProvider_Failures(t *testing.T) {
	apiError := func(status int, errType string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"type": errType, "message": "failed"},
			})
		}
	}

	tests := []struct {
		name    string
		handler http.HandlerFunc
		target  any
	}{
		{"length finish", chatCompletion(`{"title":"Gre`, "length"), new(*ErrMaxTokensExceeded)},
		{"content filter", chatCompletion("", "content_filter"), new(*ErrInvalidResponse)},
		{"empty text", chatCompletion("  ", "stop"), new(*ErrInvalidResponse)},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, `{"id":"chatcmpl-test","choices":[]}`)
			},
			target: new(*ErrInvalidResponse),
		},
		{"rate limit", apiError(http.StatusTooManyRequests, "tokens"), new(*ErrRateLimit)},
		{"server error", apiError(http.StatusInternalServerError, "server_error"), new(*ErrProviderUnavailable)},
		{
			name: "non-json gateway error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				io.WriteString(w, "<html>bad gateway</html>")
			},
			target: new(*ErrProviderUnavailable),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAIProvider(t, tt.handler)
			_, err := p.Generate(context.Background(), UserPrompt("test"))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.As(err, tt.target) {
				t.Fatalf("got %T (%v), want %T", err, err, tt.target)
			}
		})
	}
}

func TestOpenAIMessages(t *testing.T) {
	msgs := openaiMessages(Request{
		System: "be brief",
		Messages: []Message{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
		},
	})
	want := []string{openai.ChatMessageRoleSystem, openai.ChatMessageRoleUser, openai.ChatMessageRoleAssistant}
	if len(msgs) != len(want) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(want))
	}
	for i, role := range want {
		if msgs[i].Role != role {
			t.Errorf("message %d role = %q, want %q", i, msgs[i].Role, role)
		}
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{}); err == nil {
		t.Error("expected error without an API key")
	}

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4.1", BaseURL: "https://example.test/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4.1" {
		t.Errorf("ModelID = %q, want gpt-4.1", p.ModelID())
	}
}
