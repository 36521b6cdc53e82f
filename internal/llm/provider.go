package llm

import "context"

// Provider generates text from one vendor model. Implementations are safe
// for concurrent use.
type Provider interface {
	// Generate runs req and returns the model's answer. When req has a
	// Schema the answer is also checked against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
}

type Request struct {
	System   string
	Messages []Message

	// Schema turns on the vendor's structured output mode. Without it the
	// model answers in free text.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// UserPrompt is a request made of a single user message.
func UserPrompt(prompt string) Request {
	return Request{Messages: []Message{{Role: RoleUser, Content: prompt}}}
}

// Schema is a JSON Schema document plus the name and description some
// vendors require alongside it. Name doubles as the compile cache key.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	// Text is the answer as returned. Without a Schema it may wrap the
	// JSON object in prose or code fences.
	Text  string
	Usage Usage

	// Model is the id that served the call, which may be a dated
	// snapshot of the configured one.
	Model string

	// StopReason is "end" or "max_tokens".
	StopReason string
}

// Usage is the token count of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel maps a friendly model name to a provider model ID. Names
// not in models are used as given.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
