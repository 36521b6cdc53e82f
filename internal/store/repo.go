package store

import (
	"context"
	"time"
)

// QueryOpts narrows QueryLLMEvents. Zero values leave a filter off.
type QueryOpts struct {
	Limit      int
	Purpose    string
	FailedOnly bool

	// After and Before bound the event id, exclusive.
	After  int64
	Before int64

	// From and To bound the event time, inclusive.
	From time.Time
	To   time.Time
}

// LLMRequestEventData is what the llm logging decorator records per call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

type LLMRequestEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage is one row of a usage rollup. Exactly one of Purpose and Model
// is set, depending on the grouping.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo is the audit trail of model calls.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents lists events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns nil, nil for an unknown id.
	GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
