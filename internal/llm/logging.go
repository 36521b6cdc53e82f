package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/fluentz/internal/store"
	"github.com/sirupsen/logrus"
)

// LoggingProvider records each call as an llm_request event and writes one
// log line per call.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	logger   logrus.FieldLogger
	now      func() time.Time
}

// WithLogging wraps p. provider is the vendor name stored on the event.
// A nil events repo keeps the log line and skips persistence.
func WithLogging(p Provider, provider string, events store.EventRepo, logger logrus.FieldLogger) Provider {
	return &LoggingProvider{inner: p, provider: provider, events: events, logger: logger, now: time.Now}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	started := l.now()
	resp, err := l.inner.Generate(ctx, req)

	ev := l.event(ctx, req, resp, err)
	ev.LatencyMs = l.now().Sub(started).Milliseconds()

	log := l.logger.WithFields(logrus.Fields{
		"provider":      ev.Provider,
		"model":         ev.Model,
		"purpose":       ev.Purpose,
		"latency_ms":    ev.LatencyMs,
		"input_tokens":  ev.InputTokens,
		"output_tokens": ev.OutputTokens,
	})
	if err != nil {
		log.WithError(err).Warn("model request failed")
	} else {
		log.Debug("model request completed")
	}

	if l.events != nil {
		if werr := l.events.AppendLLMRequest(ctx, ev); werr != nil {
			l.logger.WithError(werr).Warn("could not record model request")
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *LoggingProvider) event(ctx context.Context, req Request, resp *Response, err error) store.LLMRequestEventData {
	ev := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		Success:     err == nil,
		RequestBody: renderRequest(req),
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		ev.ResponseBody = PartialContent(err)
	}
	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = resp.Text
		if resp.Model != "" {
			ev.Model = resp.Model
		}
	}
	return ev
}

// renderRequest flattens a request into the text shown by `llm view`.
func renderRequest(req Request) string {
	var sb strings.Builder
	section := func(header, body string) {
		fmt.Fprintf(&sb, "[%s]\n%s\n\n", header, body)
	}

	if req.System != "" {
		section("system", req.System)
	}
	for _, m := range req.Messages {
		section(string(m.Role), m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			section("schema: "+req.Schema.Name, string(def))
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}
