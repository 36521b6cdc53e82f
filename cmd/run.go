package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/fluentz/internal/lessons"
	"github.com/abhisek/fluentz/internal/llm"
	"github.com/abhisek/fluentz/internal/store"
)

// openStore opens the configured database.
func openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// newPipeline builds the model provider and the lesson pipeline on top
// of it. Model calls are recorded in the store's event log.
func newPipeline(ctx context.Context, st *store.Store) (*lessons.Pipeline, error) {
	if err := cfg.LLM.Validate(); err != nil {
		return nil, fmt.Errorf("model provider not configured: %w", err)
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), logger)
	if err != nil {
		return nil, err
	}

	gen := lessons.NewGenerator(provider, cfg.Lessons)
	return lessons.NewPipeline(gen, cfg.Lessons.Pacing, logger), nil
}
