package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// retryClass says how a failed call may be repeated.
type retryClass int

const (
	retryNever retryClass = iota
	retryOnce
	retryAlways
)

func classifyRetry(err error) retryClass {
	var (
		maxTok *ErrMaxTokensExceeded
		inv    *ErrInvalidResponse
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retryNever
	case errors.As(err, &maxTok):
		// A bigger budget is needed, asking again will not help.
		return retryNever
	case errors.As(err, &inv):
		return retryOnce
	default:
		return retryAlways
	}
}

type retryProvider struct {
	inner Provider
	cfg   RetryConfig
	sleep func(context.Context, time.Duration) error
}

// WithRetry repeats transient failures of p with exponential backoff.
// Malformed output is repeated at most once. With MaxAttempts <= 1, p is
// returned as is.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts <= 1 {
		return p
	}
	return &retryProvider{inner: p, cfg: cfg, sleep: waitContext}
}

func (r *retryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	retriedInvalid := false
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		switch classifyRetry(err) {
		case retryNever:
			return nil, err
		case retryOnce:
			if retriedInvalid {
				return nil, err
			}
			retriedInvalid = true
		}
		if attempt >= r.cfg.MaxAttempts {
			return nil, err
		}

		if werr := r.sleep(ctx, r.delay(attempt, err)); werr != nil {
			return nil, werr
		}
	}
}

func (r *retryProvider) ModelID() string { return r.inner.ModelID() }

// delay is the pause before attempt+1. A server supplied Retry-After wins
// over the computed backoff but is still capped at MaxWait.
func (r *retryProvider) delay(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return min(rl.RetryAfter, r.cfg.MaxWait)
	}

	base := float64(r.cfg.InitialWait) * math.Pow(r.cfg.Multiplier, float64(attempt-1))
	base = math.Min(base, float64(r.cfg.MaxWait))
	// ±20% jitter
	d := time.Duration(base * (0.8 + 0.4*rand.Float64()))
	return max(d, 0)
}

func waitContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
