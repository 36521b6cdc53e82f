package lessons

import (
	"errors"
	"fmt"

	"github.com/abhisek/fluentz/internal/curriculum"
	"github.com/abhisek/fluentz/internal/llm"
)

var (
	// ErrGenerationFailed is the single error surfaced to callers for any
	// failed lesson generation. The failure kind is wrapped alongside it.
	ErrGenerationFailed = errors.New("failed to generate lesson content")

	// ErrTransportFailure means the model API call itself failed.
	ErrTransportFailure = errors.New("model transport failure")

	// ErrInvalidResponseFormat means no JSON object was found in the
	// model output.
	ErrInvalidResponseFormat = errors.New("no JSON object in model response")

	// ErrMalformedPayload means a JSON object was found but did not parse
	// or did not match the expected lesson shape.
	ErrMalformedPayload = errors.New("malformed lesson payload")
)

// GenerationError reports a failed generation for one lesson index.
// It matches both ErrGenerationFailed and its failure kind with errors.Is.
type GenerationError struct {
	Skill        curriculum.Skill
	Level        curriculum.Level
	LessonNumber int
	Err          error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%v (%s/%s lesson %d): %v", ErrGenerationFailed, e.Skill, e.Level, e.LessonNumber, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Err}
}

// Kind returns the failure kind carried by err: one of
// ErrTransportFailure, ErrInvalidResponseFormat or ErrMalformedPayload,
// or nil if err carries none of them.
func Kind(err error) error {
	for _, kind := range []error{ErrTransportFailure, ErrInvalidResponseFormat, ErrMalformedPayload} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// classifyProviderError maps a provider error onto the failure kinds.
func classifyProviderError(err error) error {
	var invalid *llm.ErrInvalidResponse
	if errors.As(err, &invalid) {
		if invalid.Content == "" {
			return fmt.Errorf("%w: %w", ErrInvalidResponseFormat, err)
		}
		return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	// A truncated response is an object literal that never closes.
	var truncated *llm.ErrMaxTokensExceeded
	if errors.As(err, &truncated) {
		return fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	// Rate limits, unavailable providers, network errors and deadlines.
	return fmt.Errorf("%w: %w", ErrTransportFailure, err)
}
