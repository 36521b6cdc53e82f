package llm

import "context"

type purposeKey struct{}

// WithPurpose labels the model calls made under ctx, e.g. "lesson-reading".
// The label ends up on the request event and in `fluentz llm stats`.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	purpose, _ := ctx.Value(purposeKey{}).(string)
	if purpose == "" {
		return "unknown"
	}
	return purpose
}
