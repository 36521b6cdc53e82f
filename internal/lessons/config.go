package lessons

import "time"

// DefaultLanguage is the language taught when none is configured.
const DefaultLanguage = "English"

// Config holds lesson generation settings.
type Config struct {
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`

	// Pacing is the delay between consecutive calls of a sequence.
	Pacing time.Duration `mapstructure:"pacing"`

	// UniqueIDs appends the generation time in unix milliseconds to
	// lesson ids so repeated generations of one index do not collide.
	UniqueIDs bool `mapstructure:"unique_ids"`

	// NativeSchema also passes the lesson schema to the provider's
	// structured output mechanism.
	NativeSchema bool `mapstructure:"native_schema"`

	Language string `mapstructure:"language"`
}

// DefaultConfig returns sensible defaults for lesson generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.7,
		Pacing:      500 * time.Millisecond,
		Language:    DefaultLanguage,
	}
}
