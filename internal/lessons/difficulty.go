package lessons

import "github.com/abhisek/fluentz/internal/performance"

// Difficulty is the qualitative adjustment requested from the model.
type Difficulty int

const (
	DifficultyNoHistory Difficulty = iota
	DifficultyIncrease
	DifficultyDecrease
	DifficultyMildIncrease
	DifficultyStandard
)

const (
	// IncreaseThreshold: an improving learner at or above this average
	// gets harder material.
	IncreaseThreshold = 85.0

	// DecreaseThreshold: learners at or below this average get easier
	// material.
	DecreaseThreshold = 60.0

	// EngageThreshold: learners at or above this average get a slightly
	// harder lesson to stay engaged.
	EngageThreshold = 75.0
)

// Adapt picks the difficulty for a learner. Rules are evaluated in order
// and the first match wins.
func Adapt(perf *performance.UserPerformance) Difficulty {
	if !perf.HasHistory() {
		return DifficultyNoHistory
	}

	trend := perf.Trend()
	switch {
	case perf.AverageScore >= IncreaseThreshold && trend == performance.TrendImproving:
		return DifficultyIncrease
	case perf.AverageScore <= DecreaseThreshold || trend == performance.TrendDeclining:
		return DifficultyDecrease
	case perf.AverageScore >= EngageThreshold:
		return DifficultyMildIncrease
	}
	return DifficultyStandard
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyNoHistory:
		return "no-history"
	case DifficultyIncrease:
		return "increase"
	case DifficultyDecrease:
		return "decrease"
	case DifficultyMildIncrease:
		return "mild-increase"
	}
	return "standard"
}

// Instruction is the sentence sent to the model for this difficulty.
func (d Difficulty) Instruction() string {
	switch d {
	case DifficultyNoHistory:
		return "This is a new learner with no history. Use standard difficulty for the level."
	case DifficultyIncrease:
		return "The learner is excelling and improving. Increase the difficulty with more challenging vocabulary and structures."
	case DifficultyDecrease:
		return "The learner is struggling. Reduce the difficulty, use simpler language and add supportive hints in the explanations."
	case DifficultyMildIncrease:
		return "The learner is doing well. Slightly increase the challenge to keep them engaged."
	}
	return "Maintain standard difficulty for the level."
}
