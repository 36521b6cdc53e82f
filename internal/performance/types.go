package performance

import (
	"time"

	"github.com/abhisek/fluentz/internal/curriculum"
)

// QuestionResult is one answered question inside a LessonResult.
type QuestionResult struct {
	QuestionID string  `json:"questionId"`
	Type       string  `json:"type"`
	Correct    bool    `json:"correct"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"maxScore"`

	// Topic is optional; analytics fall back to Type when it is empty.
	Topic string `json:"topic,omitempty"`
}

// TopicKey returns the topic tag used for aggregation.
func (q QuestionResult) TopicKey() string {
	if q.Topic != "" {
		return q.Topic
	}
	return q.Type
}

// Percentage returns the question score as a percentage of its max score.
// Questions without a max score count as 100 when correct and 0 otherwise.
func (q QuestionResult) Percentage() float64 {
	if q.MaxScore <= 0 {
		if q.Correct {
			return 100
		}
		return 0
	}
	return clampPercent(q.Score / q.MaxScore * 100)
}

// LessonResult is one completed lesson attempt. Results are immutable once
// appended to a Log.
type LessonResult struct {
	LessonID      string           `json:"lessonId"`
	Skill         curriculum.Skill `json:"skill"`
	Level         curriculum.Level `json:"level"`
	Score         float64          `json:"score"`
	MaxScore      float64          `json:"maxScore"`
	CompletedAt   time.Time        `json:"completedAt"`
	TimeSpentSecs int64            `json:"timeSpent"` // elapsed seconds
	Questions     []QuestionResult `json:"questions"`
}

// Percentage returns score/maxScore as a percentage in [0, 100].
func (r LessonResult) Percentage() float64 {
	if r.MaxScore <= 0 {
		return 0
	}
	return clampPercent(r.Score / r.MaxScore * 100)
}

// Trend classifies recent performance relative to prior performance.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// SkillPerformance summarizes all results for one skill.
type SkillPerformance struct {
	AverageScore     float64   `json:"averageScore"`
	CompletedLessons int       `json:"completedLessons"`
	LastCompleted    time.Time `json:"lastCompleted"`

	// TopicScores keeps every per-question percentage, keyed by topic.
	TopicScores map[string][]float64 `json:"topicScores"`
}

// UserPerformance is a summary derived from a result log. It is recomputed
// on every query and never persisted.
type UserPerformance struct {
	AverageScore     float64                               `json:"averageScore"`
	CompletedLessons int                                   `json:"completedLessons"`
	WeakAreas        []string                              `json:"weakAreas"`
	StrongAreas      []string                              `json:"strongAreas"`
	RecentScores     []float64                             `json:"recentScores"`
	SkillBreakdown   map[curriculum.Skill]SkillPerformance `json:"skillBreakdown"`
}

// Trend classifies the summary's recent scores.
func (p *UserPerformance) Trend() Trend {
	if p == nil {
		return TrendStable
	}
	return ClassifyTrend(p.RecentScores)
}

// HasHistory reports whether the summary covers at least one lesson.
func (p *UserPerformance) HasHistory() bool {
	return p != nil && p.CompletedLessons > 0
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
