package performance

import (
	"context"
	"errors"
	"sync"

	"github.com/abhisek/fluentz/internal/curriculum"
	"github.com/sirupsen/logrus"
)

const (
	// LogKey is the fixed storage key of the persisted result log.
	LogKey = "lesson_results"

	// MaxLogEntries caps the persisted log; the oldest entries are dropped
	// first once the cap is exceeded.
	MaxLogEntries = 100
)

// ErrStorageRead indicates the persisted log could not be read or decoded.
// Readers recover from it by treating the log as empty.
var ErrStorageRead = errors.New("performance log unreadable")

// Log is the persisted, append-only, ordered log of lesson results.
// Implementations serialize concurrent appends.
type Log interface {
	// Results returns the whole log, oldest first.
	Results(ctx context.Context) ([]LessonResult, error)

	// Append adds a result to the end of the log, enforcing MaxLogEntries.
	Append(ctx context.Context, result LessonResult) error
}

// Capped returns the newest max entries of results, preserving order.
func Capped(results []LessonResult, max int) []LessonResult {
	if max <= 0 || len(results) <= max {
		return results
	}
	return results[len(results)-max:]
}

// Snapshot reads the log. Read failures are logged and yield an empty log.
func Snapshot(ctx context.Context, log Log, logger logrus.FieldLogger) []LessonResult {
	results, err := log.Results(ctx)
	if err != nil {
		logger.WithError(err).Warn("performance log unreadable, treating as empty")
		return nil
	}
	return results
}

// Summarize reads a snapshot of the log and computes the summary for skill
// (empty for all skills).
func Summarize(ctx context.Context, log Log, skill curriculum.Skill, logger logrus.FieldLogger) UserPerformance {
	return Compute(Snapshot(ctx, log, logger), skill)
}

// MemoryLog is an in-process Log.
type MemoryLog struct {
	mu      sync.Mutex
	results []LessonResult
}

// NewMemoryLog creates a MemoryLog seeded with results, capped to
// MaxLogEntries.
func NewMemoryLog(results ...LessonResult) *MemoryLog {
	seed := Capped(results, MaxLogEntries)
	return &MemoryLog{results: append([]LessonResult{}, seed...)}
}

// Results returns a copy of the log.
func (m *MemoryLog) Results(_ context.Context) ([]LessonResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LessonResult{}, m.results...), nil
}

// Append adds result and drops the oldest entries beyond MaxLogEntries.
func (m *MemoryLog) Append(_ context.Context, result LessonResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
	if len(m.results) > MaxLogEntries {
		m.results = append([]LessonResult{}, Capped(m.results, MaxLogEntries)...)
	}
	return nil
}
