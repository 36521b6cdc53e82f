package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/fluentz/internal/curriculum"
	"github.com/abhisek/fluentz/internal/performance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(context.Background(), Config{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func lessonResult(i int) performance.LessonResult {
	return performance.LessonResult{
		LessonID:      fmt.Sprintf("reading-beginner-%d", i),
		Skill:         curriculum.SkillReading,
		Level:         curriculum.LevelBeginner,
		Score:         float64(i % 10),
		MaxScore:      10,
		CompletedAt:   time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
		TimeSpentSecs: 300,
		Questions: []performance.QuestionResult{
			{QuestionID: "q1", Type: "mcq", Correct: true, Score: 10, MaxScore: 10, Topic: "inference"},
		},
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestOpen_RemoteDriverNeedsDSN(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "postgres"})
	assert.ErrorContains(t, err, "store.dsn is required")
}

func TestResolveDriver(t *testing.T) {
	tests := []struct {
		in, driver, dialect string
	}{
		{"", "sqlite", "sqlite3"},
		{"sqlite", "sqlite", "sqlite3"},
		{"postgres", "pgx", "postgres"},
		{"mysql", "mysql", "mysql"},
	}
	for _, tt := range tests {
		driver, dialectName, err := resolveDriver(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.driver, driver, tt.in)
		assert.Equal(t, tt.dialect, dialectName, tt.in)
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		require.NoError(t, s.DB().QueryRow("PRAGMA "+tt.pragma).Scan(&got), tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, table := range []string{lessonResultsTable, llmEventsTable} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestPerformanceLog_EmptyLog(t *testing.T) {
	s := openTestStore(t)

	results, err := s.PerformanceLog().Results(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPerformanceLog_AppendAndRead(t *testing.T) {
	s := openTestStore(t)
	log := s.PerformanceLog()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, log.Append(ctx, lessonResult(i)))
	}

	results, err := log.Results(ctx)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "reading-beginner-1", results[0].LessonID)
	assert.Equal(t, "reading-beginner-3", results[2].LessonID)
	assert.Equal(t, lessonResult(2).CompletedAt, results[1].CompletedAt.UTC())
	assert.Equal(t, int64(300), results[1].TimeSpentSecs)
	require.Len(t, results[1].Questions, 1)
	assert.Equal(t, "inference", results[1].Questions[0].Topic)
}

func TestPerformanceLog_CapDropsOldest(t *testing.T) {
	s := openTestStore(t)
	log := s.PerformanceLog()
	ctx := context.Background()

	for i := 0; i <= performance.MaxLogEntries; i++ {
		require.NoError(t, log.Append(ctx, lessonResult(i)))
	}

	n, err := log.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, performance.MaxLogEntries, n)

	results, err := log.Results(ctx)
	require.NoError(t, err)
	require.Len(t, results, performance.MaxLogEntries)
	assert.Equal(t, "reading-beginner-1", results[0].LessonID)
	assert.Equal(t, fmt.Sprintf("reading-beginner-%d", performance.MaxLogEntries), results[len(results)-1].LessonID)
	for i := 1; i < len(results); i++ {
		assert.True(t, results[i-1].CompletedAt.Before(results[i].CompletedAt), "order preserved at %d", i)
	}
}

func TestPerformanceLog_ConcurrentAppends(t *testing.T) {
	s := openTestStore(t)
	log := s.PerformanceLog()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- log.Append(ctx, lessonResult(i))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	n, err := log.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestPerformanceLog_CorruptPayload(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.DB().Exec(
		`INSERT INTO lesson_results (log_key, lesson_id, skill, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		performance.LogKey, "x", "reading", "{not json", 0,
	)
	require.NoError(t, err)

	_, err = s.PerformanceLog().Results(ctx)
	assert.ErrorIs(t, err, performance.ErrStorageRead)

	// Summaries recover from the unreadable log.
	p := performance.Summarize(ctx, s.PerformanceLog(), "", quietLogger())
	assert.Equal(t, 0, p.CompletedLessons)
}
