package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/abhisek/fluentz/internal/performance"
)

// PerformanceLog implements performance.Log on top of the lesson_results
// table. Every row under the fixed performance.LogKey holds one JSON
// encoded result; the auto-increment seq column keeps insertion order.
type PerformanceLog struct {
	store *Store
	key   string
	max   int
	now   func() time.Time
}

func newPerformanceLog(s *Store) *PerformanceLog {
	return &PerformanceLog{
		store: s,
		key:   performance.LogKey,
		max:   performance.MaxLogEntries,
		now:   time.Now,
	}
}

var _ performance.Log = (*PerformanceLog)(nil)

// Results returns the whole log, oldest first. Query or decode failures
// are reported as performance.ErrStorageRead.
func (l *PerformanceLog) Results(ctx context.Context) ([]performance.LessonResult, error) {
	query, args := entsql.Dialect(l.store.dialect).
		Select("payload").
		From(entsql.Table(lessonResultsTable)).
		Where(entsql.EQ("log_key", l.key)).
		OrderBy(entsql.Asc("seq")).
		Query()

	rows, err := l.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", performance.ErrStorageRead, err)
	}
	defer rows.Close()

	var results []performance.LessonResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", performance.ErrStorageRead, err)
		}
		var r performance.LessonResult
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("%w: decode: %w", performance.ErrStorageRead, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", performance.ErrStorageRead, err)
	}
	return results, nil
}

// Append adds result to the end of the log and drops the oldest rows
// beyond performance.MaxLogEntries.
func (l *PerformanceLog) Append(ctx context.Context, result performance.LessonResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode lesson result: %w", err)
	}

	// The store mutex serializes appends within the process; the
	// transaction makes insert and prune atomic in the database.
	l.store.appendMu.Lock()
	defer l.store.appendMu.Unlock()

	tx, err := l.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	insert, args := entsql.Dialect(l.store.dialect).
		Insert(lessonResultsTable).
		Columns("log_key", "lesson_id", "skill", "payload", "created_at").
		Values(l.key, result.LessonID, string(result.Skill), string(payload), l.now().UnixMilli()).
		Query()
	if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
		return fmt.Errorf("insert lesson result: %w", err)
	}

	if err := l.prune(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// prune deletes every row older than the newest l.max rows.
func (l *PerformanceLog) prune(ctx context.Context, tx *sql.Tx) error {
	b := entsql.Dialect(l.store.dialect)

	// Find the seq of the first row past the cap.
	query, args := b.Select("seq").
		From(entsql.Table(lessonResultsTable)).
		Where(entsql.EQ("log_key", l.key)).
		OrderBy(entsql.Desc("seq")).
		Limit(1).
		Offset(l.max).
		Query()

	var threshold int64
	err := tx.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if err == sql.ErrNoRows {
		return nil // fewer than max rows exist
	}
	if err != nil {
		return fmt.Errorf("query prune threshold: %w", err)
	}

	del, delArgs := b.Delete(lessonResultsTable).
		Where(entsql.And(
			entsql.EQ("log_key", l.key),
			entsql.LTE("seq", threshold),
		)).
		Query()
	if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("prune lesson results: %w", err)
	}
	return nil
}

// Count returns the number of rows in the log.
func (l *PerformanceLog) Count(ctx context.Context) (int, error) {
	query, args := entsql.Dialect(l.store.dialect).
		Select(entsql.Count("*")).
		From(entsql.Table(lessonResultsTable)).
		Where(entsql.EQ("log_key", l.key)).
		Query()

	var n int
	if err := l.store.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count lesson results: %w", err)
	}
	return n, nil
}
