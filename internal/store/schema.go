package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
)

const (
	lessonResultsTable = "lesson_results"
	llmEventsTable     = "llm_request_events"
)

// ddl holds the CREATE statements for one dialect.
type ddl struct {
	lessonResults string
	llmEvents     string
	indexes       []string
}

var schemas = map[string]ddl{
	dialect.SQLite: {
		lessonResults: `CREATE TABLE IF NOT EXISTS lesson_results (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			log_key TEXT NOT NULL,
			lesson_id TEXT NOT NULL,
			skill TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		llmEvents: `CREATE TABLE IF NOT EXISTS llm_request_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at INTEGER NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			purpose TEXT NOT NULL,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			success INTEGER NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			request_body TEXT NOT NULL DEFAULT '',
			response_body TEXT NOT NULL DEFAULT ''
		)`,
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS lesson_results_log_key_seq ON lesson_results (log_key, seq)`,
		},
	},
	dialect.Postgres: {
		lessonResults: `CREATE TABLE IF NOT EXISTS lesson_results (
			seq BIGSERIAL PRIMARY KEY,
			log_key VARCHAR(64) NOT NULL,
			lesson_id VARCHAR(255) NOT NULL,
			skill VARCHAR(32) NOT NULL,
			payload TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		llmEvents: `CREATE TABLE IF NOT EXISTS llm_request_events (
			id BIGSERIAL PRIMARY KEY,
			created_at BIGINT NOT NULL,
			provider VARCHAR(32) NOT NULL,
			model VARCHAR(255) NOT NULL,
			purpose VARCHAR(64) NOT NULL,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms BIGINT NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			request_body TEXT NOT NULL DEFAULT '',
			response_body TEXT NOT NULL DEFAULT ''
		)`,
		indexes: []string{
			`CREATE INDEX IF NOT EXISTS lesson_results_log_key_seq ON lesson_results (log_key, seq)`,
		},
	},
	dialect.MySQL: {
		lessonResults: `CREATE TABLE IF NOT EXISTS lesson_results (
			seq BIGINT AUTO_INCREMENT PRIMARY KEY,
			log_key VARCHAR(64) NOT NULL,
			lesson_id VARCHAR(255) NOT NULL,
			skill VARCHAR(32) NOT NULL,
			payload LONGTEXT NOT NULL,
			created_at BIGINT NOT NULL,
			INDEX lesson_results_log_key_seq (log_key, seq)
		)`,
		llmEvents: `CREATE TABLE IF NOT EXISTS llm_request_events (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			created_at BIGINT NOT NULL,
			provider VARCHAR(32) NOT NULL,
			model VARCHAR(255) NOT NULL,
			purpose VARCHAR(64) NOT NULL,
			input_tokens INT NOT NULL DEFAULT 0,
			output_tokens INT NOT NULL DEFAULT 0,
			latency_ms BIGINT NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL,
			error_message TEXT NOT NULL,
			request_body LONGTEXT NOT NULL,
			response_body LONGTEXT NOT NULL
		)`,
	},
}

// migrate creates the store tables when they do not exist yet.
func (s *Store) migrate(ctx context.Context) error {
	d, ok := schemas[s.dialect]
	if !ok {
		return fmt.Errorf("no schema for dialect %q", s.dialect)
	}

	stmts := append([]string{d.lessonResults, d.llmEvents}, d.indexes...)
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
