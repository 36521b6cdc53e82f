package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"entgo.io/ent/dialect"

	// MySQL driver, registered as "mysql".
	_ "github.com/go-sql-driver/mysql"
	// Postgres driver via pgx, registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO), registered as "sqlite".
	_ "modernc.org/sqlite"
)

// Config selects the database backing the store.
type Config struct {
	// Driver is one of "sqlite", "postgres" or "mysql".
	Driver string `mapstructure:"driver"`

	// DSN is the driver-specific connection string. For sqlite it falls
	// back to Path.
	DSN string `mapstructure:"dsn"`

	// Path is the sqlite database file. Empty means DefaultDBPath.
	Path string `mapstructure:"path"`
}

// Store holds the database handle and the SQL dialect its queries use.
type Store struct {
	db      *sql.DB
	dialect string

	appendMu sync.Mutex
}

// Open connects to the database described by cfg and creates the tables
// it needs.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driverName, dialectName, err := resolveDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if dialectName == dialect.SQLite && dsn == "" {
		dsn = cfg.Path
		if dsn == "" {
			if dsn, err = DefaultDBPath(); err != nil {
				return nil, err
			}
		}
	}
	if dsn == "" {
		return nil, fmt.Errorf("store.dsn is required for the %s driver", cfg.Driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dialectName == dialect.SQLite {
		// One connection keeps pragmas and in-memory databases consistent.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	s := &Store{db: db, dialect: dialectName}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return s, nil
}

// resolveDriver maps a configured driver name to the database/sql driver
// and the ent SQL dialect.
func resolveDriver(name string) (driverName, dialectName string, err error) {
	switch name {
	case "", "sqlite", "sqlite3":
		return "sqlite", dialect.SQLite, nil
	case "postgres", "postgresql", "pgx":
		return "pgx", dialect.Postgres, nil
	case "mysql":
		return "mysql", dialect.MySQL, nil
	}
	return "", "", fmt.Errorf("unsupported store driver: %q", name)
}

// Validate reports whether the configured driver is supported.
func (c Config) Validate() error {
	_, _, err := resolveDriver(c.Driver)
	return err
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// PerformanceLog returns the persisted lesson result log.
func (s *Store) PerformanceLog() *PerformanceLog {
	return newPerformanceLog(s)
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{store: s}
}

// applyPragmas configures SQLite for single-user use.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the sqlite file path in priority order:
// 1. $XDG_DATA_HOME/fluentz/fluentz.db
// 2. ~/.local/share/fluentz/fluentz.db
func DefaultDBPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "fluentz", "fluentz.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
