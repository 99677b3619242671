// Package store is the local SQLite mirror of the remote catalog.
package store

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/cesargomez89/streamhub/internal/constants"
)

// DB is the catalog store handle. One DB is owned per session and passed
// explicitly to its users.
type DB struct {
	*sqlx.DB
	logger    *slog.Logger
	onChunk   func(table string, rows int)
	chunkSize int
}

// Option configures a DB.
type Option func(*DB)

// WithChunkSize sets the number of rows written per batch statement.
func WithChunkSize(n int) Option {
	return func(db *DB) {
		if n > 0 {
			db.chunkSize = n
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) {
		db.logger = l
	}
}

// WithChunkHook registers fn to be called after every committed batch statement.
func WithChunkHook(fn func(table string, rows int)) Option {
	return func(db *DB) {
		db.onChunk = fn
	}
}

// NewSQLiteDB opens the database at dsn and applies migrations.
func NewSQLiteDB(dsn string, opts ...Option) (*DB, error) {
	sqlDB, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	// Set pragmas for better concurrency
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA busy_timeout=30000"); err != nil {
		sqlDB.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if err := RunMigrations(sqlDB.DB); err != nil {
		sqlDB.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return New(sqlDB, opts...), nil
}

// New wraps an already opened handle without running migrations.
func New(sqlDB *sqlx.DB, opts ...Option) *DB {
	db := &DB{
		DB:        sqlDB,
		chunkSize: constants.DefaultChunkSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(db)
	}
	db.logger = db.logger.With("component", "store")
	return db
}

func (db *DB) Close() error {
	return db.DB.Close()
}
