package store

import (
	"context"
	"database/sql"
	"time"
)

// SQLiteCache adapts the cache table to the Cache interface.
type SQLiteCache struct {
	db *DB
}

func NewSQLiteCache(db *DB) *SQLiteCache {
	return &SQLiteCache{db: db}
}

func (c *SQLiteCache) GetCache(ctx context.Context, key string) ([]byte, error) {
	return c.db.GetCache(ctx, key)
}

func (c *SQLiteCache) SetCache(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.db.SetCache(ctx, key, data, ttl)
}

func (c *SQLiteCache) ClearCache(ctx context.Context) error {
	return c.db.ClearCache(ctx)
}

func (db *DB) GetCache(ctx context.Context, key string) ([]byte, error) {
	type cacheRow struct {
		ExpiresAt sql.NullTime `db:"expires_at"`
		Data      []byte       `db:"data"`
	}

	var row cacheRow
	err := db.GetContext(ctx, &row, "SELECT data, expires_at FROM cache WHERE key = ?", key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if row.ExpiresAt.Valid && time.Now().After(row.ExpiresAt.Time) {
		_, _ = db.ExecContext(ctx, "DELETE FROM cache WHERE key = ?", key)
		return nil, nil
	}

	return row.Data, nil
}

func (db *DB) SetCache(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO cache (key, data, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at
	`, key, data, expiresAt)
	return err
}

func (db *DB) ClearCache(ctx context.Context) error {
	_, err := db.ExecContext(ctx, "DELETE FROM cache")
	return err
}
