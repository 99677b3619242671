package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cesargomez89/streamhub/internal/constants"
	"github.com/cesargomez89/streamhub/internal/domain"
)

// SaveProfile upserts the profile keyed by (url, username).
func (db *DB) SaveProfile(ctx context.Context, p *domain.Profile) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO profiles (url, username, password, server_info, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.URL, p.Username, p.Password, p.ServerInfo, time.Now())
	if err != nil {
		return &domain.StorageError{Table: constants.ProfilesTable, Err: err}
	}
	return nil
}

// GetProfile returns the most recently saved profile, or nil when none exists.
func (db *DB) GetProfile(ctx context.Context) (*domain.Profile, error) {
	var p domain.Profile
	err := db.GetContext(ctx, &p,
		`SELECT url, username, password, server_info FROM profiles ORDER BY updated_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}
