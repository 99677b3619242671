package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/cesargomez89/streamhub/internal/domain"
)

type SettingsRepo struct {
	db *DB
}

func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) Get(key string) (string, error) {
	var value string
	err := r.db.Get(&value, "SELECT value FROM settings WHERE key = ?", key)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SettingsRepo) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now())
	return err
}

func (r *SettingsRepo) Delete(key string) error {
	_, err := r.db.Exec("DELETE FROM settings WHERE key = ?", key)
	return err
}

// SaveSyncStatus records the outcome of the last sync run.
func (r *SettingsRepo) SaveSyncStatus(status domain.SyncStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal sync status: %w", err)
	}
	return r.Set(SettingLastSync, string(data))
}

// LastSyncStatus returns the last recorded run, or nil if none was recorded.
func (r *SettingsRepo) LastSyncStatus() (*domain.SyncStatus, error) {
	value, err := r.Get(SettingLastSync)
	if err != nil || value == "" {
		return nil, err
	}
	var status domain.SyncStatus
	if err := json.Unmarshal([]byte(value), &status); err != nil {
		return nil, fmt.Errorf("unmarshal sync status: %w", err)
	}
	return &status, nil
}

const (
	SettingLastSync = "last_sync"
)
