package repositories

import (
	"database/sql"
	"fmt"
	"strconv"
)

// SettingRepository persists runtime-editable key-value settings.
//
// Settings override static config defaults: the effective value of a key is
// the stored row if present, otherwise the caller's fallback.
type SettingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new [SettingRepository] with the given database connection
func NewSettingRepository(db *sql.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns the stored value for key, or ok=false when the key is unset.
func (r *SettingRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes a setting, replacing any existing value.
func (r *SettingRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// List returns all settings ordered by key.
func (r *SettingRepository) List() (map[string]string, error) {
	rows, err := r.db.Query("SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return settings, nil
}

// EffectiveBool resolves a boolean setting with the store winning over the
// static fallback. Unparseable stored values fall back as well.
func (r *SettingRepository) EffectiveBool(key string, fallback bool) bool {
	value, ok, err := r.Get(key)
	if err != nil || !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
