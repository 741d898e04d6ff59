package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/kathputli/internal/environment"
)

// Setting keys.
const (
	KeyEnvironment   = "environment"
	KeyActiveProfile = "active_profile"
)

// SettingsRepository reads and writes key-value settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value stored under key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Delete removes key.
func (r *SettingsRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return rowsChanged(result)
}

// LoadEnvironment returns the saved environment state, or fallback if none
// was saved.
func (r *SettingsRepository) LoadEnvironment(fallback environment.State) (environment.State, error) {
	raw, err := r.Get(KeyEnvironment)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}

	var s environment.State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return fallback, fmt.Errorf("decode environment: %w", err)
	}
	return s.Normalize(), nil
}

// SaveEnvironment persists s.
func (r *SettingsRepository) SaveEnvironment(s environment.State) error {
	data, err := json.Marshal(s.Normalize())
	if err != nil {
		return err
	}
	return r.Set(KeyEnvironment, string(data))
}
