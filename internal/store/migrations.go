package store

import "fmt"

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Calibration profiles: a named rig + render configuration, stored as JSON.
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			rig TEXT NOT NULL DEFAULT '{}',
			render TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - key-value pairs such as the environment state
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_profiles_name ON profiles(name)`,
	}

	for i, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	return nil
}
