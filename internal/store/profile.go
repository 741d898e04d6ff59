package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/kathputli/internal/puppet"
	"github.com/ayusman/kathputli/internal/rig"
)

// Profile is a saved calibration: rig offsets and clamps plus renderer layout.
type Profile struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Rig       rig.Config    `json:"rig"`
	Render    puppet.Config `json:"render"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ProfileRepository provides CRUD operations for profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

const profileColumns = `id, name, rig, render, created_at, updated_at`

// Create inserts p, assigning an ID if it has none.
func (r *ProfileRepository) Create(p *Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	rigJSON, renderJSON, err := encodeProfile(p)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, rigJSON, renderJSON, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	return scanProfile(r.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
}

// GetByName retrieves a profile by its name.
func (r *ProfileRepository) GetByName(name string) (*Profile, error) {
	return scanProfile(r.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE name = ?`, name))
}

// List returns every profile, newest first.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(`SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Update overwrites an existing profile.
func (r *ProfileRepository) Update(p *Profile) error {
	p.UpdatedAt = time.Now()

	rigJSON, renderJSON, err := encodeProfile(p)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(
		`UPDATE profiles SET name = ?, rig = ?, render = ?, updated_at = ? WHERE id = ?`,
		p.Name, rigJSON, renderJSON, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	return rowsChanged(result)
}

// Delete removes a profile by ID.
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return rowsChanged(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	p := &Profile{}
	var rigJSON, renderJSON string

	err := row.Scan(&p.ID, &p.Name, &rigJSON, &renderJSON, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal([]byte(rigJSON), &p.Rig); err != nil {
		return nil, fmt.Errorf("decode rig of profile %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(renderJSON), &p.Render); err != nil {
		return nil, fmt.Errorf("decode render of profile %s: %w", p.ID, err)
	}
	return p, nil
}

func encodeProfile(p *Profile) (string, string, error) {
	rigJSON, err := json.Marshal(p.Rig)
	if err != nil {
		return "", "", fmt.Errorf("encode rig: %w", err)
	}
	renderJSON, err := json.Marshal(p.Render)
	if err != nil {
		return "", "", fmt.Errorf("encode render: %w", err)
	}
	return string(rigJSON), string(renderJSON), nil
}
