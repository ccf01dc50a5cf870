package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartcomfort/internal/models"
)

// MaxProfileNameLen is the capacity of the name field, one 16-character token block.
const MaxProfileNameLen = 16

type ProfileSQLite struct {
	db *sql.DB
}

func NewProfileSQLite(db *sql.DB) *ProfileSQLite {
	return &ProfileSQLite{db: db}
}

var _ ProfileRepo = (*ProfileSQLite)(nil)

const (
	upsertProfileSQL = `
		INSERT INTO profiles (uid, name, preferred_temp_c)
		VALUES (?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			name=excluded.name,
			preferred_temp_c=excluded.preferred_temp_c
	`
	selectProfileSQL  = `SELECT uid, name, preferred_temp_c FROM profiles WHERE uid = ?`
	selectProfilesSQL = `SELECT uid, name, preferred_temp_c FROM profiles ORDER BY uid ASC`
)

// Load fetches the profile of id. Returns (nil, nil) if the token is unknown.
func (r *ProfileSQLite) Load(ctx context.Context, id models.CredentialID) (*models.Profile, error) {
	row := r.db.QueryRowContext(ctx, selectProfileSQL, id.String())
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select profile %s: %w", id, err)
	}
	return p, nil
}

// Save inserts or updates a profile. Names longer than MaxProfileNameLen are truncated.
func (r *ProfileSQLite) Save(ctx context.Context, p models.Profile) error {
	_, err := r.db.ExecContext(ctx, upsertProfileSQL, p.CredentialID.String(), truncateName(p.Name), p.PreferredTempC)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.CredentialID, err)
	}
	return nil
}

// List returns all profiles ordered by identifier.
func (r *ProfileSQLite) List(ctx context.Context) ([]models.Profile, error) {
	rows, err := r.db.QueryContext(ctx, selectProfilesSQL)
	if err != nil {
		return nil, fmt.Errorf("select profiles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Profile, 0, 4)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var (
		uid string
		p   models.Profile
	)
	if err := row.Scan(&uid, &p.Name, &p.PreferredTempC); err != nil {
		return nil, err
	}
	id, err := models.ParseCredentialID(uid)
	if err != nil {
		return nil, err
	}
	p.CredentialID = id
	return &p, nil
}

func truncateName(name string) string {
	r := []rune(name)
	if len(r) <= MaxProfileNameLen {
		return name
	}
	return string(r[:MaxProfileNameLen])
}
