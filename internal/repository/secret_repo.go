package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SecretSQLite struct {
	db *sql.DB
}

func NewSecretSQLite(db *sql.DB) *SecretSQLite {
	return &SecretSQLite{db: db}
}

// Ensure implementation of SecretRepo interface at compile time.
var _ SecretRepo = (*SecretSQLite)(nil)

const (
	upsertSecretSQL = `
		INSERT INTO access_secrets (name, hash, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			hash=excluded.hash,
			updated_at=excluded.updated_at
	`
	selectSecretSQL = `SELECT hash FROM access_secrets WHERE name = ?`
)

// Get returns the stored hash for name, or "" when none is stored.
func (r *SecretSQLite) Get(ctx context.Context, name string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, selectSecretSQL, name).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("select secret %q: %w", name, err)
	}
	return hash, nil
}

// Put inserts or replaces the hash for name.
func (r *SecretSQLite) Put(ctx context.Context, name, hash string) error {
	if _, err := r.db.ExecContext(ctx, upsertSecretSQL, name, hash, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert secret %q: %w", name, err)
	}
	return nil
}
