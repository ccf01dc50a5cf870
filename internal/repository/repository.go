package repository

import (
	"context"
	"database/sql"

	"smartcomfort/internal/models"
)

// SecretRepo stores named secret hashes (the keypad access code).
type SecretRepo interface {
	Get(ctx context.Context, name string) (string, error)
	Put(ctx context.Context, name, hash string) error
}

// ProfileRepo stores the profiles of known access tokens.
type ProfileRepo interface {
	Load(ctx context.Context, id models.CredentialID) (*models.Profile, error)
	Save(ctx context.Context, p models.Profile) error
	List(ctx context.Context) ([]models.Profile, error)
}

type Repository struct {
	SecretRepo  SecretRepo
	ProfileRepo ProfileRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		SecretRepo:  NewSecretSQLite(db),
		ProfileRepo: NewProfileSQLite(db),
	}
}
