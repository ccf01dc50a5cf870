package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"smartcomfort/internal/logger"
	"smartcomfort/internal/models"
	"smartcomfort/internal/repository"
)

const (
	// CodeLength is the number of keypad digits in an access code.
	CodeLength = 4
	// keypadSecret is the secret store key of the access code hash.
	keypadSecret = "keypad"
)

var ErrInvalidCode = errors.New("access code must be exactly 4 digits")

// AccessService checks keypad codes and tokens against the secret and profile stores.
type AccessService struct {
	secrets  repository.SecretRepo
	profiles repository.ProfileRepo
	log      *logger.Logger
	cost     int
}

func NewAccessService(secrets repository.SecretRepo, profiles repository.ProfileRepo, log *logger.Logger) *AccessService {
	return &AccessService{
		secrets:  secrets,
		profiles: profiles,
		log:      log.Named("access"),
		cost:     bcrypt.DefaultCost,
	}
}

// ValidateCode compares a keypad entry with the stored code hash.
func (s *AccessService) ValidateCode(ctx context.Context, code string) models.AccessResult {
	if !validCode(code) {
		return models.AccessRejected
	}
	hash, err := s.secrets.Get(ctx, keypadSecret)
	if err != nil {
		s.log.Errorw("load access code", "error", err)
		return models.AccessRejected
	}
	if hash == "" {
		s.log.Warnw("no access code provisioned")
		return models.AccessRejected
	}
	if err := verifyPassword(hash, code); err != nil {
		return models.AccessRejected
	}
	return models.AccessAccepted
}

// ValidateToken looks up the profile of a token. Unknown tokens are rejected with a nil profile.
func (s *AccessService) ValidateToken(ctx context.Context, id models.CredentialID) (models.AccessResult, *models.Profile) {
	p, err := s.profiles.Load(ctx, id)
	if err != nil {
		s.log.Errorw("load profile", "uid", id.String(), "error", err)
		return models.AccessRejected, nil
	}
	if p == nil {
		return models.AccessRejected, nil
	}
	return models.AccessAccepted, p
}

// Provision stores the code hash on first boot and upserts the given profiles.
// An existing code is never overwritten.
func (s *AccessService) Provision(ctx context.Context, code string, profiles []models.Profile) error {
	if !validCode(code) {
		return ErrInvalidCode
	}
	existing, err := s.secrets.Get(ctx, keypadSecret)
	if err != nil {
		return fmt.Errorf("load access code: %w", err)
	}
	if existing == "" {
		hash, err := hashPassword(code, s.cost)
		if err != nil {
			return err
		}
		if err := s.secrets.Put(ctx, keypadSecret, hash); err != nil {
			return fmt.Errorf("store access code: %w", err)
		}
		s.log.Infow("access code provisioned")
	}
	for _, p := range profiles {
		if err := s.profiles.Save(ctx, p); err != nil {
			return fmt.Errorf("save profile %s: %w", p.CredentialID, err)
		}
	}
	stored, err := s.profiles.List(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}
	s.log.Infow("profiles provisioned", "configured", len(profiles), "stored", len(stored))
	return nil
}

func validCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func hashPassword(password string, cost int) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
