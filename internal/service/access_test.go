package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"smartcomfort/internal/logger"
	"smartcomfort/internal/models"
)

// mockSecretRepo is an in-memory repository.SecretRepo that can be told to fail.
type mockSecretRepo struct {
	hashes map[string]string
	getErr error
	putErr error

	putCalls []string
}

func (m *mockSecretRepo) Get(_ context.Context, name string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.hashes[name], nil
}

func (m *mockSecretRepo) Put(_ context.Context, name, hash string) error {
	m.putCalls = append(m.putCalls, name)
	if m.putErr != nil {
		return m.putErr
	}
	if m.hashes == nil {
		m.hashes = make(map[string]string)
	}
	m.hashes[name] = hash
	return nil
}

// mockProfileRepo is an in-memory repository.ProfileRepo.
type mockProfileRepo struct {
	byID    map[models.CredentialID]models.Profile
	loadErr error
	saveErr error
	listErr error

	listCalls int
}

func (m *mockProfileRepo) Load(_ context.Context, id models.CredentialID) (*models.Profile, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockProfileRepo) Save(_ context.Context, p models.Profile) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.byID == nil {
		m.byID = make(map[models.CredentialID]models.Profile)
	}
	m.byID[p.CredentialID] = p
	return nil
}

func (m *mockProfileRepo) List(context.Context) ([]models.Profile, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Profile, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, nil
}

func newTestAccess(t *testing.T) (*AccessService, *mockSecretRepo, *mockProfileRepo) {
	t.Helper()
	secrets := &mockSecretRepo{}
	profiles := &mockProfileRepo{}
	svc := NewAccessService(secrets, profiles, logger.NewNop())
	svc.cost = bcrypt.MinCost
	return svc, secrets, profiles
}

func TestAccessService_ProvisionAndValidateCode(t *testing.T) {
	ctx := context.Background()
	svc, secrets, _ := newTestAccess(t)

	require.NoError(t, svc.Provision(ctx, "1234", nil))
	require.Len(t, secrets.putCalls, 1)
	assert.NotEqual(t, "1234", secrets.hashes[keypadSecret], "code must be stored hashed")
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(secrets.hashes[keypadSecret]), []byte("1234")))

	tests := []struct {
		code string
		want models.AccessResult
	}{
		{"1234", models.AccessAccepted},
		{"1235", models.AccessRejected},
		{"123", models.AccessRejected},
		{"12345", models.AccessRejected},
		{"12a4", models.AccessRejected},
		{"", models.AccessRejected},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.ValidateCode(ctx, tt.code))
		})
	}
}

func TestAccessService_ProvisionKeepsExistingCode(t *testing.T) {
	ctx := context.Background()
	svc, secrets, _ := newTestAccess(t)

	require.NoError(t, svc.Provision(ctx, "1234", nil))
	require.NoError(t, svc.Provision(ctx, "9999", nil))

	assert.Len(t, secrets.putCalls, 1)
	assert.Equal(t, models.AccessAccepted, svc.ValidateCode(ctx, "1234"))
	assert.Equal(t, models.AccessRejected, svc.ValidateCode(ctx, "9999"))
}

func TestAccessService_ProvisionErrors(t *testing.T) {
	ctx := context.Background()

	svc, secrets, _ := newTestAccess(t)
	assert.ErrorIs(t, svc.Provision(ctx, "12", nil), ErrInvalidCode)
	assert.Empty(t, secrets.putCalls)

	boom := errors.New("disk gone")
	svc, secrets, _ = newTestAccess(t)
	secrets.getErr = boom
	assert.ErrorIs(t, svc.Provision(ctx, "1234", nil), boom)

	svc, secrets, _ = newTestAccess(t)
	secrets.putErr = boom
	assert.ErrorIs(t, svc.Provision(ctx, "1234", nil), boom)

	svc, _, profiles := newTestAccess(t)
	profiles.saveErr = boom
	err := svc.Provision(ctx, "1234", []models.Profile{{CredentialID: cardUID, Name: "Card holder"}})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "43894F2E")

	svc, _, profiles = newTestAccess(t)
	profiles.listErr = boom
	assert.ErrorIs(t, svc.Provision(ctx, "1234", nil), boom)
}

func TestAccessService_ProvisionListsStoredProfiles(t *testing.T) {
	ctx := context.Background()
	svc, _, profiles := newTestAccess(t)
	require.NoError(t, profiles.Save(ctx, models.Profile{CredentialID: fobUID, Name: "Key fob"}))

	require.NoError(t, svc.Provision(ctx, "1234", []models.Profile{{CredentialID: cardUID, Name: "Card holder"}}))
	assert.Equal(t, 1, profiles.listCalls)
	stored, err := profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2, "earlier profiles are kept alongside configured ones")
}

func TestAccessService_ValidateCodeStorageFailure(t *testing.T) {
	ctx := context.Background()
	svc, secrets, _ := newTestAccess(t)

	assert.Equal(t, models.AccessRejected, svc.ValidateCode(ctx, "1234"), "nothing provisioned")

	require.NoError(t, svc.Provision(ctx, "1234", nil))
	secrets.getErr = errors.New("locked")
	assert.Equal(t, models.AccessRejected, svc.ValidateCode(ctx, "1234"))
}

func TestAccessService_ValidateToken(t *testing.T) {
	ctx := context.Background()
	svc, _, profiles := newTestAccess(t)
	require.NoError(t, svc.Provision(ctx, "1234", []models.Profile{
		{CredentialID: cardUID, Name: "Card holder", PreferredTempC: 22},
		{CredentialID: fobUID, Name: "Key fob", PreferredTempC: 23.5},
	}))

	res, p := svc.ValidateToken(ctx, fobUID)
	assert.Equal(t, models.AccessAccepted, res)
	require.NotNil(t, p)
	assert.Equal(t, "Key fob", p.Name)
	assert.Equal(t, 23.5, p.PreferredTempC)

	res, p = svc.ValidateToken(ctx, models.CredentialID{0x43, 0x89, 0x4F, 0x2F})
	assert.Equal(t, models.AccessRejected, res)
	assert.Nil(t, p)

	profiles.loadErr = errors.New("io")
	res, p = svc.ValidateToken(ctx, cardUID)
	assert.Equal(t, models.AccessRejected, res)
	assert.Nil(t, p)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := hashPassword("   ", bcrypt.MinCost)
	assert.Error(t, err)
}
