package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hinagata/saas-admin/internal/domain"
	"github.com/hinagata/saas-admin/internal/policy"
	"github.com/hinagata/saas-admin/internal/token"
	"github.com/hinagata/saas-admin/internal/usecase"
)

// credentialStore is a UserRepository backing only the lookup the auth
// service needs; the rest of the interface is unreachable here.
type credentialStore struct {
	creds map[string]domain.Credential
}

func (s *credentialStore) GetCredential(ctx context.Context, email string) (*domain.Credential, error) {
	cred, ok := s.creds[email]
	if !ok {
		return nil, domain.NotFoundError{Resource: "user"}
	}
	return &cred, nil
}

func (s *credentialStore) List(ctx context.Context, filter *policy.Filter) ([]domain.User, error) {
	return nil, nil
}

func (s *credentialStore) Get(ctx context.Context, id int64, filter *policy.Filter) (domain.User, error) {
	return domain.User{}, domain.NotFoundError{Resource: "user"}
}

func (s *credentialStore) Create(ctx context.Context, input usecase.NewUser) (domain.User, error) {
	return domain.User{}, nil
}

func (s *credentialStore) Update(ctx context.Context, id int64, changes usecase.UserChanges) (domain.User, error) {
	return domain.User{}, nil
}

func (s *credentialStore) Delete(ctx context.Context, id int64, filter *policy.Filter) error {
	return nil
}

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	store := &credentialStore{creds: map[string]domain.Credential{
		"admin@globex.com": {
			User: domain.User{
				ID:     3,
				Name:   "Tenant 2 Admin",
				Email:  "admin@globex.com",
				Role:   domain.RoleTenantAdmin,
				Tenant: &domain.Tenant{ID: 2, Name: "Globex Inc"},
			},
			PasswordHash: string(hash),
		},
	}}
	tokens := token.NewService(token.Config{Secret: "test-secret", TTL: time.Hour})
	return NewAuthService(store, tokens)
}

func TestVerifyCredentials(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	identity := auth.VerifyCredentials(ctx, "admin@globex.com", "password")
	require.NotNil(t, identity)
	assert.Equal(t, int64(3), identity.ID)
	assert.Equal(t, domain.RoleTenantAdmin, identity.Role)
}

func TestVerifyCredentialsFailuresAreUniform(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	// Unknown email and wrong password must be indistinguishable.
	assert.Nil(t, auth.VerifyCredentials(ctx, "nobody@globex.com", "password"))
	assert.Nil(t, auth.VerifyCredentials(ctx, "admin@globex.com", "wrong"))
	assert.Nil(t, auth.VerifyCredentials(ctx, "admin@globex.com", ""))
}

func TestLoginIssuesTokenWithIdentityClaims(t *testing.T) {
	auth := newAuthService(t)
	tokens := token.NewService(token.Config{Secret: "test-secret", TTL: time.Hour})

	signed, err := auth.Login(context.Background(), "admin@globex.com", "password")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	identity, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(3), identity.ID)
	assert.Equal(t, "admin@globex.com", identity.Email)
	assert.Equal(t, domain.RoleTenantAdmin, identity.Role)
	require.NotNil(t, identity.Tenant)
	assert.Equal(t, "Globex Inc", identity.Tenant.Name)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := newAuthService(t)

	_, err := auth.Login(context.Background(), "admin@globex.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = auth.Login(context.Background(), "nobody@globex.com", "password")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthTokenRoundTrip(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	signed, err := auth.Login(ctx, "admin@globex.com", "password")
	require.NoError(t, err)

	identity, err := auth.AuthToken(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, int64(3), identity.ID)

	_, err = auth.AuthToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}
