package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hinagata/saas-admin/internal/domain"
	"github.com/hinagata/saas-admin/internal/policy"
	"github.com/hinagata/saas-admin/internal/service"
	"github.com/hinagata/saas-admin/internal/token"
	"github.com/hinagata/saas-admin/internal/usecase"
)

type stubUserRepo struct {
	creds map[string]domain.Credential
}

func (s *stubUserRepo) GetCredential(ctx context.Context, email string) (*domain.Credential, error) {
	cred, ok := s.creds[email]
	if !ok {
		return nil, domain.NotFoundError{Resource: "user"}
	}
	return &cred, nil
}

func (s *stubUserRepo) List(ctx context.Context, filter *policy.Filter) ([]domain.User, error) {
	return nil, nil
}

func (s *stubUserRepo) Get(ctx context.Context, id int64, filter *policy.Filter) (domain.User, error) {
	return domain.User{}, domain.NotFoundError{Resource: "user"}
}

func (s *stubUserRepo) Create(ctx context.Context, input usecase.NewUser) (domain.User, error) {
	return domain.User{}, nil
}

func (s *stubUserRepo) Update(ctx context.Context, id int64, changes usecase.UserChanges) (domain.User, error) {
	return domain.User{}, nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id int64, filter *policy.Filter) error {
	return nil
}

func setup(t *testing.T) (*AuthMiddleware, *token.Service) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &stubUserRepo{creds: map[string]domain.Credential{
		"admin@acme.com": {
			User: domain.User{
				ID:     2,
				Email:  "admin@acme.com",
				Role:   domain.RoleTenantAdmin,
				Tenant: &domain.Tenant{ID: 1, Name: "Acme Corp"},
			},
			PasswordHash: string(hash),
		},
	}}
	tokens := token.NewService(token.Config{Secret: "test-secret", TTL: time.Hour})
	return NewAuthMiddleware(service.NewAuthService(repo, tokens)), tokens
}

func invoke(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, *domain.User) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *domain.User
	handler := mw(func(c echo.Context) error {
		if requester, ok := RequesterFrom(c.Request().Context()); ok {
			seen = &requester
		}
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, seen
}

func TestRequireAuthRejectsWithoutHeader(t *testing.T) {
	mw, _ := setup(t)
	rec, seen := invoke(t, mw.RequireAuth, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestRequireAuthRejectsMalformedHeader(t *testing.T) {
	mw, tokens := setup(t)
	signed, err := tokens.Issue(&domain.User{ID: 2, Role: domain.RoleTenantAdmin})
	require.NoError(t, err)

	for _, header := range []string{
		"Bearer",
		"Basic " + signed,
		"bearer " + signed,
		signed,
	} {
		rec, seen := invoke(t, mw.RequireAuth, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Nil(t, seen)
	}
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	mw, _ := setup(t)

	other := token.NewService(token.Config{Secret: "other-secret", TTL: time.Hour})
	forged, err := other.Issue(&domain.User{ID: 2, Role: domain.RoleSuperAdmin})
	require.NoError(t, err)

	rec, seen := invoke(t, mw.RequireAuth, "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	mw, _ := setup(t)

	stale := token.NewService(token.Config{Secret: "test-secret", TTL: -time.Minute})
	expired, err := stale.Issue(&domain.User{ID: 2, Role: domain.RoleTenantAdmin})
	require.NoError(t, err)

	rec, seen := invoke(t, mw.RequireAuth, "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestRequireAuthPassesRequesterToHandler(t *testing.T) {
	mw, tokens := setup(t)
	signed, err := tokens.Issue(&domain.User{
		ID:     2,
		Email:  "admin@acme.com",
		Role:   domain.RoleTenantAdmin,
		Tenant: &domain.Tenant{ID: 1, Name: "Acme Corp"},
	})
	require.NoError(t, err)

	rec, seen := invoke(t, mw.RequireAuth, "Bearer "+signed)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, int64(2), seen.ID)
	assert.Equal(t, domain.RoleTenantAdmin, seen.Role)
	require.NotNil(t, seen.Tenant)
	assert.Equal(t, int64(1), seen.Tenant.ID)
}

func guardInvoke(t *testing.T, mw *AuthMiddleware, requester *domain.User, method string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/tenants", nil)
	if requester != nil {
		ctx := context.WithValue(req.Context(), domain.RequesterCtxKey, *requester)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw.Guard(policy.ResourceTenant)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec
}

func TestGuardBlocksNonSuperAdminsFromTenants(t *testing.T) {
	mw, _ := setup(t)

	rec := guardInvoke(t, mw, &domain.User{ID: 2, Role: domain.RoleTenantAdmin, Tenant: &domain.Tenant{ID: 1}}, http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), policy.ReasonOnlySuperAdminsManageTenants)

	rec = guardInvoke(t, mw, &domain.User{ID: 1, Role: domain.RoleSuperAdmin}, http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardWithoutRequesterIsUnauthorized(t *testing.T) {
	mw, _ := setup(t)
	rec := guardInvoke(t, mw, nil, http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	mw, _ := setup(t)
	e := echo.New()

	run := func(requester domain.User) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/realtime", nil)
		req = req.WithContext(context.WithValue(req.Context(), domain.RequesterCtxKey, requester))
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		handler := mw.RequireRoles(domain.RoleSuperAdmin, domain.RoleTenantAdmin)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, handler(c))
		return rec
	}

	assert.Equal(t, http.StatusOK, run(domain.User{ID: 1, Role: domain.RoleSuperAdmin}).Code)
	assert.Equal(t, http.StatusOK, run(domain.User{ID: 2, Role: domain.RoleTenantAdmin}).Code)
	assert.Equal(t, http.StatusForbidden, run(domain.User{ID: 4, Role: domain.RoleUser}).Code)
}
