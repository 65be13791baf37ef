package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hinagata/saas-admin/internal/domain"
)

func superAdmin() domain.User {
	return domain.User{ID: 1, Role: domain.RoleSuperAdmin}
}

func tenantAdmin(tenantID int64) domain.User {
	return domain.User{ID: 2, Role: domain.RoleTenantAdmin, Tenant: &domain.Tenant{ID: tenantID}}
}

func regularUser(id, tenantID int64) domain.User {
	return domain.User{ID: id, Role: domain.RoleUser, Tenant: &domain.Tenant{ID: tenantID}}
}

func TestTenantResourceSuperAdminOnly(t *testing.T) {
	actions := []Action{ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete}

	for _, action := range actions {
		d := Authorize(superAdmin(), action, ResourceTenant, nil)
		assert.True(t, d.Allowed, "super admin %s", action)
		assert.Nil(t, d.Filter, "super admin sees all tenants")

		for _, caller := range []domain.User{tenantAdmin(42), regularUser(5, 42)} {
			d := Authorize(caller, action, ResourceTenant, nil)
			assert.False(t, d.Allowed, "%s %s must be denied", caller.Role, action)
			assert.Equal(t, ReasonOnlySuperAdminsManageTenants, d.Reason)
		}
	}
}

func TestUserListVisibility(t *testing.T) {
	t.Run("super admin browses tenant admins only", func(t *testing.T) {
		d := Authorize(superAdmin(), ActionList, ResourceUser, nil)
		require.True(t, d.Allowed)
		require.NotNil(t, d.Filter)

		assert.True(t, d.Filter.Matches(tenantAdmin(7)))
		assert.False(t, d.Filter.Matches(regularUser(9, 7)), "end users are excluded")
		assert.False(t, d.Filter.Matches(superAdmin()), "other super admins are excluded")
	})

	t.Run("tenant admin sees own tenant", func(t *testing.T) {
		d := Authorize(tenantAdmin(42), ActionList, ResourceUser, nil)
		require.True(t, d.Allowed)
		require.NotNil(t, d.Filter)

		assert.True(t, d.Filter.Matches(regularUser(9, 42)))
		assert.False(t, d.Filter.Matches(regularUser(9, 99)))
		assert.False(t, d.Filter.Matches(superAdmin()), "no tenant means no match")
	})

	t.Run("user sees only self", func(t *testing.T) {
		caller := regularUser(5, 42)
		d := Authorize(caller, ActionList, ResourceUser, nil)
		require.True(t, d.Allowed)
		require.NotNil(t, d.Filter)

		assert.True(t, d.Filter.Matches(caller))
		assert.False(t, d.Filter.Matches(regularUser(6, 42)), "same tenant is not enough")
	})

	t.Run("unknown role falls back to self-only", func(t *testing.T) {
		caller := domain.User{ID: 11, Role: "MANAGER", Tenant: &domain.Tenant{ID: 42}}
		d := Authorize(caller, ActionList, ResourceUser, nil)
		require.True(t, d.Allowed)
		require.NotNil(t, d.Filter)

		assert.True(t, d.Filter.Matches(domain.User{ID: 11}))
		assert.False(t, d.Filter.Matches(regularUser(12, 42)))
	})
}

func TestUserCreate(t *testing.T) {
	t.Run("nobody but super admins may create super admins", func(t *testing.T) {
		target := domain.User{Role: domain.RoleSuperAdmin}
		for _, caller := range []domain.User{tenantAdmin(42), regularUser(5, 42)} {
			d := Authorize(caller, ActionCreate, ResourceUser, &target)
			assert.False(t, d.Allowed, "caller role %s", caller.Role)
			assert.Equal(t, ReasonOnlySuperAdminsCreateSuperAdmins, d.Reason)
		}

		d := Authorize(superAdmin(), ActionCreate, ResourceUser, &target)
		assert.True(t, d.Allowed)
		assert.Nil(t, d.TenantOverride, "super admin supplies the tenant")
	})

	t.Run("tenant admin creation is pinned to own tenant", func(t *testing.T) {
		target := domain.User{Role: domain.RoleUser, Tenant: &domain.Tenant{ID: 99}}
		d := Authorize(tenantAdmin(42), ActionCreate, ResourceUser, &target)
		require.True(t, d.Allowed)
		require.NotNil(t, d.TenantOverride)
		assert.Equal(t, int64(42), *d.TenantOverride, "supplied tenant 99 must be overridden")
	})

	t.Run("regular users cannot create anyone", func(t *testing.T) {
		target := domain.User{Role: domain.RoleUser}
		d := Authorize(regularUser(5, 42), ActionCreate, ResourceUser, &target)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonOnlyAdminsCreateUsers, d.Reason)
	})

	t.Run("tenant admin without a tenant is denied", func(t *testing.T) {
		caller := domain.User{ID: 3, Role: domain.RoleTenantAdmin}
		target := domain.User{Role: domain.RoleUser}
		d := Authorize(caller, ActionCreate, ResourceUser, &target)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonTenantAdminWithoutTenant, d.Reason)
	})
}

func TestUserReadAndDeleteApplyVisibility(t *testing.T) {
	for _, action := range []Action{ActionRead, ActionDelete} {
		d := Authorize(regularUser(5, 42), action, ResourceUser, nil)
		require.True(t, d.Allowed, "%s is permitted but scoped", action)
		require.NotNil(t, d.Filter)
		assert.True(t, d.Filter.Matches(domain.User{ID: 5}))
		assert.False(t, d.Filter.Matches(domain.User{ID: 6}))
	}
}

func TestUserUpdateRequiresOnlyAuthentication(t *testing.T) {
	for _, caller := range []domain.User{superAdmin(), tenantAdmin(42), regularUser(5, 42)} {
		d := Authorize(caller, ActionUpdate, ResourceUser, nil)
		assert.True(t, d.Allowed, "caller role %s", caller.Role)
		assert.Nil(t, d.Filter)
	}
}

func TestNilFilterMatchesEverything(t *testing.T) {
	var f *Filter
	assert.True(t, f.Matches(superAdmin()))
	assert.True(t, f.Matches(regularUser(5, 42)))
}
