// Package policy implements the tenant-scoped authorization model.
// Every decision is a pure function of the caller identity, the requested
// action and an optional target record; the package never touches storage.
package policy

import (
	"github.com/hinagata/saas-admin/internal/domain"
)

type Action string

const (
	ActionList   Action = "list"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Resource string

const (
	ResourceUser   Resource = "user"
	ResourceTenant Resource = "tenant"
)

// Reason strings surfaced verbatim in 403 responses.
const (
	ReasonOnlySuperAdminsCreateSuperAdmins = "Only super admins can create super admins"
	ReasonOnlyAdminsCreateUsers            = "Only super admins or tenant admins can create users"
	ReasonOnlySuperAdminsManageTenants     = "Only super admins can manage tenants"
	ReasonTenantAdminWithoutTenant         = "Tenant admin is not attached to a tenant"
)

// Decision is the outcome of an authorization check. When Allowed is
// false, Reason explains why. Filter, when set, is the visibility
// predicate the store layer must apply. TenantOverride, when set, forces
// the tenant on a record about to be created.
type Decision struct {
	Allowed        bool
	Reason         string
	Filter         *Filter
	TenantOverride *int64
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Authorize computes the decision for caller performing action on
// resource. target is only consulted for user creation, where the
// requested role matters.
func Authorize(caller domain.User, action Action, resource Resource, target *domain.User) Decision {
	switch resource {
	case ResourceTenant:
		return authorizeTenant(caller)
	case ResourceUser:
		return authorizeUser(caller, action, target)
	}
	return deny("unknown resource")
}

// Tenant records are a super-admin-only surface; everyone else is denied
// outright regardless of action or target.
func authorizeTenant(caller domain.User) Decision {
	if caller.Role == domain.RoleSuperAdmin {
		return allow()
	}
	return deny(ReasonOnlySuperAdminsManageTenants)
}

func authorizeUser(caller domain.User, action Action, target *domain.User) Decision {
	switch action {
	case ActionCreate:
		return authorizeUserCreate(caller, target)
	case ActionUpdate:
		// Authenticated callers may update any user. Intentionally kept
		// as deployed; see DESIGN.md.
		return allow()
	case ActionList, ActionRead, ActionDelete:
		d := allow()
		d.Filter = Visibility(caller)
		return d
	}
	return deny("unknown action")
}

func authorizeUserCreate(caller domain.User, target *domain.User) Decision {
	if caller.Role == domain.RoleSuperAdmin {
		// Tenant on the new record is taken as supplied.
		return allow()
	}
	if target != nil && target.Role == domain.RoleSuperAdmin {
		return deny(ReasonOnlySuperAdminsCreateSuperAdmins)
	}
	if caller.Role != domain.RoleTenantAdmin {
		return deny(ReasonOnlyAdminsCreateUsers)
	}
	tenantID, ok := caller.TenantID()
	if !ok {
		return deny(ReasonTenantAdminWithoutTenant)
	}
	// The new record is pinned to the caller's tenant no matter what the
	// request supplied.
	d := allow()
	d.TenantOverride = &tenantID
	return d
}

// Visibility computes the user-record filter for the caller:
// super admins browse tenant admins only, tenant admins their own
// tenant, everyone else (including unknown roles) themselves.
func Visibility(caller domain.User) *Filter {
	switch caller.Role {
	case domain.RoleSuperAdmin:
		role := domain.RoleTenantAdmin
		return &Filter{Role: &role}
	case domain.RoleTenantAdmin:
		if tenantID, ok := caller.TenantID(); ok {
			return &Filter{TenantID: &tenantID}
		}
		// A tenant admin without a tenant violates the data invariant;
		// fall through to self-only rather than widening.
		return &Filter{UserID: &caller.ID}
	default:
		return &Filter{UserID: &caller.ID}
	}
}
