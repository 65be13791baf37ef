package domain

// Role is the canonical set of caller roles. Values are compared exactly,
// never case-normalized; anything outside this set is treated as RoleUser
// by the authorization policy.
type Role string

const (
	RoleSuperAdmin  Role = "SUPER_ADMIN"
	RoleTenantAdmin Role = "TENANT_ADMIN"
	RoleUser        Role = "USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleTenantAdmin, RoleUser:
		return true
	}
	return false
}

// User represents the core identity without persistence concerns.
// The password hash is deliberately absent; it travels only inside
// Credential and never leaves the credential verifier.
type User struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Role   Role    `json:"role"`
	Tenant *Tenant `json:"tenant,omitempty"`
}

// TenantID returns the owning tenant id, if any. Every non-super-admin
// identity is expected to have one.
func (u User) TenantID() (int64, bool) {
	if u.Tenant == nil {
		return 0, false
	}
	return u.Tenant.ID, true
}

// Credential pairs an identity with its stored password hash for
// verification. It is only ever handed to the credential verifier.
type Credential struct {
	User         User
	PasswordHash string
}
