package policy

import (
	"github.com/hinagata/saas-admin/internal/domain"
)

// Filter is a visibility predicate over user records. A nil *Filter is
// unrestricted; a nil field is unconstrained. The store layer translates
// the set fields into its own query mechanism.
type Filter struct {
	Role     *domain.Role
	TenantID *int64
	UserID   *int64
}

// Matches evaluates the predicate against a single record, for callers
// that already hold the record in memory.
func (f *Filter) Matches(u domain.User) bool {
	if f == nil {
		return true
	}
	if f.Role != nil && u.Role != *f.Role {
		return false
	}
	if f.TenantID != nil {
		tenantID, ok := u.TenantID()
		if !ok || tenantID != *f.TenantID {
			return false
		}
	}
	if f.UserID != nil && u.ID != *f.UserID {
		return false
	}
	return true
}
