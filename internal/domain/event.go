package domain

import "time"

// Change event types published on mutations, consumed by the realtime
// admin stream.
const (
	EventUserCreated   = "user.created"
	EventUserUpdated   = "user.updated"
	EventUserDeleted   = "user.deleted"
	EventTenantCreated = "tenant.created"
	EventTenantUpdated = "tenant.updated"
	EventTenantDeleted = "tenant.deleted"
)

// Event describes a single mutation. TenantID is the tenant the change
// belongs to; nil means the change is not scoped to any tenant and is
// only visible to super admins.
type Event struct {
	Type       string    `json:"type"`
	ResourceID int64     `json:"resourceId"`
	TenantID   *int64    `json:"tenantId,omitempty"`
	At         time.Time `json:"at"`
}
