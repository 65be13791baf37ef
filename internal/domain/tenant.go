package domain

// Tenant is an organizational boundary owning a set of users.
type Tenant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
