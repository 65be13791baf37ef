package usecase

import (
	"context"

	"github.com/hinagata/saas-admin/internal/domain"
	"github.com/hinagata/saas-admin/internal/policy"
)

// NewUser is the validated input for creating a user record. The tenant
// is always fetched alongside the record on the way back out.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         domain.Role
	TenantID     *int64
}

// UserChanges is a partial update; nil fields are left untouched.
type UserChanges struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *domain.Role
	TenantID     *int64
}

// UserRepository defines persistence/lookup for users. Methods taking a
// *policy.Filter must translate it into their query; records outside
// the filter behave as if they do not exist.
type UserRepository interface {
	List(ctx context.Context, filter *policy.Filter) ([]domain.User, error)
	Get(ctx context.Context, id int64, filter *policy.Filter) (domain.User, error)
	GetCredential(ctx context.Context, email string) (*domain.Credential, error)
	Create(ctx context.Context, input NewUser) (domain.User, error)
	Update(ctx context.Context, id int64, changes UserChanges) (domain.User, error)
	Delete(ctx context.Context, id int64, filter *policy.Filter) error
}

// TenantRepository defines persistence/lookup for tenants.
type TenantRepository interface {
	List(ctx context.Context) ([]domain.Tenant, error)
	Get(ctx context.Context, id int64) (domain.Tenant, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, name string) (domain.Tenant, error)
	Update(ctx context.Context, id int64, name string) (domain.Tenant, error)
	Delete(ctx context.Context, id int64) error
}

// EventPublisher announces mutations to the realtime admin stream.
// Publishing is best-effort; failures are logged, never surfaced.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}
