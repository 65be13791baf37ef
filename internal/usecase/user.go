package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hinagata/saas-admin/internal/domain"
	"github.com/hinagata/saas-admin/internal/policy"
)

// CreateUserInput is the request payload for creating a user. Password,
// when empty, falls back to a configured default; plaintext never
// reaches the repository.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	TenantID *int64
}

// UpdateUserInput is a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *domain.Role
	TenantID *int64
}

type UserUsecase struct {
	users           UserRepository
	tenants         TenantRepository
	events          EventPublisher
	defaultPassword string
}

func NewUserUsecase(
	users UserRepository,
	tenants TenantRepository,
	events EventPublisher,
	defaultPassword string,
) *UserUsecase {
	return &UserUsecase{
		users:           users,
		tenants:         tenants,
		events:          events,
		defaultPassword: defaultPassword,
	}
}

// List returns the users visible to the caller under the policy filter.
func (uc *UserUsecase) List(ctx context.Context, caller domain.User) ([]domain.User, error) {
	decision := policy.Authorize(caller, policy.ActionList, policy.ResourceUser, nil)
	if !decision.Allowed {
		return nil, domain.PermissionError{Reason: decision.Reason}
	}
	if err := uc.checkFilterTenant(ctx, decision.Filter); err != nil {
		return nil, err
	}
	return uc.users.List(ctx, decision.Filter)
}

// Get fetches a single user. Records outside the caller's visibility
// surface as not found.
func (uc *UserUsecase) Get(ctx context.Context, caller domain.User, id int64) (domain.User, error) {
	decision := policy.Authorize(caller, policy.ActionRead, policy.ResourceUser, nil)
	if !decision.Allowed {
		return domain.User{}, domain.PermissionError{Reason: decision.Reason}
	}
	if err := uc.checkFilterTenant(ctx, decision.Filter); err != nil {
		return domain.User{}, err
	}
	return uc.users.Get(ctx, id, decision.Filter)
}

func (uc *UserUsecase) Create(ctx context.Context, caller domain.User, input CreateUserInput) (domain.User, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	target := domain.User{Role: role}
	if input.TenantID != nil {
		target.Tenant = &domain.Tenant{ID: *input.TenantID}
	}

	decision := policy.Authorize(caller, policy.ActionCreate, policy.ResourceUser, &target)
	if !decision.Allowed {
		return domain.User{}, domain.PermissionError{Reason: decision.Reason}
	}

	// Tokens may carry legacy role strings, but stored records never do.
	if !role.Valid() {
		return domain.User{}, domain.ValidationError{Message: "invalid role"}
	}

	tenantID := input.TenantID
	if decision.TenantOverride != nil {
		tenantID = decision.TenantOverride
	}

	// Every non-super-admin belongs to exactly one tenant, and that
	// tenant must actually exist before we persist a reference to it.
	if role != domain.RoleSuperAdmin && tenantID == nil {
		return domain.User{}, domain.ValidationError{Message: "a tenant is required for this role"}
	}
	if tenantID != nil {
		ok, err := uc.tenants.Exists(ctx, *tenantID)
		if err != nil {
			return domain.User{}, err
		}
		if !ok {
			return domain.User{}, domain.ValidationError{Message: "tenant does not exist"}
		}
	}

	hash, err := uc.hashPassword(input.Password)
	if err != nil {
		return domain.User{}, err
	}

	created, err := uc.users.Create(ctx, NewUser{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		TenantID:     tenantID,
	})
	if err != nil {
		return domain.User{}, err
	}

	uc.publish(ctx, domain.EventUserCreated, created.ID, tenantID)
	return created, nil
}

func (uc *UserUsecase) Update(ctx context.Context, caller domain.User, id int64, input UpdateUserInput) (domain.User, error) {
	decision := policy.Authorize(caller, policy.ActionUpdate, policy.ResourceUser, nil)
	if !decision.Allowed {
		return domain.User{}, domain.PermissionError{Reason: decision.Reason}
	}

	if input.Role != nil && !input.Role.Valid() {
		return domain.User{}, domain.ValidationError{Message: "invalid role"}
	}

	changes := UserChanges{
		Name:     input.Name,
		Email:    input.Email,
		Role:     input.Role,
		TenantID: input.TenantID,
	}
	if input.Password != nil {
		hash, err := uc.hashPassword(*input.Password)
		if err != nil {
			return domain.User{}, err
		}
		changes.PasswordHash = &hash
	}
	if input.TenantID != nil {
		ok, err := uc.tenants.Exists(ctx, *input.TenantID)
		if err != nil {
			return domain.User{}, err
		}
		if !ok {
			return domain.User{}, domain.ValidationError{Message: "tenant does not exist"}
		}
	}

	updated, err := uc.users.Update(ctx, id, changes)
	if err != nil {
		return domain.User{}, err
	}

	var tenantID *int64
	if tid, ok := updated.TenantID(); ok {
		tenantID = &tid
	}
	uc.publish(ctx, domain.EventUserUpdated, updated.ID, tenantID)
	return updated, nil
}

// Delete removes a user within the caller's visibility; anything outside
// it surfaces as not found.
func (uc *UserUsecase) Delete(ctx context.Context, caller domain.User, id int64) error {
	decision := policy.Authorize(caller, policy.ActionDelete, policy.ResourceUser, nil)
	if !decision.Allowed {
		return domain.PermissionError{Reason: decision.Reason}
	}
	if err := uc.checkFilterTenant(ctx, decision.Filter); err != nil {
		return err
	}
	if err := uc.users.Delete(ctx, id, decision.Filter); err != nil {
		return err
	}

	var tenantID *int64
	if tid, ok := caller.TenantID(); ok && caller.Role == domain.RoleTenantAdmin {
		tenantID = &tid
	}
	uc.publish(ctx, domain.EventUserDeleted, id, tenantID)
	return nil
}

// checkFilterTenant refuses to hand the store a filter referencing a
// tenant that no longer exists.
func (uc *UserUsecase) checkFilterTenant(ctx context.Context, filter *policy.Filter) error {
	if filter == nil || filter.TenantID == nil {
		return nil
	}
	ok, err := uc.tenants.Exists(ctx, *filter.TenantID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.PermissionError{Reason: "tenant no longer exists"}
	}
	return nil
}

func (uc *UserUsecase) hashPassword(password string) (string, error) {
	if password == "" {
		password = uc.defaultPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (uc *UserUsecase) publish(ctx context.Context, eventType string, id int64, tenantID *int64) {
	if uc.events == nil {
		return
	}
	event := domain.Event{
		Type:       eventType,
		ResourceID: id,
		TenantID:   tenantID,
		At:         time.Now().UTC(),
	}
	if err := uc.events.Publish(ctx, event); err != nil {
		slog.WarnContext(
			ctx, "failed to publish event",
			slog.String("type", eventType),
			slog.String("error", err.Error()),
			slog.String("module", "usecase"),
		)
	}
}
