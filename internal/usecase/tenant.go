package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/hinagata/saas-admin/internal/domain"
	"github.com/hinagata/saas-admin/internal/policy"
)

type TenantUsecase struct {
	tenants TenantRepository
	events  EventPublisher
}

func NewTenantUsecase(tenants TenantRepository, events EventPublisher) *TenantUsecase {
	return &TenantUsecase{tenants: tenants, events: events}
}

func (uc *TenantUsecase) List(ctx context.Context, caller domain.User) ([]domain.Tenant, error) {
	if err := uc.authorize(caller, policy.ActionList); err != nil {
		return nil, err
	}
	return uc.tenants.List(ctx)
}

func (uc *TenantUsecase) Get(ctx context.Context, caller domain.User, id int64) (domain.Tenant, error) {
	if err := uc.authorize(caller, policy.ActionRead); err != nil {
		return domain.Tenant{}, err
	}
	return uc.tenants.Get(ctx, id)
}

func (uc *TenantUsecase) Create(ctx context.Context, caller domain.User, name string) (domain.Tenant, error) {
	if err := uc.authorize(caller, policy.ActionCreate); err != nil {
		return domain.Tenant{}, err
	}
	if name == "" {
		return domain.Tenant{}, domain.ValidationError{Message: "tenant name is required"}
	}
	created, err := uc.tenants.Create(ctx, name)
	if err != nil {
		return domain.Tenant{}, err
	}
	uc.publish(ctx, domain.EventTenantCreated, created.ID)
	return created, nil
}

func (uc *TenantUsecase) Update(ctx context.Context, caller domain.User, id int64, name string) (domain.Tenant, error) {
	if err := uc.authorize(caller, policy.ActionUpdate); err != nil {
		return domain.Tenant{}, err
	}
	if name == "" {
		return domain.Tenant{}, domain.ValidationError{Message: "tenant name is required"}
	}
	updated, err := uc.tenants.Update(ctx, id, name)
	if err != nil {
		return domain.Tenant{}, err
	}
	uc.publish(ctx, domain.EventTenantUpdated, updated.ID)
	return updated, nil
}

func (uc *TenantUsecase) Delete(ctx context.Context, caller domain.User, id int64) error {
	if err := uc.authorize(caller, policy.ActionDelete); err != nil {
		return err
	}
	if err := uc.tenants.Delete(ctx, id); err != nil {
		return err
	}
	uc.publish(ctx, domain.EventTenantDeleted, id)
	return nil
}

func (uc *TenantUsecase) authorize(caller domain.User, action policy.Action) error {
	decision := policy.Authorize(caller, action, policy.ResourceTenant, nil)
	if !decision.Allowed {
		return domain.PermissionError{Reason: decision.Reason}
	}
	return nil
}

func (uc *TenantUsecase) publish(ctx context.Context, eventType string, id int64) {
	if uc.events == nil {
		return
	}
	event := domain.Event{
		Type:       eventType,
		ResourceID: id,
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
