package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/hinagata/saas-admin/internal/domain"
	"github.com/hinagata/saas-admin/internal/infra/database/models"
	"github.com/hinagata/saas-admin/internal/policy"
	"github.com/hinagata/saas-admin/internal/usecase"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// filterScope translates the policy's visibility predicate into WHERE
// clauses. A nil filter is unrestricted.
func filterScope(filter *policy.Filter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if filter == nil {
			return tx
		}
		if filter.Role != nil {
			tx = tx.Where("role = ?", string(*filter.Role))
		}
		if filter.TenantID != nil {
			tx = tx.Where("tenant_id = ?", *filter.TenantID)
		}
		if filter.UserID != nil {
			tx = tx.Where("id = ?", *filter.UserID)
		}
		return tx
	}
}

func (r *UserRepository) List(ctx context.Context, filter *policy.Filter) ([]domain.User, error) {
	var rows []models.User
	err := r.db.WithContext(ctx).
		Scopes(filterScope(filter)).
		Preload("Tenant").
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, toDomainUser(row))
	}
	return users, nil
}

func (r *UserRepository) Get(ctx context.Context, id int64, filter *policy.Filter) (domain.User, error) {
	var row models.User
	err := r.db.WithContext(ctx).
		Scopes(filterScope(filter)).
		Preload("Tenant").
		First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, err
	}
	return toDomainUser(row), nil
}

func (r *UserRepository) GetCredential(ctx context.Context, email string) (*domain.Credential, error) {
	var row models.User
	err := r.db.WithContext(ctx).
		Preload("Tenant").
		First(&row, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Resource: "user"}
		}
		return nil, err
	}
	return &domain.Credential{
		User:         toDomainUser(row),
		PasswordHash: row.PasswordHash,
	}, nil
}

func (r *UserRepository) Create(ctx context.Context, input usecase.NewUser) (domain.User, error) {
	row := models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		Role:         string(input.Role),
		TenantID:     input.TenantID,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, domain.ValidationError{Message: "email already in use"}
		}
		return domain.User{}, err
	}
	return r.Get(ctx, row.ID, nil)
}

func (r *UserRepository) Update(ctx context.Context, id int64, changes usecase.UserChanges) (domain.User, error) {
	updates := map[string]any{}
	if changes.Name != nil {
		updates["name"] = *changes.Name
	}
	if changes.Email != nil {
		updates["email"] = *changes.Email
	}
	if changes.PasswordHash != nil {
		updates["password_hash"] = *changes.PasswordHash
	}
	if changes.Role != nil {
		updates["role"] = string(*changes.Role)
	}
	if changes.TenantID != nil {
		updates["tenant_id"] = *changes.TenantID
	}

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).
			Model(&models.User{}).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return domain.User{}, domain.ValidationError{Message: "email already in use"}
			}
			return domain.User{}, result.Error
		}
		if result.RowsAffected == 0 {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
	}
	return r.Get(ctx, id, nil)
}

func (r *UserRepository) Delete(ctx context.Context, id int64, filter *policy.Filter) error {
	result := r.db.WithContext(ctx).
		Scopes(filterScope(filter)).
		Where("id = ?", id).
		Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "user"}
	}
	return nil
}

func toDomainUser(row models.User) domain.User {
	u := domain.User{
		ID:    row.ID,
		Name:  row.Name,
		Email: row.Email,
		Role:  domain.Role(row.Role),
	}
	if row.Tenant != nil {
		u.Tenant = &domain.Tenant{ID: row.Tenant.ID, Name: row.Tenant.Name}
	}
	return u
}
