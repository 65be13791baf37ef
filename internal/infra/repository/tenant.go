package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hinagata/saas-admin/internal/domain"
	"github.com/hinagata/saas-admin/internal/infra/database"
	"github.com/hinagata/saas-admin/internal/infra/database/models"
)

const tenantExistsTTL = time.Minute

type TenantRepository struct {
	db    *gorm.DB
	cache database.LookupCache
}

func NewTenantRepository(db *gorm.DB, cache database.LookupCache) *TenantRepository {
	return &TenantRepository{db: db, cache: cache}
}

func (r *TenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	var rows []models.Tenant
	err := r.db.WithContext(ctx).Order("id").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	tenants := make([]domain.Tenant, 0, len(rows))
	for _, row := range rows {
		tenants = append(tenants, domain.Tenant{ID: row.ID, Name: row.Name})
	}
	return tenants, nil
}

func (r *TenantRepository) Get(ctx context.Context, id int64) (domain.Tenant, error) {
	var row models.Tenant
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Tenant{}, domain.NotFoundError{Resource: "tenant"}
		}
		return domain.Tenant{}, err
	}
	return domain.Tenant{ID: row.ID, Name: row.Name}, nil
}

// Exists is on the hot path of every tenant-scoped authorization check,
// so positive and negative answers are cached briefly.
func (r *TenantRepository) Exists(ctx context.Context, id int64) (bool, error) {
	key := tenantExistsKey(id)
	if r.cache != nil {
		if v, ok := r.cache.Get(key); ok {
			return v == "1", nil
		}
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	exists := count > 0
	if r.cache != nil {
		v := "0"
		if exists {
			v = "1"
		}
		r.cache.Set(key, v, tenantExistsTTL)
	}
	return exists, nil
}

func (r *TenantRepository) Create(ctx context.Context, name string) (domain.Tenant, error) {
	row := models.Tenant{Name: name}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Tenant{}, err
	}
	if r.cache != nil {
		r.cache.Set(tenantExistsKey(row.ID), "1", tenantExistsTTL)
	}
	return domain.Tenant{ID: row.ID, Name: row.Name}, nil
}

func (r *TenantRepository) Update(ctx context.Context, id int64, name string) (domain.Tenant, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", id).
		Update("name", name)
	if result.Error != nil {
		return domain.Tenant{}, result.Error
	}
	if result.RowsAffected == 0 {
		return domain.Tenant{}, domain.NotFoundError{Resource: "tenant"}
	}
	return r.Get(ctx, id)
}

func (r *TenantRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Tenant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "tenant"}
	}
	if r.cache != nil {
		r.cache.Delete(tenantExistsKey(id))
	}
	return nil
}

func tenantExistsKey(id int64) string {
	return fmt.Sprintf("tenant-exists:%d", id)
}
