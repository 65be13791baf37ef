package main

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hinagata/saas-admin/internal/domain"
	"github.com/hinagata/saas-admin/internal/infra/database/models"
)

// runSeed creates the development fixtures: two tenants, a super admin
// and one admin per tenant, all with password "password". Idempotent.
func runSeed(db *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tenants := []models.Tenant{
		{Name: "Acme Corp"},
		{Name: "Globex Inc"},
	}
	for i := range tenants {
		if err := db.FirstOrCreate(&tenants[i], models.Tenant{Name: tenants[i].Name}).Error; err != nil {
			return err
		}
	}

	users := []models.User{
		{
			Name:         "Super Admin",
			Email:        "superadmin@example.com",
			PasswordHash: string(hash),
			Role:         string(domain.RoleSuperAdmin),
		},
		{
			Name:         "Tenant 1 Admin",
			Email:        "admin@acme.com",
			PasswordHash: string(hash),
			Role:         string(domain.RoleTenantAdmin),
			TenantID:     &tenants[0].ID,
		},
		{
			Name:         "Tenant 2 Admin",
			Email:        "admin@globex.com",
			PasswordHash: string(hash),
			Role:         string(domain.RoleTenantAdmin),
			TenantID:     &tenants[1].ID,
		},
	}
	for i := range users {
		if err := db.FirstOrCreate(&users[i], models.User{Email: users[i].Email}).Error; err != nil {
			return err
		}
	}

	return nil
}
