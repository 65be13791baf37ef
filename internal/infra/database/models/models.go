package models

import (
	"time"
)

type Tenant struct {
	ID    int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name  string `json:"name" gorm:"type:text;not null"`
	Users []User `json:"-" gorm:"foreignKey:TenantID"`

	CDate time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type User struct {
	ID           int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string  `json:"name" gorm:"type:text;not null"`
	Email        string  `json:"email" gorm:"type:text;uniqueIndex;not null"`
	PasswordHash string  `json:"-" gorm:"type:text;not null"`
	Role         string  `json:"role" gorm:"type:text;not null;default:'USER';index"`
	TenantID     *int64  `json:"tenantId" gorm:"index"`
	Tenant       *Tenant `json:"tenant,omitempty" gorm:"constraint:OnDelete:SET NULL;"`

	CDate time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
