package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a platform account that owns stores and an entitlement record.
type User struct {
	ID           uuid.UUID    `gorm:"column:id;type:uuid;primaryKey"`
	Email        string       `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string       `gorm:"column:password_hash;not null"`
	FullName     string       `gorm:"column:full_name;not null"`
	Entitlement  *Entitlement `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
