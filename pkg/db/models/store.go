package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the tenant boundary: products, customers and orders all hang off
// a store. The optional gateway key pair lets a store settle checkouts under
// its own payment-processor account; absent keys fall back to the platform's.
type Store struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name             string    `gorm:"column:name;not null"`
	OwnerID          uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	GatewayKeyID     *string   `gorm:"column:gateway_key_id"`
	GatewayKeySecret *string   `gorm:"column:gateway_key_secret"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Store) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// HasGatewayCredentials reports whether the store carries its own key pair.
func (s *Store) HasGatewayCredentials() bool {
	return s != nil &&
		s.GatewayKeyID != nil && *s.GatewayKeyID != "" &&
		s.GatewayKeySecret != nil && *s.GatewayKeySecret != ""
}
