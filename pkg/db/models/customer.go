package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a deduplicated contact identity. Email is globally unique;
// repeat checkouts from the same address update the record in place
// (last write wins). ShippingAddress is the serialized address JSON.
type Customer struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	StoreID         uuid.UUID `gorm:"column:store_id;type:uuid;not null;index"`
	FullName        string    `gorm:"column:full_name;not null"`
	Email           string    `gorm:"column:email;not null;uniqueIndex:idx_customers_email"`
	Phone           string    `gorm:"column:phone;not null"`
	ShippingAddress string    `gorm:"column:shipping_address;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
