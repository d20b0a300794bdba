package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orchardlabs/storefront-backend/pkg/enums"
)

// Order is created exactly once per successful checkout attempt. Contact
// fields are snapshotted at creation and never re-derived from the customer
// record. GatewayOrderID links a gateway-mode order to the remote payment
// order; the paid flip keys off it.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	StoreID          uuid.UUID           `gorm:"column:store_id;type:uuid;not null;index"`
	CustomerID       *uuid.UUID          `gorm:"column:customer_id;type:uuid;index"`
	IsPaid           bool                `gorm:"column:is_paid;not null;default:false"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	OrderStatus      enums.OrderStatus   `gorm:"column:order_status;not null;default:'pending'"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;not null;default:'gateway'"`
	Phone            string              `gorm:"column:phone;not null"`
	Email            string              `gorm:"column:email;not null"`
	Address          string              `gorm:"column:address;not null"`
	GatewayOrderID   *string             `gorm:"column:gateway_order_id;uniqueIndex:idx_orders_gateway_order_id"`
	GatewayPaymentID *string             `gorm:"column:gateway_payment_id"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
