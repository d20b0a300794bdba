package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orchardlabs/storefront-backend/pkg/enums"
)

// UnlimitedQuota is the sentinel meaning "no cap" for a resource quota.
const UnlimitedQuota = -1

// Entitlement is the account-scoped subscription record. One row per user,
// replaced wholesale on each verified subscription payment. Expiry is
// evaluated lazily at check time; the row is never mutated on read.
type Entitlement struct {
	ID                    uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID                uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_entitlements_user_id"`
	PlanName              enums.PlanName  `gorm:"column:plan_name;not null;default:'Free'"`
	IsSubscribed          bool            `gorm:"column:is_subscribed;not null;default:false"`
	Price                 decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;default:0"`
	DurationMonths        int             `gorm:"column:duration_months;not null;default:0"`
	StoresAllowed         int             `gorm:"column:stores_allowed;not null;default:0"`
	ProductsAllowed       int             `gorm:"column:products_allowed;not null;default:0"`
	SubscriptionStartDate time.Time       `gorm:"column:subscription_start_date;not null"`
	SubscriptionEndDate   *time.Time      `gorm:"column:subscription_end_date"`
	GatewayOrderID        *string         `gorm:"column:gateway_order_id"`
	GatewayPaymentID      *string         `gorm:"column:gateway_payment_id"`
	CreatedAt             time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *Entitlement) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
