package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable catalog entry. Price is the live catalog price;
// orders snapshot it into their items at creation time and never read it
// back. StockQuantity may only be decremented through the inventory ledger's
// guarded update unless SellWhenOutOfStock bypasses tracking.
type Product struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	StoreID            uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	Name               string          `gorm:"column:name;not null"`
	Price              decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	StockQuantity      int             `gorm:"column:stock_quantity;not null;default:0"`
	SellWhenOutOfStock bool            `gorm:"column:sell_when_out_of_stock;not null;default:false"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
