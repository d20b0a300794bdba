package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
)

// Line is one requested product quantity from a checkout payload.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlannedItem is a validated line with the catalog price snapshotted at
// planning time.
type PlannedItem struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int
	Price     decimal.Decimal
}

// Plan is the outcome of reservation planning. Decrements covers only
// products with stock tracking enabled; bypass products appear in Items but
// never decrement.
type Plan struct {
	Items      []PlannedItem
	Decrements map[uuid.UUID]int
	Total      decimal.Decimal
}

// PlanReservation groups the requested lines per product, loads the store's
// referenced products and fails fast on the first shortfall. Bypass products
// (sell_when_out_of_stock) skip the stock check entirely.
func PlanReservation(ctx context.Context, db *gorm.DB, storeID uuid.UUID, lines []Line) (*Plan, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one product line is required")
	}

	quantities := make(map[uuid.UUID]int, len(lines))
	order := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("quantity for product %s must be positive", line.ProductID))
		}
		if _, seen := quantities[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		quantities[line.ProductID] += line.Quantity
	}

	var products []models.Product
	err := db.WithContext(ctx).
		Where("store_id = ? AND id IN ?", storeID, order).
		Find(&products).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products for reservation")
	}

	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	plan := &Plan{
		Items:      make([]PlannedItem, 0, len(order)),
		Decrements: make(map[uuid.UUID]int),
		Total:      decimal.Zero,
	}
	for _, id := range order {
		product, ok := byID[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s not found in store", id))
		}
		qty := quantities[id]
		if !product.SellWhenOutOfStock {
			if product.StockQuantity < qty {
				return nil, insufficientStock(product.Name)
			}
			plan.Decrements[id] = qty
		}
		plan.Items = append(plan.Items, PlannedItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  qty,
			Price:     product.Price,
		})
		plan.Total = plan.Total.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return plan, nil
}

// Apply executes the planned decrements inside the order transaction. Each
// decrement is a conditional update with a floor guard so concurrent
// checkouts serialize on the product row; zero rows affected means another
// transaction drained the stock first and the whole order must abort.
func Apply(ctx context.Context, tx *gorm.DB, plan *Plan) error {
	if plan == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "nil reservation plan")
	}
	for _, item := range plan.Items {
		qty, tracked := plan.Decrements[item.ProductID]
		if !tracked {
			continue
		}
		res := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ? AND stock_quantity >= ?", item.ProductID, qty).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
		}
		if res.RowsAffected == 0 {
			return insufficientStock(item.Name)
		}
	}
	return nil
}

func insufficientStock(name string) error {
	return pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("insufficient stock for %q", name))
}
