package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	"github.com/orchardlabs/storefront-backend/pkg/enums"
	"github.com/orchardlabs/storefront-backend/pkg/pagination"
)

// Repository persists orders and their line items.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the order together with its items.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByGatewayOrderID loads an order by its remote payment reference.
func (r *Repository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "gateway_order_id = ?", gatewayOrderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaidByGatewayOrder flips the order to paid/confirmed, guarded on
// is_paid = false so repeat confirmations are no-ops. It returns whether
// this call performed the flip. A missing order surfaces as
// gorm.ErrRecordNotFound.
func (r *Repository) MarkPaidByGatewayOrder(ctx context.Context, gatewayOrderID, paymentID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("gateway_order_id = ? AND is_paid = ?", gatewayOrderID, false).
		Updates(map[string]any{
			"is_paid":            true,
			"payment_status":     enums.PaymentStatusPaid,
			"order_status":       enums.OrderStatusConfirmed,
			"gateway_payment_id": paymentID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// Either already paid (repeat delivery) or unknown reference.
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("gateway_order_id = ?", gatewayOrderID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, gorm.ErrRecordNotFound
	}
	return false, nil
}

// UpdateStatus advances the fulfillment status of an order.
func (r *Repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("order_status", status).Error
}

// ListByStore returns one page of the store's orders, newest first, with
// optional payment and status filters.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, page pagination.Params, filters ListFilters) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(page.Limit)
	fetchLimit := pagination.FetchLimit(page.Limit)

	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ?", storeID)

	if filters.IsPaid != nil {
		qb = qb.Where("is_paid = ?", *filters.IsPaid)
	}
	if filters.OrderStatus != nil {
		qb = qb.Where("order_status = ?", *filters.OrderStatus)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = qb.Order("created_at DESC").Order("id DESC").Limit(fetchLimit).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := &ListResult{Orders: rows}
	if len(rows) > pageSize {
		result.Orders = rows[:pageSize]
		last := result.Orders[len(result.Orders)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}
