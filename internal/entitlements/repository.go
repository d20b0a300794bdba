package entitlements

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orchardlabs/storefront-backend/pkg/db/models"
)

// Repository persists the one-row-per-user entitlement records.
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

// FindByUserID loads the entitlement record for the user.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Entitlement, error) {
	var record models.Entitlement
	if err := r.db.WithContext(ctx).First(&record, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a fresh entitlement row, used when seeding the signup
// default.
func (r *Repository) Create(ctx context.Context, record *models.Entitlement) (*models.Entitlement, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Replace swaps the user's entitlement wholesale via an upsert on the
// user_id uniqueness constraint, so concurrent activations settle on a
// single winning row.
func (r *Repository) Replace(ctx context.Context, record *models.Entitlement) (*models.Entitlement, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"plan_name",
				"is_subscribed",
				"price",
				"duration_months",
				"stores_allowed",
				"products_allowed",
				"subscription_start_date",
				"subscription_end_date",
				"gateway_order_id",
				"gateway_payment_id",
				"updated_at",
			}),
		}).
		Create(record).Error
	if err != nil {
		return nil, err
	}
	return record, nil
}
