package customers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
	"github.com/orchardlabs/storefront-backend/pkg/types"
)

// Contact is the buyer-entered identity from a checkout payload.
type Contact struct {
	FullName        string
	Email           string
	Phone           string
	ShippingAddress types.ShippingAddress
}

// Repository persists deduplicated customer identities.
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

// Resolve upserts the contact on the global email uniqueness constraint.
// Repeat checkouts from the same address update name, phone and shipping
// address in place (last write wins); concurrent first-time checkouts settle
// on a single row through ON CONFLICT.
func (r *Repository) Resolve(ctx context.Context, storeID uuid.UUID, contact Contact) (*models.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(contact.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}

	customer := &models.Customer{
		StoreID:         storeID,
		FullName:        contact.FullName,
		Email:           email,
		Phone:           contact.Phone,
		ShippingAddress: contact.ShippingAddress.Serialize(),
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"full_name",
				"phone",
				"shipping_address",
				"updated_at",
			}),
		}).
		Create(customer).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert customer")
	}

	// The upsert keeps the existing row's id on conflict; read it back so
	// callers always hold the canonical identity.
	var stored models.Customer
	if err := r.db.WithContext(ctx).First(&stored, "email = ?", email).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer after upsert")
	}
	return &stored, nil
}

// FindByEmail loads the customer owning the unique email, if any.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		First(&customer, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}
