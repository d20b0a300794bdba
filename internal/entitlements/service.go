package entitlements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	"github.com/orchardlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
)

// Service exposes entitlement reads and creation gates.
type Service interface {
	GetForUser(ctx context.Context, userID uuid.UUID) (*models.Entitlement, error)
	EnsureCanCreateStore(ctx context.Context, userID uuid.UUID) error
	EnsureCanCreateProduct(ctx context.Context, userID uuid.UUID) error
}

type storeCounter interface {
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

type productCounter interface {
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

type service struct {
	repo     *Repository
	stores   storeCounter
	products productCounter
	now      func() time.Time
}

// NewService constructs the entitlement service.
func NewService(repo *Repository, stores storeCounter, products productCounter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("entitlement repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store counter required")
	}
	if products == nil {
		return nil, fmt.Errorf("product counter required")
	}
	return &service{
		repo:     repo,
		stores:   stores,
		products: products,
		now:      time.Now,
	}, nil
}

// GetForUser loads the user's entitlement record.
func (s *service) GetForUser(ctx context.Context, userID uuid.UUID) (*models.Entitlement, error) {
	record, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "entitlement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load entitlement")
	}
	return record, nil
}

// EnsureCanCreateStore gates store creation against the plan quota.
func (s *service) EnsureCanCreateStore(ctx context.Context, userID uuid.UUID) error {
	record, err := s.loadRecord(ctx, userID)
	if err != nil {
		return err
	}
	count, err := s.stores.CountByOwner(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count stores")
	}
	return CanCreate(enums.ResourceStore, record, int(count), s.now())
}

// EnsureCanCreateProduct gates product creation against the account-wide
// product quota.
func (s *service) EnsureCanCreateProduct(ctx context.Context, userID uuid.UUID) error {
	record, err := s.loadRecord(ctx, userID)
	if err != nil {
		return err
	}
	count, err := s.products.CountByOwner(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	return CanCreate(enums.ResourceProduct, record, int(count), s.now())
}

// loadRecord tolerates a missing row: the resolver treats nil as having no
// entitlement at all.
func (s *service) loadRecord(ctx context.Context, userID uuid.UUID) (*models.Entitlement, error) {
	record, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load entitlement")
	}
	return record, nil
}
