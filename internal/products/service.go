package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
)

// Service exposes catalog management for store owners.
type Service interface {
	CreateProduct(ctx context.Context, userID, storeID uuid.UUID, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, userID, storeID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, userID, storeID, productID uuid.UUID) error
	ListProducts(ctx context.Context, userID, storeID uuid.UUID) ([]models.Product, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name               string
	Price              decimal.Decimal
	StockQuantity      int
	SellWhenOutOfStock bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name               *string
	Price              *decimal.Decimal
	StockQuantity      *int
	SellWhenOutOfStock *bool
}

type storeGuard interface {
	GetOwnedStore(ctx context.Context, userID, storeID uuid.UUID) (*models.Store, error)
}

type creationGate interface {
	EnsureCanCreateProduct(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo   *Repository
	stores storeGuard
	gate   creationGate
}

// NewService constructs the product service.
func NewService(repo *Repository, stores storeGuard, gate creationGate) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store guard required")
	}
	if gate == nil {
		return nil, fmt.Errorf("entitlement gate required")
	}
	return &service{repo: repo, stores: stores, gate: gate}, nil
}

// CreateProduct creates a catalog product after ownership and entitlement
// checks pass.
func (s *service) CreateProduct(ctx context.Context, userID, storeID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	if err := validateProductValues(input.Name, input.Price, input.StockQuantity); err != nil {
		return nil, err
	}
	if _, err := s.stores.GetOwnedStore(ctx, userID, storeID); err != nil {
		return nil, err
	}
	if err := s.gate.EnsureCanCreateProduct(ctx, userID); err != nil {
		return nil, err
	}

	product := &models.Product{
		StoreID:            storeID,
		Name:               strings.TrimSpace(input.Name),
		Price:              input.Price,
		StockQuantity:      input.StockQuantity,
		SellWhenOutOfStock: input.SellWhenOutOfStock,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return created, nil
}

// UpdateProduct applies the provided field changes to an owned product.
func (s *service) UpdateProduct(ctx context.Context, userID, storeID, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if _, err := s.stores.GetOwnedStore(ctx, userID, storeID); err != nil {
		return nil, err
	}

	product, err := s.loadStoreProduct(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
	}
	if input.SellWhenOutOfStock != nil {
		product.SellWhenOutOfStock = *input.SellWhenOutOfStock
	}
	if err := validateProductValues(product.Name, product.Price, product.StockQuantity); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return updated, nil
}

// DeleteProduct removes an owned product.
func (s *service) DeleteProduct(ctx context.Context, userID, storeID, productID uuid.UUID) error {
	if _, err := s.stores.GetOwnedStore(ctx, userID, storeID); err != nil {
		return err
	}
	if _, err := s.loadStoreProduct(ctx, storeID, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

// ListProducts returns the owned store's catalog.
func (s *service) ListProducts(ctx context.Context, userID, storeID uuid.UUID) ([]models.Product, error) {
	if _, err := s.stores.GetOwnedStore(ctx, userID, storeID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return rows, nil
}

func (s *service) loadStoreProduct(ctx context.Context, storeID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if product.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func validateProductValues(name string, price decimal.Decimal, stock int) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price cannot be negative")
	}
	if stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}
	return nil
}
