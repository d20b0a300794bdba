package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
)

// Service exposes store management for authenticated owners.
type Service interface {
	CreateStore(ctx context.Context, userID uuid.UUID, input CreateStoreInput) (*models.Store, error)
	ListMyStores(ctx context.Context, userID uuid.UUID) ([]models.Store, error)
	GetOwnedStore(ctx context.Context, userID, storeID uuid.UUID) (*models.Store, error)
	SetGatewayCredentials(ctx context.Context, userID, storeID uuid.UUID, keyID, keySecret string) error
}

// CreateStoreInput holds the validated payload to create a store.
type CreateStoreInput struct {
	Name string
}

type creationGate interface {
	EnsureCanCreateStore(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo *Repository
	gate creationGate
}

// NewService constructs the store service.
func NewService(repo *Repository, gate creationGate) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if gate == nil {
		return nil, fmt.Errorf("entitlement gate required")
	}
	return &service{repo: repo, gate: gate}, nil
}

// CreateStore creates a store after the entitlement gate admits it.
func (s *service) CreateStore(ctx context.Context, userID uuid.UUID, input CreateStoreInput) (*models.Store, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}

	if err := s.gate.EnsureCanCreateStore(ctx, userID); err != nil {
		return nil, err
	}

	store, err := s.repo.Create(ctx, &models.Store{Name: name, OwnerID: userID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert store")
	}
	return store, nil
}

// ListMyStores returns the caller's stores.
func (s *service) ListMyStores(ctx context.Context, userID uuid.UUID) ([]models.Store, error) {
	rows, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list stores")
	}
	return rows, nil
}

// GetOwnedStore loads a store and enforces ownership.
func (s *service) GetOwnedStore(ctx context.Context, userID, storeID uuid.UUID) (*models.Store, error) {
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load store")
	}
	if store.OwnerID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "store does not belong to you")
	}
	return store, nil
}

// SetGatewayCredentials stores the owner's gateway key pair. Both values
// must be present or both empty (empty clears the pair, falling back to the
// platform account).
func (s *service) SetGatewayCredentials(ctx context.Context, userID, storeID uuid.UUID, keyID, keySecret string) error {
	if _, err := s.GetOwnedStore(ctx, userID, storeID); err != nil {
		return err
	}

	keyID = strings.TrimSpace(keyID)
	keySecret = strings.TrimSpace(keySecret)
	if (keyID == "") != (keySecret == "") {
		return pkgerrors.New(pkgerrors.CodeValidation, "gateway key id and secret must be provided together")
	}

	var idPtr, secretPtr *string
	if keyID != "" {
		idPtr, secretPtr = &keyID, &keySecret
	}
	if err := s.repo.UpdateGatewayCredentials(ctx, storeID, idPtr, secretPtr); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update gateway credentials")
	}
	return nil
}
