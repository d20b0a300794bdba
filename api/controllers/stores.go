package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orchardlabs/storefront-backend/api/middleware"
	"github.com/orchardlabs/storefront-backend/api/responses"
	"github.com/orchardlabs/storefront-backend/api/validators"
	storesvc "github.com/orchardlabs/storefront-backend/internal/stores"
	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
	"github.com/orchardlabs/storefront-backend/pkg/logger"
)

type storeResponse struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"name"`
	HasGatewayCredentials bool      `json:"has_gateway_credentials"`
	CreatedAt             time.Time `json:"created_at"`
}

func newStoreResponse(store *models.Store) storeResponse {
	if store == nil {
		return storeResponse{}
	}
	return storeResponse{
		ID:                    store.ID,
		Name:                  store.Name,
		HasGatewayCredentials: store.HasGatewayCredentials(),
		CreatedAt:             store.CreatedAt,
	}
}

// StoreCreate provisions a storefront for the authenticated user, subject to
// their plan quota.
func StoreCreate(svc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createStoreRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.CreateStore(r.Context(), userID, storesvc.CreateStoreInput{Name: payload.Name})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newStoreResponse(store))
	}
}

type createStoreRequest struct {
	Name string `json:"name" validate:"required"`
}

// StoreList returns the authenticated user's stores.
func StoreList(svc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMyStores(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]storeResponse, 0, len(list))
		for i := range list {
			out = append(out, newStoreResponse(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// StoreDetail returns one owned store.
func StoreDetail(svc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.GetOwnedStore(r.Context(), userID, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newStoreResponse(store))
	}
}

type gatewayCredentialsRequest struct {
	KeyID     string `json:"key_id"`
	KeySecret string `json:"key_secret"`
}

// StoreSetGatewayCredentials installs or clears a store's payment-processor
// key pair. Both fields empty clears the override.
func StoreSetGatewayCredentials(svc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload gatewayCredentialsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetGatewayCredentials(r.Context(), userID, storeID, payload.KeyID, payload.KeySecret); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

type storeAccessChecker interface {
	GetOwnedStore(ctx context.Context, userID, storeID uuid.UUID) (*models.Store, error)
}

// requireOwnedStore resolves the storeId path param and enforces ownership.
func requireOwnedStore(r *http.Request, svc storeAccessChecker) (uuid.UUID, error) {
	if svc == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable")
	}
	userID, err := requireUserID(r)
	if err != nil {
		return uuid.Nil, err
	}
	storeID, err := pathUUID(r, "storeId")
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := svc.GetOwnedStore(r.Context(), userID, storeID); err != nil {
		return uuid.Nil, err
	}
	return storeID, nil
}

func requireUserID(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return userID, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
