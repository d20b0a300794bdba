package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orchardlabs/storefront-backend/api/responses"
	"github.com/orchardlabs/storefront-backend/api/validators"
	productsvc "github.com/orchardlabs/storefront-backend/internal/products"
	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
	"github.com/orchardlabs/storefront-backend/pkg/logger"
)

type productResponse struct {
	ID                 uuid.UUID       `json:"id"`
	StoreID            uuid.UUID       `json:"store_id"`
	Name               string          `json:"name"`
	Price              decimal.Decimal `json:"price"`
	StockQuantity      int             `json:"stock_quantity"`
	SellWhenOutOfStock bool            `json:"sell_when_out_of_stock"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func newProductResponse(p *models.Product) productResponse {
	if p == nil {
		return productResponse{}
	}
	return productResponse{
		ID:                 p.ID,
		StoreID:            p.StoreID,
		Name:               p.Name,
		Price:              p.Price,
		StockQuantity:      p.StockQuantity,
		SellWhenOutOfStock: p.SellWhenOutOfStock,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

type createProductRequest struct {
	Name               string          `json:"name" validate:"required"`
	Price              decimal.Decimal `json:"price" validate:"required"`
	StockQuantity      int             `json:"stock_quantity" validate:"min=0"`
	SellWhenOutOfStock bool            `json:"sell_when_out_of_stock"`
}

type updateProductRequest struct {
	Name               *string          `json:"name,omitempty"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	StockQuantity      *int             `json:"stock_quantity,omitempty" validate:"omitempty,min=0"`
	SellWhenOutOfStock *bool            `json:"sell_when_out_of_stock,omitempty"`
}

// ProductCreate adds a catalog entry to an owned store, subject to the plan's
// product quota.
func ProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
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

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), userID, storeID, productsvc.CreateProductInput{
			Name:               payload.Name,
			Price:              payload.Price,
			StockQuantity:      payload.StockQuantity,
			SellWhenOutOfStock: payload.SellWhenOutOfStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newProductResponse(product))
	}
}

// ProductUpdate applies a partial update to an owned product.
func ProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
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
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), userID, storeID, productID, productsvc.UpdateProductInput{
			Name:               payload.Name,
			Price:              payload.Price,
			StockQuantity:      payload.StockQuantity,
			SellWhenOutOfStock: payload.SellWhenOutOfStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newProductResponse(product))
	}
}

// ProductDelete removes an owned product.
func ProductDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
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
		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), userID, storeID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ProductList returns the catalog of an owned store.
func ProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
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

		list, err := svc.ListProducts(r.Context(), userID, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]productResponse, 0, len(list))
		for i := range list {
			out = append(out, newProductResponse(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
