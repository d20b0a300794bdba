package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/orchardlabs/storefront-backend/api/responses"
	"github.com/orchardlabs/storefront-backend/api/validators"
	ordersvc "github.com/orchardlabs/storefront-backend/internal/orders"
	"github.com/orchardlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
	"github.com/orchardlabs/storefront-backend/pkg/logger"
	"github.com/orchardlabs/storefront-backend/pkg/types"
)

type checkoutItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type checkoutRequest struct {
	FullName        string                `json:"full_name" validate:"required"`
	Email           string                `json:"email" validate:"required,email"`
	Phone           string                `json:"phone" validate:"required"`
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
	Items           []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	PaymentMethod   string                `json:"payment_method"`
}

type checkoutResponse struct {
	Order   orderResponse               `json:"order"`
	Gateway *ordersvc.GatewayDescriptor `json:"gateway,omitempty"`
}

// Checkout is the public storefront purchase endpoint. Cash orders settle
// immediately; gateway orders return the payment descriptor for the widget.
func Checkout(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		storeID, err := pathUUID(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]ordersvc.CheckoutItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, ordersvc.CheckoutItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		result, err := svc.PlaceOrder(r.Context(), storeID, ordersvc.CheckoutInput{
			FullName:        payload.FullName,
			Email:           payload.Email,
			Phone:           payload.Phone,
			ShippingAddress: payload.ShippingAddress,
			Items:           items,
			PaymentMethod:   enums.PaymentMethod(payload.PaymentMethod),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			Order:   newOrderResponse(result.Order),
			Gateway: result.Gateway,
		})
	}
}
