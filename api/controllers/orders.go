package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orchardlabs/storefront-backend/api/responses"
	"github.com/orchardlabs/storefront-backend/api/validators"
	ordersvc "github.com/orchardlabs/storefront-backend/internal/orders"
	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	"github.com/orchardlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
	"github.com/orchardlabs/storefront-backend/pkg/logger"
	"github.com/orchardlabs/storefront-backend/pkg/pagination"
)

type orderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type orderResponse struct {
	ID               uuid.UUID           `json:"id"`
	StoreID          uuid.UUID           `json:"store_id"`
	CustomerID       *uuid.UUID          `json:"customer_id,omitempty"`
	IsPaid           bool                `json:"is_paid"`
	PaymentStatus    string              `json:"payment_status"`
	OrderStatus      string              `json:"order_status"`
	PaymentMethod    string              `json:"payment_method"`
	Phone            string              `json:"phone"`
	Email            string              `json:"email"`
	Address          string              `json:"address"`
	GatewayOrderID   *string             `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string             `json:"gateway_payment_id,omitempty"`
	Items            []orderItemResponse `json:"items"`
	CreatedAt        time.Time           `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	if order == nil {
		return orderResponse{}
	}
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return orderResponse{
		ID:               order.ID,
		StoreID:          order.StoreID,
		CustomerID:       order.CustomerID,
		IsPaid:           order.IsPaid,
		PaymentStatus:    string(order.PaymentStatus),
		OrderStatus:      string(order.OrderStatus),
		PaymentMethod:    string(order.PaymentMethod),
		Phone:            order.Phone,
		Email:            order.Email,
		Address:          order.Address,
		GatewayOrderID:   order.GatewayOrderID,
		GatewayPaymentID: order.GatewayPaymentID,
		Items:            items,
		CreatedAt:        order.CreatedAt,
	}
}

// OrderList pages through an owned store's orders, newest first.
func OrderList(svc ordersvc.Service, storeSvc storeAccessChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		storeID, err := requireOwnedStore(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid limit"))
				return
			}
			page.Limit = limit
		}

		filters, err := orderFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListStoreOrders(r.Context(), storeID, page, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := pagination.Page[orderResponse]{
			Items:      make([]orderResponse, 0, len(result.Orders)),
			NextCursor: result.NextCursor,
		}
		for i := range result.Orders {
			out.Items = append(out.Items, newOrderResponse(&result.Orders[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func orderFiltersFromQuery(r *http.Request) (ordersvc.ListFilters, error) {
	var filters ordersvc.ListFilters

	if raw := r.URL.Query().Get("is_paid"); raw != "" {
		paid, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid is_paid")
		}
		filters.IsPaid = &paid
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := enums.OrderStatus(raw)
		if !status.IsValid() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
		}
		filters.OrderStatus = &status
	}
	return filters, nil
}

// OrderDetail returns one order of an owned store, items included.
func OrderDetail(svc ordersvc.Service, storeSvc storeAccessChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		storeID, err := requireOwnedStore(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), storeID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderStatusUpdate moves an order through the fulfillment states.
func OrderStatusUpdate(svc ordersvc.Service, storeSvc storeAccessChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		storeID, err := requireOwnedStore(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := enums.OrderStatus(payload.Status)
		if !status.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status"))
			return
		}

		if err := svc.UpdateOrderStatus(r.Context(), storeID, orderID, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}
