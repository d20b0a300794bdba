package orders

import (
	"github.com/google/uuid"

	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	"github.com/orchardlabs/storefront-backend/pkg/enums"
	"github.com/orchardlabs/storefront-backend/pkg/types"
)

// CheckoutItemInput is one requested product line.
type CheckoutItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutInput is the coordinator's settlement-mode tagged request. An
// empty PaymentMethod defaults to gateway settlement.
type CheckoutInput struct {
	FullName        string
	Email           string
	Phone           string
	ShippingAddress types.ShippingAddress
	Items           []CheckoutItemInput
	PaymentMethod   enums.PaymentMethod
}

// GatewayDescriptor is what the storefront needs to open the payment widget.
type GatewayDescriptor struct {
	GatewayOrderID string `json:"gatewayOrderId"`
	AmountMinor    int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"keyId"`
}

// CheckoutResult carries the committed order plus, for gateway settlement,
// the remote payment descriptor.
type CheckoutResult struct {
	Order   *models.Order
	Gateway *GatewayDescriptor
}

// ListFilters narrows the store order listing.
type ListFilters struct {
	IsPaid      *bool
	OrderStatus *enums.OrderStatus
}

// ListResult is one page of a store's orders.
type ListResult struct {
	Orders     []models.Order
	NextCursor string
}
