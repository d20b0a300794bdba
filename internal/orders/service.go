package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orchardlabs/storefront-backend/internal/customers"
	"github.com/orchardlabs/storefront-backend/internal/inventory"
	"github.com/orchardlabs/storefront-backend/pkg/db"
	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	"github.com/orchardlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
	"github.com/orchardlabs/storefront-backend/pkg/logger"
	"github.com/orchardlabs/storefront-backend/pkg/metrics"
	"github.com/orchardlabs/storefront-backend/pkg/pagination"
	"github.com/orchardlabs/storefront-backend/pkg/razorpay"
)

// Service coordinates checkout transactions and store order reads.
type Service interface {
	PlaceOrder(ctx context.Context, storeID uuid.UUID, input CheckoutInput) (*CheckoutResult, error)
	MarkPaidByGatewayOrder(ctx context.Context, gatewayOrderID, paymentID string) (bool, error)
	GetOrder(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error)
	ListStoreOrders(ctx context.Context, storeID uuid.UUID, page pagination.Params, filters ListFilters) (*ListResult, error)
	UpdateOrderStatus(ctx context.Context, storeID, orderID uuid.UUID, status enums.OrderStatus) error
}

type storeLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Gateway is the payment-order surface the coordinator needs.
type Gateway interface {
	CreateOrder(ctx context.Context, params razorpay.OrderParams) (*razorpay.RemoteOrder, error)
	KeyID() string
	Currency() string
}

// GatewayResolver yields the gateway client for a store: the store's own
// account when it carries credentials, otherwise the platform account.
type GatewayResolver interface {
	ForStore(store *models.Store) (Gateway, error)
}

type service struct {
	repo      *Repository
	dbClient  *db.Client
	stores    storeLoader
	customers *customers.Repository
	gateways  GatewayResolver
	metrics   *metrics.CommerceMetrics
	logger    *logger.Logger
}

// NewService constructs the order transaction coordinator.
func NewService(
	repo *Repository,
	dbClient *db.Client,
	stores storeLoader,
	customerRepo *customers.Repository,
	gateways GatewayResolver,
	commerceMetrics *metrics.CommerceMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store loader required")
	}
	if customerRepo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if gateways == nil {
		return nil, fmt.Errorf("gateway resolver required")
	}
	return &service{
		repo:      repo,
		dbClient:  dbClient,
		stores:    stores,
		customers: customerRepo,
		gateways:  gateways,
		metrics:   commerceMetrics,
		logger:    logg,
	}, nil
}

// PlaceOrder runs the whole checkout: reservation planning, remote order
// minting for gateway settlement, then a single transaction that resolves
// the customer, applies stock decrements and creates the order with price
// snapshots. The remote order is minted before the local transaction, so a
// commit failure can orphan a remote order; those are never charged and are
// reconciled out of band.
func (s *service) PlaceOrder(ctx context.Context, storeID uuid.UUID, input CheckoutInput) (*CheckoutResult, error) {
	started := time.Now()

	method := input.PaymentMethod
	if method == "" {
		method = enums.PaymentMethodGateway
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment method %q", method))
	}
	if err := validateContact(input); err != nil {
		return nil, err
	}

	store, err := s.loadStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	lines := make([]inventory.Line, 0, len(input.Items))
	for _, item := range input.Items {
		lines = append(lines, inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	plan, err := inventory.PlanReservation(ctx, s.dbClient.DB(), storeID, lines)
	if err != nil {
		s.metrics.IncCheckoutFailure("reservation")
		return nil, err
	}

	var (
		remote  *razorpay.RemoteOrder
		gateway Gateway
	)
	if method == enums.PaymentMethodGateway {
		gateway, err = s.gateways.ForStore(store)
		if err != nil {
			s.metrics.IncCheckoutFailure("gateway_credentials")
			return nil, err
		}
		remote, err = gateway.CreateOrder(ctx, razorpay.OrderParams{
			AmountMinor: razorpay.AmountMinor(plan.Total),
			Currency:    gateway.Currency(),
			Receipt:     "rcpt_" + uuid.NewString(),
			Notes: map[string]interface{}{
				"store_id": storeID.String(),
			},
		})
		if err != nil {
			s.metrics.IncCheckoutFailure("gateway_order")
			return nil, err
		}
	}

	order := &models.Order{
		StoreID:       storeID,
		PaymentMethod: method,
		PaymentStatus: enums.PaymentStatusPending,
		OrderStatus:   enums.OrderStatusPending,
		Phone:         input.Phone,
		Email:         strings.ToLower(strings.TrimSpace(input.Email)),
		Address:       input.ShippingAddress.Serialize(),
	}
	if method == enums.PaymentMethodCash {
		order.IsPaid = true
		order.PaymentStatus = enums.PaymentStatusPaid
		order.OrderStatus = enums.OrderStatusConfirmed
	} else {
		order.GatewayOrderID = &remote.ID
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		customer, cerr := s.customers.WithTx(tx).Resolve(ctx, storeID, customers.Contact{
			FullName:        input.FullName,
			Email:           input.Email,
			Phone:           input.Phone,
			ShippingAddress: input.ShippingAddress,
		})
		if cerr != nil {
			return cerr
		}
		order.CustomerID = &customer.ID

		if aerr := inventory.Apply(ctx, tx, plan); aerr != nil {
			return aerr
		}

		order.Items = make([]models.OrderItem, 0, len(plan.Items))
		for _, item := range plan.Items {
			order.Items = append(order.Items, models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			})
		}
		if _, oerr := s.repo.WithTx(tx).Create(ctx, order); oerr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, oerr, "db: insert order")
		}
		return nil
	})
	if err != nil {
		s.metrics.IncCheckoutFailure("transaction")
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "place order")
	}

	s.metrics.IncOrderPlaced(method.String())
	s.metrics.ObserveCheckout(method.String(), time.Since(started))
	if s.logger != nil {
		lctx := s.logger.WithFields(ctx, map[string]any{
			"order_id":       order.ID.String(),
			"store_id":       storeID.String(),
			"payment_method": method.String(),
		})
		s.logger.Info(lctx, "order placed")
	}

	result := &CheckoutResult{Order: order}
	if remote != nil {
		result.Gateway = &GatewayDescriptor{
			GatewayOrderID: remote.ID,
			AmountMinor:    remote.AmountMinor,
			Currency:       remote.Currency,
			KeyID:          gateway.KeyID(),
		}
	}
	return result, nil
}

// MarkPaidByGatewayOrder flips a pending gateway order to paid. Repeat
// confirmations are no-op successes; unknown references are not-found.
func (s *service) MarkPaidByGatewayOrder(ctx context.Context, gatewayOrderID, paymentID string) (bool, error) {
	if strings.TrimSpace(gatewayOrderID) == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "gateway order reference is required")
	}
	flipped, err := s.repo.MarkPaidByGatewayOrder(ctx, gatewayOrderID, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("no order for gateway reference %s", gatewayOrderID))
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark order paid")
	}
	return flipped, nil
}

// GetOrder loads an order scoped to the store.
func (s *service) GetOrder(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	if order.StoreID != storeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// ListStoreOrders pages through the store's orders.
func (s *service) ListStoreOrders(ctx context.Context, storeID uuid.UUID, page pagination.Params, filters ListFilters) (*ListResult, error) {
	result, err := s.repo.ListByStore(ctx, storeID, page, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return result, nil
}

// UpdateOrderStatus advances fulfillment for a store order.
func (s *service) UpdateOrderStatus(ctx context.Context, storeID, orderID uuid.UUID, status enums.OrderStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", status))
	}
	if _, err := s.GetOrder(ctx, storeID, orderID); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
	}
	return nil
}

func (s *service) loadStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load store")
	}
	return store, nil
}

func validateContact(input CheckoutInput) error {
	if strings.TrimSpace(input.FullName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact email is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact phone is required")
	}
	return nil
}
