package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	"github.com/orchardlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
	"github.com/orchardlabs/storefront-backend/pkg/logger"
	"github.com/orchardlabs/storefront-backend/pkg/razorpay"
)

// PaymentOrder is what the client needs to open the gateway checkout for a
// plan purchase.
type PaymentOrder struct {
	GatewayOrderID string         `json:"gateway_order_id"`
	AmountMinor    int64          `json:"amount_minor"`
	Currency       string         `json:"currency"`
	KeyID          string         `json:"key_id"`
	Plan           enums.PlanName `json:"plan"`
}

// ActivateInput carries the gateway references returned by a completed plan
// checkout.
type ActivateInput struct {
	Plan             enums.PlanName `json:"plan"`
	GatewayOrderID   string         `json:"gateway_order_id"`
	GatewayPaymentID string         `json:"gateway_payment_id"`
	Signature        string         `json:"signature"`
}

// Service manages the subscription lifecycle: plan purchase orders, payment
// verification and entitlement activation.
type Service interface {
	ListPlans(ctx context.Context) []Plan
	CreatePaymentOrder(ctx context.Context, userID uuid.UUID, plan enums.PlanName) (*PaymentOrder, error)
	Activate(ctx context.Context, userID uuid.UUID, input ActivateInput) (*models.Entitlement, error)
	GetCurrent(ctx context.Context, userID uuid.UUID) (*models.Entitlement, error)
}

type planGateway interface {
	CreateOrder(ctx context.Context, params razorpay.OrderParams) (*razorpay.RemoteOrder, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	KeyID() string
	Currency() string
}

type entitlementStore interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Entitlement, error)
	Replace(ctx context.Context, record *models.Entitlement) (*models.Entitlement, error)
}

type service struct {
	entitlements entitlementStore
	gateway      planGateway
	logger       *logger.Logger
	now          func() time.Time
}

// NewService wires the subscription service. Plan purchases always settle
// through the platform gateway account, never store credentials.
func NewService(entitlements entitlementStore, gateway planGateway, logg *logger.Logger) (Service, error) {
	if entitlements == nil {
		return nil, fmt.Errorf("entitlement repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	return &service{
		entitlements: entitlements,
		gateway:      gateway,
		logger:       logg,
		now:          time.Now,
	}, nil
}

func (s *service) ListPlans(_ context.Context) []Plan {
	return Plans()
}

// CreatePaymentOrder mints a gateway order for the plan's price and tags it
// with the buyer so stray orders can be traced.
func (s *service) CreatePaymentOrder(ctx context.Context, userID uuid.UUID, planName enums.PlanName) (*PaymentOrder, error) {
	plan, ok := PlanByName(planName)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown plan %q", planName))
	}

	remote, err := s.gateway.CreateOrder(ctx, razorpay.OrderParams{
		AmountMinor: razorpay.AmountMinor(plan.Price),
		Currency:    s.gateway.Currency(),
		Receipt:     "sub_" + uuid.NewString(),
		Notes: map[string]interface{}{
			"user_id": userID.String(),
			"plan":    string(plan.Name),
		},
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		lctx := s.logger.WithFields(ctx, map[string]any{
			"user_id":          userID,
			"plan":             plan.Name,
			"gateway_order_id": remote.ID,
		})
		s.logger.Info(lctx, "subscription payment order created")
	}
	return &PaymentOrder{
		GatewayOrderID: remote.ID,
		AmountMinor:    remote.AmountMinor,
		Currency:       remote.Currency,
		KeyID:          s.gateway.KeyID(),
		Plan:           plan.Name,
	}, nil
}

// Activate verifies the checkout signature and replaces the user's
// entitlement wholesale with the purchased plan's quotas and window. A prior
// entitlement row, expired or not, is overwritten rather than extended.
func (s *service) Activate(ctx context.Context, userID uuid.UUID, input ActivateInput) (*models.Entitlement, error) {
	plan, ok := PlanByName(input.Plan)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown plan %q", input.Plan))
	}
	if strings.TrimSpace(input.GatewayOrderID) == "" || strings.TrimSpace(input.GatewayPaymentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order and payment references are required")
	}
	if strings.TrimSpace(input.Signature) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment signature is required")
	}

	if !s.gateway.VerifyPaymentSignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		if s.logger != nil {
			lctx := s.logger.WithFields(ctx, map[string]any{
				"user_id":          userID,
				"gateway_order_id": input.GatewayOrderID,
			})
			s.logger.Warn(lctx, "subscription signature verification failed")
		}
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "payment signature verification failed")
	}

	start := s.now().UTC()
	end := plan.PeriodEnd(start)
	orderRef := input.GatewayOrderID
	paymentRef := input.GatewayPaymentID

	record, err := s.entitlements.Replace(ctx, &models.Entitlement{
		UserID:                userID,
		PlanName:              plan.Name,
		IsSubscribed:          true,
		Price:                 plan.Price,
		DurationMonths:        plan.DurationMonths,
		StoresAllowed:         plan.StoresAllowed,
		ProductsAllowed:       plan.ProductsAllowed,
		SubscriptionStartDate: start,
		SubscriptionEndDate:   &end,
		GatewayOrderID:        &orderRef,
		GatewayPaymentID:      &paymentRef,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace entitlement")
	}

	if s.logger != nil {
		lctx := s.logger.WithFields(ctx, map[string]any{
			"user_id": userID,
			"plan":    plan.Name,
			"ends_at": end,
		})
		s.logger.Info(lctx, "subscription activated")
	}
	return record, nil
}

// GetCurrent returns the user's entitlement row as stored. Expiry is the
// caller's concern; the row is reported verbatim.
func (s *service) GetCurrent(ctx context.Context, userID uuid.UUID) (*models.Entitlement, error) {
	record, err := s.entitlements.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no entitlement record")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load entitlement")
	}
	return record, nil
}
