package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
	"github.com/orchardlabs/storefront-backend/pkg/logger"
	"github.com/orchardlabs/storefront-backend/pkg/metrics"
)

// EventClaimTTL bounds how long a processed webhook event id suppresses
// replays.
const EventClaimTTL = 24 * time.Hour

// EventPaymentCaptured is the only webhook event type the platform acts on.
const EventPaymentCaptured = "payment.captured"

// ConfirmInput is the checkout callback payload from the storefront widget.
type ConfirmInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// Service verifies payment confirmations and flips orders to paid.
type Service interface {
	ConfirmCheckout(ctx context.Context, storeID uuid.UUID, input ConfirmInput) error
	HandleWebhook(ctx context.Context, eventID string, body []byte, signature string) error
}

type orderFlipper interface {
	MarkPaidByGatewayOrder(ctx context.Context, gatewayOrderID, paymentID string) (bool, error)
}

type storeLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

type paymentVerifier interface {
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
}

type webhookVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) bool
}

type verifierResolver interface {
	VerifierForStore(store *models.Store) (paymentVerifier, error)
}

type eventGuard interface {
	ClaimEvent(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	ReleaseEvent(ctx context.Context, eventID string) error
}

type service struct {
	orders   orderFlipper
	stores   storeLoader
	verifier verifierResolver
	webhook  webhookVerifier
	guard    eventGuard
	metrics  *metrics.CommerceMetrics
	logger   *logger.Logger
}

// NewService constructs the payment confirmation service. guard may be nil
// when Redis is not configured; replay suppression then falls back to the
// database's idempotent paid flip alone.
func NewService(
	orderSvc orderFlipper,
	stores storeLoader,
	verifier verifierResolver,
	webhook webhookVerifier,
	guard eventGuard,
	commerceMetrics *metrics.CommerceMetrics,
	logg *logger.Logger,
) (Service, error) {
	if orderSvc == nil {
		return nil, fmt.Errorf("order service required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store loader required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("verifier resolver required")
	}
	return &service{
		orders:   orderSvc,
		stores:   stores,
		verifier: verifier,
		webhook:  webhook,
		guard:    guard,
		metrics:  commerceMetrics,
		logger:   logg,
	}, nil
}

// ConfirmCheckout verifies the callback signature against the credentials
// that minted the order and flips it to paid. An invalid signature rejects
// the request with zero state mutation.
func (s *service) ConfirmCheckout(ctx context.Context, storeID uuid.UUID, input ConfirmInput) error {
	if strings.TrimSpace(input.GatewayOrderID) == "" || strings.TrimSpace(input.GatewayPaymentID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "gateway order and payment references are required")
	}
	if strings.TrimSpace(input.Signature) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment signature is required")
	}

	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load store")
	}

	verifier, err := s.verifier.VerifierForStore(store)
	if err != nil {
		return err
	}
	if !verifier.VerifyPaymentSignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		if s.logger != nil {
			s.logger.Warn(s.logger.WithField(ctx, "gateway_order_id", input.GatewayOrderID),
				"checkout confirmation rejected: signature mismatch")
		}
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "payment signature verification failed")
	}

	flipped, err := s.orders.MarkPaidByGatewayOrder(ctx, input.GatewayOrderID, input.GatewayPaymentID)
	if err != nil {
		return err
	}
	if flipped {
		s.metrics.IncPaymentCaptured("callback")
	}
	return nil
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook verifies the raw-body signature, suppresses replayed event
// ids through the Redis guard and processes payment.captured events. Other
// event types acknowledge without acting.
func (s *service) HandleWebhook(ctx context.Context, eventID string, body []byte, signature string) error {
	if s.webhook == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook processing is not configured")
	}
	if !s.webhook.VerifyWebhookSignature(body, signature) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature verification failed")
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook payload")
	}
	if event.Event != EventPaymentCaptured {
		return nil
	}

	orderRef := event.Payload.Payment.Entity.OrderID
	paymentRef := event.Payload.Payment.Entity.ID
	if orderRef == "" || paymentRef == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook payload missing payment references")
	}

	claimed := true
	if s.guard != nil && eventID != "" {
		var err error
		claimed, err = s.guard.ClaimEvent(ctx, eventID, EventClaimTTL)
		if err != nil {
			// fall through: the paid flip is idempotent on its own
			claimed = true
			if s.logger != nil {
				s.logger.Warn(ctx, "webhook idempotency guard unavailable")
			}
		}
	}
	if !claimed {
		return nil
	}

	flipped, err := s.orders.MarkPaidByGatewayOrder(ctx, orderRef, paymentRef)
	if err != nil {
		if s.guard != nil && eventID != "" {
			_ = s.guard.ReleaseEvent(ctx, eventID)
		}
		return err
	}
	if flipped {
		s.metrics.IncPaymentCaptured("webhook")
	}
	if s.logger != nil {
		lctx := s.logger.WithFields(ctx, map[string]any{
			"gateway_order_id": orderRef,
			"flipped":          flipped,
		})
		s.logger.Info(lctx, "payment.captured processed")
	}
	return nil
}
