package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orchardlabs/storefront-backend/api/responses"
	"github.com/orchardlabs/storefront-backend/api/validators"
	subscriptionsvc "github.com/orchardlabs/storefront-backend/internal/subscriptions"
	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	"github.com/orchardlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
	"github.com/orchardlabs/storefront-backend/pkg/logger"
)

type entitlementResponse struct {
	PlanName              string          `json:"plan_name"`
	IsSubscribed          bool            `json:"is_subscribed"`
	Price                 decimal.Decimal `json:"price"`
	DurationMonths        int             `json:"duration_months"`
	StoresAllowed         int             `json:"stores_allowed"`
	ProductsAllowed       int             `json:"products_allowed"`
	SubscriptionStartDate time.Time       `json:"subscription_start_date"`
	SubscriptionEndDate   *time.Time      `json:"subscription_end_date,omitempty"`
}

func newEntitlementResponse(record *models.Entitlement) entitlementResponse {
	if record == nil {
		return entitlementResponse{}
	}
	return entitlementResponse{
		PlanName:              string(record.PlanName),
		IsSubscribed:          record.IsSubscribed,
		Price:                 record.Price,
		DurationMonths:        record.DurationMonths,
		StoresAllowed:         record.StoresAllowed,
		ProductsAllowed:       record.ProductsAllowed,
		SubscriptionStartDate: record.SubscriptionStartDate,
		SubscriptionEndDate:   record.SubscriptionEndDate,
	}
}

// PlanList returns the purchasable plan catalog.
func PlanList(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.ListPlans(r.Context()))
	}
}

type subscriptionOrderRequest struct {
	Plan string `json:"plan" validate:"required"`
}

// SubscriptionCreateOrder mints a gateway payment order for a plan purchase.
func SubscriptionCreateOrder(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload subscriptionOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreatePaymentOrder(r.Context(), userID, enums.PlanName(payload.Plan))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

type subscriptionActivateRequest struct {
	Plan             string `json:"plan" validate:"required"`
	GatewayOrderID   string `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature        string `json:"razorpay_signature" validate:"required"`
}

// SubscriptionActivate verifies the plan purchase and replaces the caller's
// entitlement.
func SubscriptionActivate(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload subscriptionActivateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Activate(r.Context(), userID, subscriptionsvc.ActivateInput{
			Plan:             enums.PlanName(payload.Plan),
			GatewayOrderID:   payload.GatewayOrderID,
			GatewayPaymentID: payload.GatewayPaymentID,
			Signature:        payload.Signature,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newEntitlementResponse(record))
	}
}

// SubscriptionFetch returns the caller's current entitlement.
func SubscriptionFetch(svc subscriptionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetCurrent(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newEntitlementResponse(record))
	}
}
