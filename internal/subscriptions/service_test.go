package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/orchardlabs/storefront-backend/internal/entitlements"
	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	"github.com/orchardlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/orchardlabs/storefront-backend/pkg/errors"
	"github.com/orchardlabs/storefront-backend/pkg/razorpay"
)

func setupSubscriptionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:subscriptions_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS entitlements (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  plan_name TEXT NOT NULL DEFAULT 'Free',
  is_subscribed INTEGER NOT NULL DEFAULT 0,
  price NUMERIC NOT NULL DEFAULT 0,
  duration_months INTEGER NOT NULL DEFAULT 0,
  stores_allowed INTEGER NOT NULL DEFAULT 0,
  products_allowed INTEGER NOT NULL DEFAULT 0,
  subscription_start_date DATETIME NOT NULL,
  subscription_end_date DATETIME,
  gateway_order_id TEXT,
  gateway_payment_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	if err := db.Exec(schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

type stubPlanGateway struct {
	orders   int
	lastAmt  int64
	lastNote map[string]interface{}
	valid    bool
	err      error
}

func (g *stubPlanGateway) CreateOrder(_ context.Context, params razorpay.OrderParams) (*razorpay.RemoteOrder, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.orders++
	g.lastAmt = params.AmountMinor
	g.lastNote = params.Notes
	return &razorpay.RemoteOrder{
		ID:          "order_plan_1",
		AmountMinor: params.AmountMinor,
		Currency:    params.Currency,
	}, nil
}

func (g *stubPlanGateway) VerifyPaymentSignature(_, _, _ string) bool { return g.valid }
func (g *stubPlanGateway) KeyID() string                              { return "rzp_test_platform" }
func (g *stubPlanGateway) Currency() string                           { return "INR" }

func newSubscriptionService(t *testing.T, gateway *stubPlanGateway) (Service, *entitlements.Repository) {
	t.Helper()

	repo := entitlements.NewRepository(setupSubscriptionsTestDB(t))
	svc, err := NewService(repo, gateway, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func activateInput(plan enums.PlanName) ActivateInput {
	return ActivateInput{
		Plan:             plan,
		GatewayOrderID:   "order_plan_1",
		GatewayPaymentID: "pay_plan_1",
		Signature:        "sig",
	}
}

func TestCreatePaymentOrderChargesPlanPrice(t *testing.T) {
	gateway := &stubPlanGateway{valid: true}
	svc, _ := newSubscriptionService(t, gateway)

	order, err := svc.CreatePaymentOrder(context.Background(), uuid.New(), enums.PlanBasic)
	if err != nil {
		t.Fatalf("create payment order: %v", err)
	}
	if order.AmountMinor != 200000 {
		t.Fatalf("Basic should charge 200000 paise, got %d", order.AmountMinor)
	}
	if order.GatewayOrderID != "order_plan_1" || order.KeyID != "rzp_test_platform" {
		t.Fatalf("unexpected descriptor %+v", order)
	}
	if order.Currency != "INR" {
		t.Fatalf("unexpected currency %s", order.Currency)
	}
	if gateway.lastNote["plan"] != "Basic" {
		t.Fatalf("order notes should carry the plan, got %v", gateway.lastNote)
	}
}

func TestCreatePaymentOrderRejectsUnknownPlan(t *testing.T) {
	gateway := &stubPlanGateway{}
	svc, _ := newSubscriptionService(t, gateway)

	_, err := svc.CreatePaymentOrder(context.Background(), uuid.New(), enums.PlanFree)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
	if gateway.orders != 0 {
		t.Fatal("no gateway order should be minted for an unknown plan")
	}
}

func TestActivateReplacesEntitlementWholesale(t *testing.T) {
	gateway := &stubPlanGateway{valid: true}
	svc, repo := newSubscriptionService(t, gateway)
	ctx := context.Background()
	userID := uuid.New()

	// signup default the purchase should overwrite
	_, err := repo.Create(ctx, &models.Entitlement{
		UserID:                userID,
		PlanName:              enums.PlanFree,
		SubscriptionStartDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed free entitlement: %v", err)
	}

	record, err := svc.Activate(ctx, userID, activateInput(enums.PlanTrial))
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if record.PlanName != enums.PlanTrial || !record.IsSubscribed {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.StoresAllowed != 1 || record.ProductsAllowed != 10 {
		t.Fatalf("Trial quotas not applied: %+v", record)
	}
	if record.SubscriptionEndDate == nil {
		t.Fatal("expected a subscription window end")
	}
	wantEnd := record.SubscriptionStartDate.Add(6 * 30 * 24 * time.Hour)
	if !record.SubscriptionEndDate.Equal(wantEnd) {
		t.Fatalf("expected window end %v, got %v", wantEnd, *record.SubscriptionEndDate)
	}
	if record.GatewayOrderID == nil || *record.GatewayOrderID != "order_plan_1" {
		t.Fatalf("gateway order ref not recorded: %+v", record)
	}

	stored, err := repo.FindByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.PlanName != enums.PlanTrial {
		t.Fatalf("row not replaced, still %s", stored.PlanName)
	}
}

func TestActivateRejectsBadSignature(t *testing.T) {
	gateway := &stubPlanGateway{valid: false}
	svc, repo := newSubscriptionService(t, gateway)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Activate(ctx, userID, activateInput(enums.PlanBasic))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := repo.FindByUserID(ctx, userID); err != gorm.ErrRecordNotFound {
		t.Fatalf("invalid signature must not write an entitlement, got %v", err)
	}
}

func TestActivateValidatesReferences(t *testing.T) {
	svc, _ := newSubscriptionService(t, &stubPlanGateway{valid: true})

	cases := []ActivateInput{
		{Plan: enums.PlanBasic, GatewayPaymentID: "p", Signature: "s"},
		{Plan: enums.PlanBasic, GatewayOrderID: "o", Signature: "s"},
		{Plan: enums.PlanBasic, GatewayOrderID: "o", GatewayPaymentID: "p"},
		{Plan: enums.PlanName("Gold"), GatewayOrderID: "o", GatewayPaymentID: "p", Signature: "s"},
	}
	for i, input := range cases {
		if _, err := svc.Activate(context.Background(), uuid.New(), input); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestGetCurrentNotFound(t *testing.T) {
	svc, _ := newSubscriptionService(t, &stubPlanGateway{})

	_, err := svc.GetCurrent(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}
