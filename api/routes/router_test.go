package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/orchardlabs/storefront-backend/internal/auth"
	ordersvc "github.com/orchardlabs/storefront-backend/internal/orders"
	paymentsvc "github.com/orchardlabs/storefront-backend/internal/payments"
	productsvc "github.com/orchardlabs/storefront-backend/internal/products"
	storesvc "github.com/orchardlabs/storefront-backend/internal/stores"
	subscriptionsvc "github.com/orchardlabs/storefront-backend/internal/subscriptions"
	pkgAuth "github.com/orchardlabs/storefront-backend/pkg/auth"
	"github.com/orchardlabs/storefront-backend/pkg/config"
	"github.com/orchardlabs/storefront-backend/pkg/db/models"
	"github.com/orchardlabs/storefront-backend/pkg/enums"
	"github.com/orchardlabs/storefront-backend/pkg/logger"
	"github.com/orchardlabs/storefront-backend/pkg/pagination"
)

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, input authsvc.RegisterInput) (*authsvc.Session, error) {
	return &authsvc.Session{
		AccessToken: "token",
		User:        authsvc.Account{ID: uuid.New(), Email: input.Email},
	}, nil
}

func (stubAuthService) Login(ctx context.Context, input authsvc.LoginInput) (*authsvc.Session, error) {
	return &authsvc.Session{AccessToken: "token"}, nil
}

type stubStoreService struct{}

func (stubStoreService) CreateStore(ctx context.Context, userID uuid.UUID, input storesvc.CreateStoreInput) (*models.Store, error) {
	return &models.Store{ID: uuid.New(), Name: input.Name, OwnerID: userID}, nil
}

func (stubStoreService) ListMyStores(ctx context.Context, userID uuid.UUID) ([]models.Store, error) {
	return nil, nil
}

func (stubStoreService) GetOwnedStore(ctx context.Context, userID, storeID uuid.UUID) (*models.Store, error) {
	return &models.Store{ID: storeID, OwnerID: userID}, nil
}

func (stubStoreService) SetGatewayCredentials(ctx context.Context, userID, storeID uuid.UUID, keyID, keySecret string) error {
	return nil
}

type stubProductService struct{}

func (stubProductService) CreateProduct(ctx context.Context, userID, storeID uuid.UUID, input productsvc.CreateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductService) UpdateProduct(ctx context.Context, userID, storeID, productID uuid.UUID, input productsvc.UpdateProductInput) (*models.Product, error) {
	panic("unimplemented")
}

func (stubProductService) DeleteProduct(ctx context.Context, userID, storeID, productID uuid.UUID) error {
	panic("unimplemented")
}

func (stubProductService) ListProducts(ctx context.Context, userID, storeID uuid.UUID) ([]models.Product, error) {
	return nil, nil
}

type stubOrderService struct{}

func (stubOrderService) PlaceOrder(ctx context.Context, storeID uuid.UUID, input ordersvc.CheckoutInput) (*ordersvc.CheckoutResult, error) {
	return &ordersvc.CheckoutResult{Order: &models.Order{ID: uuid.New(), StoreID: storeID}}, nil
}

func (stubOrderService) MarkPaidByGatewayOrder(ctx context.Context, gatewayOrderID, paymentID string) (bool, error) {
	return false, nil
}

func (stubOrderService) GetOrder(ctx context.Context, storeID, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID, StoreID: storeID}, nil
}

func (stubOrderService) ListStoreOrders(ctx context.Context, storeID uuid.UUID, page pagination.Params, filters ordersvc.ListFilters) (*ordersvc.ListResult, error) {
	return &ordersvc.ListResult{}, nil
}

func (stubOrderService) UpdateOrderStatus(ctx context.Context, storeID, orderID uuid.UUID, status enums.OrderStatus) error {
	return nil
}

type stubPaymentService struct{}

func (stubPaymentService) ConfirmCheckout(ctx context.Context, storeID uuid.UUID, input paymentsvc.ConfirmInput) error {
	return nil
}

func (stubPaymentService) HandleWebhook(ctx context.Context, eventID string, body []byte, signature string) error {
	return nil
}

type stubSubscriptionService struct{}

func (stubSubscriptionService) ListPlans(ctx context.Context) []subscriptionsvc.Plan {
	return subscriptionsvc.Plans()
}

func (stubSubscriptionService) CreatePaymentOrder(ctx context.Context, userID uuid.UUID, plan enums.PlanName) (*subscriptionsvc.PaymentOrder, error) {
	panic("unimplemented")
}

func (stubSubscriptionService) Activate(ctx context.Context, userID uuid.UUID, input subscriptionsvc.ActivateInput) (*models.Entitlement, error) {
	panic("unimplemented")
}

func (stubSubscriptionService) GetCurrent(ctx context.Context, userID uuid.UUID) (*models.Entitlement, error) {
	return &models.Entitlement{UserID: userID, PlanName: enums.PlanFree}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(cfg, logg, Deps{
		Auth:          stubAuthService{},
		Stores:        stubStoreService{},
		Products:      stubProductService{},
		Orders:        stubOrderService{},
		Payments:      stubPaymentService{},
		Subscriptions: stubSubscriptionService{},
	})
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-Storefront-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stores", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stores", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for store list got %d", resp.Code)
	}
}

func TestRegisterRoutesThroughRateLimiter(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{AuthWindow: time.Minute, AuthLimit: 10}
	router := newTestRouter(cfg)

	body := `{"email":"new@example.com","password":"longenough","full_name":"New Merchant"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "1.2.3.4:5678"
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for register got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPublicCheckoutRejectsBadJSON(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/stores/"+uuid.NewString()+"/checkout", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestWebhookRequiresSignatureHeader(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", strings.NewReader(`{"event":"payment.captured"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without signature header got %d", resp.Code)
	}
}

func TestSubscriptionPlansRequireJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/plans", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/plans", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for plans got %d", resp.Code)
	}
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "owner@example.com",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
