package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orchardlabs/storefront-backend/api/controllers"
	"github.com/orchardlabs/storefront-backend/api/middleware"
	authsvc "github.com/orchardlabs/storefront-backend/internal/auth"
	ordersvc "github.com/orchardlabs/storefront-backend/internal/orders"
	paymentsvc "github.com/orchardlabs/storefront-backend/internal/payments"
	productsvc "github.com/orchardlabs/storefront-backend/internal/products"
	storesvc "github.com/orchardlabs/storefront-backend/internal/stores"
	subscriptionsvc "github.com/orchardlabs/storefront-backend/internal/subscriptions"
	"github.com/orchardlabs/storefront-backend/pkg/config"
	"github.com/orchardlabs/storefront-backend/pkg/db"
	"github.com/orchardlabs/storefront-backend/pkg/logger"
	"github.com/orchardlabs/storefront-backend/pkg/redis"
)

// Deps bundles the wired services the router mounts.
type Deps struct {
	Auth          authsvc.Service
	Stores        storesvc.Service
	Products      productsvc.Service
	Orders        ordersvc.Service
	Payments      paymentsvc.Service
	Subscriptions subscriptionsvc.Service

	DB       *db.Client
	Redis    *redis.Client
	Registry *prometheus.Registry
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit("register", cfg.RateLimit, deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.With(middleware.AuthRateLimit("login", cfg.RateLimit, deps.Redis, logg)).
			Post("/login", controllers.AuthLogin(deps.Auth, logg))
	})

	// public storefront surface: no bearer token, scoped by store id
	r.Route("/api/v1/public/stores/{storeId}", func(r chi.Router) {
		r.Post("/checkout", controllers.Checkout(deps.Orders, logg))
		r.Post("/checkout/confirm", controllers.CheckoutConfirm(deps.Payments, logg))
	})

	r.Post("/api/v1/webhooks/razorpay", controllers.RazorpayWebhook(deps.Payments, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/stores", func(r chi.Router) {
			r.Post("/", controllers.StoreCreate(deps.Stores, logg))
			r.Get("/", controllers.StoreList(deps.Stores, logg))

			r.Route("/{storeId}", func(r chi.Router) {
				r.Get("/", controllers.StoreDetail(deps.Stores, logg))
				r.Put("/gateway-credentials", controllers.StoreSetGatewayCredentials(deps.Stores, logg))

				r.Route("/products", func(r chi.Router) {
					r.Post("/", controllers.ProductCreate(deps.Products, logg))
					r.Get("/", controllers.ProductList(deps.Products, logg))
					r.Patch("/{productId}", controllers.ProductUpdate(deps.Products, logg))
					r.Delete("/{productId}", controllers.ProductDelete(deps.Products, logg))
				})

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.OrderList(deps.Orders, deps.Stores, logg))
					r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, deps.Stores, logg))
					r.Post("/{orderId}/status", controllers.OrderStatusUpdate(deps.Orders, deps.Stores, logg))
				})
			})
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/plans", controllers.PlanList(deps.Subscriptions, logg))
			r.Get("/", controllers.SubscriptionFetch(deps.Subscriptions, logg))
			r.Post("/order", controllers.SubscriptionCreateOrder(deps.Subscriptions, logg))
			r.Post("/activate", controllers.SubscriptionActivate(deps.Subscriptions, logg))
		})
	})

	return r
}
