package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/orchardlabs/storefront-backend/api/routes"
	authsvc "github.com/orchardlabs/storefront-backend/internal/auth"
	"github.com/orchardlabs/storefront-backend/internal/customers"
	"github.com/orchardlabs/storefront-backend/internal/entitlements"
	ordersvc "github.com/orchardlabs/storefront-backend/internal/orders"
	paymentsvc "github.com/orchardlabs/storefront-backend/internal/payments"
	productsvc "github.com/orchardlabs/storefront-backend/internal/products"
	storesvc "github.com/orchardlabs/storefront-backend/internal/stores"
	subscriptionsvc "github.com/orchardlabs/storefront-backend/internal/subscriptions"
	"github.com/orchardlabs/storefront-backend/internal/users"
	"github.com/orchardlabs/storefront-backend/pkg/config"
	"github.com/orchardlabs/storefront-backend/pkg/db"
	"github.com/orchardlabs/storefront-backend/pkg/logger"
	"github.com/orchardlabs/storefront-backend/pkg/metrics"
	"github.com/orchardlabs/storefront-backend/pkg/migrate"
	"github.com/orchardlabs/storefront-backend/pkg/razorpay"
	"github.com/orchardlabs/storefront-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	// platform gateway client is optional: stores with their own keys still
	// work without it
	var platformGateway *razorpay.Client
	if cfg.Razorpay.HasCredentials() {
		platformGateway, err = razorpay.New(cfg.Razorpay, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap razorpay client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "razorpay platform credentials missing; platform-settled checkout disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	commerceMetrics := metrics.NewCommerceMetrics(registry)

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	entitlementRepo := entitlements.NewRepository(conn)
	storeRepo := storesvc.NewRepository(conn)
	productRepo := productsvc.NewRepository(conn)
	customerRepo := customers.NewRepository(conn)
	orderRepo := ordersvc.NewRepository(conn)

	entitlementSvc, err := entitlements.NewService(entitlementRepo, storeRepo, productRepo)
	requireService(logg, "entitlements", err)

	storeService, err := storesvc.NewService(storeRepo, entitlementSvc)
	requireService(logg, "stores", err)

	productService, err := productsvc.NewService(productRepo, storeService, entitlementSvc)
	requireService(logg, "products", err)

	gatewayResolver := paymentsvc.NewResolver(platformGateway, cfg.Razorpay)

	orderService, err := ordersvc.NewService(orderRepo, dbClient, storeRepo, customerRepo, gatewayResolver, commerceMetrics, logg)
	requireService(logg, "orders", err)

	paymentService, err := paymentsvc.NewService(orderService, storeRepo, gatewayResolver, platformGateway, redisClient, commerceMetrics, logg)
	requireService(logg, "payments", err)

	var subscriptionService subscriptionsvc.Service
	if platformGateway != nil {
		subscriptionService, err = subscriptionsvc.NewService(entitlementRepo, platformGateway, logg)
		requireService(logg, "subscriptions", err)
	}

	authService, err := authsvc.NewService(dbClient, userRepo, entitlementRepo, cfg.JWT, cfg.Password, logg)
	requireService(logg, "auth", err)

	handler := routes.NewRouter(cfg, logg, routes.Deps{
		Auth:          authService,
		Stores:        storeService,
		Products:      productService,
		Orders:        orderService,
		Payments:      paymentService,
		Subscriptions: subscriptionService,
		DB:            dbClient,
		Redis:         redisClient,
		Registry:      registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	ctx := logg.WithFields(context.Background(), map[string]any{"service": name})
	logg.Error(ctx, "failed to create service", err)
	os.Exit(1)
}
