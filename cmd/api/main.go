package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/printmade/printshop-backend/api/routes"
	"github.com/printmade/printshop-backend/internal/cart"
	"github.com/printmade/printshop-backend/internal/changerequests"
	"github.com/printmade/printshop-backend/internal/checkout"
	"github.com/printmade/printshop-backend/internal/orders"
	"github.com/printmade/printshop-backend/internal/payments"
	"github.com/printmade/printshop-backend/internal/products"
	"github.com/printmade/printshop-backend/internal/settings"
	"github.com/printmade/printshop-backend/internal/uploads"
	stripewebhook "github.com/printmade/printshop-backend/internal/webhooks/stripe"
	"github.com/printmade/printshop-backend/pkg/config"
	"github.com/printmade/printshop-backend/pkg/db"
	"github.com/printmade/printshop-backend/pkg/logger"
	"github.com/printmade/printshop-backend/pkg/metrics"
	"github.com/printmade/printshop-backend/pkg/migrate"
	"github.com/printmade/printshop-backend/pkg/redis"
	"github.com/printmade/printshop-backend/pkg/storage/gcs"
	pkgstripe "github.com/printmade/printshop-backend/pkg/stripe"
)

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

	stripeClient, err := pkgstripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	var uploadsSvc uploads.Service
	if cfg.GCS.BucketName != "" {
		gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		uploadsSvc, err = uploads.NewService(gcsClient, cfg.GCS.MaxUploadMB)
		if err != nil {
			logg.Error(context.Background(), "failed to create uploads service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "gcs bucket not configured, artwork uploads disabled")
	}

	conn := dbClient.DB()

	productsSvc, err := products.NewService(products.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	settingsSvc, err := settings.NewService(settings.NewRepository(conn), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	cartSvc, err := cart.NewService(cart.NewRepository(conn), dbClient, productsSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutSvc, err := checkout.NewService(checkout.NewRepository(conn), dbClient, productsSvc, settingsSvc, cartSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersSvc, err := orders.NewService(orders.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	paymentsSvc, err := payments.NewService(
		payments.NewRepository(conn),
		dbClient,
		cartSvc,
		productsSvc,
		settingsSvc,
		payments.NewStripeClient(stripeClient),
		cfg.Stripe.RequestTimeout,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	changeRequestsSvc, err := changerequests.NewService(changerequests.NewRepository(conn), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create change request service", err)
		os.Exit(1)
	}

	webhookSvc, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Payments: paymentsSvc,
		Lookup:   stripewebhook.NewRepository(conn),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Checkout.WebhookEventTTL, "stripe")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

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
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Services{
			Products:           productsSvc,
			Cart:               cartSvc,
			Checkout:           checkoutSvc,
			Uploads:            uploadsSvc,
			Orders:             ordersSvc,
			Payments:           paymentsSvc,
			Settings:           settingsSvc,
			ChangeRequests:     changeRequestsSvc,
			StripeClient:       stripeClient,
			StripeWebhook:      webhookSvc,
			StripeWebhookGuard: webhookGuard,
			MetricsRegistry:    registry,
			HTTPMetrics:        httpMetrics,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
