package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/printmade/printshop-backend/api/controllers"
	webhookcontrollers "github.com/printmade/printshop-backend/api/controllers/webhooks"
	"github.com/printmade/printshop-backend/api/middleware"
	"github.com/printmade/printshop-backend/internal/cart"
	"github.com/printmade/printshop-backend/internal/changerequests"
	checkoutsvc "github.com/printmade/printshop-backend/internal/checkout"
	"github.com/printmade/printshop-backend/internal/orders"
	"github.com/printmade/printshop-backend/internal/payments"
	"github.com/printmade/printshop-backend/internal/products"
	"github.com/printmade/printshop-backend/internal/settings"
	"github.com/printmade/printshop-backend/internal/uploads"
	stripewebhook "github.com/printmade/printshop-backend/internal/webhooks/stripe"
	"github.com/printmade/printshop-backend/pkg/config"
	"github.com/printmade/printshop-backend/pkg/enums"
	"github.com/printmade/printshop-backend/pkg/logger"
	"github.com/printmade/printshop-backend/pkg/metrics"
	"github.com/printmade/printshop-backend/pkg/stripe"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Products       products.Service
	Cart           cart.Service
	Checkout       checkoutsvc.Service
	Uploads        uploads.Service
	Orders         orders.Service
	Payments       payments.Service
	Settings       settings.Service
	ChangeRequests changerequests.Service

	StripeClient       *stripe.Client
	StripeWebhook      *stripewebhook.Service
	StripeWebhookGuard *stripewebhook.IdempotencyGuard
	MetricsRegistry    *prometheus.Registry
	HTTPMetrics        *metrics.HTTPMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svcs Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(svcs.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	if svcs.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(svcs.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(svcs.StripeWebhook, svcs.StripeClient, svcs.StripeWebhookGuard, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(svcs.Products, logg))
		r.Get("/{productId}", controllers.ProductGet(svcs.Products, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(svcs.Cart, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(svcs.Checkout, svcs.Uploads, logg))
			r.Get("/", controllers.OrdersList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(svcs.Orders, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/create-payment-intent", controllers.PaymentIntentCreate(svcs.Payments, logg))
			r.Post("/confirm-payment", controllers.PaymentConfirm(svcs.Payments, logg))
		})

		r.Route("/order-change-requests", func(r chi.Router) {
			r.Post("/", controllers.ChangeRequestCreate(svcs.ChangeRequests, logg))
			r.Get("/", controllers.ChangeRequestsList(svcs.ChangeRequests, logg))
			r.Get("/{requestId}", controllers.ChangeRequestGet(svcs.ChangeRequests, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminProductCreate(svcs.Products, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(svcs.Products, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(svcs.Products, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.AdminSettingsGet(svcs.Settings, logg))
			r.Patch("/", controllers.AdminSettingsUpdate(svcs.Settings, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrdersList(svcs.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminOrderStatusUpdate(svcs.Orders, logg))
		})

		r.Route("/order-change-requests", func(r chi.Router) {
			r.Get("/pending", controllers.AdminChangeRequestsPending(svcs.ChangeRequests, logg))
			r.Post("/{requestId}/review", controllers.AdminChangeRequestReview(svcs.ChangeRequests, logg))
		})
	})

	return r
}
