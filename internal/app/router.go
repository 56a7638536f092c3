package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/pos-orders/internal/app/handlers"
	"github.com/linemk/pos-orders/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/pos-orders/internal/lib/logger/handlers/urllog"
	"github.com/linemk/pos-orders/internal/metrics"
)

// NewRouter собирает HTTP-маршруты приложения
func NewRouter(a *App) http.Handler {
	log := a.Logger

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", metrics.Handler())

	// вебхук шлюза проверяет свой токен, JWT тут не нужен
	router.Post("/api/payments/webhook",
		handlers.PaymentWebhookHandler(log, a.Config.Xendit.CallbackToken, a.Reconcile))

	router.Group(func(r chi.Router) {
		r.Use(jwtmiddleware.NewJWTMiddleware(a.Config.JWT.Secret))

		r.Get("/api/products", handlers.ListProductsHandler(log, a.Catalog))

		r.Post("/api/orders", handlers.CreateOrderHandler(log, a.Orders))
		r.Get("/api/orders", handlers.ListOrdersHandler(log, a.Orders))
		r.Get("/api/orders/{id}", handlers.GetOrderHandler(log, a.Orders))
		r.Get("/api/orders/{id}/paid", handlers.OrderPaidHandler(log, a.Orders))
		r.Post("/api/orders/{id}/finish", handlers.FinishOrderHandler(log, a.Orders))
		r.Post("/api/orders/{id}/simulate-payment", handlers.SimulatePaymentHandler(log, a.Orders))

		r.Get("/api/sales-report", handlers.SalesReportHandler(log, a.Orders))
	})

	return router
}
