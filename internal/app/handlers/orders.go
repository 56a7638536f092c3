package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/pos-orders/internal/domain/models"
	"github.com/linemk/pos-orders/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/pos-orders/internal/service"
)

// CreateOrderRequest — корзина кассы
type CreateOrderRequest struct {
	Items []models.CartItem `json:"items" validate:"required,min=1,dive"`
}

// PaidResponse — ответ на опрос статуса оплаты
type PaidResponse struct {
	OrderID string `json:"orderId"`
	Paid    bool   `json:"paid"`
}

// staffLogger добавляет к логгеру сотрудника из JWT, если он есть
func staffLogger(log *slog.Logger, r *http.Request) *slog.Logger {
	if staffID, ok := jwtmiddleware.FromContext(r.Context()); ok {
		return log.With(slog.String("staffID", staffID))
	}
	return log
}

// CreateOrderHandler обрабатывает POST /api/orders
func CreateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := staffLogger(log.With(slog.String("op", op)), r)

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Warn("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		res, err := orderService.CreateOrder(r.Context(), req.Items)
		if err != nil {
			writeError(w, logger, "failed to create order", err)
			return
		}
		writeJSON(w, logger, http.StatusCreated, res)
	}
}

// ListOrdersHandler обрабатывает GET /api/orders?status=
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		filter, err := models.ParseStatusFilter(r.URL.Query().Get("status"))
		if err != nil {
			writeError(w, logger, "invalid status filter", err)
			return
		}

		orders, err := orderService.GetOrders(r.Context(), filter)
		if err != nil {
			writeError(w, logger, "failed to list orders", err)
			return
		}
		if orders == nil {
			orders = []*models.OrderSummary{}
		}
		writeJSON(w, logger, http.StatusOK, orders)
	}
}

// GetOrderHandler обрабатывает GET /api/orders/{id}
func GetOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		orderID := chi.URLParam(r, "id")
		logger := log.With(slog.String("op", op), slog.String("orderID", orderID))

		order, err := orderService.GetOrder(r.Context(), orderID)
		if err != nil {
			writeError(w, logger, "failed to get order", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, order)
	}
}

// OrderPaidHandler обрабатывает GET /api/orders/{id}/paid
func OrderPaidHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderPaidHandler"
		orderID := chi.URLParam(r, "id")
		logger := log.With(slog.String("op", op), slog.String("orderID", orderID))

		paid, err := orderService.IsOrderPaid(r.Context(), orderID)
		if err != nil {
			writeError(w, logger, "failed to check order payment", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, PaidResponse{OrderID: orderID, Paid: paid})
	}
}

// FinishOrderHandler обрабатывает POST /api/orders/{id}/finish
func FinishOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.FinishOrderHandler"
		orderID := chi.URLParam(r, "id")
		logger := staffLogger(log.With(slog.String("op", op), slog.String("orderID", orderID)), r)

		if err := orderService.FinishOrder(r.Context(), orderID); err != nil {
			writeError(w, logger, "failed to finish order", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, MessageResponse{Message: "order finished"})
	}
}

// SimulatePaymentHandler обрабатывает POST /api/orders/{id}/simulate-payment
func SimulatePaymentHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SimulatePaymentHandler"
		orderID := chi.URLParam(r, "id")
		logger := staffLogger(log.With(slog.String("op", op), slog.String("orderID", orderID)), r)

		if err := orderService.SimulatePayment(r.Context(), orderID); err != nil {
			writeError(w, logger, "failed to simulate payment", err)
			return
		}
		writeJSON(w, logger, http.StatusAccepted, MessageResponse{Message: "payment simulation requested"})
	}
}

// SalesReportHandler обрабатывает GET /api/sales-report
func SalesReportHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SalesReportHandler"
		logger := log.With(slog.String("op", op))

		report, err := orderService.GetSalesReport(r.Context())
		if err != nil {
			writeError(w, logger, "failed to get sales report", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, report)
	}
}
