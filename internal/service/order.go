package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/linemk/pos-orders/internal/domain/models"
	"github.com/linemk/pos-orders/internal/metrics"
	"github.com/linemk/pos-orders/internal/pricing"
	"github.com/linemk/pos-orders/internal/storage"
	"github.com/shopspring/decimal"
)

// PaymentGateway — внешний платежный шлюз
type PaymentGateway interface {
	CreatePaymentRequest(ctx context.Context, orderID string, amount decimal.Decimal) (*models.PaymentRefs, error)
	SimulatePayment(ctx context.Context, paymentMethodID string, amount decimal.Decimal) error
}

// OrderService — операции над заказами, которые вызывает интерфейс кассы.
type OrderService interface {
	CreateOrder(ctx context.Context, items []models.CartItem) (*CreateOrderResult, error)
	GetOrders(ctx context.Context, filter models.StatusFilter) ([]*models.OrderSummary, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	IsOrderPaid(ctx context.Context, orderID string) (bool, error)
	FinishOrder(ctx context.Context, orderID string) error
	SimulatePayment(ctx context.Context, orderID string) error
	GetSalesReport(ctx context.Context) (*models.SalesReport, error)
}

// CreateOrderResult — созданный заказ и строка QR для оплаты
type CreateOrderResult struct {
	Order    *models.Order `json:"order"`
	QRString string        `json:"qrString"`
}

var ErrSimulationDisabled = fmt.Errorf("%w: payment simulation is disabled", models.ErrNotFound)

type orderService struct {
	log               *slog.Logger
	db                *sql.DB
	orderRepo         storage.OrderStorage
	eventRepo         storage.PaymentEventStorage
	catalog           CatalogService
	calculator        *pricing.Calculator
	gateway           PaymentGateway
	simulationEnabled bool
	newID             func() string
}

func NewOrderService(
	log *slog.Logger,
	db *sql.DB,
	orderRepo storage.OrderStorage,
	eventRepo storage.PaymentEventStorage,
	catalog CatalogService,
	calculator *pricing.Calculator,
	gateway PaymentGateway,
	simulationEnabled bool,
) OrderService {
	return &orderService{
		log:               log,
		db:                db,
		orderRepo:         orderRepo,
		eventRepo:         eventRepo,
		catalog:           catalog,
		calculator:        calculator,
		gateway:           gateway,
		simulationEnabled: simulationEnabled,
		newID:             uuid.NewString,
	}
}

// CreateOrder считает суммы, регистрирует QR-платеж в шлюзе и одной транзакцией
// сохраняет заказ с позициями и реквизитами платежа.
// Если шлюз недоступен, в БД ничего не пишется.
func (s *orderService) CreateOrder(ctx context.Context, items []models.CartItem) (*CreateOrderResult, error) {
	const op = "service.OrderService.CreateOrder"
	logger := s.log.With(slog.String("op", op), slog.Int("items", len(items)))

	merged, err := pricing.MergeItems(items)
	if err != nil {
		logger.Warn("invalid cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]string, len(merged))
	for i, item := range merged {
		ids[i] = item.ProductID
	}
	products, err := s.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		logger.Error("failed to get products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get products: %w", op, err)
	}

	totals, orderItems, err := s.calculator.Calculate(merged, products)
	if err != nil {
		logger.Warn("failed to price cart", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orderID := s.newID()
	logger = logger.With(slog.String("orderID", orderID))

	refs, err := s.gateway.CreatePaymentRequest(ctx, orderID, totals.GrandTotal)
	if err != nil {
		logger.Error("failed to create payment request", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order := &models.Order{
		ID:                      orderID,
		Subtotal:                totals.Subtotal,
		Tax:                     totals.Tax,
		GrandTotal:              totals.GrandTotal,
		Status:                  models.StatusAwaitingPayment,
		ExternalPaymentMethodID: refs.PaymentMethodID,
		ExternalTransactionID:   refs.TransactionID,
		Items:                   orderItems,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err),
			slog.String("paymentRequestID", refs.TransactionID))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err),
			slog.String("paymentRequestID", refs.TransactionID))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	metrics.RecordOrderCreated()
	logger.Info("order created", slog.String("grandTotal", order.GrandTotal.String()))
	return &CreateOrderResult{Order: order, QRString: refs.QRString}, nil
}

func (s *orderService) GetOrders(ctx context.Context, filter models.StatusFilter) ([]*models.OrderSummary, error) {
	const op = "service.OrderService.GetOrders"

	orders, err := s.orderRepo.ListOrders(ctx, filter)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.String("status", filter.String()), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// GetOrder возвращает заказ вместе с позициями и принятыми платежными событиями.
func (s *orderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	const op = "service.OrderService.GetOrder"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", orderID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			logger.Error("failed to get order", slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order.Items, err = s.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		logger.Error("failed to get order items", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order.PaymentEvents, err = s.eventRepo.GetEventsByOrderID(ctx, orderID)
	if err != nil {
		logger.Error("failed to get payment events", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

// IsOrderPaid — для опроса кассой: оплачен ли заказ.
func (s *orderService) IsOrderPaid(ctx context.Context, orderID string) (bool, error) {
	const op = "service.OrderService.IsOrderPaid"

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return order.IsPaid(), nil
}

// FinishOrder — переход PROCESSING -> DONE по действию сотрудника.
// Требует подтвержденной оплаты и статуса PROCESSING.
func (s *orderService) FinishOrder(ctx context.Context, orderID string) error {
	const op = "service.OrderService.FinishOrder"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", orderID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			logger.Error("failed to get order", slog.Any("error", err))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if !order.IsPaid() {
		logger.Warn("order is not paid yet", slog.String("status", string(order.Status)))
		return fmt.Errorf("%s: %w", op, models.Conflict("order is not paid yet"))
	}
	if order.Status != models.StatusProcessing {
		logger.Warn("order is not in processing state", slog.String("status", string(order.Status)))
		return fmt.Errorf("%s: %w", op, models.Conflict("order is not in processing state"))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	err = s.orderRepo.UpdateStatus(ctx, tx, orderID, models.StatusProcessing, models.StatusDone,
		models.StatusUpdate{RequirePaid: true})
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		// статус успели сменить параллельно
		if errors.Is(err, storage.ErrStatusConflict) {
			logger.Warn("order status changed concurrently", slog.Any("error", err))
			return fmt.Errorf("%s: %w", op, models.Conflict("order is not in processing state"))
		}
		logger.Error("failed to update order status", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	metrics.RecordOrderTransition(string(models.StatusDone))
	logger.Info("order finished")
	return nil
}

// SimulatePayment просит шлюз провести тестовую оплату заказа;
// результат придет обычным вебхуком.
func (s *orderService) SimulatePayment(ctx context.Context, orderID string) error {
	const op = "service.OrderService.SimulatePayment"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", orderID))

	if !s.simulationEnabled {
		return fmt.Errorf("%s: %w", op, ErrSimulationDisabled)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.gateway.SimulatePayment(ctx, order.ExternalPaymentMethodID, order.GrandTotal); err != nil {
		logger.Error("failed to simulate payment", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("payment simulation requested")
	return nil
}

func (s *orderService) GetSalesReport(ctx context.Context) (*models.SalesReport, error) {
	const op = "service.OrderService.GetSalesReport"

	report, err := s.orderRepo.GetSalesReport(ctx)
	if err != nil {
		s.log.Error("failed to get sales report", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return report, nil
}
