package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/pos-orders/internal/domain/models"
	"github.com/linemk/pos-orders/internal/metrics"
	"github.com/linemk/pos-orders/internal/storage"
)

// Outcome — чем закончилась обработка уведомления шлюза
type Outcome string

const (
	// OutcomeApplied — заказ переведен в PROCESSING
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate — заказ уже оплачен, повторная доставка
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeIgnored — неуспешный платеж, заказ не меняется
	OutcomeIgnored Outcome = "ignored"
)

var ErrInvalidCallbackToken = fmt.Errorf("%w: invalid callback token", models.ErrAuthentication)

// ReconcileService применяет уведомления платежного шлюза к заказам.
type ReconcileService interface {
	HandlePaymentNotification(ctx context.Context, n *models.PaymentNotification) (Outcome, error)
}

type reconcileService struct {
	log       *slog.Logger
	db        *sql.DB
	orderRepo storage.OrderStorage
	eventRepo storage.PaymentEventStorage
	now       func() time.Time
}

func NewReconcileService(log *slog.Logger, db *sql.DB, orderRepo storage.OrderStorage, eventRepo storage.PaymentEventStorage) ReconcileService {
	return &reconcileService{
		log:       log,
		db:        db,
		orderRepo: orderRepo,
		eventRepo: eventRepo,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// VerifyCallbackToken сравнивает токен вебхука с настроенным за постоянное время.
// Пустой настроенный токен не принимает ничего.
func VerifyCallbackToken(expected, got string) error {
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		return ErrInvalidCallbackToken
	}
	return nil
}

// HandlePaymentNotification — переход AWAITING_PAYMENT -> PROCESSING.
// Повторная доставка для уже оплаченного заказа ничего не меняет и не считается ошибкой.
func (s *reconcileService) HandlePaymentNotification(ctx context.Context, n *models.PaymentNotification) (Outcome, error) {
	const op = "service.ReconcileService.HandlePaymentNotification"
	orderID := n.Data.ReferenceID
	logger := s.log.With(
		slog.String("op", op),
		slog.String("orderID", orderID),
		slog.String("eventID", n.Data.ID),
		slog.String("paymentStatus", n.Data.Status),
	)

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			logger.Warn("notification for unknown order")
			metrics.RecordWebhookNotification("not_found")
		} else {
			logger.Error("failed to get order", slog.Any("error", err))
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if !n.Succeeded() {
		logger.Info("payment not succeeded, order left unchanged")
		metrics.RecordWebhookNotification(string(OutcomeIgnored))
		return OutcomeIgnored, nil
	}

	if order.Status != models.StatusAwaitingPayment {
		logger.Info("order already paid", slog.String("status", string(order.Status)))
		metrics.RecordWebhookNotification(string(OutcomeDuplicate))
		return OutcomeDuplicate, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	paidAt := s.now()
	err = s.orderRepo.UpdateStatus(ctx, tx, orderID, models.StatusAwaitingPayment, models.StatusProcessing,
		models.StatusUpdate{PaidAt: &paidAt})
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		// параллельная доставка успела раньше
		if errors.Is(err, storage.ErrStatusConflict) {
			logger.Info("order paid concurrently", slog.Any("error", err))
			metrics.RecordWebhookNotification(string(OutcomeDuplicate))
			return OutcomeDuplicate, nil
		}
		logger.Error("failed to update order status", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	// событие пишется только вместе с переводом заказа в PROCESSING
	event := &models.PaymentEvent{
		EventID:          n.Data.ID,
		OrderID:          orderID,
		EventType:        n.Event,
		Status:           n.Data.Status,
		Amount:           n.Data.Amount,
		PaymentRequestID: n.Data.PaymentRequestID,
	}
	inserted, err := s.eventRepo.RecordEvent(ctx, tx, event)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to record payment event", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !inserted {
		logger.Warn("payment event already recorded")
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	if !n.Data.Amount.IsZero() && !n.Data.Amount.Equal(order.GrandTotal) {
		logger.Warn("paid amount differs from order total",
			slog.String("amount", n.Data.Amount.String()),
			slog.String("grandTotal", order.GrandTotal.String()))
	}

	metrics.RecordOrderTransition(string(models.StatusProcessing))
	metrics.RecordWebhookNotification(string(OutcomeApplied))
	logger.Info("order marked as paid")
	return OutcomeApplied, nil
}
