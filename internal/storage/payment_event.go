package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/linemk/pos-orders/internal/domain/models"
)

// PaymentEventStorage хранит принятые уведомления платежного шлюза.
type PaymentEventStorage interface {
	// RecordEvent сохраняет событие; повтор того же event_id игнорируется и возвращает false.
	RecordEvent(ctx context.Context, tx *sql.Tx, event *models.PaymentEvent) (bool, error)
	// GetEventsByOrderID возвращает события заказа, старые первыми.
	GetEventsByOrderID(ctx context.Context, orderID string) ([]*models.PaymentEvent, error)
}

type paymentEventRepository struct {
	db *sql.DB
}

func NewPaymentEventRepository(db *sql.DB) PaymentEventStorage {
	return &paymentEventRepository{db: db}
}

func (r *paymentEventRepository) RecordEvent(ctx context.Context, tx *sql.Tx, event *models.PaymentEvent) (bool, error) {
	query := `INSERT INTO payment_events (event_id, order_id, event_type, status, amount, payment_request_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW())
	          ON CONFLICT (event_id) DO NOTHING`
	res, err := tx.ExecContext(ctx, query,
		event.EventID, event.OrderID, event.EventType, event.Status, event.Amount, event.PaymentRequestID)
	if err != nil {
		return false, fmt.Errorf("failed to record payment event: %w", mapPQError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *paymentEventRepository) GetEventsByOrderID(ctx context.Context, orderID string) ([]*models.PaymentEvent, error) {
	query := `
		SELECT id, event_id, order_id, event_type, status, amount, payment_request_id, created_at
		FROM payment_events
		WHERE order_id = $1
		ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment events: %w", err)
	}
	defer rows.Close()

	var events []*models.PaymentEvent
	for rows.Next() {
		e := &models.PaymentEvent{}
		if err := rows.Scan(&e.ID, &e.EventID, &e.OrderID, &e.EventType, &e.Status, &e.Amount, &e.PaymentRequestID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
