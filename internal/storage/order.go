package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/pos-orders/internal/domain/models"
)

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrder вставляет заказ вместе с позициями в рамках переданной транзакции.
	CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) error
	// GetOrderByID возвращает заказ без позиций.
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// GetOrderItems возвращает позиции заказа.
	GetOrderItems(ctx context.Context, orderID string) ([]*models.OrderItem, error)
	// ListOrders возвращает сводки заказов по фильтру статуса.
	ListOrders(ctx context.Context, filter models.StatusFilter) ([]*models.OrderSummary, error)
	// UpdateStatus меняет статус, только если текущий статус равен expected.
	UpdateStatus(ctx context.Context, tx *sql.Tx, id string, expected, next models.OrderStatus, extra models.StatusUpdate) error
	// GetSalesReport считает агрегаты продаж.
	GetSalesReport(ctx context.Context) (*models.SalesReport, error)
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const (
	insertOrderQuery = `INSERT INTO orders (id, subtotal, tax, grand_total, status, payment_method_id, external_transaction_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	          RETURNING created_at, updated_at`
	insertOrderItemQuery = `INSERT INTO order_items (order_id, product_id, quantity, price)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	selectOrderQuery = `SELECT id, subtotal, tax, grand_total, status, paid_at, payment_method_id, external_transaction_id, created_at, updated_at
		FROM orders WHERE id = $1`
	selectOrderItemsQuery = `SELECT id, order_id, product_id, quantity, price
		FROM order_items WHERE order_id = $1 ORDER BY id`
	updateStatusQuery = `UPDATE orders
		SET status = $1, paid_at = COALESCE(paid_at, $2), updated_at = NOW()
		WHERE id = $3 AND status = $4`
	updateStatusPaidQuery = `UPDATE orders
		SET status = $1, paid_at = COALESCE(paid_at, $2), updated_at = NOW()
		WHERE id = $3 AND status = $4 AND paid_at IS NOT NULL`
	selectStatusQuery = `SELECT status FROM orders WHERE id = $1`
	salesReportQuery  = `
		SELECT
			COALESCE(SUM(grand_total) FILTER (WHERE paid_at IS NOT NULL), 0),
			COUNT(*) FILTER (WHERE status <> 'DONE'),
			COUNT(*) FILTER (WHERE status = 'DONE')
		FROM orders`
	listOrdersQuery = `
		SELECT o.id, o.grand_total, o.status, o.paid_at, COUNT(oi.id)
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id%s
		GROUP BY o.id
		ORDER BY o.created_at DESC`
)

// CreateOrder вставляет заказ и все его позиции. Коммит — забота вызывающего.
func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	if len(order.Items) == 0 {
		return ErrEmptyOrder
	}
	for _, item := range order.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: quantity for product %s must be at least 1", models.ErrValidation, item.ProductID)
		}
	}

	err := tx.QueryRowContext(ctx, insertOrderQuery,
		order.ID, order.Subtotal, order.Tax, order.GrandTotal, order.Status,
		order.ExternalPaymentMethodID, order.ExternalTransactionID,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", mapPQError(err))
	}

	for _, item := range order.Items {
		item.OrderID = order.ID
		if err := tx.QueryRowContext(ctx, insertOrderItemQuery,
			item.OrderID, item.ProductID, item.Quantity, item.Price,
		).Scan(&item.ID); err != nil {
			return fmt.Errorf("failed to create order item: %w", mapPQError(err))
		}
	}
	return nil
}

// GetOrderByID читает заказ одним запросом, поэтому статус, paid_at и
// реквизиты платежа согласованы между собой.
func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order := &models.Order{}
	var paidAt sql.NullTime
	row := r.db.QueryRowContext(ctx, selectOrderQuery, id)
	if err := row.Scan(&order.ID, &order.Subtotal, &order.Tax, &order.GrandTotal, &order.Status, &paidAt,
		&order.ExternalPaymentMethodID, &order.ExternalTransactionID, &order.CreatedAt, &order.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !order.Status.Valid() {
		return nil, fmt.Errorf("order %s has unknown status %q", id, order.Status)
	}
	if paidAt.Valid {
		t := paidAt.Time
		order.PaidAt = &t
	}
	return order, nil
}

func (r *orderRepository) GetOrderItems(ctx context.Context, orderID string) ([]*models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, selectOrderItemsQuery, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListOrders возвращает заказы с количеством позиций, новые первыми.
func (r *orderRepository) ListOrders(ctx context.Context, filter models.StatusFilter) ([]*models.OrderSummary, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status, ok := filter.Status(); ok {
		rows, err = r.db.QueryContext(ctx, fmt.Sprintf(listOrdersQuery, "\n\t\tWHERE o.status = $1"), status)
	} else {
		rows, err = r.db.QueryContext(ctx, fmt.Sprintf(listOrdersQuery, ""))
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.OrderSummary
	for rows.Next() {
		summary := &models.OrderSummary{}
		var paidAt sql.NullTime
		if err := rows.Scan(&summary.ID, &summary.GrandTotal, &summary.Status, &paidAt, &summary.ItemCount); err != nil {
			return nil, err
		}
		if paidAt.Valid {
			t := paidAt.Time
			summary.PaidAt = &t
		}
		orders = append(orders, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus — условное обновление (compare-and-swap по статусу).
// paid_at записывается только если он еще пуст.
// Если ни одна строка не обновлена, различаем отсутствие заказа и конфликт статуса.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id string, expected, next models.OrderStatus, extra models.StatusUpdate) error {
	if !expected.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrStatusConflict, expected, next)
	}

	query := updateStatusQuery
	if extra.RequirePaid {
		query = updateStatusPaidQuery
	}

	var paidAt sql.NullTime
	if extra.PaidAt != nil {
		paidAt = sql.NullTime{Time: *extra.PaidAt, Valid: true}
	}

	res, err := tx.ExecContext(ctx, query, next, paidAt, id, expected)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", mapPQError(err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var current models.OrderStatus
	if err := tx.QueryRowContext(ctx, selectStatusQuery, id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	}
	return fmt.Errorf("%w: current status %s", ErrStatusConflict, current)
}

// GetSalesReport — выручка считается только по оплаченным заказам.
func (r *orderRepository) GetSalesReport(ctx context.Context) (*models.SalesReport, error) {
	report := &models.SalesReport{}
	row := r.db.QueryRowContext(ctx, salesReportQuery)
	if err := row.Scan(&report.TotalRevenue, &report.TotalOngoingOrders, &report.TotalCompletedOrders); err != nil {
		return nil, fmt.Errorf("failed to build sales report: %w", err)
	}
	return report, nil
}

