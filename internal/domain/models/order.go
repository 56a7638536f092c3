package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order представляет заказ кассы вместе с реквизитами платежа во внешнем шлюзе
type Order struct {
	ID                      string          `json:"id"`
	Subtotal                decimal.Decimal `json:"subtotal"`
	Tax                     decimal.Decimal `json:"tax"`
	GrandTotal              decimal.Decimal `json:"grandTotal"`
	Status                  OrderStatus     `json:"status"`
	PaidAt                  *time.Time      `json:"paidAt"`
	ExternalPaymentMethodID string          `json:"externalPaymentMethodId"`
	ExternalTransactionID   string          `json:"externalTransactionId"`
	CreatedAt               time.Time       `json:"createdAt"`
	UpdatedAt               time.Time       `json:"updatedAt"`
	Items                   []*OrderItem    `json:"items,omitempty"`
	PaymentEvents           []*PaymentEvent `json:"paymentEvents,omitempty"`
}

// IsPaid сообщает, подтверждена ли оплата заказа
func (o *Order) IsPaid() bool {
	return o.PaidAt != nil
}

// OrderItem — позиция заказа. Price фиксируется в момент создания заказа
// и не зависит от текущей цены товара.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   string          `json:"orderId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderSummary — строка списка заказов для дашборда
type OrderSummary struct {
	ID         string          `json:"id"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	Status     OrderStatus     `json:"status"`
	PaidAt     *time.Time      `json:"paidAt"`
	ItemCount  int             `json:"itemCount"`
}

// SalesReport — агрегаты по всем заказам
type SalesReport struct {
	TotalRevenue         decimal.Decimal `json:"totalRevenue"`
	TotalOngoingOrders   int             `json:"totalOngoingOrders"`
	TotalCompletedOrders int             `json:"totalCompletedOrders"`
}

// PaymentRefs связывает заказ с ресурсами платежного шлюза
type PaymentRefs struct {
	PaymentMethodID string
	TransactionID   string
	QRString        string
}

// StatusUpdate — дополнительные поля, которые записываются вместе со сменой статуса
type StatusUpdate struct {
	PaidAt      *time.Time
	RequirePaid bool
}
