package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы платежа в уведомлениях шлюза
const (
	PaymentStatusSucceeded = "SUCCEEDED"
	PaymentStatusFailed    = "FAILED"
)

// PaymentNotification — полезная нагрузка вебхука платежного шлюза
type PaymentNotification struct {
	Event string                  `json:"event" validate:"required"`
	Data  PaymentNotificationData `json:"data"`
}

type PaymentNotificationData struct {
	ID               string          `json:"id" validate:"required"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentRequestID string          `json:"payment_request_id"`
	ReferenceID      string          `json:"reference_id" validate:"required"`
	Status           string          `json:"status" validate:"required"`
}

// Succeeded сообщает, что платеж прошел успешно
func (n *PaymentNotification) Succeeded() bool {
	return n.Data.Status == PaymentStatusSucceeded
}

// PaymentEvent — запись о принятом уведомлении шлюза
type PaymentEvent struct {
	ID               int64           `json:"id"`
	EventID          string          `json:"eventId"`
	OrderID          string          `json:"orderId"`
	EventType        string          `json:"eventType"`
	Status           string          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentRequestID string          `json:"paymentRequestId"`
	CreatedAt        time.Time       `json:"createdAt"`
}
