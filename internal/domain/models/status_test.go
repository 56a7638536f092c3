package models_test

import (
	"testing"
	"time"

	"github.com/linemk/pos-orders/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func TestParseStatusFilter(t *testing.T) {
	cases := map[string]models.StatusFilter{
		"":                 models.FilterAll,
		"all":              models.FilterAll,
		"AWAITING_PAYMENT": models.FilterAwaitingPayment,
		"PROCESSING":       models.FilterProcessing,
		"DONE":             models.FilterDone,
	}
	for raw, want := range cases {
		got, err := models.ParseStatusFilter(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := models.ParseStatusFilter("processing")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestStatusFilter_Status(t *testing.T) {
	_, ok := models.FilterAll.Status()
	assert.False(t, ok)

	s, ok := models.FilterDone.Status()
	assert.True(t, ok)
	assert.Equal(t, models.StatusDone, s)
	assert.Equal(t, "all", models.FilterAll.String())
	assert.Equal(t, "PROCESSING", models.FilterProcessing.String())

	assert.Panics(t, func() { _, _ = models.StatusFilter(42).Status() })
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, models.StatusAwaitingPayment.CanTransitionTo(models.StatusProcessing))
	assert.True(t, models.StatusProcessing.CanTransitionTo(models.StatusDone))

	assert.False(t, models.StatusAwaitingPayment.CanTransitionTo(models.StatusDone))
	assert.False(t, models.StatusProcessing.CanTransitionTo(models.StatusAwaitingPayment))
	assert.False(t, models.StatusDone.CanTransitionTo(models.StatusProcessing))
	assert.False(t, models.StatusDone.CanTransitionTo(models.StatusDone))
	assert.False(t, models.OrderStatus("SHIPPED").CanTransitionTo(models.StatusDone))
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, models.StatusDone.Valid())
	assert.False(t, models.OrderStatus("").Valid())
}

func TestOrder_IsPaid(t *testing.T) {
	o := &models.Order{}
	assert.False(t, o.IsPaid())

	now := time.Now()
	o.PaidAt = &now
	assert.True(t, o.IsPaid())
}

func TestPaymentNotification_Succeeded(t *testing.T) {
	n := &models.PaymentNotification{Data: models.PaymentNotificationData{Status: models.PaymentStatusSucceeded}}
	assert.True(t, n.Succeeded())

	n.Data.Status = models.PaymentStatusFailed
	assert.False(t, n.Succeeded())
}
