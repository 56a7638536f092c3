package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/linemk/pos-orders/internal/app"
	"github.com/linemk/pos-orders/internal/config"
	"github.com/linemk/pos-orders/internal/domain/models"
	security "github.com/linemk/pos-orders/internal/jwt-new"
	"github.com/linemk/pos-orders/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jwtSecret     = "router-secret"
	callbackToken = "router-callback"
)

// memoryOrders — сервис заказов в памяти: проходит весь жизненный цикл
// одного заказа без БД и шлюза.
type memoryOrders struct {
	order *models.Order
}

func (m *memoryOrders) CreateOrder(ctx context.Context, items []models.CartItem) (*service.CreateOrderResult, error) {
	m.order = &models.Order{
		ID:         "order-1",
		Subtotal:   decimal.NewFromInt(20000),
		Tax:        decimal.NewFromInt(2000),
		GrandTotal: decimal.NewFromInt(22000),
		Status:     models.StatusAwaitingPayment,
	}
	return &service.CreateOrderResult{Order: m.order, QRString: "qr"}, nil
}

func (m *memoryOrders) GetOrders(ctx context.Context, filter models.StatusFilter) ([]*models.OrderSummary, error) {
	return nil, nil
}

func (m *memoryOrders) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	if m.order == nil || m.order.ID != orderID {
		return nil, models.NotFound("order")
	}
	return m.order, nil
}

func (m *memoryOrders) IsOrderPaid(ctx context.Context, orderID string) (bool, error) {
	o, err := m.GetOrder(ctx, orderID)
	if err != nil {
		return false, err
	}
	return o.IsPaid(), nil
}

func (m *memoryOrders) FinishOrder(ctx context.Context, orderID string) error {
	o, err := m.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !o.IsPaid() {
		return models.Conflict("order is not paid yet")
	}
	if o.Status != models.StatusProcessing {
		return models.Conflict("order is not in processing state")
	}
	o.Status = models.StatusDone
	return nil
}

func (m *memoryOrders) SimulatePayment(ctx context.Context, orderID string) error {
	return service.ErrSimulationDisabled
}

func (m *memoryOrders) GetSalesReport(ctx context.Context) (*models.SalesReport, error) {
	return &models.SalesReport{TotalRevenue: decimal.Zero}, nil
}

func (m *memoryOrders) HandlePaymentNotification(ctx context.Context, n *models.PaymentNotification) (service.Outcome, error) {
	o, err := m.GetOrder(ctx, n.Data.ReferenceID)
	if err != nil {
		return "", err
	}
	if !n.Succeeded() {
		return service.OutcomeIgnored, nil
	}
	if o.Status != models.StatusAwaitingPayment {
		return service.OutcomeDuplicate, nil
	}
	now := time.Now()
	o.PaidAt = &now
	o.Status = models.StatusProcessing
	return service.OutcomeApplied, nil
}

type emptyCatalog struct{}

func (emptyCatalog) ListProducts(ctx context.Context) ([]*models.Product, error) { return nil, nil }

func (emptyCatalog) GetProductsByIDs(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	return map[string]*models.Product{}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	orders := &memoryOrders{}
	cfg := &config.Config{
		JWT:    config.JWTConfig{Secret: jwtSecret},
		Xendit: config.XenditConfig{CallbackToken: callbackToken},
	}
	a := &app.App{
		Config:    cfg,
		Logger:    slog.New(slog.NewTextHandler(os.Stdout, nil)),
		Catalog:   emptyCatalog{},
		Orders:    orders,
		Reconcile: orders,
	}
	srv := httptest.NewServer(app.NewRouter(a))
	t.Cleanup(srv.Close)

	token, err := security.NewStaffToken("cashier-1", jwtSecret, time.Hour)
	require.NoError(t, err)
	return srv, token
}

func doRequest(t *testing.T, method, url, token string, body []byte, headers map[string]string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestRouter_HealthAndMetricsArePublic(t *testing.T) {
	srv, _ := newTestServer(t)

	code, body := doRequest(t, "GET", srv.URL+"/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)

	code, _ = doRequest(t, "GET", srv.URL+"/metrics", "", nil, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_OrdersRequireJWT(t *testing.T) {
	srv, _ := newTestServer(t)

	code, _ := doRequest(t, "GET", srv.URL+"/api/orders", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_OrderLifecycle(t *testing.T) {
	srv, token := newTestServer(t)

	code, body := doRequest(t, "POST", srv.URL+"/api/orders", token,
		[]byte(`{"items":[{"productId":"P1","quantity":2}]}`), nil)
	require.Equal(t, http.StatusCreated, code, body)

	var created struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	orderID := created.Order.ID

	// заказ не оплачен, завершить нельзя
	code, _ = doRequest(t, "POST", srv.URL+"/api/orders/"+orderID+"/finish", token, nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	webhook := []byte(`{"event":"payment.succeeded","data":{"id":"evt-1","reference_id":"` + orderID + `","status":"SUCCEEDED"}}`)

	// чужой токен не меняет заказ
	code, _ = doRequest(t, "POST", srv.URL+"/api/payments/webhook", "", webhook,
		map[string]string{"x-callback-token": "forged"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	_, body = doRequest(t, "GET", srv.URL+"/api/orders/"+orderID+"/paid", token, nil, nil)
	assert.JSONEq(t, `{"orderId":"`+orderID+`","paid":false}`, body)

	for i := 0; i < 2; i++ {
		code, _ = doRequest(t, "POST", srv.URL+"/api/payments/webhook", "", webhook,
			map[string]string{"x-callback-token": callbackToken})
		assert.Equal(t, http.StatusOK, code)
	}
	_, body = doRequest(t, "GET", srv.URL+"/api/orders/"+orderID+"/paid", token, nil, nil)
	assert.JSONEq(t, `{"orderId":"`+orderID+`","paid":true}`, body)

	code, _ = doRequest(t, "POST", srv.URL+"/api/orders/"+orderID+"/finish", token, nil, nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = doRequest(t, "POST", srv.URL+"/api/orders/"+orderID+"/finish", token, nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body, "not in processing state")
}

func TestRouter_WebhookUnknownOrder(t *testing.T) {
	srv, _ := newTestServer(t)

	webhook := []byte(`{"event":"payment.succeeded","data":{"id":"evt-1","reference_id":"missing","status":"SUCCEEDED"}}`)
	code, _ := doRequest(t, "POST", srv.URL+"/api/payments/webhook", "", webhook,
		map[string]string{"x-callback-token": callbackToken})
	assert.Equal(t, http.StatusNotFound, code)
}
