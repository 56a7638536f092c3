// Package xendit — клиент платежных запросов Xendit (QR-коды).
package xendit

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/linemk/pos-orders/internal/circuitbreaker"
	"github.com/linemk/pos-orders/internal/config"
	"github.com/linemk/pos-orders/internal/domain/models"
	"github.com/linemk/pos-orders/internal/metrics"
	"github.com/shopspring/decimal"
)

const (
	paymentRequestsPath = "/payment_requests"
	simulatePathFormat  = "/v2/payment_methods/%s/payments/simulate"

	paymentMethodQRCode = "QR_CODE"
	reusabilityOneTime  = "ONE_TIME_USE"
)

// APIError — ответ шлюза с кодом не 2xx
type APIError struct {
	StatusCode int
	Code       string `json:"error_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("xendit error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

type Client struct {
	httpClient  *http.Client
	baseURL     string
	secretKey   string
	currency    string
	channelCode string
	qrExpiry    time.Duration
	breaker     *circuitbreaker.CircuitBreaker
	now         func() time.Time
}

func NewClient(cfg *config.XenditConfig) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:   cfg.SecretKey,
		currency:    cfg.Currency,
		channelCode: cfg.ChannelCode,
		qrExpiry:    cfg.QRExpiry,
		breaker:     circuitbreaker.NewCircuitBreaker(cfg.BreakerMaxFailures, cfg.BreakerResetTimeout),
		now:         time.Now,
	}
}

type channelProperties struct {
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	QRString  string     `json:"qr_string,omitempty"`
}

type qrCode struct {
	ChannelCode       string            `json:"channel_code"`
	ChannelProperties channelProperties `json:"channel_properties"`
}

type paymentMethod struct {
	ID          string  `json:"id,omitempty"`
	Type        string  `json:"type"`
	Reusability string  `json:"reusability"`
	ReferenceID string  `json:"reference_id"`
	QRCode      *qrCode `json:"qr_code,omitempty"`
}

type paymentRequestBody struct {
	Currency      string        `json:"currency"`
	Amount        json.Number   `json:"amount"`
	ReferenceID   string        `json:"reference_id"`
	PaymentMethod paymentMethod `json:"payment_method"`
}

type paymentRequestResult struct {
	ID            string        `json:"id"`
	ReferenceID   string        `json:"reference_id"`
	Status        string        `json:"status"`
	PaymentMethod paymentMethod `json:"payment_method"`
}

// CreatePaymentRequest создает одноразовый QR-платеж, привязанный к заказу.
// orderID используется и как reference_id, и как ключ идемпотентности,
// поэтому повтор с тем же заказом не создает второй платеж.
func (c *Client) CreatePaymentRequest(ctx context.Context, orderID string, amount decimal.Decimal) (*models.PaymentRefs, error) {
	expiresAt := c.now().Add(c.qrExpiry).UTC()
	body := paymentRequestBody{
		Currency:    c.currency,
		Amount:      json.Number(amount.String()),
		ReferenceID: orderID,
		PaymentMethod: paymentMethod{
			Type:        paymentMethodQRCode,
			Reusability: reusabilityOneTime,
			ReferenceID: orderID,
			QRCode: &qrCode{
				ChannelCode:       c.channelCode,
				ChannelProperties: channelProperties{ExpiresAt: &expiresAt},
			},
		},
	}

	var result paymentRequestResult
	if err := c.call(ctx, "create_payment_request", paymentRequestsPath, orderID, body, &result); err != nil {
		return nil, models.ExternalService(fmt.Errorf("create payment request: %w", err))
	}

	refs := &models.PaymentRefs{
		PaymentMethodID: result.PaymentMethod.ID,
		TransactionID:   result.ID,
	}
	if result.PaymentMethod.QRCode != nil {
		refs.QRString = result.PaymentMethod.QRCode.ChannelProperties.QRString
	}
	if refs.PaymentMethodID == "" || refs.TransactionID == "" {
		return nil, models.ExternalService(errors.New("create payment request: response without payment identifiers"))
	}
	return refs, nil
}

// SimulatePayment просит шлюз провести оплату QR-кода (только для тестового режима).
func (c *Client) SimulatePayment(ctx context.Context, paymentMethodID string, amount decimal.Decimal) error {
	if paymentMethodID == "" {
		return models.Validation("order has no payment method")
	}
	body := struct {
		Amount json.Number `json:"amount"`
	}{Amount: json.Number(amount.String())}

	path := fmt.Sprintf(simulatePathFormat, url.PathEscape(paymentMethodID))
	if err := c.call(ctx, "simulate_payment", path, "", body, nil); err != nil {
		return models.ExternalService(fmt.Errorf("simulate payment: %w", err))
	}
	return nil
}

// call выполняет POST через circuit breaker. Ошибки 4xx не размыкают цепь:
// это ошибки запроса, а не недоступность шлюза.
func (c *Client) call(ctx context.Context, operation, path, idempotencyKey string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal req payload: %w", err)
	}

	var clientErr error
	err = c.breaker.Execute(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("http new request: %w", err)
		}
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.secretKey+":")))
		req.Header.Set("Content-Type", "application/json")
		if idempotencyKey != "" {
			req.Header.Set("Idempotency-key", idempotencyKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http client do: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{StatusCode: resp.StatusCode}
			if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr != nil || apiErr.Message == "" {
				apiErr.Message = string(respBody)
			}
			if resp.StatusCode < 500 {
				clientErr = apiErr
				return nil
			}
			return apiErr
		}

		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("decode xendit response: %w", err)
			}
		}
		return nil
	})
	if err == nil {
		err = clientErr
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.RecordGatewayRequest(operation, result)
	return err
}
