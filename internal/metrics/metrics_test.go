package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Middleware)
	router.Get("/api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/orders/{id}", "418"))

	req := httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTeapot, rr.Code)
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/orders/{id}", "418"))
	assert.Equal(t, before+1, after)
}

func TestRecordWebhookNotification(t *testing.T) {
	before := testutil.ToFloat64(webhookNotificationsTotal.WithLabelValues("applied"))
	RecordWebhookNotification("applied")
	assert.Equal(t, before+1, testutil.ToFloat64(webhookNotificationsTotal.WithLabelValues("applied")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	RecordOrderCreated()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "orders_created_total")
}
