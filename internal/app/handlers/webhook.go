package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/pos-orders/internal/domain/models"
	"github.com/linemk/pos-orders/internal/metrics"
	"github.com/linemk/pos-orders/internal/service"
)

// CallbackTokenHeader — заголовок с общим секретом вебхука
const CallbackTokenHeader = "x-callback-token"

// WebhookResponse — ответ шлюзу
type WebhookResponse struct {
	Outcome service.Outcome `json:"outcome"`
}

// PaymentWebhookHandler обрабатывает POST /api/payments/webhook.
// Токен проверяется до чтения тела запроса.
func PaymentWebhookHandler(log *slog.Logger, callbackToken string, reconcile service.ReconcileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.PaymentWebhookHandler"
		logger := log.With(slog.String("op", op))

		if err := service.VerifyCallbackToken(callbackToken, r.Header.Get(CallbackTokenHeader)); err != nil {
			metrics.RecordWebhookNotification("unauthorized")
			logger.Warn("rejected webhook", slog.Any("error", err), slog.String("remote", r.RemoteAddr))
			http.Error(w, "invalid callback token", http.StatusUnprocessableEntity)
			return
		}

		var n models.PaymentNotification
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			logger.Warn("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(n); err != nil {
			logger.Warn("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		outcome, err := reconcile.HandlePaymentNotification(r.Context(), &n)
		if err != nil {
			writeError(w, logger, "failed to handle payment notification", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, WebhookResponse{Outcome: outcome})
	}
}
