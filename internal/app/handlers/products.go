package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/pos-orders/internal/domain/models"
	"github.com/linemk/pos-orders/internal/service"
)

// ListProductsHandler обрабатывает GET /api/products
func ListProductsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := catalog.ListProducts(r.Context())
		if err != nil {
			writeError(w, logger, "failed to list products", err)
			return
		}
		if products == nil {
			products = []*models.Product{}
		}
		writeJSON(w, logger, http.StatusOK, products)
	}
}
