package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/pos-orders/internal/cache"
	"github.com/linemk/pos-orders/internal/domain/models"
	"github.com/linemk/pos-orders/internal/storage"
)

// CatalogService — чтение каталога товаров.
type CatalogService interface {
	// ListProducts — список для витрины, может отставать от БД на TTL кэша.
	ListProducts(ctx context.Context) ([]*models.Product, error)
	// GetProductsByIDs читает текущие цены из БД; отсутствующих в ответе нет.
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]*models.Product, error)
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
	cache       cache.ProductCache
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage, productCache cache.ProductCache) CatalogService {
	if productCache == nil {
		productCache = cache.NoopProductCache{}
	}
	return &catalogService{
		log:         log,
		productRepo: productRepo,
		cache:       productCache,
	}
}

// ListProducts сначала смотрит в кэш. Ошибки кэша не мешают ответу.
func (s *catalogService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	const op = "service.CatalogService.ListProducts"
	logger := s.log.With(slog.String("op", op))

	cached, ok, err := s.cache.GetProductList(ctx)
	if err != nil {
		logger.Warn("product cache unavailable", slog.Any("error", err))
	}
	if ok {
		return cached, nil
	}

	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		logger.Error("failed to list products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.SetProductList(ctx, products); err != nil {
		logger.Warn("failed to cache products", slog.Any("error", err))
	}
	return products, nil
}

// GetProductsByIDs идет мимо кэша: цена фиксируется в заказе и должна быть текущей.
func (s *catalogService) GetProductsByIDs(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	const op = "service.CatalogService.GetProductsByIDs"

	products, err := s.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		s.log.Error("failed to get products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	found := make(map[string]*models.Product, len(products))
	for _, p := range products {
		found[p.ID] = p
	}
	return found, nil
}
