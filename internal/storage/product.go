package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/pos-orders/internal/domain/models"
)

// ProductStorage описывает чтение каталога товаров.
type ProductStorage interface {
	// GetProductsByIDs возвращает найденные товары; отсутствующие id просто пропускаются.
	GetProductsByIDs(ctx context.Context, ids []string) ([]*models.Product, error)
	// ListProducts возвращает весь каталог.
	ListProducts(ctx context.Context) ([]*models.Product, error)
}

// productRepository — конкретная реализация интерфейса ProductStorage.
type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт новый репозиторий товаров.
func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const (
	selectProductsByIDsQuery = `SELECT id, name, price, image_url, COALESCE(category_id, '') FROM products WHERE id = ANY($1)`
	selectProductsQuery      = `SELECT id, name, price, image_url, COALESCE(category_id, '') FROM products ORDER BY name`
)

func (r *productRepository) GetProductsByIDs(ctx context.Context, ids []string) ([]*models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, selectProductsByIDsQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) ListProducts(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, selectProductsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]*models.Product, error) {
	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.ImageURL, &p.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}
