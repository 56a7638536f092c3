package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linemk/pos-orders/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

// ProductCache — кэш списка товаров для витрины кассы.
// Цены для расчета заказа из него не берутся.
type ProductCache interface {
	// GetProductList возвращает закэшированный список и false при промахе.
	GetProductList(ctx context.Context) ([]*models.Product, bool, error)
	SetProductList(ctx context.Context, products []*models.Product) error
}

type redisProductCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisProductCache(client *redis.Client, serviceName string, ttl time.Duration) ProductCache {
	return &redisProductCache{
		client: client,
		prefix: serviceName,
		ttl:    ttl,
	}
}

func (r *redisProductCache) key() string {
	return fmt.Sprintf("%s:products:all", r.prefix)
}

func (r *redisProductCache) GetProductList(ctx context.Context) ([]*models.Product, bool, error) {
	raw, err := r.client.Get(ctx, r.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var products []*models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		// битую запись считаем промахом, она перезапишется
		return nil, false, nil
	}
	return products, true, nil
}

func (r *redisProductCache) SetProductList(ctx context.Context, products []*models.Product) error {
	if products == nil {
		products = []*models.Product{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(), data, r.ttl).Err()
}

// NoopProductCache используется, когда redis не настроен
type NoopProductCache struct{}

func (NoopProductCache) GetProductList(context.Context) ([]*models.Product, bool, error) {
	return nil, false, nil
}

func (NoopProductCache) SetProductList(context.Context, []*models.Product) error {
	return nil
}

// NewRedisClient подключается к redis и проверяет соединение
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}
