package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/linemk/pos-orders/internal/cache"
	"github.com/linemk/pos-orders/internal/domain/models"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNoopProductCache(t *testing.T) {
	var c cache.ProductCache = cache.NoopProductCache{}

	assert.NoError(t, c.SetProductList(context.Background(), []*models.Product{{ID: "P1"}}))
	products, ok, err := c.GetProductList(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, products)
}

func TestRedisProductCache_UnavailableServer(t *testing.T) {
	// Сервер недоступен: кэш возвращает ошибку и промах.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := cache.NewRedisProductCache(client, "pos", time.Minute)
	products, ok, err := c.GetProductList(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Nil(t, products)

	err = c.SetProductList(context.Background(), []*models.Product{{ID: "P1", Price: decimal.NewFromInt(1)}})
	assert.Error(t, err)
}

func TestNewRedisClient_PingFails(t *testing.T) {
	client, err := cache.NewRedisClient(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
	assert.Nil(t, client)
}
