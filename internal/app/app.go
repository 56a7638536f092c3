package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/linemk/pos-orders/internal/cache"
	"github.com/linemk/pos-orders/internal/config"
	"github.com/linemk/pos-orders/internal/pricing"
	"github.com/linemk/pos-orders/internal/service"
	"github.com/linemk/pos-orders/internal/storage"
	"github.com/linemk/pos-orders/internal/xendit"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const serviceName = "pos-orders"

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
	Redis  *redis.Client

	Catalog   service.CatalogService
	Orders    service.OrderService
	Reconcile service.ReconcileService
}

// DSN собирает строку подключения к postgres
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)
}

// NewApp подключается к БД и redis и собирает сервисы
func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := sql.Open("postgres", DSN(cfg.Database))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	app := &App{
		Config: cfg,
		Logger: log,
		DB:     db,
	}

	// без redis каталог читается напрямую из БД
	var productCache cache.ProductCache = cache.NoopProductCache{}
	if cfg.Redis.Address != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis is unavailable, product cache disabled", slog.Any("error", err))
		} else {
			app.Redis = rdb
			productCache = cache.NewRedisProductCache(rdb, serviceName, cfg.Redis.ProductTTL)
		}
	}

	orderRepo := storage.NewOrderRepository(db)
	productRepo := storage.NewProductRepository(db)
	eventRepo := storage.NewPaymentEventRepository(db)

	gateway := xendit.NewClient(&cfg.Xendit)
	calculator := pricing.NewCalculator(pricing.DefaultTaxPercent, pricing.CurrencyScale(cfg.Xendit.Currency))

	app.Catalog = service.NewCatalogService(log, productRepo, productCache)
	app.Orders = service.NewOrderService(log, db, orderRepo, eventRepo, app.Catalog, calculator, gateway, cfg.Xendit.SimulationEnabled)
	app.Reconcile = service.NewReconcileService(log, db, orderRepo, eventRepo)

	return app, nil
}

// Close освобождает соединения
func (a *App) Close() error {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("failed to close redis", slog.Any("error", err))
		}
	}
	return a.DB.Close()
}
