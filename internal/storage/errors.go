package storage

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/linemk/pos-orders/internal/domain/models"
)

var (
	ErrOrderNotFound   = fmt.Errorf("order %w", models.ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", models.ErrNotFound)
	ErrStatusConflict  = fmt.Errorf("order status %w", models.ErrConflict)
	ErrEmptyOrder      = fmt.Errorf("%w: order has no items", models.ErrValidation)
)

// коды ошибок postgres, которые мы различаем
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqLockNotAvailable    = "55P03"
)

// mapPQError переводит ошибки драйвера в доменные категории
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return fmt.Errorf("%w: duplicate key: %w", models.ErrConflict, err)
	case pqForeignKeyViolation:
		return fmt.Errorf("%w: %w", ErrProductNotFound, err)
	case pqLockNotAvailable:
		return fmt.Errorf("%w: resource is locked, please try again: %w", models.ErrConflict, err)
	}
	return err
}
