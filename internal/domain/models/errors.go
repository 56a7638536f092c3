package models

import (
	"errors"
	"fmt"
)

// Категории ошибок ядра заказов. Конкретные ошибки оборачивают одну из них,
// поэтому транспортный слой проверяет их через errors.Is.
var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrExternalService = errors.New("external service error")
	ErrAuthentication  = errors.New("authentication error")
)

// Validation возвращает ошибку валидации с пояснением
func Validation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

// NotFound возвращает ошибку отсутствующей сущности
func NotFound(reason string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, reason)
}

// Conflict возвращает ошибку нарушенного предусловия перехода
func Conflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

// ExternalService оборачивает ошибку платежного шлюза
func ExternalService(err error) error {
	return fmt.Errorf("%w: %w", ErrExternalService, err)
}
