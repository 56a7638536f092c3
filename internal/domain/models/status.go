package models

import "fmt"

// OrderStatus — состояние заказа. Переходы только вперед:
// AWAITING_PAYMENT -> PROCESSING -> DONE.
type OrderStatus string

const (
	StatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	StatusProcessing      OrderStatus = "PROCESSING"
	StatusDone            OrderStatus = "DONE"
)

// Valid проверяет, что статус входит в закрытый набор
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusAwaitingPayment, StatusProcessing, StatusDone:
		return true
	}
	return false
}

// CanTransitionTo проверяет допустимость перехода
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case StatusAwaitingPayment:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusDone
	case StatusDone:
		return false
	}
	return false
}

// StatusFilter — фильтр списка заказов
type StatusFilter int

const (
	FilterAll StatusFilter = iota
	FilterAwaitingPayment
	FilterProcessing
	FilterDone
)

// ParseStatusFilter разбирает значение query-параметра status.
// Пустая строка трактуется как "all".
func ParseStatusFilter(raw string) (StatusFilter, error) {
	switch raw {
	case "", "all":
		return FilterAll, nil
	case string(StatusAwaitingPayment):
		return FilterAwaitingPayment, nil
	case string(StatusProcessing):
		return FilterProcessing, nil
	case string(StatusDone):
		return FilterDone, nil
	}
	return FilterAll, Validation(fmt.Sprintf("unknown status filter %q", raw))
}

// Status возвращает статус, по которому фильтровать, и false для FilterAll
func (f StatusFilter) Status() (OrderStatus, bool) {
	switch f {
	case FilterAll:
		return "", false
	case FilterAwaitingPayment:
		return StatusAwaitingPayment, true
	case FilterProcessing:
		return StatusProcessing, true
	case FilterDone:
		return StatusDone, true
	}
	panic(fmt.Sprintf("models: unhandled status filter %d", int(f)))
}

func (f StatusFilter) String() string {
	if s, ok := f.Status(); ok {
		return string(s)
	}
	return "all"
}
