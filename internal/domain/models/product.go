package models

import "github.com/shopspring/decimal"

// Product — товар каталога
type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	ImageURL   string          `json:"imageUrl"`
	CategoryID string          `json:"categoryId,omitempty"`
}

// MaxItemQuantity — предел количества одного товара в заказе.
// Совпадает с lte в теге CartItem.Quantity.
const MaxItemQuantity = 10000

// CartItem — позиция корзины, пришедшая от кассы
type CartItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=10000"`
}
