// Package pricing считает суммы заказа: subtotal, налог и итог.
package pricing

import (
	"fmt"
	"strings"

	"github.com/linemk/pos-orders/internal/domain/models"
	"github.com/shopspring/decimal"
)

// DefaultTaxPercent — фиксированная ставка налога, в процентах. В конфиге не задается.
const DefaultTaxPercent = 10

// Totals — результат расчета
type Totals struct {
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
}

// DefaultScale — число знаков после запятой у большинства валют
const DefaultScale int32 = 2

// шлюз принимает суммы в этих валютах только целыми
var zeroDecimalCurrencies = map[string]bool{
	"IDR": true,
	"VND": true,
}

// CurrencyScale возвращает число знаков после запятой для сумм в валюте
func CurrencyScale(currency string) int32 {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return 0
	}
	return DefaultScale
}

// Calculator — чистая функция от корзины и цен каталога
type Calculator struct {
	taxRate decimal.Decimal
	scale   int32
}

// NewCalculator создает калькулятор с налогом taxPercent процентов.
// Налог округляется до scale знаков.
func NewCalculator(taxPercent int64, scale int32) *Calculator {
	return &Calculator{taxRate: decimal.New(taxPercent, -2), scale: scale}
}

// TaxRate возвращает ставку налога в долях
func (c *Calculator) TaxRate() decimal.Decimal {
	return c.taxRate
}

// MergeItems проверяет корзину и схлопывает повторяющиеся товары, сохраняя порядок
func MergeItems(items []models.CartItem) ([]models.CartItem, error) {
	if len(items) == 0 {
		return nil, models.Validation("cart is empty")
	}

	merged := make([]models.CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			return nil, models.Validation("product id is required")
		}
		if item.Quantity < 1 {
			return nil, models.Validation(fmt.Sprintf("quantity for product %s must be at least 1", item.ProductID))
		}
		if item.Quantity > models.MaxItemQuantity {
			return nil, models.Validation(fmt.Sprintf("quantity for product %s must be at most %d", item.ProductID, models.MaxItemQuantity))
		}
		if i, ok := index[item.ProductID]; ok {
			if merged[i].Quantity > models.MaxItemQuantity-item.Quantity {
				return nil, models.Validation(fmt.Sprintf("total quantity for product %s must be at most %d", item.ProductID, models.MaxItemQuantity))
			}
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// Calculate считает суммы и формирует позиции заказа с зафиксированными ценами.
// Товар, которого нет в products, делает весь расчет невалидным.
func (c *Calculator) Calculate(items []models.CartItem, products map[string]*models.Product) (*Totals, []*models.OrderItem, error) {
	merged, err := MergeItems(items)
	if err != nil {
		return nil, nil, err
	}

	subtotal := decimal.Zero
	orderItems := make([]*models.OrderItem, 0, len(merged))
	for _, item := range merged {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, nil, models.NotFound(fmt.Sprintf("product %s", item.ProductID))
		}
		if product.Price.IsNegative() {
			return nil, nil, models.Validation(fmt.Sprintf("product %s has negative price", item.ProductID))
		}
		if !product.Price.Equal(product.Price.Round(c.scale)) {
			return nil, nil, models.Validation(fmt.Sprintf("product %s price %s is finer than the currency allows", item.ProductID, product.Price))
		}

		subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		orderItems = append(orderItems, &models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
	}

	// итог складывается из уже округленного налога, поэтому
	// сумма в шлюзе, в БД и в ответе совпадает
	tax := subtotal.Mul(c.taxRate).Round(c.scale)
	return &Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal.Add(tax),
	}, orderItems, nil
}
