package pricing_test

import (
	"errors"
	"math"
	"testing"

	"github.com/linemk/pos-orders/internal/domain/models"
	"github.com/linemk/pos-orders/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func catalog(products ...*models.Product) map[string]*models.Product {
	m := make(map[string]*models.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}

func TestCalculate_Scenario(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxPercent, pricing.DefaultScale)
	products := catalog(&models.Product{ID: "P1", Price: decimal.NewFromInt(10000)})

	totals, items, err := calc.Calculate([]models.CartItem{{ProductID: "P1", Quantity: 2}}, products)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20000).Equal(totals.Subtotal), "subtotal")
	assert.True(t, decimal.NewFromInt(2000).Equal(totals.Tax), "tax")
	assert.True(t, decimal.NewFromInt(22000).Equal(totals.GrandTotal), "grand total")
	assert.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, decimal.NewFromInt(10000).Equal(items[0].Price))
}

func TestCalculate_GrandTotalIsSubtotalPlusTax(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxPercent, pricing.DefaultScale)
	products := catalog(
		&models.Product{ID: "a", Price: decimal.RequireFromString("1234.5")},
		&models.Product{ID: "b", Price: decimal.NewFromInt(999)},
		&models.Product{ID: "c", Price: decimal.NewFromInt(15)},
	)
	cart := []models.CartItem{
		{ProductID: "a", Quantity: 3},
		{ProductID: "b", Quantity: 1},
		{ProductID: "c", Quantity: 7},
	}

	totals, _, err := calc.Calculate(cart, products)
	assert.NoError(t, err)

	expectedSubtotal := decimal.RequireFromString("3703.5").Add(decimal.NewFromInt(999)).Add(decimal.NewFromInt(105))
	assert.True(t, expectedSubtotal.Equal(totals.Subtotal))
	assert.True(t, totals.Subtotal.Mul(decimal.RequireFromString("0.1")).Equal(totals.Tax))
	assert.True(t, totals.Subtotal.Add(totals.Tax).Equal(totals.GrandTotal))
}

func TestCalculate_MergesDuplicateProducts(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxPercent, pricing.DefaultScale)
	products := catalog(&models.Product{ID: "P1", Price: decimal.NewFromInt(500)})

	totals, items, err := calc.Calculate([]models.CartItem{
		{ProductID: "P1", Quantity: 1},
		{ProductID: "P1", Quantity: 2},
	}, products)
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.True(t, decimal.NewFromInt(1500).Equal(totals.Subtotal))
}

func TestCalculate_EmptyCart(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxPercent, pricing.DefaultScale)

	totals, items, err := calc.Calculate(nil, catalog())
	assert.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.Nil(t, totals)
	assert.Nil(t, items)
}

func TestCalculate_NonPositiveQuantity(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxPercent, pricing.DefaultScale)
	products := catalog(&models.Product{ID: "P1", Price: decimal.NewFromInt(500)})

	for _, qty := range []int{0, -1} {
		_, _, err := calc.Calculate([]models.CartItem{{ProductID: "P1", Quantity: qty}}, products)
		assert.True(t, errors.Is(err, models.ErrValidation), "quantity %d should be rejected", qty)
	}
}

func TestCalculate_UnknownProduct(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxPercent, pricing.DefaultScale)
	products := catalog(&models.Product{ID: "P1", Price: decimal.NewFromInt(500)})

	_, _, err := calc.Calculate([]models.CartItem{
		{ProductID: "P1", Quantity: 1},
		{ProductID: "missing", Quantity: 1},
	}, products)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestCalculate_NegativePrice(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxPercent, pricing.DefaultScale)
	products := catalog(&models.Product{ID: "P1", Price: decimal.NewFromInt(-5)})

	_, _, err := calc.Calculate([]models.CartItem{{ProductID: "P1", Quantity: 1}}, products)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestNewCalculator_TaxRate(t *testing.T) {
	calc := pricing.NewCalculator(11, pricing.DefaultScale)
	assert.True(t, decimal.RequireFromString("0.11").Equal(calc.TaxRate()))
}

func TestCalculate_TaxRoundedToCurrencyScale(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxPercent, pricing.DefaultScale)
	products := catalog(&models.Product{ID: "P1", Price: decimal.RequireFromString("10.05")})

	totals, _, err := calc.Calculate([]models.CartItem{{ProductID: "P1", Quantity: 1}}, products)
	assert.NoError(t, err)
	assert.Equal(t, "10.05", totals.Subtotal.String())
	assert.Equal(t, "1.01", totals.Tax.String())
	assert.Equal(t, "11.06", totals.GrandTotal.String())
	assert.True(t, totals.Subtotal.Add(totals.Tax).Equal(totals.GrandTotal))
}

func TestCalculate_WholeUnitCurrency(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxPercent, pricing.CurrencyScale("IDR"))
	products := catalog(&models.Product{ID: "P1", Price: decimal.NewFromInt(1005)})

	totals, _, err := calc.Calculate([]models.CartItem{{ProductID: "P1", Quantity: 1}}, products)
	assert.NoError(t, err)
	assert.Equal(t, "101", totals.Tax.String())
	assert.Equal(t, "1106", totals.GrandTotal.String())
}

func TestCalculate_PriceFinerThanCurrency(t *testing.T) {
	calc := pricing.NewCalculator(pricing.DefaultTaxPercent, pricing.CurrencyScale("IDR"))
	products := catalog(&models.Product{ID: "P1", Price: decimal.RequireFromString("10.05")})

	_, _, err := calc.Calculate([]models.CartItem{{ProductID: "P1", Quantity: 1}}, products)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestCurrencyScale(t *testing.T) {
	assert.Equal(t, int32(0), pricing.CurrencyScale("IDR"))
	assert.Equal(t, int32(0), pricing.CurrencyScale("idr"))
	assert.Equal(t, int32(2), pricing.CurrencyScale("PHP"))
}

func TestMergeItems_QuantityTooLarge(t *testing.T) {
	for _, qty := range []int{models.MaxItemQuantity + 1, math.MaxInt32 + 1, math.MaxInt} {
		_, err := pricing.MergeItems([]models.CartItem{{ProductID: "P1", Quantity: qty}})
		assert.True(t, errors.Is(err, models.ErrValidation), "quantity %d should be rejected", qty)
	}
}

func TestMergeItems_MergedQuantityChecked(t *testing.T) {
	_, err := pricing.MergeItems([]models.CartItem{
		{ProductID: "P1", Quantity: math.MaxInt},
		{ProductID: "P1", Quantity: 2},
	})
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = pricing.MergeItems([]models.CartItem{
		{ProductID: "P1", Quantity: models.MaxItemQuantity},
		{ProductID: "P1", Quantity: 1},
	})
	assert.True(t, errors.Is(err, models.ErrValidation))

	merged, err := pricing.MergeItems([]models.CartItem{
		{ProductID: "P1", Quantity: models.MaxItemQuantity - 1},
		{ProductID: "P1", Quantity: 1},
	})
	assert.NoError(t, err)
	assert.Equal(t, models.MaxItemQuantity, merged[0].Quantity)
}
