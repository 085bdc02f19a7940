package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateEarnings_Simple(t *testing.T) {
	catalog := map[int64]CatalogPrice{
		1: {UnitPrice: 500, Coefficient: 1.0},
	}
	got := CalculateEarnings([]WorkLogEntry{{PriceItemID: 1, Quantity: 2, Coefficient: 1.0}}, catalog)
	assert.Equal(t, int64(1000), got)
}

func TestCalculateEarnings_Coefficient(t *testing.T) {
	catalog := map[int64]CatalogPrice{
		7: {UnitPrice: 400, Coefficient: 1.5},
	}
	got := CalculateEarnings([]WorkLogEntry{{PriceItemID: 7, Quantity: 3}}, catalog)
	assert.Equal(t, int64(1800), got)
}

func TestCalculateEarnings_EmptyLog(t *testing.T) {
	assert.Equal(t, int64(0), CalculateEarnings(nil, nil))
}

// Невалидный id обнуляет весь расчёт, даже если остальные позиции валидны.
func TestCalculateEarnings_BadIDZeroesTotal(t *testing.T) {
	catalog := map[int64]CatalogPrice{
		1: {UnitPrice: 500, Coefficient: 1.0},
	}
	entries := []WorkLogEntry{
		{PriceItemID: 1, Quantity: 2},
		{PriceItemID: 0, Quantity: 1},
	}
	assert.Equal(t, int64(0), CalculateEarnings(entries, catalog))
}

// Удалённая позиция прайса даёт вклад 0, но не ломает расчёт остальных.
func TestCalculateEarnings_MissingCatalogItem(t *testing.T) {
	catalog := map[int64]CatalogPrice{
		1: {UnitPrice: 300, Coefficient: 1.0},
	}
	entries := []WorkLogEntry{
		{PriceItemID: 1, Quantity: 1},
		{PriceItemID: 99, Quantity: 5},
	}
	assert.Equal(t, int64(300), CalculateEarnings(entries, catalog))
}

func TestCalculateEarnings_QuantityBelowOne(t *testing.T) {
	catalog := map[int64]CatalogPrice{
		1: {UnitPrice: 250, Coefficient: 1.0},
	}
	entries := []WorkLogEntry{{PriceItemID: 1, Quantity: 0}}
	assert.Equal(t, int64(250), CalculateEarnings(entries, catalog))

	entries[0].Quantity = -3
	assert.Equal(t, int64(250), CalculateEarnings(entries, catalog))
}

// Банковское округление: .5 уходит к ближайшему чётному.
func TestCalculateEarnings_RoundHalfToEven(t *testing.T) {
	cases := []struct {
		coef float64
		want int64
	}{
		{2.5, 2},
		{3.5, 4},
		{0.5, 0},
		{1.5, 2},
	}
	for _, tc := range cases {
		catalog := map[int64]CatalogPrice{1: {UnitPrice: 1, Coefficient: tc.coef}}
		got := CalculateEarnings([]WorkLogEntry{{PriceItemID: 1, Quantity: 1}}, catalog)
		assert.Equal(t, tc.want, got, "coef %v", tc.coef)
	}
}

func TestCalculateEarnings_NegativeClampedToZero(t *testing.T) {
	catalog := map[int64]CatalogPrice{1: {UnitPrice: -100, Coefficient: 1.0}}
	got := CalculateEarnings([]WorkLogEntry{{PriceItemID: 1, Quantity: 1}}, catalog)
	assert.Equal(t, int64(0), got)
}

func TestReferencedItemIDs(t *testing.T) {
	entries := []WorkLogEntry{
		{PriceItemID: 3},
		{PriceItemID: 1},
		{PriceItemID: 3},
		{PriceItemID: 0},
		{PriceItemID: -5},
	}
	assert.Equal(t, []int64{3, 1}, ReferencedItemIDs(entries))
}
