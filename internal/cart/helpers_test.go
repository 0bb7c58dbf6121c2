package cart_test

import (
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nikolayk812/spicecart/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"testing"
)

func randomProduct() domain.Product {
	return domain.Product{
		ID:            int64(gofakeit.IntRange(1, 1_000_000)),
		Name:          gofakeit.ProductName(),
		Description:   gofakeit.ProductDescription(),
		Price:         decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
		ImageURL:      gofakeit.URL(),
		ImageURLs:     []string{gofakeit.URL(), gofakeit.URL()},
		Weight:        "100g",
		StockQuantity: gofakeit.IntRange(10, 100),
		CategoryID:    int64(gofakeit.IntRange(1, 5)),
		IsActive:      true,
		CreatedAt:     gofakeit.Date().UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func productWithPrice(id int64, price string) domain.Product {
	p := randomProduct()
	p.ID = id
	p.Price = decimal.RequireFromString(price)
	return p
}

func assertItems(t *testing.T, expected, actual []domain.CartItem) {
	t.Helper()

	decimalComparer := cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})

	diff := cmp.Diff(expected, actual, decimalComparer, cmpopts.EquateEmpty())
	assert.Empty(t, diff)
}
