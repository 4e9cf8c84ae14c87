package aggregate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixture-graph/internal/apperr"
	"fixture-graph/internal/rates"
)

func catalog(prices map[string]float64) PriceFunc {
	return func(id string) (float64, bool) {
		p, ok := prices[id]
		return p, ok
	}
}

func TestOrderTotal(t *testing.T) {
	prices := catalog(map[string]float64{"pizza": 10.99, "pasta": 12.99, "soda": 0.1})

	t.Run("SingleLine", func(t *testing.T) {
		total, err := OrderTotal([]Line{{CatalogID: "pizza", Quantity: 2}}, prices)
		require.NoError(t, err)
		assert.Equal(t, 21.98, total)
	})

	t.Run("ManyLinesStayExact", func(t *testing.T) {
		total, err := OrderTotal([]Line{
			{CatalogID: "soda", Quantity: 3},
			{CatalogID: "pasta", Quantity: 1},
			{CatalogID: "pizza", Quantity: 1},
		}, prices)
		require.NoError(t, err)
		assert.Equal(t, 24.28, total)
	})

	t.Run("UnknownEntry", func(t *testing.T) {
		_, err := OrderTotal([]Line{{CatalogID: "pizza", Quantity: 1}, {CatalogID: "ghost", Quantity: 1}}, prices)
		assert.ErrorIs(t, err, apperr.ErrValidationFailed)
		assert.Contains(t, err.Error(), `"ghost"`)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		huge := catalog(map[string]float64{"gold": 1e17, "caviar": MaxPrice, "nan": math.NaN()})
		tests := []struct {
			name  string
			lines []Line
		}{
			{"PriceAboveMax", []Line{{CatalogID: "gold", Quantity: 1}}},
			{"PriceNaN", []Line{{CatalogID: "nan", Quantity: 1}}},
			{"QuantityAboveMax", []Line{{CatalogID: "caviar", Quantity: MaxQuantity + 1}}},
			{"ZeroQuantity", []Line{{CatalogID: "caviar", Quantity: 0}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := OrderTotal(tt.lines, huge)
				assert.ErrorIs(t, err, apperr.ErrValidationFailed)
			})
		}
	})

	t.Run("LargestLineStaysExact", func(t *testing.T) {
		total, err := OrderTotal([]Line{{CatalogID: "caviar", Quantity: MaxQuantity}}, catalog(map[string]float64{"caviar": MaxPrice}))
		require.NoError(t, err)
		assert.Equal(t, 1e10, total)
	})

	t.Run("SumOverflow", func(t *testing.T) {
		many := make([]Line, 0, 10_000)
		prices := make(map[string]float64, 10_000)
		for i := 0; i < 10_000; i++ {
			id := fmt.Sprintf("item-%d", i)
			prices[id] = MaxPrice
			many = append(many, Line{CatalogID: id, Quantity: MaxQuantity})
		}
		_, err := OrderTotal(many, catalog(prices))
		assert.ErrorIs(t, err, apperr.ErrValidationFailed)
		assert.Contains(t, err.Error(), "too large")
	})

	t.Run("Empty", func(t *testing.T) {
		total, err := OrderTotal(nil, prices)
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 1.01, RoundCents(1.005000001))
	assert.Equal(t, -2.5, RoundCents(-2.499999))
	assert.Equal(t, 3.0, RoundCents(3))
}

func TestBalance(t *testing.T) {
	src := rates.Table{"USD": 1, "EUR": 0.5}
	moves := []Movement{
		{Amount: 100, Currency: "USD"},
		{Amount: 10, Currency: "EUR"},
		{Amount: 30, Currency: "USD", Outbound: true},
	}

	t.Run("ConvertsAndSigns", func(t *testing.T) {
		b, err := Balance(context.Background(), "USD", moves, src)
		require.NoError(t, err)
		assert.Equal(t, 90.0, b)
	})

	t.Run("Idempotent", func(t *testing.T) {
		a, err := Balance(context.Background(), "EUR", moves, src)
		require.NoError(t, err)
		b, err := Balance(context.Background(), "EUR", moves, src)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, 45.0, a)
	})

	t.Run("EmptyWallet", func(t *testing.T) {
		b, err := Balance(context.Background(), "USD", nil, src)
		require.NoError(t, err)
		assert.Zero(t, b)
	})

	t.Run("RateFailure", func(t *testing.T) {
		_, err := Balance(context.Background(), "USD", []Movement{{Amount: 1, Currency: "JPY"}}, src)
		assert.ErrorIs(t, err, apperr.ErrRateSourceUnavailable)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Balance(ctx, "USD", moves, src)
		assert.True(t, errors.Is(err, context.Canceled))
	})
}
