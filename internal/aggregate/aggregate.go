// Package aggregate derives values that are never edited directly: order
// totals and wallet balances.
package aggregate

import (
	"context"
	"fmt"
	"math"

	"fixture-graph/internal/apperr"
	"fixture-graph/internal/rates"
)

// RoundCents rounds v half away from zero to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

const (
	// MaxPrice is the highest price one catalog entry may carry.
	MaxPrice = 1_000_000.0
	// MaxQuantity is the most units one line may order.
	MaxQuantity = 10_000
	// maxTotalCents keeps every total exactly representable as a float64.
	maxTotalCents = 1 << 53
)

// Line is one catalog entry ordered in some quantity.
type Line struct {
	CatalogID string
	Quantity  int
}

// PriceFunc looks up the current price of a catalog entry.
type PriceFunc func(catalogID string) (float64, bool)

// OrderTotal is Σ price × quantity over lines, rounded to cents. A line
// whose catalog entry cannot be priced fails the whole computation, as does
// a price or quantity out of bounds or a sum too large to hold exactly.
func OrderTotal(lines []Line, priceOf PriceFunc) (float64, error) {
	var cents int64
	for _, l := range lines {
		price, ok := priceOf(l.CatalogID)
		if !ok {
			return 0, apperr.MissingRef("Order", "", "menuItemId", l.CatalogID)
		}
		if !(price >= 0 && price <= MaxPrice) {
			return 0, apperr.Validation("Order", "", fmt.Sprintf("price of %q is out of range", l.CatalogID))
		}
		if l.Quantity <= 0 || l.Quantity > MaxQuantity {
			return 0, apperr.Validation("Order", "", fmt.Sprintf("quantity must be between 1 and %d", MaxQuantity))
		}
		line := int64(math.Round(price*100)) * int64(l.Quantity)
		if cents > maxTotalCents-line {
			return 0, apperr.Validation("Order", "", "total is too large")
		}
		cents += line
	}
	return float64(cents) / 100, nil
}

// Movement is a transaction as seen from one wallet.
type Movement struct {
	Amount   float64
	Currency string
	Outbound bool
}

// Balance converts every movement into currency and sums them, outbound
// movements counting negative. Any rate failure fails the whole balance
// with RateSourceUnavailable.
func Balance(ctx context.Context, currency string, moves []Movement, src rates.Source) (float64, error) {
	var sum float64
	for _, m := range moves {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		rate, err := src.Rate(ctx, m.Currency, currency)
		if err != nil {
			if apperr.IsTaxonomy(err) || ctx.Err() != nil {
				return 0, err
			}
			return 0, apperr.RateUnavailable(m.Currency, currency, err)
		}
		v := m.Amount * rate
		if m.Outbound {
			v = -v
		}
		sum += v
	}
	return RoundCents(sum), nil
}
