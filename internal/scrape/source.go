package scrape

import (
	"context"
	"math"

	"github.com/shopspring/decimal"

	"github.com/jordanblake/cartcompass-backend/pkg/enums"
)

// Offer is one priced product returned by an external source. Offers
// arrive unvalidated; selection filters out the garbage.
type Offer struct {
	ProductName string
	Price       decimal.Decimal
	ProductID   *string
	ImageURL    *string
	Location    *string
	Unit        enums.Unit
	UnitPrice   *decimal.Decimal
}

// Source fetches offers for a query in a zip. Implementations must be
// safe for concurrent use.
type Source interface {
	Fetch(ctx context.Context, query, zip string) ([]Offer, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(ctx context.Context, query, zip string) ([]Offer, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context, query, zip string) ([]Offer, error) {
	return f(ctx, query, zip)
}

// ParsePrice converts a raw scraped price into a decimal. NaN, infinite
// and non-positive values report ok=false and a zero decimal so the
// offer is dropped during selection.
func ParsePrice(raw float64) (decimal.Decimal, bool) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(raw).Round(2), true
}
