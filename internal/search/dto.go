package search

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jordanblake/cartcompass-backend/pkg/enums"
)

// OfferSource tags where a priced offer came from.
type OfferSource string

const (
	SourceCache         OfferSource = "cache"
	SourceScraperDirect OfferSource = "scraper-direct"
	SourceForceRefresh  OfferSource = "scraper-force-refresh"
	SourceUnavailable   OfferSource = "unavailable"
)

// SearchInput is a price lookup request for one ingredient. Latitude
// and longitude are optional; when present, resolved stores report
// their distance from the shopper.
type SearchInput struct {
	SearchTerm   string
	ZipCode      string
	StoreKeys    []string
	ForceRefresh bool
	UserID       *uuid.UUID
	Latitude     *float64
	Longitude    *float64
}

// StoreOffer is the winning offer for one store, or an unavailable
// marker when neither the cache nor the scraper produced anything.
type StoreOffer struct {
	StoreKey    enums.StoreKey   `json:"store_key"`
	DisplayName string           `json:"display_name"`
	Source      OfferSource      `json:"source"`
	ProductName string           `json:"product_name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Unit        enums.Unit       `json:"unit,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	Location    *string          `json:"location,omitempty"`
	ObservedAt  *time.Time       `json:"observed_at,omitempty"`
}

// SearchResult is the priced response for one ingredient.
type SearchResult struct {
	IngredientID   uuid.UUID    `json:"ingredient_id"`
	IngredientName string       `json:"ingredient_name"`
	ZipCode        string       `json:"zip_code"`
	Offers         []StoreOffer `json:"offers"`
}

// Available reports whether any store produced a price.
func (r *SearchResult) Available() bool {
	for _, o := range r.Offers {
		if o.Source != SourceUnavailable {
			return true
		}
	}
	return false
}
