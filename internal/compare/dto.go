package compare

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jordanblake/cartcompass-backend/internal/storemeta"
	"github.com/jordanblake/cartcompass-backend/pkg/enums"
)

// ShoppingListLine is one requested ingredient with a quantity.
type ShoppingListLine struct {
	ID           uuid.UUID  `json:"id"`
	IngredientID *uuid.UUID `json:"ingredient_id,omitempty"`
	Name         string     `json:"name"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `json:"unit"`
}

// Offer is one priced product available at one store, already reduced
// to the best candidate for its line. Offers match a line by ingredient
// identity when they have one, or by LineID for direct-scrape offers
// that skipped identity resolution.
type Offer struct {
	StoreKey     enums.StoreKey   `json:"store_key"`
	IngredientID *uuid.UUID       `json:"ingredient_id,omitempty"`
	LineID       *uuid.UUID       `json:"line_id,omitempty"`
	ProductName  string           `json:"product_name"`
	Price        decimal.Decimal  `json:"price"`
	Unit         enums.Unit       `json:"unit"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	ImageURL     *string          `json:"image_url,omitempty"`
}

// LineItem is one priced shopping-list line inside a store comparison.
type LineItem struct {
	LineID          uuid.UUID       `json:"line_id"`
	Name            string          `json:"name"`
	ProductName     string          `json:"product_name"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	PackagesToBuy   int             `json:"packages_to_buy"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	ConversionError bool            `json:"conversion_error"`
	ImageURL        *string         `json:"image_url,omitempty"`
}

// StoreComparison is one store's priced rendition of the shopping list.
type StoreComparison struct {
	StoreKey           enums.StoreKey  `json:"store_key"`
	DisplayName        string          `json:"display_name"`
	Items              []LineItem      `json:"items"`
	Total              decimal.Decimal `json:"total"`
	Savings            decimal.Decimal `json:"savings"`
	MissingCount       int             `json:"missing_count"`
	MissingIngredients []string        `json:"missing_ingredients"`
	Address            *string         `json:"address,omitempty"`
	Latitude           *float64        `json:"latitude,omitempty"`
	Longitude          *float64        `json:"longitude,omitempty"`
	DistanceMiles      *float64        `json:"distance_miles,omitempty"`
}

func comparisonShell(meta storemeta.StoreIdentity) StoreComparison {
	return StoreComparison{
		StoreKey:           meta.StoreKey,
		DisplayName:        meta.DisplayName,
		Items:              []LineItem{},
		Total:              decimal.Zero,
		Savings:            decimal.Zero,
		MissingIngredients: []string{},
		Address:            meta.Address,
		Latitude:           meta.Latitude,
		Longitude:          meta.Longitude,
		DistanceMiles:      meta.DistanceMiles,
	}
}
