package pricecache

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jordanblake/cartcompass-backend/pkg/db/models"
	"github.com/jordanblake/cartcompass-backend/pkg/enums"
)

// Entry is the cache-facing shape of one priced product at one store.
type Entry struct {
	IngredientID   uuid.UUID        `json:"ingredient_id"`
	StoreKey       enums.StoreKey   `json:"store_key"`
	ZipCode        string           `json:"zip_code"`
	GroceryStoreID *uuid.UUID       `json:"grocery_store_id,omitempty"`
	ProductID      *string          `json:"product_id,omitempty"`
	ProductName    string           `json:"product_name"`
	Price          decimal.Decimal  `json:"price"`
	Unit           enums.Unit       `json:"unit"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	ImageURL       *string          `json:"image_url,omitempty"`
	Location       *string          `json:"location,omitempty"`
	ObservedAt     time.Time        `json:"observed_at"`
}

func entryFromRecent(m *models.PriceRecent) Entry {
	return Entry{
		IngredientID:   m.IngredientID,
		StoreKey:       m.StoreKey,
		ZipCode:        m.ZipCode,
		GroceryStoreID: m.GroceryStoreID,
		ProductID:      m.ProductID,
		ProductName:    m.ProductName,
		Price:          m.Price,
		Unit:           m.Unit,
		UnitPrice:      m.UnitPrice,
		ImageURL:       m.ImageURL,
		Location:       m.Location,
		ObservedAt:     m.ObservedAt,
	}
}

func (e Entry) toHistory(observedAt time.Time) *models.PriceHistory {
	return &models.PriceHistory{
		ID:             uuid.New(),
		IngredientID:   e.IngredientID,
		StoreKey:       e.StoreKey,
		ZipCode:        e.ZipCode,
		GroceryStoreID: e.GroceryStoreID,
		ProductID:      e.ProductID,
		ProductName:    e.ProductName,
		Price:          e.Price,
		Unit:           e.Unit,
		UnitPrice:      e.UnitPrice,
		ImageURL:       e.ImageURL,
		Location:       e.Location,
		CreatedAt:      observedAt,
	}
}

func (e Entry) toRecent(observedAt time.Time) *models.PriceRecent {
	return &models.PriceRecent{
		ID:             uuid.New(),
		IngredientID:   e.IngredientID,
		StoreKey:       e.StoreKey,
		ZipCode:        e.ZipCode,
		GroceryStoreID: e.GroceryStoreID,
		ProductID:      e.ProductID,
		ProductName:    e.ProductName,
		Price:          e.Price,
		Unit:           e.Unit,
		UnitPrice:      e.UnitPrice,
		ImageURL:       e.ImageURL,
		Location:       e.Location,
		ObservedAt:     observedAt,
	}
}
