package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jordanblake/cartcompass-backend/pkg/enums"
)

// PriceRecent is the derived "latest known good price" projection, one row
// per (ingredient, store, zip). It is rebuildable from PriceHistory at any
// time and holds no state of its own beyond the copy of the latest ledger row.
type PriceRecent struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IngredientID   uuid.UUID        `gorm:"column:ingredient_id;type:uuid;not null;uniqueIndex:uq_price_recent_key"`
	StoreKey       enums.StoreKey   `gorm:"column:store_key;type:store_key;not null;uniqueIndex:uq_price_recent_key"`
	ZipCode        string           `gorm:"column:zip_code;not null;default:'';uniqueIndex:uq_price_recent_key"`
	GroceryStoreID *uuid.UUID       `gorm:"column:grocery_store_id;type:uuid"`
	ProductID      *string          `gorm:"column:product_id"`
	ProductName    string           `gorm:"column:product_name;not null"`
	Price          decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	Unit           enums.Unit       `gorm:"column:unit;not null;default:'each'"`
	UnitPrice      *decimal.Decimal `gorm:"column:unit_price;type:numeric(10,4)"`
	ImageURL       *string          `gorm:"column:image_url"`
	Location       *string          `gorm:"column:location"`
	ObservedAt     time.Time        `gorm:"column:observed_at;not null"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides GORM's pluralization.
func (PriceRecent) TableName() string { return "price_recent" }
