package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jordanblake/cartcompass-backend/pkg/enums"
)

// PriceHistory is one row of the append-only price ledger. Rows are written
// once and never updated; the recent projection is derived from this table.
type PriceHistory struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IngredientID   uuid.UUID        `gorm:"column:ingredient_id;type:uuid;not null;index:idx_price_history_key"`
	StoreKey       enums.StoreKey   `gorm:"column:store_key;type:store_key;not null;index:idx_price_history_key"`
	ZipCode        string           `gorm:"column:zip_code;not null;default:'';index:idx_price_history_key"`
	GroceryStoreID *uuid.UUID       `gorm:"column:grocery_store_id;type:uuid"`
	ProductID      *string          `gorm:"column:product_id"`
	ProductName    string           `gorm:"column:product_name;not null"`
	Price          decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	Unit           enums.Unit       `gorm:"column:unit;not null;default:'each'"`
	UnitPrice      *decimal.Decimal `gorm:"column:unit_price;type:numeric(10,4)"`
	ImageURL       *string          `gorm:"column:image_url"`
	Location       *string          `gorm:"column:location"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime;index:idx_price_history_key"`
}

// TableName overrides GORM's pluralization.
func (PriceHistory) TableName() string { return "price_history" }
