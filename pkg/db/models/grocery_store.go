package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jordanblake/cartcompass-backend/pkg/enums"
	"github.com/jordanblake/cartcompass-backend/pkg/types"
)

// GroceryStore is a physical store location imported from the store catalog.
// FailureCount tracks consecutive scrape failures against this location so
// the importer can de-prioritize dead stores.
type GroceryStore struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreKey     enums.StoreKey        `gorm:"column:store_key;type:store_key;not null;index"`
	Name         string                `gorm:"column:name;not null"`
	Address      *string               `gorm:"column:address"`
	City         *string               `gorm:"column:city"`
	State        *string               `gorm:"column:state"`
	ZipCode      string                `gorm:"column:zip_code;not null;index"`
	Geom         *types.GeographyPoint `gorm:"column:geom;type:geography(Point,4326)"`
	FailureCount int                   `gorm:"column:failure_count;not null;default:0"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides GORM's pluralization.
func (GroceryStore) TableName() string { return "grocery_stores" }
