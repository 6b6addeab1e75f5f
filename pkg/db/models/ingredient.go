package models

import (
	"time"

	"github.com/google/uuid"
)

// Ingredient is the canonical, deduplicated identity for an ingredient name.
// LookupName is the lower-cased key used for resolution; Name preserves the
// casing of the first writer. Rows are never deleted by the pricing pipeline.
type Ingredient struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	LookupName string    `gorm:"column:lookup_name;not null;uniqueIndex"`
	Category   *string   `gorm:"column:category"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides GORM's pluralization.
func (Ingredient) TableName() string { return "ingredients" }
