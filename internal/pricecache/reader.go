package pricecache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jordanblake/cartcompass-backend/pkg/db/models"
	"github.com/jordanblake/cartcompass-backend/pkg/enums"
	"gorm.io/gorm"
)

// Reader serves cache lookups against the recent projection.
type Reader struct {
	db *gorm.DB
}

// NewReader binds a GORM DB to cache reads.
func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db}
}

// Lookup returns the cached entry per requested store for one
// ingredient and zip. Stores with no cached row are simply absent from
// the result, a miss is not an error.
func (r *Reader) Lookup(ctx context.Context, ingredientID uuid.UUID, storeKeys []enums.StoreKey, zip string) (map[enums.StoreKey]Entry, error) {
	if len(storeKeys) == 0 {
		return map[enums.StoreKey]Entry{}, nil
	}

	var rows []models.PriceRecent
	if err := r.db.WithContext(ctx).
		Where("ingredient_id = ? AND store_key IN ? AND zip_code = ?", ingredientID, storeKeys, zip).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("lookup recent prices: %w", err)
	}

	out := make(map[enums.StoreKey]Entry, len(rows))
	for i := range rows {
		out[rows[i].StoreKey] = entryFromRecent(&rows[i])
	}
	return out, nil
}

// History returns the newest ledger rows for one cache key, newest
// first, capped at limit.
func (r *Reader) History(ctx context.Context, ingredientID uuid.UUID, storeKey enums.StoreKey, zip string, limit int) ([]models.PriceHistory, error) {
	if limit <= 0 {
		limit = 30
	}
	var rows []models.PriceHistory
	if err := r.db.WithContext(ctx).
		Where("ingredient_id = ? AND store_key = ? AND zip_code = ?", ingredientID, storeKey, zip).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load price history: %w", err)
	}
	return rows, nil
}
