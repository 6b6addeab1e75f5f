package pricecache

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jordanblake/cartcompass-backend/pkg/db/models"
)

// Rebuilder derives the recent projection from the ledger. Used after
// migrations or to recover from a corrupted projection.
type Rebuilder struct {
	db *gorm.DB
}

// NewRebuilder binds a GORM DB to projection rebuilds.
func NewRebuilder(db *gorm.DB) *Rebuilder {
	return &Rebuilder{db: db}
}

// latestPerKey selects the newest ledger row per (ingredient, store,
// zip). Ties on created_at break on the larger id so replays are
// deterministic.
const latestPerKey = `
SELECT ph.*
FROM price_history ph
JOIN (
    SELECT ingredient_id, store_key, zip_code, MAX(created_at) AS max_created
    FROM price_history
    GROUP BY ingredient_id, store_key, zip_code
) latest
  ON ph.ingredient_id = latest.ingredient_id
 AND ph.store_key     = latest.store_key
 AND ph.zip_code      = latest.zip_code
 AND ph.created_at    = latest.max_created
ORDER BY ph.ingredient_id, ph.store_key, ph.zip_code, ph.id`

// Rebuild replaces the entire recent projection with what the ledger
// implies and returns how many keys were materialized.
func (r *Rebuilder) Rebuild(ctx context.Context) (int, error) {
	var rows []models.PriceHistory
	if err := r.db.WithContext(ctx).Raw(latestPerKey).Scan(&rows).Error; err != nil {
		return 0, fmt.Errorf("replay ledger: %w", err)
	}

	// Later duplicates overwrite earlier ones, matching the tie-break
	// in the query ordering.
	latest := make(map[string]*models.PriceHistory, len(rows))
	order := make([]string, 0, len(rows))
	for i := range rows {
		key := rows[i].IngredientID.String() + "/" + string(rows[i].StoreKey) + "/" + rows[i].ZipCode
		if _, seen := latest[key]; !seen {
			order = append(order, key)
		}
		latest[key] = &rows[i]
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&models.PriceRecent{}).Error; err != nil {
			return err
		}
		for _, key := range order {
			h := latest[key]
			recent := Entry{
				IngredientID:   h.IngredientID,
				StoreKey:       h.StoreKey,
				ZipCode:        h.ZipCode,
				GroceryStoreID: h.GroceryStoreID,
				ProductID:      h.ProductID,
				ProductName:    h.ProductName,
				Price:          h.Price,
				Unit:           h.Unit,
				UnitPrice:      h.UnitPrice,
				ImageURL:       h.ImageURL,
				Location:       h.Location,
			}.toRecent(h.CreatedAt)
			if err := tx.Clauses(clause.OnConflict{
				Columns: recentConflict.Columns,
				DoUpdates: clause.AssignmentColumns([]string{
					"product_name", "price", "observed_at",
				}),
			}).Create(recent).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("rebuild recent projection: %w", err)
	}
	return len(order), nil
}
