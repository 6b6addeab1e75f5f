package storemeta

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jordanblake/cartcompass-backend/pkg/db/models"
	"github.com/jordanblake/cartcompass-backend/pkg/enums"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles store location and preference persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store metadata operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindLocation returns the first known location of the chain inside the
// zip, or nil when the chain has no catalogued location there.
func (r *Repository) FindLocation(ctx context.Context, key enums.StoreKey, zip string) (*models.GroceryStore, error) {
	var row models.GroceryStore
	err := r.db.WithContext(ctx).
		Where("store_key = ? AND zip_code = ?", key, zip).
		Order("failure_count ASC, created_at ASC").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// PreferredStoreKeys returns the user's ranked store preferences.
func (r *Repository) PreferredStoreKeys(ctx context.Context, userID uuid.UUID) ([]enums.StoreKey, error) {
	var prefs []models.UserStorePref
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("rank ASC").
		Find(&prefs).Error; err != nil {
		return nil, err
	}
	keys := make([]enums.StoreKey, 0, len(prefs))
	for _, p := range prefs {
		keys = append(keys, p.StoreKey)
	}
	return keys, nil
}

// TouchScrapedZip records that the zip was scraped, bumping the store
// count to the widest fan-out seen.
func (r *Repository) TouchScrapedZip(ctx context.Context, zip string, storeCount int) error {
	row := &models.ScrapedZipcode{
		ZipCode:       zip,
		LastScrapedAt: time.Now().UTC(),
		StoreCount:    storeCount,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "zip_code"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"last_scraped_at": row.LastScrapedAt,
				"store_count":     gorm.Expr("GREATEST(scraped_zipcodes.store_count, ?)", storeCount),
			}),
		}).
		Create(row).Error
}

// ListMissingGeo returns catalogued locations without coordinates.
func (r *Repository) ListMissingGeo(ctx context.Context, limit int) ([]models.GroceryStore, error) {
	var rows []models.GroceryStore
	if err := r.db.WithContext(ctx).
		Where("geom IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateGeom pins coordinates and optionally a corrected address onto a
// catalogued location.
func (r *Repository) UpdateGeom(ctx context.Context, id uuid.UUID, lat, lng float64, address *string) error {
	updates := map[string]interface{}{
		"geom": gorm.Expr("ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography", lng, lat),
	}
	if address != nil {
		updates["address"] = *address
	}
	return r.db.WithContext(ctx).
		Model(&models.GroceryStore{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// IncrementFailure bumps the consecutive failure counter.
func (r *Repository) IncrementFailure(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.GroceryStore{}).
		Where("id = ?", id).
		UpdateColumn("failure_count", gorm.Expr("failure_count + 1")).Error
}

// ResetFailure clears the consecutive failure counter after a success.
func (r *Repository) ResetFailure(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.GroceryStore{}).
		Where("id = ? AND failure_count > 0", id).
		UpdateColumn("failure_count", 0).Error
}
