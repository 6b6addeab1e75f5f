package ingredients

import (
	"context"

	"github.com/google/uuid"
	"github.com/jordanblake/cartcompass-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles ingredient persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to ingredient operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByLookup loads an ingredient by its normalized lookup name.
func (r *Repository) FindByLookup(ctx context.Context, lookup string) (*models.Ingredient, error) {
	var row models.Ingredient
	if err := r.db.WithContext(ctx).
		Where("lookup_name = ?", lookup).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByID loads an ingredient by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var row models.Ingredient
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert inserts the ingredient keyed on lookup_name and returns the
// winning row. Concurrent callers racing on the same lookup name all
// land on the row the first insert created.
func (r *Repository) Upsert(ctx context.Context, name, lookup string) (*models.Ingredient, error) {
	row := &models.Ingredient{
		ID:         uuid.New(),
		Name:       name,
		LookupName: lookup,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lookup_name"}},
			DoNothing: true,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	// DoNothing leaves the struct untouched when the row already
	// existed, so re-read to get the canonical ID.
	return r.FindByLookup(ctx, lookup)
}

// List returns every known ingredient, oldest first.
func (r *Repository) List(ctx context.Context) ([]models.Ingredient, error) {
	var rows []models.Ingredient
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
