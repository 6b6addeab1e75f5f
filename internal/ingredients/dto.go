package ingredients

import (
	"github.com/google/uuid"
	"github.com/jordanblake/cartcompass-backend/pkg/db/models"
)

// IngredientDTO is the API-facing shape of a resolved ingredient.
type IngredientDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category *string   `json:"category,omitempty"`
}

// FromModel maps a persisted ingredient to its DTO.
func FromModel(m *models.Ingredient) *IngredientDTO {
	if m == nil {
		return nil
	}
	return &IngredientDTO{
		ID:       m.ID,
		Name:     m.Name,
		Category: m.Category,
	}
}
