package ingredients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jordanblake/cartcompass-backend/pkg/db/models"
	pkgerrors "github.com/jordanblake/cartcompass-backend/pkg/errors"
	"gorm.io/gorm"
)

type ingredientRepository interface {
	FindByLookup(ctx context.Context, lookup string) (*models.Ingredient, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	Upsert(ctx context.Context, name, lookup string) (*models.Ingredient, error)
	List(ctx context.Context) ([]models.Ingredient, error)
}

// Service exposes ingredient identity operations.
type Service interface {
	Resolve(ctx context.Context, rawName string) (*IngredientDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*IngredientDTO, error)
	ListAll(ctx context.Context) ([]IngredientDTO, error)
}

type service struct {
	repo ingredientRepository
}

// NewService builds an ingredient service with the provided repository.
func NewService(repo ingredientRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ingredient repository required")
	}
	return &service{repo: repo}, nil
}

// Normalize produces the canonical lookup form of an ingredient name:
// trimmed, lowercased, inner whitespace collapsed.
func Normalize(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// Resolve maps a free-text ingredient name onto a stable identity,
// creating the row on first sight. Equivalent spellings of the same
// name always resolve to the same ID.
func (s *service) Resolve(ctx context.Context, rawName string) (*IngredientDTO, error) {
	lookup := Normalize(rawName)
	if lookup == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ingredient name is required")
	}

	row, err := s.repo.FindByLookup(ctx, lookup)
	if err == nil {
		return FromModel(row), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup ingredient")
	}

	row, err = s.repo.Upsert(ctx, strings.TrimSpace(rawName), lookup)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ingredient")
	}
	return FromModel(row), nil
}

// GetByID loads an ingredient by UUID.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*IngredientDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredient")
	}
	return FromModel(row), nil
}

// ListAll returns every known ingredient.
func (s *service) ListAll(ctx context.Context) ([]IngredientDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ingredients")
	}
	out := make([]IngredientDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}
