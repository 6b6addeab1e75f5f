package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jordanblake/cartcompass-backend/api/responses"
	"github.com/jordanblake/cartcompass-backend/api/validators"
	"github.com/jordanblake/cartcompass-backend/internal/compare"
	"github.com/jordanblake/cartcompass-backend/internal/search"
	pkgerrors "github.com/jordanblake/cartcompass-backend/pkg/errors"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
)

type compareListRequest struct {
	Lines        []compareLineRequest `json:"lines" validate:"required,min=1,max=100,dive"`
	ZipCode      string               `json:"zip_code,omitempty" validate:"omitempty,len=5,numeric"`
	StoreKeys    []string             `json:"store_keys,omitempty" validate:"omitempty,max=10,dive,min=1"`
	ForceRefresh bool                 `json:"force_refresh,omitempty"`
	Latitude     *float64             `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64             `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

type compareLineRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	Quantity float64 `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Unit     string  `json:"unit,omitempty" validate:"omitempty,max=20"`
}

// CompareShoppingList prices a shopping list across stores and returns
// the ranked comparison.
func CompareShoppingList(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "search service unavailable"))
			return
		}

		var req compareListRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]compare.ShoppingListLine, 0, len(req.Lines))
		for _, l := range req.Lines {
			lines = append(lines, compare.ShoppingListLine{
				ID:       uuid.New(),
				Name:     l.Name,
				Quantity: l.Quantity,
				Unit:     l.Unit,
			})
		}

		comparisons, err := svc.PriceShoppingList(r.Context(), search.ListInput{
			Lines:        lines,
			ZipCode:      req.ZipCode,
			StoreKeys:    req.StoreKeys,
			ForceRefresh: req.ForceRefresh,
			Latitude:     req.Latitude,
			Longitude:    req.Longitude,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"stores": comparisons})
	}
}
