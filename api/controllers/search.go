package controllers

import (
	"net/http"

	"github.com/jordanblake/cartcompass-backend/api/responses"
	"github.com/jordanblake/cartcompass-backend/api/validators"
	"github.com/jordanblake/cartcompass-backend/internal/search"
	pkgerrors "github.com/jordanblake/cartcompass-backend/pkg/errors"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
)

type searchPricesRequest struct {
	SearchTerm   string   `json:"search_term" validate:"required,min=1,max=200"`
	ZipCode      string   `json:"zip_code,omitempty" validate:"omitempty,len=5,numeric"`
	StoreKeys    []string `json:"store_keys,omitempty" validate:"omitempty,max=10,dive,min=1"`
	ForceRefresh bool     `json:"force_refresh,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// SearchPrices runs the price resolution pipeline for one ingredient.
func SearchPrices(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "search service unavailable"))
			return
		}

		var req searchPricesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SearchPrices(r.Context(), search.SearchInput{
			SearchTerm:   req.SearchTerm,
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

		responses.WriteSuccess(w, map[string]any{
			"ingredient_id":   result.IngredientID,
			"ingredient_name": result.IngredientName,
			"zip_code":        result.ZipCode,
			"available":       result.Available(),
			"offers":          result.Offers,
		})
	}
}
