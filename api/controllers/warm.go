package controllers

import (
	"net/http"

	"github.com/jordanblake/cartcompass-backend/api/responses"
	"github.com/jordanblake/cartcompass-backend/internal/pricecache"
	"github.com/jordanblake/cartcompass-backend/internal/warming"
	pkgerrors "github.com/jordanblake/cartcompass-backend/pkg/errors"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
)

// TriggerWarm runs a full warming sweep synchronously and returns its
// summary. The route sits behind the shared-secret middleware.
func TriggerWarm(svc warming.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "warming service unavailable"))
			return
		}

		zip := r.URL.Query().Get("zip")
		summary, err := svc.Sweep(r.Context(), zip)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "warming sweep"))
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// RebuildProjection replays the price ledger into the recent
// projection. Used after migrations or projection corruption.
func RebuildProjection(rebuilder *pricecache.Rebuilder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rebuilder == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rebuilder unavailable"))
			return
		}

		rebuilt, err := rebuilder.Rebuild(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rebuild projection"))
			return
		}

		responses.WriteSuccess(w, map[string]int{"keys_rebuilt": rebuilt})
	}
}
