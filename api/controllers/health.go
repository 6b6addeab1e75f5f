package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/jordanblake/cartcompass-backend/api/responses"
	"github.com/jordanblake/cartcompass-backend/pkg/config"
)

// Pinger is the readiness contract backing dependencies implement.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CartCompass-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the DB and Redis connections. Nil dependencies
// are skipped so partial deployments can still report ready.
func HealthReady(cfg *config.Config, db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CartCompass-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{"status": "ready"}
		for name, dep := range map[string]Pinger{"db": db, "redis": cache} {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = err.Error()
				checks["status"] = "degraded"
				continue
			}
			checks[name] = "ok"
		}

		if checks["status"] != "ready" {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, checks)
			return
		}
		responses.WriteSuccess(w, checks)
	}
}
