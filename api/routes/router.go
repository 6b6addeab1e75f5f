package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jordanblake/cartcompass-backend/api/controllers"
	"github.com/jordanblake/cartcompass-backend/api/middleware"
	"github.com/jordanblake/cartcompass-backend/internal/pricecache"
	"github.com/jordanblake/cartcompass-backend/internal/search"
	"github.com/jordanblake/cartcompass-backend/internal/warming"
	"github.com/jordanblake/cartcompass-backend/pkg/config"
	"github.com/jordanblake/cartcompass-backend/pkg/db"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
	"github.com/jordanblake/cartcompass-backend/pkg/redis"
)

// RouterParams carry everything the HTTP surface depends on.
type RouterParams struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        *db.Client
	Redis     *redis.Client
	Search    search.Service
	Warming   warming.Service
	Rebuilder *pricecache.Rebuilder
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, dbPinger(p.DB), redisPinger(p.Redis)))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search/prices", controllers.SearchPrices(p.Search, p.Logger))
		r.Post("/compare", controllers.CompareShoppingList(p.Search, p.Logger))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.WarmSecret(p.Logger, p.Config.Warm.Secret))
		r.Get("/ping", controllers.AdminPing())
		r.Post("/warm", controllers.TriggerWarm(p.Warming, p.Logger))
		r.Post("/cache/rebuild", controllers.RebuildProjection(p.Rebuilder, p.Logger))
	})

	return r
}

// The nil checks keep a missing dependency out of the readiness map
// instead of smuggling in a typed-nil interface.
func dbPinger(client *db.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}

func redisPinger(client *redis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}
