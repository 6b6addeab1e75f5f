package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jordanblake/cartcompass-backend/api/routes"
	"github.com/jordanblake/cartcompass-backend/internal/ingredients"
	"github.com/jordanblake/cartcompass-backend/internal/pricecache"
	"github.com/jordanblake/cartcompass-backend/internal/scrape"
	"github.com/jordanblake/cartcompass-backend/internal/search"
	"github.com/jordanblake/cartcompass-backend/internal/storemeta"
	"github.com/jordanblake/cartcompass-backend/internal/warming"
	"github.com/jordanblake/cartcompass-backend/pkg/config"
	"github.com/jordanblake/cartcompass-backend/pkg/db"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
	"github.com/jordanblake/cartcompass-backend/pkg/metrics"
	"github.com/jordanblake/cartcompass-backend/pkg/migrate"
	"github.com/jordanblake/cartcompass-backend/pkg/pubsub"
	"github.com/jordanblake/cartcompass-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var psClient *pubsub.Client
	if cfg.GCP.ProjectID != "" {
		psClient, err = pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer psClient.Close()
	} else {
		logg.Warn(context.Background(), "pubsub disabled, no gcp project configured")
	}

	ingredientSvc, err := ingredients.NewService(ingredients.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ingredient service", err)
		os.Exit(1)
	}

	storeSvc, err := storemeta.NewService(storemeta.NewRepository(dbClient.DB()), logg, cfg.Scraper)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	var writer *pricecache.Writer
	if psClient != nil {
		writer, err = pricecache.NewWriter(dbClient.DB(), logg, psClient)
	} else {
		writer, err = pricecache.NewWriter(dbClient.DB(), logg, nil)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to create cache writer", err)
		os.Exit(1)
	}

	registry, err := scrape.NewRegistryFromConfig(cfg.Scraper, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to build scraper registry", err)
		os.Exit(1)
	}

	scrapeMetrics := metrics.NewScrapeMetrics(prometheus.DefaultRegisterer)
	orchestrator, err := scrape.NewOrchestrator(registry, logg, scrapeMetrics, cfg.Scraper.PerSourceTimeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create scrape orchestrator", err)
		os.Exit(1)
	}

	searchSvc, err := search.NewService(
		ingredientSvc,
		storeSvc,
		pricecache.NewReader(dbClient.DB()),
		writer,
		orchestrator,
		redisClient,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create search service", err)
		os.Exit(1)
	}

	warmingSvc, err := warming.NewService(ingredientSvc, storeSvc, writer, orchestrator, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create warming service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisClient,
			Search:    searchSvc,
			Warming:   warmingSvc,
			Rebuilder: pricecache.NewRebuilder(dbClient.DB()),
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		drain, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drain); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
