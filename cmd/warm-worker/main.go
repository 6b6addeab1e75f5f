package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jordanblake/cartcompass-backend/internal/cron"
	"github.com/jordanblake/cartcompass-backend/internal/ingredients"
	"github.com/jordanblake/cartcompass-backend/internal/pricecache"
	"github.com/jordanblake/cartcompass-backend/internal/scrape"
	"github.com/jordanblake/cartcompass-backend/internal/storemeta"
	"github.com/jordanblake/cartcompass-backend/internal/warming"
	"github.com/jordanblake/cartcompass-backend/pkg/config"
	"github.com/jordanblake/cartcompass-backend/pkg/db"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
	"github.com/jordanblake/cartcompass-backend/pkg/maps"
	"github.com/jordanblake/cartcompass-backend/pkg/metrics"
	"github.com/jordanblake/cartcompass-backend/pkg/migrate"
	"github.com/jordanblake/cartcompass-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "warm-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "warm-worker"

	logg = logger.New(logger.Options{
		ServiceName: "warm-worker",
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

	storeRepo := storemeta.NewRepository(dbClient.DB())

	ingredientSvc, err := ingredients.NewService(ingredients.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create ingredient service", err)
		os.Exit(1)
	}

	storeSvc, err := storemeta.NewService(storeRepo, logg, cfg.Scraper)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	writer, err := pricecache.NewWriter(dbClient.DB(), logg, nil)
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

	warmingSvc, err := warming.NewService(ingredientSvc, storeSvc, writer, orchestrator, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create warming service", err)
		os.Exit(1)
	}

	sweepJob, err := warming.NewSweepJob(warmingSvc, logg, cfg.Scraper.DefaultZip)
	if err != nil {
		logg.Error(context.Background(), "failed to create sweep job", err)
		os.Exit(1)
	}

	retentionJob, err := warming.NewLedgerRetentionJob(warming.LedgerRetentionJobParams{
		Logger:    logg,
		Pruner:    writer,
		Retention: cfg.Warm.LedgerRetention,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create retention job", err)
		os.Exit(1)
	}

	var placesClient *maps.Client
	if cfg.GoogleMaps.APIKey != "" {
		placesClient, err = maps.NewClient(cfg.GoogleMaps.APIKey)
		if err != nil {
			logg.Error(context.Background(), "failed to create maps client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "geocode backfill will no-op, no maps api key configured")
	}

	var backfiller *storemeta.Backfiller
	if placesClient != nil {
		backfiller, err = storemeta.NewBackfiller(storeRepo, placesClient, logg, 0)
	} else {
		backfiller, err = storemeta.NewBackfiller(storeRepo, nil, logg, 0)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to create geocode backfiller", err)
		os.Exit(1)
	}

	geoJob, err := warming.NewGeoBackfillJob(backfiller, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create geo backfill job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockScope(cfg.App.Env)), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create sweep lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(sweepJob, retentionJob, geoJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Warm.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting warm worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "warm worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "warm worker shutting down gracefully")
}

func lockScope(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("warm-worker:%s", env)
}
