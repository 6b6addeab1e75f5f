package warming

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanblake/cartcompass-backend/internal/cron"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
)

const defaultLedgerRetention = 90 * 24 * time.Hour

// NewSweepJob wraps the warming service as a scheduled job.
func NewSweepJob(svc Service, logg *logger.Logger, zip string) (cron.Job, error) {
	if svc == nil {
		return nil, fmt.Errorf("warming service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &sweepJob{svc: svc, logg: logg, zip: zip}, nil
}

type sweepJob struct {
	svc  Service
	logg *logger.Logger
	zip  string
}

func (j *sweepJob) Name() string { return "price-warming" }

func (j *sweepJob) Run(ctx context.Context) error {
	summary, err := j.svc.Sweep(ctx, j.zip)
	if err != nil {
		return err
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"total":  summary.Total,
		"stores": summary.Stores,
		"cached": summary.Cached,
		"failed": summary.Failed,
	})
	j.logg.Info(logCtx, "warming sweep summary")
	return nil
}

type historyPruner interface {
	PruneHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// LedgerRetentionJobParams configure the ledger retention job.
type LedgerRetentionJobParams struct {
	Logger    *logger.Logger
	Pruner    historyPruner
	Retention time.Duration
}

// NewLedgerRetentionJob prunes aged price history rows. The recent
// projection stays intact, so lookups keep working for pruned keys.
func NewLedgerRetentionJob(params LedgerRetentionJobParams) (cron.Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Pruner == nil {
		return nil, fmt.Errorf("history pruner required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultLedgerRetention
	}
	return &ledgerRetentionJob{
		logg:      params.Logger,
		pruner:    params.Pruner,
		retention: retention,
		now:       time.Now,
	}, nil
}

type ledgerRetentionJob struct {
	logg      *logger.Logger
	pruner    historyPruner
	retention time.Duration
	now       func() time.Time
}

func (j *ledgerRetentionJob) Name() string { return "ledger-retention" }

func (j *ledgerRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.pruner.PruneHistoryBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("ledger retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "ledger retention cleanup complete")
	return nil
}

type geoBackfiller interface {
	Run(ctx context.Context) (int, error)
}

// NewGeoBackfillJob wraps the store geocode backfiller as a job.
func NewGeoBackfillJob(backfiller geoBackfiller, logg *logger.Logger) (cron.Job, error) {
	if backfiller == nil {
		return nil, fmt.Errorf("backfiller required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &geoBackfillJob{backfiller: backfiller, logg: logg}, nil
}

type geoBackfillJob struct {
	backfiller geoBackfiller
	logg       *logger.Logger
}

func (j *geoBackfillJob) Name() string { return "store-geo-backfill" }

func (j *geoBackfillJob) Run(ctx context.Context) error {
	updated, err := j.backfiller.Run(ctx)
	if err != nil {
		return fmt.Errorf("geo backfill: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "stores_updated", updated), "geo backfill complete")
	return nil
}
