package pricecache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jordanblake/cartcompass-backend/pkg/db/models"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
	"github.com/jordanblake/cartcompass-backend/pkg/pubsub"
)

type priceEventPublisher interface {
	PublishPriceObserved(ctx context.Context, event pubsub.PriceObservedEvent) error
}

// Writer appends observations to the price ledger and keeps the recent
// projection in sync.
type Writer struct {
	db        *gorm.DB
	logg      *logger.Logger
	publisher priceEventPublisher
	now       func() time.Time
}

// NewWriter builds a cache writer. The publisher is optional; when nil
// no events are emitted.
func NewWriter(db *gorm.DB, logg *logger.Logger, publisher priceEventPublisher) (*Writer, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Writer{
		db:        db,
		logg:      logg,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

var recentConflict = clause.OnConflict{
	Columns: []clause.Column{
		{Name: "ingredient_id"},
		{Name: "store_key"},
		{Name: "zip_code"},
	},
	DoUpdates: clause.AssignmentColumns([]string{
		"grocery_store_id",
		"product_id",
		"product_name",
		"price",
		"unit",
		"unit_price",
		"image_url",
		"location",
		"observed_at",
	}),
}

// WriteBatch persists the entries: one ledger append plus one recent
// upsert per entry, all in a single transaction. If the batch fails it
// falls back to writing rows one by one so a single bad entry cannot
// sink the rest. Returns how many entries were persisted; the count is
// best-effort and never fails the call.
func (w *Writer) WriteBatch(ctx context.Context, entries []Entry) int {
	valid := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if err := w.validate(e); err != nil {
			w.logg.Warn(ctx, fmt.Sprintf("skipping cache entry: %v", err))
			continue
		}
		valid = append(valid, e)
	}
	if len(valid) == 0 {
		return 0
	}

	observedAt := w.now()

	err := w.writeAll(ctx, valid, observedAt)
	if err == nil {
		w.emit(ctx, valid, observedAt)
		return len(valid)
	}
	w.logg.Warn(ctx, fmt.Sprintf("batch cache write failed, retrying per row: %v", err))

	written := make([]Entry, 0, len(valid))
	for _, e := range valid {
		if err := w.writeOne(ctx, e, observedAt); err != nil {
			w.logg.Error(ctx, fmt.Sprintf("cache write for %s at %s", e.IngredientID, e.StoreKey), err)
			continue
		}
		written = append(written, e)
	}
	w.emit(ctx, written, observedAt)
	return len(written)
}

func (w *Writer) validate(e Entry) error {
	if e.IngredientID == uuid.Nil {
		return fmt.Errorf("missing ingredient id")
	}
	if !e.StoreKey.IsValid() {
		return fmt.Errorf("invalid store key %q", e.StoreKey)
	}
	if e.ProductName == "" {
		return fmt.Errorf("missing product name")
	}
	if !e.Price.IsPositive() {
		return fmt.Errorf("non-positive price %s", e.Price)
	}
	return nil
}

func (w *Writer) writeAll(ctx context.Context, entries []Entry, observedAt time.Time) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			if err := tx.Create(e.toHistory(observedAt)).Error; err != nil {
				return err
			}
			if err := tx.Clauses(recentConflict).Create(e.toRecent(observedAt)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (w *Writer) writeOne(ctx context.Context, e Entry, observedAt time.Time) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e.toHistory(observedAt)).Error; err != nil {
			return err
		}
		return tx.Clauses(recentConflict).Create(e.toRecent(observedAt)).Error
	})
}

func (w *Writer) emit(ctx context.Context, entries []Entry, observedAt time.Time) {
	if w.publisher == nil {
		return
	}
	for _, e := range entries {
		event := pubsub.PriceObservedEvent{
			IngredientID: e.IngredientID.String(),
			StoreKey:     string(e.StoreKey),
			ZipCode:      e.ZipCode,
			ProductName:  e.ProductName,
			Price:        e.Price.StringFixed(2),
			ObservedAt:   observedAt,
		}
		if err := w.publisher.PublishPriceObserved(ctx, event); err != nil {
			w.logg.Warn(ctx, fmt.Sprintf("publish price event: %v", err))
		}
	}
}

// PruneHistoryBefore deletes ledger rows older than the cutoff and
// returns how many were removed. The recent projection is untouched.
func (w *Writer) PruneHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := w.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.PriceHistory{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune price history: %w", res.Error)
	}
	return res.RowsAffected, nil
}
