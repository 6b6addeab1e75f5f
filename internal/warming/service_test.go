package warming

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jordanblake/cartcompass-backend/internal/ingredients"
	"github.com/jordanblake/cartcompass-backend/internal/pricecache"
	"github.com/jordanblake/cartcompass-backend/internal/scrape"
	"github.com/jordanblake/cartcompass-backend/internal/storemeta"
	"github.com/jordanblake/cartcompass-backend/pkg/enums"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
)

type stubLister struct {
	items []ingredients.IngredientDTO
	err   error
}

func (s *stubLister) ListAll(context.Context) ([]ingredients.IngredientDTO, error) {
	return s.items, s.err
}

type stubStores struct{}

func (stubStores) ResolveStores(_ context.Context, input storemeta.ResolveInput) ([]storemeta.StoreIdentity, error) {
	zip := input.ZipCode
	if zip == "" {
		zip = "47906"
	}
	return []storemeta.StoreIdentity{
		{StoreKey: enums.StoreKeyWalmart, DisplayName: "Walmart", ZipCode: zip},
		{StoreKey: enums.StoreKeyTarget, DisplayName: "Target", ZipCode: zip},
	}, nil
}

func (stubStores) ResolveZip(zip string) string {
	if zip == "" {
		return "47906"
	}
	return zip
}

type stubWriter struct {
	entries []pricecache.Entry
	short   bool
}

func (s *stubWriter) WriteBatch(_ context.Context, entries []pricecache.Entry) int {
	s.entries = append(s.entries, entries...)
	if s.short && len(entries) > 0 {
		return len(entries) - 1
	}
	return len(entries)
}

type stubScraper struct {
	offers map[string]map[enums.StoreKey][]scrape.Offer
}

func (s *stubScraper) Scrape(_ context.Context, query string, storeKeys []enums.StoreKey, _ string) map[enums.StoreKey][]scrape.Offer {
	out := make(map[enums.StoreKey][]scrape.Offer, len(storeKeys))
	for _, key := range storeKeys {
		out[key] = s.offers[query][key]
	}
	return out
}

func warmTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})
}

func offer(price string) scrape.Offer {
	return scrape.Offer{ProductName: "product", Price: decimal.RequireFromString(price), Unit: enums.UnitEach}
}

func TestSweepCachesWinnersAndCountsFailures(t *testing.T) {
	lister := &stubLister{items: []ingredients.IngredientDTO{
		{ID: uuid.New(), Name: "eggs"},
		{ID: uuid.New(), Name: "milk"},
	}}
	writer := &stubWriter{}
	scraper := &stubScraper{offers: map[string]map[enums.StoreKey][]scrape.Offer{
		"eggs": {
			enums.StoreKeyWalmart: {offer("2.49")},
			enums.StoreKeyTarget:  {offer("2.99")},
		},
		"milk": {
			enums.StoreKeyWalmart: {offer("1.89")},
			// target has nothing for milk
		},
	}}

	svc, err := NewService(lister, stubStores{}, writer, scraper, warmTestLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	summary, err := svc.Sweep(context.Background(), "")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if summary.Total != 2 || summary.Stores != 2 {
		t.Fatalf("summary header = %+v", summary)
	}
	if summary.Cached != 3 {
		t.Fatalf("cached = %d, want 3", summary.Cached)
	}
	if summary.Failed != 1 {
		t.Fatalf("failed = %d, want 1", summary.Failed)
	}
	if len(summary.Errors) != 1 || !strings.Contains(summary.Errors[0], "milk") {
		t.Fatalf("errors = %v", summary.Errors)
	}
	if len(writer.entries) != 3 {
		t.Fatalf("writer got %d entries", len(writer.entries))
	}
	for _, e := range writer.entries {
		if e.IngredientID == uuid.Nil {
			t.Fatal("entry missing ingredient id")
		}
		if e.ZipCode != "47906" {
			t.Fatalf("entry zip = %q", e.ZipCode)
		}
	}
}

func TestSweepCountsDroppedWrites(t *testing.T) {
	lister := &stubLister{items: []ingredients.IngredientDTO{{ID: uuid.New(), Name: "eggs"}}}
	writer := &stubWriter{short: true}
	scraper := &stubScraper{offers: map[string]map[enums.StoreKey][]scrape.Offer{
		"eggs": {
			enums.StoreKeyWalmart: {offer("2.49")},
			enums.StoreKeyTarget:  {offer("2.99")},
		},
	}}

	svc, _ := NewService(lister, stubStores{}, writer, scraper, warmTestLogger())
	summary, err := svc.Sweep(context.Background(), "")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if summary.Cached != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestSweepListFailure(t *testing.T) {
	lister := &stubLister{err: errors.New("db down")}
	svc, _ := NewService(lister, stubStores{}, &stubWriter{}, &stubScraper{}, warmTestLogger())

	if _, err := svc.Sweep(context.Background(), ""); err == nil {
		t.Fatal("expected error when ingredient list cannot load")
	}
}

func TestSweepStopsOnCanceledContext(t *testing.T) {
	items := make([]ingredients.IngredientDTO, 50)
	for i := range items {
		items[i] = ingredients.IngredientDTO{ID: uuid.New(), Name: "item"}
	}
	lister := &stubLister{items: items}
	svc, _ := NewService(lister, stubStores{}, &stubWriter{}, &stubScraper{}, warmTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := svc.Sweep(ctx, "")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if summary.Cached != 0 {
		t.Fatalf("canceled sweep cached %d", summary.Cached)
	}
	if len(summary.Errors) == 0 || !strings.Contains(summary.Errors[0], "aborted") {
		t.Fatalf("errors = %v", summary.Errors)
	}
}

func TestLedgerRetentionJob(t *testing.T) {
	pruner := &fakePruner{deleted: 7}
	job, err := NewLedgerRetentionJob(LedgerRetentionJobParams{
		Logger:    warmTestLogger(),
		Pruner:    pruner,
		Retention: 48 * time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.Name() != "ledger-retention" {
		t.Fatalf("name = %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if time.Since(pruner.cutoff) < 47*time.Hour {
		t.Fatalf("cutoff %v not honoring retention", pruner.cutoff)
	}
}

type fakePruner struct {
	cutoff  time.Time
	deleted int64
}

func (f *fakePruner) PruneHistoryBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, nil
}
