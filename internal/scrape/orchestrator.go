package scrape

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jordanblake/cartcompass-backend/pkg/enums"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
	"github.com/jordanblake/cartcompass-backend/pkg/metrics"
)

// Orchestrator fans a query out to per-store sources concurrently. One
// source failing, panicking or timing out never affects the others.
type Orchestrator struct {
	registry *Registry
	logg     *logger.Logger
	metrics  *metrics.ScrapeMetrics
	timeout  time.Duration
}

// NewOrchestrator builds a scrape orchestrator. Metrics are optional.
func NewOrchestrator(registry *Registry, logg *logger.Logger, m *metrics.ScrapeMetrics, timeout time.Duration) (*Orchestrator, error) {
	if registry == nil {
		return nil, fmt.Errorf("source registry required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Orchestrator{
		registry: registry,
		logg:     logg,
		metrics:  m,
		timeout:  timeout,
	}, nil
}

// Scrape queries every requested store concurrently and returns offers
// per store. Stores with no registered source, a failure or zero
// offers map to an empty slice; the caller decides how to surface the
// gap.
func (o *Orchestrator) Scrape(ctx context.Context, query string, storeKeys []enums.StoreKey, zip string) map[enums.StoreKey][]Offer {
	results := make(map[enums.StoreKey][]Offer, len(storeKeys))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, key := range storeKeys {
		source, ok := o.registry.Lookup(key)
		if !ok {
			o.logg.Warn(ctx, fmt.Sprintf("no source registered for %s", key))
			results[key] = nil
			continue
		}

		wg.Add(1)
		go func(key enums.StoreKey, source Source) {
			defer wg.Done()
			offers := o.fetchWithRetry(ctx, key, source, query, zip)
			mu.Lock()
			results[key] = offers
			mu.Unlock()
		}(key, source)
	}

	wg.Wait()
	return results
}

// fetchWithRetry runs one source under the per-source timeout and
// retries once with a simplified query when the full name comes back
// empty.
func (o *Orchestrator) fetchWithRetry(ctx context.Context, key enums.StoreKey, source Source, query, zip string) []Offer {
	ctx = o.logg.WithStoreKey(ctx, string(key))

	offers, err := o.fetchOnce(ctx, key, source, query, zip)
	if err != nil {
		o.logg.Warn(ctx, fmt.Sprintf("source %s failed for %q: %v", key, query, err))
		if o.metrics != nil {
			o.metrics.IncFailure(string(key))
		}
		return nil
	}
	if len(offers) > 0 {
		return offers
	}

	simplified := SimplifyQuery(query)
	if simplified == "" || simplified == query {
		return nil
	}

	if o.metrics != nil {
		o.metrics.IncRetry(string(key))
	}
	o.logg.Debug(ctx, fmt.Sprintf("retrying %s with simplified query %q", key, simplified))

	offers, err = o.fetchOnce(ctx, key, source, simplified, zip)
	if err != nil {
		o.logg.Warn(ctx, fmt.Sprintf("source %s failed on retry for %q: %v", key, simplified, err))
		if o.metrics != nil {
			o.metrics.IncFailure(string(key))
		}
		return nil
	}
	return offers
}

func (o *Orchestrator) fetchOnce(ctx context.Context, key enums.StoreKey, source Source, query, zip string) (offers []Offer, err error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			offers, err = nil, fmt.Errorf("source panicked: %v", r)
		}
	}()

	start := time.Now()
	offers, err = source.Fetch(ctx, query, zip)
	if o.metrics != nil && err == nil {
		o.metrics.ObserveSource(string(key), time.Since(start), len(offers))
	}
	return offers, err
}
