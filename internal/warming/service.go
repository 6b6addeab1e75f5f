package warming

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jordanblake/cartcompass-backend/internal/ingredients"
	"github.com/jordanblake/cartcompass-backend/internal/pricecache"
	"github.com/jordanblake/cartcompass-backend/internal/scrape"
	"github.com/jordanblake/cartcompass-backend/internal/storemeta"
	"github.com/jordanblake/cartcompass-backend/pkg/enums"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
)

type ingredientLister interface {
	ListAll(ctx context.Context) ([]ingredients.IngredientDTO, error)
}

type storeResolver interface {
	ResolveStores(ctx context.Context, input storemeta.ResolveInput) ([]storemeta.StoreIdentity, error)
	ResolveZip(zip string) string
}

type cacheWriter interface {
	WriteBatch(ctx context.Context, entries []pricecache.Entry) int
}

type orchestrator interface {
	Scrape(ctx context.Context, query string, storeKeys []enums.StoreKey, zip string) map[enums.StoreKey][]scrape.Offer
}

// Summary reports the outcome of one warming sweep. The sweep always
// completes; per-item failures are counted, not escalated.
type Summary struct {
	Total  int      `json:"total"`
	Stores int      `json:"stores"`
	Cached int      `json:"cached"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}

// Service refreshes the price cache for every known ingredient against
// the configured store list, bypassing cache reads entirely.
type Service interface {
	Sweep(ctx context.Context, zip string) (*Summary, error)
}

type service struct {
	lister  ingredientLister
	stores  storeResolver
	writer  cacheWriter
	scraper orchestrator
	logg    *logger.Logger
}

// NewService builds the warming service.
func NewService(lister ingredientLister, stores storeResolver, writer cacheWriter, scraper orchestrator, logg *logger.Logger) (Service, error) {
	if lister == nil {
		return nil, fmt.Errorf("ingredient lister required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store resolver required")
	}
	if writer == nil {
		return nil, fmt.Errorf("cache writer required")
	}
	if scraper == nil {
		return nil, fmt.Errorf("orchestrator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		lister:  lister,
		stores:  stores,
		writer:  writer,
		scraper: scraper,
		logg:    logg,
	}, nil
}

// Sweep scrapes every known ingredient across the default store list
// and writes the winners through the cache writer. An error is only
// returned when the ingredient list itself cannot be loaded.
func (s *service) Sweep(ctx context.Context, zip string) (*Summary, error) {
	known, err := s.lister.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}

	stores, err := s.stores.ResolveStores(ctx, storemeta.ResolveInput{ZipCode: zip})
	if err != nil {
		return nil, fmt.Errorf("resolve stores: %w", err)
	}
	zip = s.stores.ResolveZip(zip)

	metaByKey := make(map[enums.StoreKey]storemeta.StoreIdentity, len(stores))
	storeKeys := make([]enums.StoreKey, 0, len(stores))
	for _, st := range stores {
		metaByKey[st.StoreKey] = st
		storeKeys = append(storeKeys, st.StoreKey)
	}

	summary := &Summary{
		Total:  len(known),
		Stores: len(storeKeys),
		Errors: []string{},
	}

	for _, ingredient := range known {
		if ctx.Err() != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("sweep aborted: %v", ctx.Err()))
			break
		}

		itemCtx := s.logg.WithIngredient(ctx, ingredient.Name)
		lookup := ingredients.Normalize(ingredient.Name)
		results := s.scraper.Scrape(itemCtx, lookup, storeKeys, zip)

		entries := make([]pricecache.Entry, 0, len(storeKeys))
		for _, key := range storeKeys {
			winner := scrape.SelectBest(results[key])
			if winner == nil {
				summary.Failed++
				summary.Errors = append(summary.Errors,
					fmt.Sprintf("%s @ %s: no offers", ingredient.Name, key))
				continue
			}
			entries = append(entries, entryFromWinner(ingredient.ID, metaByKey[key], zip, *winner))
		}

		if len(entries) == 0 {
			continue
		}
		written := s.writer.WriteBatch(itemCtx, entries)
		summary.Cached += written
		if written < len(entries) {
			dropped := len(entries) - written
			summary.Failed += dropped
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("%s: %d cache writes dropped", ingredient.Name, dropped))
		}
	}

	s.logg.Info(ctx, fmt.Sprintf("warming sweep done: %d ingredients, %d cached, %d failed",
		summary.Total, summary.Cached, summary.Failed))
	return summary, nil
}

func entryFromWinner(ingredientID uuid.UUID, meta storemeta.StoreIdentity, zip string, winner scrape.Offer) pricecache.Entry {
	unit := winner.Unit
	if unit == "" {
		unit = enums.UnitEach
	}
	return pricecache.Entry{
		IngredientID:   ingredientID,
		StoreKey:       meta.StoreKey,
		ZipCode:        zip,
		GroceryStoreID: meta.GroceryStoreID,
		ProductID:      winner.ProductID,
		ProductName:    winner.ProductName,
		Price:          winner.Price,
		Unit:           unit,
		UnitPrice:      winner.UnitPrice,
		ImageURL:       winner.ImageURL,
		Location:       winner.Location,
	}
}
