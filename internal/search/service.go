package search

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jordanblake/cartcompass-backend/internal/compare"
	"github.com/jordanblake/cartcompass-backend/internal/ingredients"
	"github.com/jordanblake/cartcompass-backend/internal/pricecache"
	"github.com/jordanblake/cartcompass-backend/internal/scrape"
	"github.com/jordanblake/cartcompass-backend/internal/storemeta"
	"github.com/jordanblake/cartcompass-backend/pkg/enums"
	pkgerrors "github.com/jordanblake/cartcompass-backend/pkg/errors"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
)

type identityResolver interface {
	Resolve(ctx context.Context, rawName string) (*ingredients.IngredientDTO, error)
}

type storeResolver interface {
	ResolveStores(ctx context.Context, input storemeta.ResolveInput) ([]storemeta.StoreIdentity, error)
	ResolveZip(zip string) string
	MarkZipScraped(ctx context.Context, zip string, storeCount int)
	MarkStoreResult(ctx context.Context, storeID *uuid.UUID, ok bool)
}

type cacheReader interface {
	Lookup(ctx context.Context, ingredientID uuid.UUID, storeKeys []enums.StoreKey, zip string) (map[enums.StoreKey]pricecache.Entry, error)
}

type cacheWriter interface {
	WriteBatch(ctx context.Context, entries []pricecache.Entry) int
}

type orchestrator interface {
	Scrape(ctx context.Context, query string, storeKeys []enums.StoreKey, zip string) map[enums.StoreKey][]scrape.Offer
}

type inflightGuard interface {
	InflightKey(term, zip string) string
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

const (
	inflightTTL         = 30 * time.Second
	defaultInflightWait = 3 * time.Second
	defaultInflightPoll = 250 * time.Millisecond
)

// Service runs the full price resolution pipeline: identity, cache
// read, concurrent scrape of the misses, best-offer selection and a
// detached cache write.
type Service interface {
	SearchPrices(ctx context.Context, input SearchInput) (*SearchResult, error)
	PriceShoppingList(ctx context.Context, input ListInput) ([]compare.StoreComparison, error)
}

// ListInput is a shopping-list pricing request.
type ListInput struct {
	Lines        []compare.ShoppingListLine
	ZipCode      string
	StoreKeys    []string
	ForceRefresh bool
	UserID       *uuid.UUID
	Latitude     *float64
	Longitude    *float64
}

type service struct {
	resolver identityResolver
	stores   storeResolver
	reader   cacheReader
	writer   cacheWriter
	scraper  orchestrator
	logg     *logger.Logger
	// inflight dedupes concurrent scrapes of the same (term, zip).
	// Optional; nil disables dedup.
	inflight     inflightGuard
	inflightWait time.Duration
	inflightPoll time.Duration
	// writeDone is signalled after each detached cache write, tests
	// use it to wait for the fire-and-forget path.
	writeDone chan struct{}
}

// NewService builds the search pipeline. The inflight guard is
// optional; without it concurrent identical searches may scrape twice.
func NewService(resolver identityResolver, stores storeResolver, reader cacheReader, writer cacheWriter, scraper orchestrator, inflight inflightGuard, logg *logger.Logger) (Service, error) {
	if resolver == nil {
		return nil, fmt.Errorf("identity resolver required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store resolver required")
	}
	if reader == nil {
		return nil, fmt.Errorf("cache reader required")
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
		resolver:     resolver,
		stores:       stores,
		reader:       reader,
		writer:       writer,
		scraper:      scraper,
		logg:         logg,
		inflight:     inflight,
		inflightWait: defaultInflightWait,
		inflightPoll: defaultInflightPoll,
		writeDone:    make(chan struct{}, 16),
	}, nil
}

// SearchPrices resolves the ingredient, serves cached stores, scrapes
// the rest and returns one offer slot per requested store. A store
// that yields nothing anywhere is tagged unavailable rather than
// dropped.
func (s *service) SearchPrices(ctx context.Context, input SearchInput) (*SearchResult, error) {
	ingredient, err := s.resolver.Resolve(ctx, input.SearchTerm)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithIngredient(ctx, ingredient.Name)

	stores, err := s.stores.ResolveStores(ctx, storemeta.ResolveInput{
		StoreKeys: input.StoreKeys,
		UserID:    input.UserID,
		ZipCode:   input.ZipCode,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	})
	if err != nil {
		return nil, err
	}
	zip := s.stores.ResolveZip(input.ZipCode)
	ctx = s.logg.WithZip(ctx, zip)

	metaByKey := make(map[enums.StoreKey]storemeta.StoreIdentity, len(stores))
	storeKeys := make([]enums.StoreKey, 0, len(stores))
	for _, st := range stores {
		metaByKey[st.StoreKey] = st
		storeKeys = append(storeKeys, st.StoreKey)
	}

	cached := map[enums.StoreKey]pricecache.Entry{}
	if !input.ForceRefresh {
		cached, err = s.reader.Lookup(ctx, ingredient.ID, storeKeys, zip)
		if err != nil {
			// A cache outage degrades to a full scrape.
			s.logg.Warn(ctx, fmt.Sprintf("cache lookup failed, scraping all stores: %v", err))
			cached = map[enums.StoreKey]pricecache.Entry{}
		}
	}

	missing := missingStores(storeKeys, cached)

	scrapeTag := SourceScraperDirect
	if input.ForceRefresh {
		scrapeTag = SourceForceRefresh
	}

	winners := map[enums.StoreKey]*scrape.Offer{}
	if len(missing) > 0 {
		lookup := ingredients.Normalize(input.SearchTerm)

		release := func() {}
		if s.inflight != nil && !input.ForceRefresh {
			owned, rel := s.claimScrape(ctx, lookup, zip)
			release = rel
			if !owned {
				// Another request is already scraping this
				// term. Wait for its detached write to land and
				// serve those rows instead of scraping again.
				late := s.awaitInflight(ctx, ingredient.ID, missing, zip)
				for key, entry := range late {
					cached[key] = entry
				}
				missing = missingStores(storeKeys, cached)
			}
		}

		if len(missing) > 0 {
			results := s.scraper.Scrape(ctx, lookup, missing, zip)
			for key, offers := range results {
				winners[key] = scrape.SelectBest(offers)
			}
			s.stores.MarkZipScraped(ctx, zip, len(missing))
		}
		release()
	}

	result := &SearchResult{
		IngredientID:   ingredient.ID,
		IngredientName: ingredient.Name,
		ZipCode:        zip,
		Offers:         make([]StoreOffer, 0, len(storeKeys)),
	}

	entries := make([]pricecache.Entry, 0, len(missing))
	for _, key := range storeKeys {
		meta := metaByKey[key]

		if entry, hit := cached[key]; hit {
			result.Offers = append(result.Offers, offerFromCache(meta, entry))
			continue
		}

		winner := winners[key]
		s.stores.MarkStoreResult(ctx, meta.GroceryStoreID, winner != nil)
		if winner == nil {
			result.Offers = append(result.Offers, StoreOffer{
				StoreKey:    key,
				DisplayName: meta.DisplayName,
				Source:      SourceUnavailable,
			})
			continue
		}

		result.Offers = append(result.Offers, offerFromScrape(meta, *winner, scrapeTag))
		entries = append(entries, entryFromWinner(ingredient.ID, meta, zip, *winner))
	}

	if len(entries) > 0 {
		s.writeDetached(ctx, entries)
	}
	return result, nil
}

func missingStores(storeKeys []enums.StoreKey, cached map[enums.StoreKey]pricecache.Entry) []enums.StoreKey {
	missing := make([]enums.StoreKey, 0, len(storeKeys))
	for _, key := range storeKeys {
		if _, hit := cached[key]; !hit {
			missing = append(missing, key)
		}
	}
	return missing
}

// claimScrape marks the (term, zip) scrape as in flight. The release
// func is a no-op unless this request won the claim. A redis outage
// falls through to scraping; dedup is an optimization, never a gate.
func (s *service) claimScrape(ctx context.Context, term, zip string) (bool, func()) {
	key := s.inflight.InflightKey(term, zip)
	owned, err := s.inflight.SetNX(ctx, key, 1, inflightTTL)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("inflight claim failed: %v", err))
		return true, func() {}
	}
	if !owned {
		return false, func() {}
	}
	return true, func() {
		if err := s.inflight.Del(context.WithoutCancel(ctx), key); err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("inflight release failed: %v", err))
		}
	}
}

// awaitInflight polls the cache while another request scrapes the same
// term, returning whatever rows have landed by the deadline. Stores the
// winner never produced stay missing and get scraped by the caller.
func (s *service) awaitInflight(ctx context.Context, ingredientID uuid.UUID, keys []enums.StoreKey, zip string) map[enums.StoreKey]pricecache.Entry {
	deadline := time.Now().Add(s.inflightWait)
	for {
		entries, err := s.reader.Lookup(ctx, ingredientID, keys, zip)
		if err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("inflight cache poll failed: %v", err))
			return nil
		}
		if len(entries) == len(keys) || time.Now().After(deadline) {
			return entries
		}
		select {
		case <-ctx.Done():
			return entries
		case <-time.After(s.inflightPoll):
		}
	}
}

// writeDetached persists scraped winners without tying the write to
// the request's cancellation. A late write is still cache value.
func (s *service) writeDetached(ctx context.Context, entries []pricecache.Entry) {
	detached := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logg.Error(detached, "detached cache write panicked", fmt.Errorf("%v", r))
			}
			select {
			case s.writeDone <- struct{}{}:
			default:
			}
		}()
		written := s.writer.WriteBatch(detached, entries)
		if written < len(entries) {
			s.logg.Warn(detached, fmt.Sprintf("cache write persisted %d of %d entries", written, len(entries)))
		} else {
			s.logg.Debug(detached, fmt.Sprintf("cached %d scraped entries", written))
		}
	}()
}

func offerFromCache(meta storemeta.StoreIdentity, entry pricecache.Entry) StoreOffer {
	price := entry.Price
	observed := entry.ObservedAt
	return StoreOffer{
		StoreKey:    meta.StoreKey,
		DisplayName: meta.DisplayName,
		Source:      SourceCache,
		ProductName: entry.ProductName,
		Price:       &price,
		Unit:        entry.Unit,
		UnitPrice:   entry.UnitPrice,
		ImageURL:    entry.ImageURL,
		Location:    entry.Location,
		ObservedAt:  &observed,
	}
}

func offerFromScrape(meta storemeta.StoreIdentity, winner scrape.Offer, tag OfferSource) StoreOffer {
	price := winner.Price
	now := time.Now().UTC()
	unit := winner.Unit
	if unit == "" {
		unit = enums.UnitEach
	}
	return StoreOffer{
		StoreKey:    meta.StoreKey,
		DisplayName: meta.DisplayName,
		Source:      tag,
		ProductName: winner.ProductName,
		Price:       &price,
		Unit:        unit,
		UnitPrice:   winner.UnitPrice,
		ImageURL:    winner.ImageURL,
		Location:    winner.Location,
		ObservedAt:  &now,
	}
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

// PriceShoppingList prices every line across the requested stores and
// returns the ranked comparison. Lines that fail identity resolution
// are reported as missing everywhere instead of failing the request.
func (s *service) PriceShoppingList(ctx context.Context, input ListInput) ([]compare.StoreComparison, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shopping list is empty")
	}

	stores, err := s.stores.ResolveStores(ctx, storemeta.ResolveInput{
		StoreKeys: input.StoreKeys,
		UserID:    input.UserID,
		ZipCode:   input.ZipCode,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	})
	if err != nil {
		return nil, err
	}

	offers := make([]compare.Offer, 0, len(input.Lines)*len(stores))
	lines := make([]compare.ShoppingListLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}

		result, err := s.SearchPrices(ctx, SearchInput{
			SearchTerm:   line.Name,
			ZipCode:      input.ZipCode,
			StoreKeys:    input.StoreKeys,
			ForceRefresh: input.ForceRefresh,
			UserID:       input.UserID,
			Latitude:     input.Latitude,
			Longitude:    input.Longitude,
		})
		if err != nil {
			if pkgerrors.As(err).Code() == pkgerrors.CodeValidation {
				lines = append(lines, line)
				continue
			}
			return nil, err
		}

		ingredientID := result.IngredientID
		line.IngredientID = &ingredientID
		lines = append(lines, line)

		for _, offer := range result.Offers {
			if offer.Source == SourceUnavailable || offer.Price == nil {
				continue
			}
			offers = append(offers, compare.OfferFromCacheFields(
				offer.StoreKey, ingredientID, offer.ProductName,
				*offer.Price, offer.Unit, offer.ImageURL))
		}
	}

	return compare.Build(lines, offers, stores), nil
}
