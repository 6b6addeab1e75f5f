package storemeta

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jordanblake/cartcompass-backend/pkg/config"
	"github.com/jordanblake/cartcompass-backend/pkg/db/models"
	"github.com/jordanblake/cartcompass-backend/pkg/enums"
	pkgerrors "github.com/jordanblake/cartcompass-backend/pkg/errors"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
)

type storeRepository interface {
	FindLocation(ctx context.Context, key enums.StoreKey, zip string) (*models.GroceryStore, error)
	PreferredStoreKeys(ctx context.Context, userID uuid.UUID) ([]enums.StoreKey, error)
	TouchScrapedZip(ctx context.Context, zip string, storeCount int) error
	IncrementFailure(ctx context.Context, id uuid.UUID) error
	ResetFailure(ctx context.Context, id uuid.UUID) error
}

// Service resolves which stores a request targets and pins each one to
// location metadata when the catalog has it.
type Service interface {
	ResolveStores(ctx context.Context, input ResolveInput) ([]StoreIdentity, error)
	ResolveZip(zip string) string
	MarkZipScraped(ctx context.Context, zip string, storeCount int)
	MarkStoreResult(ctx context.Context, storeID *uuid.UUID, ok bool)
}

// ResolveInput carries the raw store selection from the request. When
// the shopper's coordinates are present, resolved locations with known
// geometry get a distance attached.
type ResolveInput struct {
	StoreKeys []string
	UserID    *uuid.UUID
	ZipCode   string
	Latitude  *float64
	Longitude *float64
}

type service struct {
	repo     storeRepository
	logg     *logger.Logger
	defaults []enums.StoreKey
	zip      string
}

// NewService builds a store metadata service. The scraper config
// supplies the default store list and fallback zip.
func NewService(repo storeRepository, logg *logger.Logger, cfg config.ScraperConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	defaults := make([]enums.StoreKey, 0)
	for _, raw := range cfg.Stores {
		key, err := enums.ParseStoreKey(raw)
		if err != nil {
			return nil, fmt.Errorf("default store list: %w", err)
		}
		defaults = append(defaults, key)
	}
	if len(defaults) == 0 {
		return nil, fmt.Errorf("at least one default store required")
	}

	return &service{
		repo:     repo,
		logg:     logg,
		defaults: defaults,
		zip:      cfg.DefaultZip,
	}, nil
}

// ResolveZip applies the configured fallback when the request carries
// no zip.
func (s *service) ResolveZip(zip string) string {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return s.zip
	}
	return zip
}

// ResolveStores normalizes the requested store keys, falls back to user
// preferences and then the configured defaults, and attaches catalogued
// location data per store. Unknown keys are dropped with a warning, but
// a request that names only unknown keys fails validation.
func (s *service) ResolveStores(ctx context.Context, input ResolveInput) ([]StoreIdentity, error) {
	zip := s.ResolveZip(input.ZipCode)

	keys, sawInput, err := s.selectKeys(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		if sawInput {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "no recognized stores in request")
		}
		keys = s.defaults
	}

	out := make([]StoreIdentity, 0, len(keys))
	for _, key := range keys {
		loc, err := s.repo.FindLocation(ctx, key, zip)
		if err != nil {
			// A catalog miss must not block pricing. Scrapers
			// only need the chain key and zip.
			s.logg.Warn(ctx, fmt.Sprintf("store location lookup failed: %v", err))
			loc = nil
		}
		id := identityFromLocation(key, zip, loc)
		if input.Latitude != nil && input.Longitude != nil && id.Latitude != nil && id.Longitude != nil {
			d := haversineMiles(*input.Latitude, *input.Longitude, *id.Latitude, *id.Longitude)
			id.DistanceMiles = &d
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *service) selectKeys(ctx context.Context, input ResolveInput) ([]enums.StoreKey, bool, error) {
	seen := map[enums.StoreKey]bool{}
	keys := make([]enums.StoreKey, 0, len(input.StoreKeys))
	sawInput := false

	for _, raw := range input.StoreKeys {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		sawInput = true
		key, err := enums.ParseStoreKey(raw)
		if err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("dropping unknown store key %q", raw))
			continue
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	if sawInput {
		return keys, true, nil
	}

	if input.UserID != nil {
		prefs, err := s.repo.PreferredStoreKeys(ctx, *input.UserID)
		if err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store preferences")
		}
		if len(prefs) > 0 {
			return prefs, false, nil
		}
	}
	return nil, false, nil
}

// MarkZipScraped records scrape coverage for the zip. Failures are
// logged and swallowed, coverage tracking is advisory.
func (s *service) MarkZipScraped(ctx context.Context, zip string, storeCount int) {
	if err := s.repo.TouchScrapedZip(ctx, zip, storeCount); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("record scraped zip: %v", err))
	}
}

// MarkStoreResult tracks a location's consecutive scrape failures so
// FindLocation drifts toward healthier locations. Skipped when the
// store has no catalogued location, and never fails the caller.
func (s *service) MarkStoreResult(ctx context.Context, storeID *uuid.UUID, ok bool) {
	if storeID == nil {
		return
	}
	var err error
	if ok {
		err = s.repo.ResetFailure(ctx, *storeID)
	} else {
		err = s.repo.IncrementFailure(ctx, *storeID)
	}
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("record store scrape result: %v", err))
	}
}
