package storemeta

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jordanblake/cartcompass-backend/pkg/db/models"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
	"github.com/jordanblake/cartcompass-backend/pkg/maps"
)

type geocodeRepository interface {
	ListMissingGeo(ctx context.Context, limit int) ([]models.GroceryStore, error)
	UpdateGeom(ctx context.Context, id uuid.UUID, lat, lng float64, address *string) error
}

type placeSearcher interface {
	SearchText(ctx context.Context, query string) (*maps.PlaceMatch, error)
}

// Backfiller geocodes catalogued store locations that are missing
// coordinates by querying the Places API with the store name and zip.
type Backfiller struct {
	repo   geocodeRepository
	places placeSearcher
	logg   *logger.Logger
	limit  int
}

// NewBackfiller builds a geocode backfiller. A nil places client
// disables the job.
func NewBackfiller(repo geocodeRepository, places placeSearcher, logg *logger.Logger, limit int) (*Backfiller, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if limit <= 0 {
		limit = 50
	}
	return &Backfiller{repo: repo, places: places, logg: logg, limit: limit}, nil
}

// Run geocodes up to the configured batch of locations and returns how
// many were updated. Individual lookup failures skip the row.
func (b *Backfiller) Run(ctx context.Context) (int, error) {
	if b.places == nil {
		b.logg.Debug(ctx, "geocode backfill disabled, no places client")
		return 0, nil
	}

	rows, err := b.repo.ListMissingGeo(ctx, b.limit)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range rows {
		row := &rows[i]
		match, err := b.places.SearchText(ctx, b.queryFor(row))
		if err != nil {
			b.logg.Warn(ctx, fmt.Sprintf("geocode %s %s: %v", row.StoreKey, row.ZipCode, err))
			continue
		}
		if match == nil {
			continue
		}

		var addr *string
		if match.FormattedAddress != "" {
			addr = &match.FormattedAddress
		}
		if err := b.repo.UpdateGeom(ctx, row.ID, match.Location.Latitude, match.Location.Longitude, addr); err != nil {
			b.logg.Warn(ctx, fmt.Sprintf("save geocode for %s: %v", row.ID, err))
			continue
		}
		updated++
	}
	return updated, nil
}

func (b *Backfiller) queryFor(row *models.GroceryStore) string {
	parts := []string{row.Name}
	if row.Address != nil && *row.Address != "" {
		parts = append(parts, *row.Address)
	}
	if row.City != nil && *row.City != "" {
		parts = append(parts, *row.City)
	}
	parts = append(parts, row.ZipCode)
	return strings.Join(parts, ", ")
}
