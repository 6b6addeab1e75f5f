package storemeta

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jordanblake/cartcompass-backend/pkg/config"
	"github.com/jordanblake/cartcompass-backend/pkg/db/models"
	"github.com/jordanblake/cartcompass-backend/pkg/enums"
	pkgerrors "github.com/jordanblake/cartcompass-backend/pkg/errors"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
	"github.com/jordanblake/cartcompass-backend/pkg/types"
	"github.com/rs/zerolog"
)

type stubStoreRepo struct {
	locations map[string]*models.GroceryStore
	prefs     map[uuid.UUID][]enums.StoreKey
	zips      map[string]int
	failures  map[uuid.UUID]int
}

func newStubStoreRepo() *stubStoreRepo {
	return &stubStoreRepo{
		locations: map[string]*models.GroceryStore{},
		prefs:     map[uuid.UUID][]enums.StoreKey{},
		zips:      map[string]int{},
		failures:  map[uuid.UUID]int{},
	}
}

func (s *stubStoreRepo) FindLocation(_ context.Context, key enums.StoreKey, zip string) (*models.GroceryStore, error) {
	return s.locations[string(key)+"/"+zip], nil
}

func (s *stubStoreRepo) PreferredStoreKeys(_ context.Context, userID uuid.UUID) ([]enums.StoreKey, error) {
	return s.prefs[userID], nil
}

func (s *stubStoreRepo) TouchScrapedZip(_ context.Context, zip string, storeCount int) error {
	s.zips[zip] = storeCount
	return nil
}

func (s *stubStoreRepo) IncrementFailure(_ context.Context, id uuid.UUID) error {
	s.failures[id]++
	return nil
}

func (s *stubStoreRepo) ResetFailure(_ context.Context, id uuid.UUID) error {
	s.failures[id] = 0
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})
}

func testScraperConfig() config.ScraperConfig {
	return config.ScraperConfig{
		Stores:     []string{"target", "kroger"},
		DefaultZip: "47906",
	}
}

func TestResolveStoresNormalizesAndDedupes(t *testing.T) {
	svc, err := NewService(newStubStoreRepo(), testLogger(), testScraperConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	got, err := svc.ResolveStores(context.Background(), ResolveInput{
		StoreKeys: []string{"Walmart", "99 Ranch", "walmart", "bogus-mart"},
		ZipCode:   "60601",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(got))
	}
	if got[0].StoreKey != enums.StoreKeyWalmart || got[1].StoreKey != enums.StoreKeyRanch99 {
		t.Fatalf("unexpected keys %v %v", got[0].StoreKey, got[1].StoreKey)
	}
	if got[0].ZipCode != "60601" {
		t.Fatalf("zip = %q, want 60601", got[0].ZipCode)
	}
}

func TestResolveStoresAllUnknownFailsValidation(t *testing.T) {
	svc, _ := NewService(newStubStoreRepo(), testLogger(), testScraperConfig())

	_, err := svc.ResolveStores(context.Background(), ResolveInput{
		StoreKeys: []string{"piggly wiggly"},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", pkgerrors.As(err).Code())
	}
}

func TestResolveStoresFallsBackToPreferencesThenDefaults(t *testing.T) {
	repo := newStubStoreRepo()
	userID := uuid.New()
	repo.prefs[userID] = []enums.StoreKey{enums.StoreKeyMeijer}
	svc, _ := NewService(repo, testLogger(), testScraperConfig())

	got, err := svc.ResolveStores(context.Background(), ResolveInput{UserID: &userID})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 1 || got[0].StoreKey != enums.StoreKeyMeijer {
		t.Fatalf("expected meijer preference, got %+v", got)
	}

	got, err = svc.ResolveStores(context.Background(), ResolveInput{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(got) != 2 || got[0].StoreKey != enums.StoreKeyTarget || got[1].StoreKey != enums.StoreKeyKroger {
		t.Fatalf("expected configured defaults, got %+v", got)
	}
}

func TestResolveStoresAttachesLocation(t *testing.T) {
	repo := newStubStoreRepo()
	locID := uuid.New()
	addr := "123 Main St"
	repo.locations["target/47906"] = &models.GroceryStore{
		ID:       locID,
		StoreKey: enums.StoreKeyTarget,
		Name:     "Target West Lafayette",
		Address:  &addr,
		ZipCode:  "47906",
	}
	svc, _ := NewService(repo, testLogger(), testScraperConfig())

	got, err := svc.ResolveStores(context.Background(), ResolveInput{
		StoreKeys: []string{"target"},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got[0].GroceryStoreID == nil || *got[0].GroceryStoreID != locID {
		t.Fatalf("expected location id %s, got %+v", locID, got[0])
	}
	if got[0].ZipCode != "47906" {
		t.Fatalf("expected fallback zip 47906, got %q", got[0].ZipCode)
	}
}

func TestMarkStoreResultTracksFailures(t *testing.T) {
	repo := newStubStoreRepo()
	svc, _ := NewService(repo, testLogger(), testScraperConfig())
	locID := uuid.New()

	svc.MarkStoreResult(context.Background(), &locID, false)
	svc.MarkStoreResult(context.Background(), &locID, false)
	if repo.failures[locID] != 2 {
		t.Fatalf("failure count = %d, want 2", repo.failures[locID])
	}

	svc.MarkStoreResult(context.Background(), &locID, true)
	if repo.failures[locID] != 0 {
		t.Fatalf("failure count = %d after success, want 0", repo.failures[locID])
	}

	// no catalogued location, nothing to track
	svc.MarkStoreResult(context.Background(), nil, false)
	if len(repo.failures) != 1 {
		t.Fatalf("unexpected failure rows %v", repo.failures)
	}
}

func TestResolveStoresComputesDistance(t *testing.T) {
	repo := newStubStoreRepo()
	addr := "2300 Sagamore Pkwy"
	repo.locations["target/47906"] = &models.GroceryStore{
		ID:       uuid.New(),
		StoreKey: enums.StoreKeyTarget,
		Name:     "Target West Lafayette",
		Address:  &addr,
		ZipCode:  "47906",
		Geom:     &types.GeographyPoint{Lat: 40.4259, Lng: -86.9081},
	}
	svc, _ := NewService(repo, testLogger(), testScraperConfig())

	lat, lng := 40.4237, -86.9212
	got, err := svc.ResolveStores(context.Background(), ResolveInput{
		StoreKeys: []string{"target", "kroger"},
		ZipCode:   "47906",
		Latitude:  &lat,
		Longitude: &lng,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if got[0].DistanceMiles == nil {
		t.Fatal("expected distance for store with known geometry")
	}
	if d := *got[0].DistanceMiles; d < 0.5 || d > 1.2 {
		t.Fatalf("distance = %.2f miles, expected under a mile and a half", d)
	}
	if got[1].DistanceMiles != nil {
		t.Fatal("store without geometry must carry no distance")
	}
}
