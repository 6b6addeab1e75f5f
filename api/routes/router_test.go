package routes

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jordanblake/cartcompass-backend/internal/compare"
	"github.com/jordanblake/cartcompass-backend/internal/search"
	"github.com/jordanblake/cartcompass-backend/internal/warming"
	"github.com/jordanblake/cartcompass-backend/pkg/config"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
)

type stubSearchService struct{}

func (stubSearchService) SearchPrices(context.Context, search.SearchInput) (*search.SearchResult, error) {
	return &search.SearchResult{IngredientID: uuid.New(), IngredientName: "eggs", ZipCode: "47906"}, nil
}

func (stubSearchService) PriceShoppingList(context.Context, search.ListInput) ([]compare.StoreComparison, error) {
	return nil, nil
}

type stubWarmingService struct{}

func (stubWarmingService) Sweep(context.Context, string) (*warming.Summary, error) {
	return &warming.Summary{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Env: "test", Port: "0"},
		Warm: config.WarmConfig{Secret: "warm-me"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: zerolog.ErrorLevel, Output: io.Discard})
	return NewRouter(RouterParams{
		Config:  cfg,
		Logger:  logg,
		Search:  stubSearchService{},
		Warming: stubWarmingService{},
	})
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicPing(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestSearchRouteAccepts(t *testing.T) {
	router := newTestRouter(testConfig())
	body := bytes.NewReader([]byte(`{"search_term":"eggs","zip_code":"47906"}`))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search/prices", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminGroupRequiresSecret(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	missing := httptest.NewRequest(http.MethodGet, "/api/admin/v1/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, missing)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret got %d", resp.Code)
	}

	wrong := httptest.NewRequest(http.MethodGet, "/api/admin/v1/ping", nil)
	wrong.Header.Set("X-Warm-Secret", "not-it")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, wrong)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong secret got %d", resp.Code)
	}

	right := httptest.NewRequest(http.MethodGet, "/api/admin/v1/ping", nil)
	right.Header.Set("X-Warm-Secret", "warm-me")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, right)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with secret got %d", resp.Code)
	}
}

func TestAdminGroupDisabledWithoutSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Warm.Secret = ""
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/warm", nil)
	req.Header.Set("X-Warm-Secret", "anything")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when warming disabled got %d", resp.Code)
	}
}

func TestWarmRouteRunsSweep(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/warm?zip=47906", nil)
	req.Header.Set("X-Warm-Secret", "warm-me")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}
