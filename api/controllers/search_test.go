package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jordanblake/cartcompass-backend/internal/compare"
	"github.com/jordanblake/cartcompass-backend/internal/search"
	"github.com/jordanblake/cartcompass-backend/pkg/enums"
	pkgerrors "github.com/jordanblake/cartcompass-backend/pkg/errors"
)

type stubSearchService struct {
	result      *search.SearchResult
	comparisons []compare.StoreComparison
	err         error
	gotInput    search.SearchInput
}

func (s *stubSearchService) SearchPrices(_ context.Context, input search.SearchInput) (*search.SearchResult, error) {
	s.gotInput = input
	return s.result, s.err
}

func (s *stubSearchService) PriceShoppingList(_ context.Context, _ search.ListInput) ([]compare.StoreComparison, error) {
	return s.comparisons, s.err
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSearchPricesSuccess(t *testing.T) {
	price := decimal.RequireFromString("2.49")
	svc := &stubSearchService{result: &search.SearchResult{
		IngredientID:   uuid.New(),
		IngredientName: "eggs",
		ZipCode:        "47906",
		Offers: []search.StoreOffer{{
			StoreKey:    enums.StoreKeyWalmart,
			DisplayName: "Walmart",
			Source:      search.SourceScraperDirect,
			ProductName: "Grade A Eggs",
			Price:       &price,
		}},
	}}
	handler := SearchPrices(svc, nil)

	rec := postJSON(t, handler, "/api/v1/search/prices", map[string]any{
		"search_term": "eggs",
		"zip_code":    "47906",
		"store_keys":  []string{"walmart"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotInput.SearchTerm != "eggs" || svc.gotInput.ZipCode != "47906" {
		t.Fatalf("input = %+v", svc.gotInput)
	}

	var envelope struct {
		Data struct {
			Available bool                 `json:"available"`
			Offers    []search.StoreOffer `json:"offers"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Available {
		t.Fatal("expected available=true")
	}
	if len(envelope.Data.Offers) != 1 || envelope.Data.Offers[0].Source != search.SourceScraperDirect {
		t.Fatalf("offers = %+v", envelope.Data.Offers)
	}
}

func TestSearchPricesRejectsMissingTerm(t *testing.T) {
	handler := SearchPrices(&stubSearchService{}, nil)

	rec := postJSON(t, handler, "/api/v1/search/prices", map[string]any{"zip_code": "47906"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestSearchPricesRejectsBadZip(t *testing.T) {
	handler := SearchPrices(&stubSearchService{}, nil)

	rec := postJSON(t, handler, "/api/v1/search/prices", map[string]any{
		"search_term": "eggs",
		"zip_code":    "abcde",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestSearchPricesServiceError(t *testing.T) {
	svc := &stubSearchService{err: pkgerrors.New(pkgerrors.CodeValidation, "ingredient name is required")}
	handler := SearchPrices(svc, nil)

	rec := postJSON(t, handler, "/api/v1/search/prices", map[string]any{"search_term": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCompareShoppingListSuccess(t *testing.T) {
	svc := &stubSearchService{comparisons: []compare.StoreComparison{
		{StoreKey: enums.StoreKeyWalmart, DisplayName: "Walmart", Total: decimal.RequireFromString("4.00")},
		{StoreKey: enums.StoreKeyTarget, DisplayName: "Target", Total: decimal.RequireFromString("6.00")},
	}}
	handler := CompareShoppingList(svc, nil)

	rec := postJSON(t, handler, "/api/v1/compare", map[string]any{
		"lines": []map[string]any{
			{"name": "eggs", "quantity": 1, "unit": "each"},
			{"name": "milk"},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Stores []compare.StoreComparison `json:"stores"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Stores) != 2 {
		t.Fatalf("stores = %+v", envelope.Data.Stores)
	}
}

func TestCompareShoppingListRejectsEmptyList(t *testing.T) {
	handler := CompareShoppingList(&stubSearchService{}, nil)

	rec := postJSON(t, handler, "/api/v1/compare", map[string]any{"lines": []map[string]any{}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
