package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jordanblake/cartcompass-backend/pkg/enums"
)

func TestRemoteSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scrape/walmart" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("searchTerm"); got != "eggs" {
			t.Errorf("searchTerm = %q", got)
		}
		if got := r.URL.Query().Get("zipCode"); got != "47906" {
			t.Errorf("zipCode = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"name": "Grade A Eggs 12ct", "price": 2.49, "unit": "ea"},
			{"title": "Organic Eggs", "price": "$4.99", "location": "Aisle 3"},
			{"name": "Broken Row", "price": "call for price"},
			{"price": 1.99}
		]`))
	}))
	defer srv.Close()

	source, err := NewRemoteSource(enums.StoreKeyWalmart, srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("NewRemoteSource: %v", err)
	}

	offers, err := source.Fetch(context.Background(), "eggs", "47906")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	// The nameless row is dropped, the unparseable price survives as
	// invalid and gets filtered at selection.
	if len(offers) != 3 {
		t.Fatalf("expected 3 offers, got %d", len(offers))
	}
	if offers[0].Unit != enums.UnitEach {
		t.Fatalf("unit = %q, want each", offers[0].Unit)
	}
	if offers[0].Price.StringFixed(2) != "2.49" {
		t.Fatalf("price = %s", offers[0].Price)
	}
	if offers[1].Price.StringFixed(2) != "4.99" {
		t.Fatalf("string price = %s", offers[1].Price)
	}
	if offers[2].Price.IsPositive() {
		t.Fatal("unparseable price must be invalid")
	}

	if best := SelectBest(offers); best == nil || best.ProductName != "Grade A Eggs 12ct" {
		t.Fatalf("best = %+v", best)
	}
}

func TestRemoteSourceHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	source, _ := NewRemoteSource(enums.StoreKeyTarget, srv.URL, srv.Client())
	if _, err := source.Fetch(context.Background(), "eggs", "47906"); err == nil {
		t.Fatal("expected error on 502")
	}
}
