package maps

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/jordanblake/cartcompass-backend/pkg/errors"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestSearchTextRequestShape(t *testing.T) {
	respBody := `{"places":[{"id":"place_123","formattedAddress":"100 Sagamore Pkwy W, West Lafayette, IN 47906","location":{"latitude":40.45,"longitude":-86.92}}]}`

	var capturedURL string
	var capturedHeaders http.Header

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()

		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		var payload map[string]any
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		if payload["textQuery"] != "Kroger 100 Sagamore Pkwy 47906" {
			t.Fatalf("unexpected textQuery %q", payload["textQuery"])
		}

		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", WithBaseURL("http://maps.test/v1"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	match, err := client.SearchText(context.Background(), "Kroger 100 Sagamore Pkwy 47906")
	if err != nil {
		t.Fatalf("search text: %v", err)
	}

	if capturedURL != "http://maps.test/v1/places:searchText" {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedHeaders.Get("X-Goog-Api-Key") != "test-key" {
		t.Fatalf("missing api key header")
	}
	if capturedHeaders.Get("X-Goog-FieldMask") == "" {
		t.Fatalf("missing field mask header")
	}
	if match.PlaceID != "place_123" {
		t.Fatalf("unexpected place id %q", match.PlaceID)
	}
	if match.Location.Latitude != 40.45 || match.Location.Longitude != -86.92 {
		t.Fatalf("unexpected location %+v", match.Location)
	}
}

func TestSearchTextNoMatchIsNotFound(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"places":[]}`)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.SearchText(context.Background(), "nowhere")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestSearchTextRejectsEmptyQuery(t *testing.T) {
	client, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.SearchText(context.Background(), "  "); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("   "); err == nil {
		t.Fatal("expected error for blank api key")
	}
}
