package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jordanblake/cartcompass-backend/pkg/config"
	"github.com/jordanblake/cartcompass-backend/pkg/enums"
)

// RemoteSource fetches offers from the scraper sidecar, which runs one
// headless scraper per store behind a uniform HTTP surface.
type RemoteSource struct {
	httpClient *http.Client
	baseURL    string
	store      enums.StoreKey
}

// NewRemoteSource builds a source for one store against the sidecar.
func NewRemoteSource(store enums.StoreKey, baseURL string, httpClient *http.Client) (*RemoteSource, error) {
	if !store.IsValid() {
		return nil, fmt.Errorf("invalid store key %q", store)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("scraper base url required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 35 * time.Second}
	}
	return &RemoteSource{
		httpClient: httpClient,
		baseURL:    baseURL,
		store:      store,
	}, nil
}

// remoteOffer tolerates the loose JSON the per-store scrapers emit.
// Prices arrive as numbers or as strings like "$2.49".
type remoteOffer struct {
	Name      string          `json:"name"`
	Title     string          `json:"title"`
	Price     json.RawMessage `json:"price"`
	ProductID *string         `json:"product_id"`
	ImageURL  *string         `json:"image_url"`
	Location  *string         `json:"location"`
	Unit      string          `json:"unit"`
	UnitPrice *float64        `json:"unit_price"`
}

// Fetch implements Source.
func (s *RemoteSource) Fetch(ctx context.Context, query, zip string) ([]Offer, error) {
	endpoint := fmt.Sprintf("%s/scrape/%s?%s", s.baseURL, url.PathEscape(string(s.store)), url.Values{
		"searchTerm": {query},
		"zipCode":    {zip},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build scrape request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", s.store, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape %s: status %d", s.store, resp.StatusCode)
	}

	var raw []remoteOffer
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode scrape response from %s: %w", s.store, err)
	}

	offers := make([]Offer, 0, len(raw))
	for _, r := range raw {
		name := r.Name
		if name == "" {
			name = r.Title
		}
		if name == "" {
			continue
		}

		price, ok := ParsePrice(parseRawPrice(r.Price))
		offer := Offer{
			ProductName: name,
			Price:       price,
			ProductID:   r.ProductID,
			ImageURL:    r.ImageURL,
			Location:    r.Location,
			Unit:        enums.CanonicalUnit(r.Unit),
		}
		if ok && r.UnitPrice != nil {
			if up, upOK := ParsePrice(*r.UnitPrice); upOK {
				offer.UnitPrice = &up
			}
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

// parseRawPrice accepts a JSON number or a currency string. Anything
// unparseable comes back as zero and the selector drops the offer.
func parseRawPrice(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err != nil {
		return 0
	}
	asString = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(asString), "$"))
	if idx := strings.IndexAny(asString, " /"); idx != -1 {
		asString = asString[:idx]
	}
	f, err := strconv.ParseFloat(asString, 64)
	if err != nil {
		return 0
	}
	return f
}

// NewRegistryFromConfig wires a RemoteSource for every configured store.
func NewRegistryFromConfig(cfg config.ScraperConfig, httpClient *http.Client) (*Registry, error) {
	registry := NewRegistry()
	for _, raw := range cfg.Stores {
		key, err := enums.ParseStoreKey(raw)
		if err != nil {
			return nil, fmt.Errorf("scraper config: %w", err)
		}
		source, err := NewRemoteSource(key, cfg.BaseURL, httpClient)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(key, source); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
