// pkg/pubsub/client.go
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jordanblake/cartcompass-backend/pkg/config"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
)

// Client publishes price-observation events. The pipeline treats publishing
// as best-effort: a failed publish is logged and dropped, never surfaced to
// the request that produced the observation.
type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig
}

var errProjectIDRequired = errors.New("gcp project id is required")

// NewClient creates a Pub/Sub v2 client for the price-observation topic.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}

	psClient, err := pubsub.NewClient(ctx, gcp.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{
		client:    psClient,
		projectID: gcp.ProjectID,
		cfg:       cfg,
	}

	if logg != nil {
		logg.Info(ctx, "pubsub client initialized")
	}

	return c, nil
}

// PriceObservedEvent is the payload published after a ledger append.
type PriceObservedEvent struct {
	IngredientID string    `json:"ingredient_id"`
	StoreKey     string    `json:"store_key"`
	ZipCode      string    `json:"zip_code,omitempty"`
	ProductName  string    `json:"product_name"`
	Price        string    `json:"price"`
	ObservedAt   time.Time `json:"observed_at"`
}

// PublishPriceObserved emits one observation event on the configured topic.
func (c *Client) PublishPriceObserved(ctx context.Context, event PriceObservedEvent) error {
	if c == nil || c.client == nil {
		return errors.New("pubsub client not initialized")
	}
	publisher := c.Publisher(c.cfg.PriceTopic)
	if publisher == nil {
		return fmt.Errorf("price topic %q not configured", c.cfg.PriceTopic)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal price event: %w", err)
	}

	result := publisher.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type": "price.observed",
			"store_key":  event.StoreKey,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("price topic %q does not exist: %w", c.cfg.PriceTopic, err)
		}
		return fmt.Errorf("publish price event: %w", err)
	}
	return nil
}

// Publisher returns a publisher handle for the given topic ID/resource name.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	fullName := c.topicResourceName(name)
	if fullName == "" {
		return nil
	}
	return c.client.Publisher(fullName)
}

// Close releases the Pub/Sub client resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) topicResourceName(name string) string {
	if c == nil {
		return ""
	}
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/topics/") {
		return n
	}
	p := strings.TrimSpace(c.projectID)
	if p == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/topics/%s", p, n)
}
