package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/example/storefront/modules/cache"
)

const feedCacheKey = "products:feed"

// FeedProduct is a product entry from the external catalog API.
type FeedProduct struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Image    string  `json:"image"`
}

// FeedConfig holds external product feed configuration.
type FeedConfig struct {
	BaseURL string
	Limit   int
	Timeout time.Duration
	TTL     time.Duration
}

// DefaultFeedConfig returns the default feed configuration.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		BaseURL: "https://fakestoreapi.com",
		Limit:   12,
		Timeout: 10 * time.Second,
		TTL:     15 * time.Minute,
	}
}

// FeedClient fetches products from the third-party catalog API, caching
// results so the upstream is not hit on every page view.
type FeedClient struct {
	config FeedConfig
	http   *http.Client
	cache  *cache.Cache
	group  singleflight.Group
}

// NewFeedClient creates a new FeedClient.
func NewFeedClient(config FeedConfig, c *cache.Cache) *FeedClient {
	return &FeedClient{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		cache:  c,
	}
}

// Fetch returns the external product feed, from cache when fresh.
func (f *FeedClient) Fetch(ctx context.Context) ([]FeedProduct, error) {
	var cached []FeedProduct
	found, err := f.cache.Get(ctx, feedCacheKey, &cached)
	if err != nil {
		log.Printf("[catalog] feed cache read failed: %v", err)
	}
	if found {
		return cached, nil
	}

	v, err, _ := f.group.Do(feedCacheKey, func() (interface{}, error) {
		products, err := f.fetchUpstream(ctx)
		if err != nil {
			return nil, err
		}
		if err := f.cache.SetWithTTL(ctx, feedCacheKey, products, f.config.TTL); err != nil {
			log.Printf("[catalog] feed cache write failed: %v", err)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]FeedProduct), nil
}

func (f *FeedClient) fetchUpstream(ctx context.Context) ([]FeedProduct, error) {
	url := fmt.Sprintf("%s/products?limit=%d", f.config.BaseURL, f.config.Limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed request failed: status %d", resp.StatusCode)
	}

	var products []FeedProduct
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}
	return products, nil
}
