// Package scraper is the HTTP client for the external scraping service.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"pricewatch/internal/config"
)

// Client talks to the scraping collaborator. Implementations must be safe for
// concurrent use.
type Client interface {
	// ScrapeRetailer looks a product up at a single retailer.
	ScrapeRetailer(ctx context.Context, retailer, productName string) (*RetailerResult, error)

	// ScrapeShopping looks a product up across all retailers in one call.
	ScrapeShopping(ctx context.Context, productName string) ([]RetailerResult, error)

	// ScrapeBrandCatalog fetches a brand's full product catalog.
	ScrapeBrandCatalog(ctx context.Context, brandQuery string) (*BrandCatalog, error)
}

// HTTPClient is the production Client. Outbound calls share a rate limiter so
// bursts of searches cannot hammer the scraper service, and every request
// carries a deadline.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	logger     *zap.Logger
}

// NewHTTPClient builds a client from the scraper configuration.
func NewHTTPClient(cfg config.ScraperConfig, logger *zap.Logger) *HTTPClient {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(
			rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)),
			cfg.RequestsPerMinute,
		)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{},
		limiter:    limiter,
		timeout:    timeout,
		logger:     logger,
	}
}

type scrapeRequest struct {
	ProductName string `json:"product_name"`
}

type catalogRequest struct {
	Brand string `json:"brand"`
}

func (c *HTTPClient) ScrapeRetailer(ctx context.Context, retailer, productName string) (*RetailerResult, error) {
	var result RetailerResult
	if err := c.post(ctx, "/scrape/"+retailer, scrapeRequest{ProductName: productName}, &result); err != nil {
		return nil, err
	}
	// Single-retailer responses omit the retailer field.
	if result.Retailer == "" {
		result.Retailer = retailer
	}
	return &result, nil
}

func (c *HTTPClient) ScrapeShopping(ctx context.Context, productName string) ([]RetailerResult, error) {
	var results []RetailerResult
	if err := c.post(ctx, "/scrape/shopping", scrapeRequest{ProductName: productName}, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *HTTPClient) ScrapeBrandCatalog(ctx context.Context, brandQuery string) (*BrandCatalog, error) {
	var catalog BrandCatalog
	if err := c.post(ctx, "/scrape/catalog", catalogRequest{Brand: brandQuery}, &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to pass scraper rate limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode scraper request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build scraper request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Calling scraper service", zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("scraper request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scraper returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode scraper response: %w", err)
	}
	return nil
}
