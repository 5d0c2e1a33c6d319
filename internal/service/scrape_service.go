package service

import (
	"context"
	"sync"

	"pricewatch/internal/metrics"
	"pricewatch/internal/scraper"

	"go.uber.org/zap"
)

// retailerDisplayNames maps scraper retailer keys to the names shown in API
// responses.
var retailerDisplayNames = map[string]string{
	"jumbo":       "Jumbo",
	"santaisabel": "Santa Isabel",
	"lider":       "Líder",
}

func retailerDisplayName(key string) string {
	if name, ok := retailerDisplayNames[key]; ok {
		return name
	}
	return key
}

// ScrapeService defines the interface for on-demand scraping business logic
type ScrapeService interface {
	// ScrapeAll queries every configured retailer concurrently. A retailer
	// that fails becomes an error entry in the result, never a failed call.
	ScrapeAll(ctx context.Context, productName string) []scraper.RetailerResult

	// ScrapeOne queries a single retailer.
	ScrapeOne(ctx context.Context, retailer, productName string) (*scraper.RetailerResult, error)

	// ScrapeShopping queries the aggregated shopping endpoint.
	ScrapeShopping(ctx context.Context, productName string) ([]scraper.RetailerResult, error)
}

type scrapeService struct {
	scraper   scraper.Client
	retailers []string
	logger    *zap.Logger
}

// NewScrapeService creates a new instance of ScrapeService
func NewScrapeService(scraperClient scraper.Client, retailers []string, logger *zap.Logger) ScrapeService {
	return &scrapeService{
		scraper:   scraperClient,
		retailers: retailers,
		logger:    logger,
	}
}

// ScrapeAll fans out to every configured retailer and collects the results
// in configuration order
func (s *scrapeService) ScrapeAll(ctx context.Context, productName string) []scraper.RetailerResult {
	results := make([]scraper.RetailerResult, len(s.retailers))

	var wg sync.WaitGroup
	for i, retailer := range s.retailers {
		wg.Add(1)
		go func(i int, retailer string) {
			defer wg.Done()

			result, err := s.scraper.ScrapeRetailer(ctx, retailer, productName)
			if err != nil {
				s.logger.Warn("Retailer scrape failed",
					zap.String("retailer", retailer),
					zap.Error(err),
				)
				metrics.ScrapeAttempts.WithLabelValues(retailer, "error").Inc()
				results[i] = scraper.RetailerResult{
					Retailer: retailerDisplayName(retailer),
					Name:     "Error",
					Price:    "Error",
					SKU:      "Error",
					Found:    false,
				}
				return
			}

			metrics.ScrapeAttempts.WithLabelValues(retailer, "success").Inc()
			if result.Retailer == retailer {
				result.Retailer = retailerDisplayName(retailer)
			}
			results[i] = *result
		}(i, retailer)
	}
	wg.Wait()

	return results
}

// ScrapeOne queries a single retailer for the product
func (s *scrapeService) ScrapeOne(ctx context.Context, retailer, productName string) (*scraper.RetailerResult, error) {
	result, err := s.scraper.ScrapeRetailer(ctx, retailer, productName)
	if err != nil {
		metrics.ScrapeAttempts.WithLabelValues(retailer, "error").Inc()
		return nil, &CollaboratorError{Op: retailer, Err: err}
	}

	metrics.ScrapeAttempts.WithLabelValues(retailer, "success").Inc()
	return result, nil
}

// ScrapeShopping queries the aggregated shopping endpoint for the product
func (s *scrapeService) ScrapeShopping(ctx context.Context, productName string) ([]scraper.RetailerResult, error) {
	results, err := s.scraper.ScrapeShopping(ctx, productName)
	if err != nil {
		metrics.ScrapeAttempts.WithLabelValues("shopping", "error").Inc()
		return nil, &CollaboratorError{Op: "shopping", Err: err}
	}

	metrics.ScrapeAttempts.WithLabelValues("shopping", "success").Inc()
	return results, nil
}
