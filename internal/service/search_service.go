package service

import (
	"context"
	"fmt"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/metrics"
	"pricewatch/internal/pricing"
	"pricewatch/internal/repository"
	"pricewatch/internal/scraper"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SearchService defines the interface for product search business logic.
// A search resolves the query against the catalog and returns the stored
// offers; when the catalog entry has no offers yet, the stores are scraped
// synchronously and the fresh offers are returned.
type SearchService interface {
	Search(ctx context.Context, query string) (*domain.SearchResult, error)
	ListOffers(ctx context.Context, skip, limit int) ([]*domain.OfferView, error)
}

type searchService struct {
	catalogRepo repository.CatalogRepository
	offerRepo   repository.OfferRepository
	stores      StoreResolver
	scraper     scraper.Client
	currency    string
	logger      *zap.Logger
}

// NewSearchService creates a new instance of SearchService
func NewSearchService(
	catalogRepo repository.CatalogRepository,
	offerRepo repository.OfferRepository,
	stores StoreResolver,
	scraperClient scraper.Client,
	currency string,
	logger *zap.Logger,
) SearchService {
	return &searchService{
		catalogRepo: catalogRepo,
		offerRepo:   offerRepo,
		stores:      stores,
		scraper:     scraperClient,
		currency:    currency,
		logger:      logger,
	}
}

// Search resolves the query to a catalog product and returns its offers,
// scraping the stores first when none are recorded. A query that matches
// nothing returns an empty result echoing the query, not an error.
func (s *searchService) Search(ctx context.Context, query string) (*domain.SearchResult, error) {
	match, err := s.catalogRepo.ResolveByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve search query: %w", err)
	}

	if match == nil {
		return &domain.SearchResult{
			CatalogID:   uuid.Nil,
			CatalogName: query,
			Offers:      []*domain.OfferView{},
		}, nil
	}

	offers, err := s.offerRepo.ListByCatalogID(ctx, match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}

	wasScraped := false
	if len(offers) == 0 {
		if err := s.ingest(ctx, match); err != nil {
			return nil, err
		}
		wasScraped = true

		offers, err = s.offerRepo.ListByCatalogID(ctx, match.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list offers: %w", err)
		}
	}

	for _, offer := range offers {
		offer.CatalogName = &match.Name
	}

	return &domain.SearchResult{
		CatalogID:    match.ID,
		CatalogName:  match.Name,
		CatalogSKU:   match.SKU,
		BrandName:    match.BrandName,
		CategoryName: match.CategoryName,
		Offers:       offers,
		TotalStores:  len(offers),
		WasScraped:   wasScraped,
	}, nil
}

// ListOffers retrieves a page of every store's offers with catalog context
func (s *searchService) ListOffers(ctx context.Context, skip, limit int) ([]*domain.OfferView, error) {
	return s.offerRepo.ListAll(ctx, skip, limit)
}

// ingest scrapes every store for the matched product and records the found
// offers. Results without a parseable price are skipped rather than stored
// at zero.
func (s *searchService) ingest(ctx context.Context, match *domain.CatalogMatch) error {
	results, err := s.scraper.ScrapeShopping(ctx, match.Name)
	if err != nil {
		return &CollaboratorError{Op: "shopping", Err: err}
	}

	for _, result := range results {
		if !result.Found {
			continue
		}

		store, err := s.stores.FindOrCreate(ctx, result.Retailer, result.URL)
		if err != nil {
			return fmt.Errorf("failed to resolve store: %w", err)
		}

		price := pricing.Normalize(result.Price)
		if price.Sign() <= 0 {
			s.logger.Warn("Skipping offer with unparseable price",
				zap.String("retailer", result.Retailer),
				zap.String("raw_price", result.Price),
			)
			metrics.UnparseablePrices.Inc()
			continue
		}

		_, err = s.offerRepo.UpsertOfferWithPrice(ctx, repository.UpsertOfferParams{
			CatalogID: match.ID,
			StoreID:   store.ID,
			URL:       result.URL,
			Price:     price,
			Currency:  s.currency,
			InStock:   true,
			ScrapedAt: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to record offer: %w", err)
		}
		metrics.OffersUpserted.Inc()

		s.logger.Info("Recorded scraped offer",
			zap.String("product", match.Name),
			zap.String("store", store.Name),
			zap.String("price", price.String()),
		)
	}

	return nil
}
