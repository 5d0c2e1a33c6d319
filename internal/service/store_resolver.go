package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"pricewatch/internal/domain"
	"pricewatch/internal/repository"

	"go.uber.org/zap"
)

// baseURLPattern extracts the scheme://host prefix of a product URL.
var baseURLPattern = regexp.MustCompile(`^https?://[^/]+`)

// StoreResolver defines the interface for reconciling scraped retailer names
// to store rows.
type StoreResolver interface {
	FindOrCreate(ctx context.Context, name, productURL string) (*domain.Store, error)
}

type storeResolver struct {
	storeRepo repository.StoreRepository
	logger    *zap.Logger
}

// NewStoreResolver creates a new instance of StoreResolver
func NewStoreResolver(storeRepo repository.StoreRepository, logger *zap.Logger) StoreResolver {
	return &storeResolver{
		storeRepo: storeRepo,
		logger:    logger,
	}
}

// FindOrCreate resolves a retailer name to an existing store, creating an
// inactive one when nothing matches. The base URL is taken from the scraped
// product URL when it parses, otherwise derived from the name.
func (s *storeResolver) FindOrCreate(ctx context.Context, name, productURL string) (*domain.Store, error) {
	store, err := s.storeRepo.FindByFuzzyName(ctx, name)
	if err == nil {
		return store, nil
	}
	if err != repository.ErrStoreNotFound {
		return nil, fmt.Errorf("failed to resolve store: %w", err)
	}

	baseURL := baseURLPattern.FindString(productURL)
	if baseURL == "" {
		baseURL = "https://" + strings.ReplaceAll(strings.ToLower(name), " ", "") + ".cl"
	}

	store, err = s.storeRepo.Upsert(ctx, name, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	s.logger.Warn("Created store pending validation",
		zap.String("name", store.Name),
		zap.String("base_url", store.BaseURL),
	)

	return store, nil
}
