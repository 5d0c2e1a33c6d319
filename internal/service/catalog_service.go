package service

import (
	"context"
	"fmt"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/repository"
	"pricewatch/internal/scraper"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService defines the interface for catalog product business logic,
// including the brand catalog import that seeds the catalog from a
// retailer's brand listing.
type CatalogService interface {
	List(ctx context.Context, filter repository.CatalogFilter) ([]*domain.CatalogProduct, error)
	ListWithDetails(ctx context.Context, filter repository.CatalogFilter) ([]*domain.CatalogProductWithDetails, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.CatalogProduct, error)
	Create(ctx context.Context, product *domain.CatalogProduct) (*domain.CatalogProduct, error)
	Update(ctx context.Context, id uuid.UUID, update domain.CatalogProductUpdate) (*domain.CatalogProduct, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ImportBrandCatalog(ctx context.Context, brandQuery string, createProducts bool) (*domain.BrandImportResult, error)
}

type catalogService struct {
	catalogRepo  repository.CatalogRepository
	brandRepo    repository.BrandRepository
	categoryRepo repository.CategoryRepository
	classifier   CategoryClassifier
	scraper      scraper.Client
	logger       *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	catalogRepo repository.CatalogRepository,
	brandRepo repository.BrandRepository,
	categoryRepo repository.CategoryRepository,
	classifier CategoryClassifier,
	scraperClient scraper.Client,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		catalogRepo:  catalogRepo,
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
		classifier:   classifier,
		scraper:      scraperClient,
		logger:       logger,
	}
}

// List retrieves catalog products matching the filter
func (s *catalogService) List(ctx context.Context, filter repository.CatalogFilter) ([]*domain.CatalogProduct, error) {
	return s.catalogRepo.List(ctx, filter)
}

// ListWithDetails retrieves catalog products joined with brand and category
// names
func (s *catalogService) ListWithDetails(ctx context.Context, filter repository.CatalogFilter) ([]*domain.CatalogProductWithDetails, error) {
	return s.catalogRepo.ListWithDetails(ctx, filter)
}

// Get retrieves a catalog product by ID
func (s *catalogService) Get(ctx context.Context, id uuid.UUID) (*domain.CatalogProduct, error) {
	product, err := s.catalogRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrCatalogProductNotFound {
			return nil, &NotFoundError{Message: fmt.Sprintf("Product with id %s not found", id)}
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// Create registers a new catalog product, checking SKU uniqueness and that
// the referenced brand and category exist
func (s *catalogService) Create(ctx context.Context, product *domain.CatalogProduct) (*domain.CatalogProduct, error) {
	if product.SKU != nil {
		exists, err := s.catalogRepo.SKUExists(ctx, *product.SKU, uuid.Nil)
		if err != nil {
			return nil, fmt.Errorf("failed to check product SKU: %w", err)
		}
		if exists {
			return nil, &ConflictError{Message: fmt.Sprintf("Product with SKU '%s' already exists", *product.SKU)}
		}
	}

	if product.BrandID != nil {
		if err := s.checkBrandExists(ctx, *product.BrandID); err != nil {
			return nil, err
		}
	}
	if product.CategoryID != nil {
		if err := s.checkCategoryExists(ctx, *product.CategoryID); err != nil {
			return nil, err
		}
	}

	product.ID = uuid.New()
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	if err := s.catalogRepo.Create(ctx, product); err != nil {
		if err == repository.ErrDuplicateSKU {
			return nil, &ConflictError{Message: fmt.Sprintf("Product with SKU '%s' already exists", *product.SKU)}
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// Update applies a sparse update to a catalog product
func (s *catalogService) Update(ctx context.Context, id uuid.UUID, update domain.CatalogProductUpdate) (*domain.CatalogProduct, error) {
	current, err := s.catalogRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrCatalogProductNotFound {
			return nil, &NotFoundError{Message: fmt.Sprintf("Product with id %s not found", id)}
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if update.SKU.Set && update.SKU.Value != nil {
		sku := *update.SKU.Value
		if current.SKU == nil || sku != *current.SKU {
			exists, err := s.catalogRepo.SKUExists(ctx, sku, id)
			if err != nil {
				return nil, fmt.Errorf("failed to check product SKU: %w", err)
			}
			if exists {
				return nil, &ConflictError{Message: fmt.Sprintf("Product with SKU '%s' already exists", sku)}
			}
		}
	}

	if update.BrandID.Set && update.BrandID.Value != nil {
		if err := s.checkBrandExists(ctx, *update.BrandID.Value); err != nil {
			return nil, err
		}
	}
	if update.CategoryID.Set && update.CategoryID.Value != nil {
		if err := s.checkCategoryExists(ctx, *update.CategoryID.Value); err != nil {
			return nil, err
		}
	}

	merged := update.Apply(*current)
	merged.UpdatedAt = time.Now()

	if err := s.catalogRepo.Update(ctx, &merged); err != nil {
		if err == repository.ErrDuplicateSKU {
			return nil, &ConflictError{Message: fmt.Sprintf("Product with SKU '%s' already exists", *merged.SKU)}
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &merged, nil
}

// Delete removes a catalog product unless store offers still reference it
func (s *catalogService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.catalogRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrCatalogProductNotFound {
			return &NotFoundError{Message: fmt.Sprintf("Product with id %s not found", id)}
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	offerCount, err := s.catalogRepo.CountOffers(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count offers: %w", err)
	}
	if offerCount > 0 {
		return &DependencyConflictError{Message: fmt.Sprintf(
			"Cannot delete product '%s' because it has %d associated store offer(s). Please deactivate it instead.",
			product.Name, offerCount,
		)}
	}

	if err := s.catalogRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

// ImportBrandCatalog scrapes a retailer's brand listing and, when
// createProducts is set, inserts the products that are not yet in the
// catalog. Products are classified into categories as they are created.
// The brand is matched loosely by name; when it is unknown the products are
// created without a brand.
func (s *catalogService) ImportBrandCatalog(ctx context.Context, brandQuery string, createProducts bool) (*domain.BrandImportResult, error) {
	catalog, err := s.scraper.ScrapeBrandCatalog(ctx, brandQuery)
	if err != nil {
		return nil, &CollaboratorError{Op: "brand catalog", Err: err}
	}

	result := &domain.BrandImportResult{
		Status:          catalog.Status,
		Total:           len(catalog.Products),
		CreatedProducts: []domain.ImportedProduct{},
	}

	if catalog.Status != "success" || !createProducts || len(catalog.Products) == 0 {
		return result, nil
	}

	brand, err := s.brandRepo.FindByNameILike(ctx, brandQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve brand: %w", err)
	}

	var brandID *uuid.UUID
	if brand != nil {
		brandID = &brand.ID
	} else {
		s.logger.Info("Brand not found, products will be created without a brand",
			zap.String("brand_query", brandQuery),
		)
	}

	for _, item := range catalog.Products {
		exists, err := s.catalogRepo.NameExists(ctx, item.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check product name: %w", err)
		}
		if exists {
			result.SkippedCount++
			continue
		}

		categoryID, err := s.classifier.ResolveCategory(ctx, item.Name, brandID)
		if err != nil {
			return nil, fmt.Errorf("failed to classify product: %w", err)
		}

		sku := "JUMBO-" + item.JumboID
		product := &domain.CatalogProduct{
			ID:         uuid.New(),
			Name:       item.Name,
			SKU:        &sku,
			BrandID:    brandID,
			CategoryID: categoryID,
			Attributes: map[string]any{
				"jumbo_id":    item.JumboID,
				"jumbo_url":   item.URL,
				"jumbo_price": item.Price,
				"source":      "jumbo_scraper",
			},
			Active:    true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if item.ImageURL != "" {
			product.ImageURL = &item.ImageURL
		}

		if err := s.catalogRepo.Create(ctx, product); err != nil {
			if err == repository.ErrDuplicateSKU {
				// Same retailer ID under a different name; nothing to add
				result.SkippedCount++
				continue
			}
			return nil, fmt.Errorf("failed to create product: %w", err)
		}

		result.CreatedCount++
		result.CreatedProducts = append(result.CreatedProducts, domain.ImportedProduct{
			Name:     item.Name,
			SKU:      sku,
			Category: s.categoryName(ctx, categoryID),
		})

		s.logger.Info("Imported catalog product",
			zap.String("name", item.Name),
			zap.String("sku", sku),
		)
	}

	return result, nil
}

func (s *catalogService) checkBrandExists(ctx context.Context, id uuid.UUID) error {
	_, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrBrandNotFound {
			return &NotFoundError{Message: fmt.Sprintf("Brand with id %s not found", id)}
		}
		return fmt.Errorf("failed to check brand: %w", err)
	}
	return nil
}

func (s *catalogService) checkCategoryExists(ctx context.Context, id uuid.UUID) error {
	_, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			return &NotFoundError{Message: fmt.Sprintf("Category with id %s not found", id)}
		}
		return fmt.Errorf("failed to check category: %w", err)
	}
	return nil
}

// categoryName looks up the name for an import summary entry. Lookup
// failures degrade to an unnamed category rather than failing the import.
func (s *catalogService) categoryName(ctx context.Context, id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	category, err := s.categoryRepo.FindByID(ctx, *id)
	if err != nil {
		return nil
	}
	return &category.Name
}
