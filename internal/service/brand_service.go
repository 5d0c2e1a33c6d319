package service

import (
	"context"
	"fmt"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/repository"

	"github.com/google/uuid"
)

// BrandService defines the interface for brand business logic
type BrandService interface {
	List(ctx context.Context, filter repository.BrandFilter) ([]*domain.Brand, error)
	ListWithManufacturer(ctx context.Context, filter repository.BrandFilter) ([]*domain.BrandWithManufacturer, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Brand, error)
	Create(ctx context.Context, brand *domain.Brand) (*domain.Brand, error)
	Update(ctx context.Context, id uuid.UUID, update domain.BrandUpdate) (*domain.Brand, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type brandService struct {
	brandRepo        repository.BrandRepository
	manufacturerRepo repository.ManufacturerRepository
}

// NewBrandService creates a new instance of BrandService
func NewBrandService(
	brandRepo repository.BrandRepository,
	manufacturerRepo repository.ManufacturerRepository,
) BrandService {
	return &brandService{
		brandRepo:        brandRepo,
		manufacturerRepo: manufacturerRepo,
	}
}

// List retrieves brands matching the filter
func (s *brandService) List(ctx context.Context, filter repository.BrandFilter) ([]*domain.Brand, error) {
	return s.brandRepo.List(ctx, filter)
}

// ListWithManufacturer retrieves brands joined with their manufacturer names
func (s *brandService) ListWithManufacturer(ctx context.Context, filter repository.BrandFilter) ([]*domain.BrandWithManufacturer, error) {
	return s.brandRepo.ListWithManufacturer(ctx, filter)
}

// Get retrieves a brand by ID
func (s *brandService) Get(ctx context.Context, id uuid.UUID) (*domain.Brand, error) {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrBrandNotFound {
			return nil, &NotFoundError{Message: fmt.Sprintf("Brand with id %s not found", id)}
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return brand, nil
}

// Create registers a new brand, checking the name is free and the
// manufacturer, when given, exists
func (s *brandService) Create(ctx context.Context, brand *domain.Brand) (*domain.Brand, error) {
	exists, err := s.brandRepo.NameExists(ctx, brand.Name, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check brand name: %w", err)
	}
	if exists {
		return nil, &ConflictError{Message: fmt.Sprintf("Brand with name '%s' already exists", brand.Name)}
	}

	if brand.ManufacturerID != nil {
		if err := s.checkManufacturerExists(ctx, *brand.ManufacturerID); err != nil {
			return nil, err
		}
	}

	brand.ID = uuid.New()
	brand.ProductCount = 0
	brand.CreatedAt = time.Now()
	brand.UpdatedAt = time.Now()

	if err := s.brandRepo.Create(ctx, brand); err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}

	return brand, nil
}

// Update applies a sparse update to a brand
func (s *brandService) Update(ctx context.Context, id uuid.UUID, update domain.BrandUpdate) (*domain.Brand, error) {
	current, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrBrandNotFound {
			return nil, &NotFoundError{Message: fmt.Sprintf("Brand with id %s not found", id)}
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}

	if update.Name.Set && update.Name.Value != current.Name {
		exists, err := s.brandRepo.NameExists(ctx, update.Name.Value, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check brand name: %w", err)
		}
		if exists {
			return nil, &ConflictError{Message: fmt.Sprintf("Brand with name '%s' already exists", update.Name.Value)}
		}
	}

	if update.ManufacturerID.Set && update.ManufacturerID.Value != nil {
		if err := s.checkManufacturerExists(ctx, *update.ManufacturerID.Value); err != nil {
			return nil, err
		}
	}

	merged := update.Apply(*current)
	merged.UpdatedAt = time.Now()

	if err := s.brandRepo.Update(ctx, &merged); err != nil {
		return nil, fmt.Errorf("failed to update brand: %w", err)
	}

	return &merged, nil
}

// Delete removes a brand unless catalog products still reference it
func (s *brandService) Delete(ctx context.Context, id uuid.UUID) error {
	brand, err := s.brandRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrBrandNotFound {
			return &NotFoundError{Message: fmt.Sprintf("Brand with id %s not found", id)}
		}
		return fmt.Errorf("failed to get brand: %w", err)
	}

	if brand.ProductCount > 0 {
		return &DependencyConflictError{Message: fmt.Sprintf(
			"Cannot delete brand '%s' because it has %d associated products. Please deactivate it instead.",
			brand.Name, brand.ProductCount,
		)}
	}

	if err := s.brandRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}

	return nil
}

func (s *brandService) checkManufacturerExists(ctx context.Context, id uuid.UUID) error {
	_, err := s.manufacturerRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrManufacturerNotFound {
			return &NotFoundError{Message: fmt.Sprintf("Manufacturer with id %s not found", id)}
		}
		return fmt.Errorf("failed to check manufacturer: %w", err)
	}
	return nil
}
