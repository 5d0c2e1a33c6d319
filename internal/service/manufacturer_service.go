package service

import (
	"context"
	"fmt"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/repository"

	"github.com/google/uuid"
)

// ManufacturerService defines the interface for manufacturer business logic
type ManufacturerService interface {
	List(ctx context.Context, filter repository.ManufacturerFilter) ([]*domain.Manufacturer, error)
	ListWithBrandCounts(ctx context.Context, filter repository.ManufacturerFilter) ([]*domain.ManufacturerWithBrands, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Manufacturer, error)
	Create(ctx context.Context, manufacturer *domain.Manufacturer) (*domain.Manufacturer, error)
	Update(ctx context.Context, id uuid.UUID, update domain.ManufacturerUpdate) (*domain.Manufacturer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type manufacturerService struct {
	manufacturerRepo repository.ManufacturerRepository
}

// NewManufacturerService creates a new instance of ManufacturerService
func NewManufacturerService(manufacturerRepo repository.ManufacturerRepository) ManufacturerService {
	return &manufacturerService{manufacturerRepo: manufacturerRepo}
}

// List retrieves manufacturers matching the filter
func (s *manufacturerService) List(ctx context.Context, filter repository.ManufacturerFilter) ([]*domain.Manufacturer, error) {
	return s.manufacturerRepo.List(ctx, filter)
}

// ListWithBrandCounts retrieves manufacturers with their brand counts
func (s *manufacturerService) ListWithBrandCounts(ctx context.Context, filter repository.ManufacturerFilter) ([]*domain.ManufacturerWithBrands, error) {
	return s.manufacturerRepo.ListWithBrandCounts(ctx, filter)
}

// Get retrieves a manufacturer by ID
func (s *manufacturerService) Get(ctx context.Context, id uuid.UUID) (*domain.Manufacturer, error) {
	manufacturer, err := s.manufacturerRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrManufacturerNotFound {
			return nil, &NotFoundError{Message: fmt.Sprintf("Manufacturer with id %s not found", id)}
		}
		return nil, fmt.Errorf("failed to get manufacturer: %w", err)
	}
	return manufacturer, nil
}

// Create registers a new manufacturer after checking name and tax ID
// uniqueness
func (s *manufacturerService) Create(ctx context.Context, manufacturer *domain.Manufacturer) (*domain.Manufacturer, error) {
	exists, err := s.manufacturerRepo.NameExists(ctx, manufacturer.Name, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check manufacturer name: %w", err)
	}
	if exists {
		return nil, &ConflictError{Message: fmt.Sprintf("Manufacturer with name '%s' already exists", manufacturer.Name)}
	}

	if manufacturer.TaxID != nil {
		exists, err := s.manufacturerRepo.TaxIDExists(ctx, *manufacturer.TaxID, uuid.Nil)
		if err != nil {
			return nil, fmt.Errorf("failed to check manufacturer tax ID: %w", err)
		}
		if exists {
			return nil, &ConflictError{Message: fmt.Sprintf("Manufacturer with tax ID '%s' already exists", *manufacturer.TaxID)}
		}
	}

	manufacturer.ID = uuid.New()
	manufacturer.CreatedAt = time.Now()
	manufacturer.UpdatedAt = time.Now()

	if err := s.manufacturerRepo.Create(ctx, manufacturer); err != nil {
		return nil, fmt.Errorf("failed to create manufacturer: %w", err)
	}

	return manufacturer, nil
}

// Update applies a sparse update to a manufacturer
func (s *manufacturerService) Update(ctx context.Context, id uuid.UUID, update domain.ManufacturerUpdate) (*domain.Manufacturer, error) {
	current, err := s.manufacturerRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrManufacturerNotFound {
			return nil, &NotFoundError{Message: fmt.Sprintf("Manufacturer with id %s not found", id)}
		}
		return nil, fmt.Errorf("failed to get manufacturer: %w", err)
	}

	if update.Name.Set && update.Name.Value != current.Name {
		exists, err := s.manufacturerRepo.NameExists(ctx, update.Name.Value, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check manufacturer name: %w", err)
		}
		if exists {
			return nil, &ConflictError{Message: fmt.Sprintf("Manufacturer with name '%s' already exists", update.Name.Value)}
		}
	}

	if update.TaxID.Set && update.TaxID.Value != nil {
		exists, err := s.manufacturerRepo.TaxIDExists(ctx, *update.TaxID.Value, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check manufacturer tax ID: %w", err)
		}
		if exists {
			return nil, &ConflictError{Message: fmt.Sprintf("Manufacturer with tax ID '%s' already exists", *update.TaxID.Value)}
		}
	}

	merged := update.Apply(*current)
	merged.UpdatedAt = time.Now()

	if err := s.manufacturerRepo.Update(ctx, &merged); err != nil {
		return nil, fmt.Errorf("failed to update manufacturer: %w", err)
	}

	return &merged, nil
}

// Delete removes a manufacturer unless brands still reference it
func (s *manufacturerService) Delete(ctx context.Context, id uuid.UUID) error {
	manufacturer, err := s.manufacturerRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrManufacturerNotFound {
			return &NotFoundError{Message: fmt.Sprintf("Manufacturer with id %s not found", id)}
		}
		return fmt.Errorf("failed to get manufacturer: %w", err)
	}

	brandCount, err := s.manufacturerRepo.CountBrands(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count brands: %w", err)
	}
	if brandCount > 0 {
		return &DependencyConflictError{Message: fmt.Sprintf(
			"Cannot delete manufacturer '%s' because it has %d associated brand(s). Please remove or reassign the brands first.",
			manufacturer.Name, brandCount,
		)}
	}

	if err := s.manufacturerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete manufacturer: %w", err)
	}

	return nil
}
