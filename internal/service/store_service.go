package service

import (
	"context"
	"fmt"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/repository"

	"github.com/google/uuid"
)

// StoreService defines the interface for store business logic
type StoreService interface {
	List(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Store, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Store, error)
	Create(ctx context.Context, store *domain.Store) (*domain.Store, error)
	Update(ctx context.Context, id uuid.UUID, update domain.StoreUpdate) (*domain.Store, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type storeService struct {
	storeRepo repository.StoreRepository
}

// NewStoreService creates a new instance of StoreService
func NewStoreService(storeRepo repository.StoreRepository) StoreService {
	return &storeService{storeRepo: storeRepo}
}

// List retrieves stores with pagination
func (s *storeService) List(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Store, error) {
	return s.storeRepo.List(ctx, activeOnly, skip, limit)
}

// Get retrieves a store by ID
func (s *storeService) Get(ctx context.Context, id uuid.UUID) (*domain.Store, error) {
	store, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrStoreNotFound {
			return nil, &NotFoundError{Message: fmt.Sprintf("Store with id %s not found", id)}
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return store, nil
}

// Create registers a new store after checking the name is free
func (s *storeService) Create(ctx context.Context, store *domain.Store) (*domain.Store, error) {
	exists, err := s.storeRepo.NameExists(ctx, store.Name, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check store name: %w", err)
	}
	if exists {
		return nil, &ConflictError{Message: fmt.Sprintf("Store with name '%s' already exists", store.Name)}
	}

	store.ID = uuid.New()
	store.CreatedAt = time.Now()
	store.UpdatedAt = time.Now()

	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return store, nil
}

// Update applies a sparse update to a store
func (s *storeService) Update(ctx context.Context, id uuid.UUID, update domain.StoreUpdate) (*domain.Store, error) {
	current, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrStoreNotFound {
			return nil, &NotFoundError{Message: fmt.Sprintf("Store with id %s not found", id)}
		}
		return nil, fmt.Errorf("failed to get store: %w", err)
	}

	if update.Name.Set && update.Name.Value != current.Name {
		exists, err := s.storeRepo.NameExists(ctx, update.Name.Value, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check store name: %w", err)
		}
		if exists {
			return nil, &ConflictError{Message: fmt.Sprintf("Store with name '%s' already exists", update.Name.Value)}
		}
	}

	merged := update.Apply(*current)
	merged.UpdatedAt = time.Now()

	if err := s.storeRepo.Update(ctx, &merged); err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}

	return &merged, nil
}

// Delete removes a store unless offers still reference it
func (s *storeService) Delete(ctx context.Context, id uuid.UUID) error {
	store, err := s.storeRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrStoreNotFound {
			return &NotFoundError{Message: fmt.Sprintf("Store with id %s not found", id)}
		}
		return fmt.Errorf("failed to get store: %w", err)
	}

	offerCount, err := s.storeRepo.CountOffers(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count offers: %w", err)
	}
	if offerCount > 0 {
		return &DependencyConflictError{Message: fmt.Sprintf(
			"Cannot delete store '%s' because it has %d associated offer(s). Please deactivate it instead.",
			store.Name, offerCount,
		)}
	}

	if err := s.storeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}

	return nil
}
