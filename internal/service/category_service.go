package service

import (
	"context"
	"fmt"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/repository"

	"github.com/google/uuid"
)

// CategoryService defines the interface for category business logic
type CategoryService interface {
	List(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Category, error)
	Tree(ctx context.Context) ([]*domain.CategoryNode, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, id uuid.UUID, update domain.CategoryUpdate) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

// List retrieves categories with pagination
func (s *categoryService) List(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx, activeOnly, skip, limit)
}

// Tree retrieves the full taxonomy as a forest of root categories with
// nested children
func (s *categoryService) Tree(ctx context.Context) ([]*domain.CategoryNode, error) {
	categories, err := s.categoryRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	nodes := make(map[uuid.UUID]*domain.CategoryNode, len(categories))
	for _, category := range categories {
		nodes[category.ID] = &domain.CategoryNode{
			Category: *category,
			Children: []*domain.CategoryNode{},
		}
	}

	roots := []*domain.CategoryNode{}
	for _, category := range categories {
		node := nodes[category.ID]
		if category.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*category.ParentID]
		if !ok {
			// Orphaned by a deleted parent; surface at the root
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots, nil
}

// Get retrieves a category by ID
func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			return nil, &NotFoundError{Message: fmt.Sprintf("Category with id %s not found", id)}
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// Create registers a new category. The slug is derived from the name when
// not provided.
func (s *categoryService) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.Slug == "" {
		category.Slug = domain.Slugify(category.Name)
	}

	exists, err := s.categoryRepo.SlugExists(ctx, category.Slug, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check category slug: %w", err)
	}
	if exists {
		return nil, &ConflictError{Message: fmt.Sprintf("Category with slug '%s' already exists", category.Slug)}
	}

	if category.ParentID != nil {
		if err := s.checkParentExists(ctx, *category.ParentID); err != nil {
			return nil, err
		}
	}

	category.ID = uuid.New()
	category.ProductCount = 0
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if err == repository.ErrCategoryAlreadyExists {
			return nil, &ConflictError{Message: "Category with this name or slug already exists"}
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// Update applies a sparse update to a category, rejecting parent assignments
// that would introduce a cycle
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, update domain.CategoryUpdate) (*domain.Category, error) {
	current, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			return nil, &NotFoundError{Message: fmt.Sprintf("Category with id %s not found", id)}
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if update.Slug.Set && update.Slug.Value != current.Slug {
		exists, err := s.categoryRepo.SlugExists(ctx, update.Slug.Value, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check category slug: %w", err)
		}
		if exists {
			return nil, &ConflictError{Message: fmt.Sprintf("Category with slug '%s' already exists", update.Slug.Value)}
		}
	}

	if update.ParentID.Set && update.ParentID.Value != nil {
		parentID := *update.ParentID.Value
		if parentID == id {
			return nil, &ConflictError{Message: "Category cannot be its own parent"}
		}
		if err := s.checkParentExists(ctx, parentID); err != nil {
			return nil, err
		}
		descendant, err := s.isDescendantOf(ctx, parentID, id)
		if err != nil {
			return nil, err
		}
		if descendant {
			return nil, &ConflictError{Message: "Category cannot be moved under one of its own descendants"}
		}
	}

	merged := update.Apply(*current)
	merged.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, &merged); err != nil {
		if err == repository.ErrCategoryAlreadyExists {
			return nil, &ConflictError{Message: "Category with this name or slug already exists"}
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return &merged, nil
}

// Delete removes a category unless subcategories still hang off it
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if err == repository.ErrCategoryNotFound {
			return &NotFoundError{Message: fmt.Sprintf("Category with id %s not found", id)}
		}
		return fmt.Errorf("failed to get category: %w", err)
	}

	childrenCount, err := s.categoryRepo.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count subcategories: %w", err)
	}
	if childrenCount > 0 {
		return &DependencyConflictError{Message: fmt.Sprintf(
			"Cannot delete category with %d subcategories. Delete or reassign them first.",
			childrenCount,
		)}
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}

func (s *categoryService) checkParentExists(ctx context.Context, parentID uuid.UUID) error {
	_, err := s.categoryRepo.FindByID(ctx, parentID)
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			return &NotFoundError{Message: fmt.Sprintf("Parent category with id %s not found", parentID)}
		}
		return fmt.Errorf("failed to check parent category: %w", err)
	}
	return nil
}

// isDescendantOf walks the ancestor chain of candidate looking for target.
// The chain is acyclic by construction, so the walk terminates.
func (s *categoryService) isDescendantOf(ctx context.Context, candidate, target uuid.UUID) (bool, error) {
	currentID := candidate
	for {
		category, err := s.categoryRepo.FindByID(ctx, currentID)
		if err != nil {
			if err == repository.ErrCategoryNotFound {
				return false, nil
			}
			return false, fmt.Errorf("failed to walk category ancestors: %w", err)
		}
		if category.ParentID == nil {
			return false, nil
		}
		if *category.ParentID == target {
			return true, nil
		}
		currentID = *category.ParentID
	}
}
