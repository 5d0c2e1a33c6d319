package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pricewatch/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name or slug already exists")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
	FindByNameOrSlug(ctx context.Context, name, slug string) (*domain.Category, error)
	List(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Category, error)
	ListAll(ctx context.Context) ([]*domain.Category, error)
	CountChildren(ctx context.Context, id uuid.UUID) (int, error)
	NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a new category into the database using parameterized queries
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, description, parent_id, product_count, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.Name,
		category.Slug,
		category.Description,
		category.ParentID,
		category.ProductCount,
		category.Active,
		category.CreatedAt,
		category.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// Update overwrites a category's mutable fields. The product count is trigger
// maintained and never written here.
func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, parent_id = $5, active = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.Name,
		category.Slug,
		category.Description,
		category.ParentID,
		category.Active,
		category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to update category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// Delete removes a category by ID
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// FindByID retrieves a category by ID using parameterized queries
func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `
		SELECT id, name, slug, description, parent_id, product_count, active, created_at, updated_at
		FROM categories
		WHERE id = $1
	`

	return r.queryOne(ctx, query, id)
}

// FindBySlug retrieves a category by its slug
func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := `
		SELECT id, name, slug, description, parent_id, product_count, active, created_at, updated_at
		FROM categories
		WHERE slug = $1
	`

	return r.queryOne(ctx, query, slug)
}

// FindByNameOrSlug retrieves a category matching either the name (case
// insensitively) or the slug. Returns nil without error when nothing matches.
func (r *categoryRepository) FindByNameOrSlug(ctx context.Context, name, slug string) (*domain.Category, error) {
	query := `
		SELECT id, name, slug, description, parent_id, product_count, active, created_at, updated_at
		FROM categories
		WHERE LOWER(name) = LOWER($1) OR slug = $2
		LIMIT 1
	`

	category, err := r.queryOne(ctx, query, name, slug)
	if err == ErrCategoryNotFound {
		return nil, nil
	}
	return category, err
}

// List retrieves categories ordered by name
func (r *categoryRepository) List(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Category, error) {
	query := `
		SELECT id, name, slug, description, parent_id, product_count, active, created_at, updated_at
		FROM categories
	`
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY name ASC LIMIT $1 OFFSET $2"

	return r.queryMany(ctx, query, limit, skip)
}

// ListAll retrieves every category, ordered by name
func (r *categoryRepository) ListAll(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT id, name, slug, description, parent_id, product_count, active, created_at, updated_at
		FROM categories
		ORDER BY name ASC
	`

	return r.queryMany(ctx, query)
}

// CountChildren returns how many categories have this one as their parent
func (r *categoryRepository) CountChildren(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE parent_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count subcategories: %w", err)
	}
	return count, nil
}

// NameExists reports whether another category already uses the name
func (r *categoryRepository) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE LOWER(name) = LOWER($1) AND id != $2)`,
		name,
		excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return exists, nil
}

// SlugExists reports whether another category already uses the slug
func (r *categoryRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1 AND id != $2)`,
		slug,
		excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category slug: %w", err)
	}
	return exists, nil
}

func (r *categoryRepository) queryOne(ctx context.Context, query string, args ...any) (*domain.Category, error) {
	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.Description,
		&category.ParentID,
		&category.ProductCount,
		&category.Active,
		&category.CreatedAt,
		&category.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	return category, nil
}

func (r *categoryRepository) queryMany(ctx context.Context, query string, args ...any) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Slug,
			&category.Description,
			&category.ParentID,
			&category.ProductCount,
			&category.Active,
			&category.CreatedAt,
			&category.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}
