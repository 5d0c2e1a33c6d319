package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"pricewatch/internal/domain"

	"github.com/google/uuid"
)

var ErrBrandNotFound = errors.New("brand not found")

// BrandFilter narrows brand listings. A Nil ManufacturerID matches all
// manufacturers.
type BrandFilter struct {
	Search         string
	ManufacturerID uuid.UUID
	ActiveOnly     bool
	Skip           int
	Limit          int
}

// BrandRepository defines the interface for brand data access
type BrandRepository interface {
	Create(ctx context.Context, brand *domain.Brand) error
	Update(ctx context.Context, brand *domain.Brand) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error)
	FindByNameILike(ctx context.Context, name string) (*domain.Brand, error)
	List(ctx context.Context, filter BrandFilter) ([]*domain.Brand, error)
	ListWithManufacturer(ctx context.Context, filter BrandFilter) ([]*domain.BrandWithManufacturer, error)
	NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
}

type brandRepository struct {
	db *sql.DB
}

// NewBrandRepository creates a new instance of BrandRepository
func NewBrandRepository(db *sql.DB) BrandRepository {
	return &brandRepository{db: db}
}

// Create inserts a new brand into the database using parameterized queries
func (r *brandRepository) Create(ctx context.Context, brand *domain.Brand) error {
	query := `
		INSERT INTO brands (id, manufacturer_id, name, logo_url, product_count, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		brand.ID,
		brand.ManufacturerID,
		brand.Name,
		brand.LogoURL,
		brand.ProductCount,
		brand.Active,
		brand.CreatedAt,
		brand.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create brand: %w", err)
	}

	return nil
}

// Update overwrites a brand's mutable fields. The product count is trigger
// maintained and never written here.
func (r *brandRepository) Update(ctx context.Context, brand *domain.Brand) error {
	query := `
		UPDATE brands
		SET manufacturer_id = $2, name = $3, logo_url = $4, active = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		brand.ID,
		brand.ManufacturerID,
		brand.Name,
		brand.LogoURL,
		brand.Active,
		brand.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update brand: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrBrandNotFound
	}

	return nil
}

// Delete removes a brand by ID
func (r *brandRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrBrandNotFound
	}

	return nil
}

// FindByID retrieves a brand by ID using parameterized queries
func (r *brandRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Brand, error) {
	query := `
		SELECT id, manufacturer_id, name, logo_url, product_count, active, created_at, updated_at
		FROM brands
		WHERE id = $1
	`

	brand := &domain.Brand{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&brand.ID,
		&brand.ManufacturerID,
		&brand.Name,
		&brand.LogoURL,
		&brand.ProductCount,
		&brand.Active,
		&brand.CreatedAt,
		&brand.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("failed to find brand by ID: %w", err)
	}

	return brand, nil
}

// FindByNameILike retrieves the first brand whose name contains the given
// text, case insensitively. Returns nil without error when nothing matches.
func (r *brandRepository) FindByNameILike(ctx context.Context, name string) (*domain.Brand, error) {
	query := `
		SELECT id, manufacturer_id, name, logo_url, product_count, active, created_at, updated_at
		FROM brands
		WHERE name ILIKE $1
		ORDER BY name ASC
		LIMIT 1
	`

	brand := &domain.Brand{}
	err := r.db.QueryRowContext(ctx, query, "%"+name+"%").Scan(
		&brand.ID,
		&brand.ManufacturerID,
		&brand.Name,
		&brand.LogoURL,
		&brand.ProductCount,
		&brand.Active,
		&brand.CreatedAt,
		&brand.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find brand by name: %w", err)
	}

	return brand, nil
}

// List retrieves brands matching the filter, ordered by name
func (r *brandRepository) List(ctx context.Context, filter BrandFilter) ([]*domain.Brand, error) {
	query := `
		SELECT id, manufacturer_id, name, logo_url, product_count, active, created_at, updated_at
		FROM brands
	`

	conditions, args := brandConditions(filter, "")
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d", len(args))
	args = append(args, filter.Skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	brands := []*domain.Brand{}
	for rows.Next() {
		brand := &domain.Brand{}
		err := rows.Scan(
			&brand.ID,
			&brand.ManufacturerID,
			&brand.Name,
			&brand.LogoURL,
			&brand.ProductCount,
			&brand.Active,
			&brand.CreatedAt,
			&brand.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, brand)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating brands: %w", err)
	}

	return brands, nil
}

// ListWithManufacturer retrieves brands joined with their manufacturer's name
// and country
func (r *brandRepository) ListWithManufacturer(ctx context.Context, filter BrandFilter) ([]*domain.BrandWithManufacturer, error) {
	query := `
		SELECT b.id, b.manufacturer_id, b.name, b.logo_url, b.product_count, b.active, b.created_at, b.updated_at,
		       m.name, m.country
		FROM brands b
		LEFT JOIN manufacturers m ON m.id = b.manufacturer_id
	`

	conditions, args := brandConditions(filter, "b.")
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY b.name ASC LIMIT $%d", len(args))
	args = append(args, filter.Skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands with manufacturers: %w", err)
	}
	defer rows.Close()

	brands := []*domain.BrandWithManufacturer{}
	for rows.Next() {
		b := &domain.BrandWithManufacturer{}
		err := rows.Scan(
			&b.ID,
			&b.ManufacturerID,
			&b.Name,
			&b.LogoURL,
			&b.ProductCount,
			&b.Active,
			&b.CreatedAt,
			&b.UpdatedAt,
			&b.ManufacturerName,
			&b.ManufacturerCountry,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating brands: %w", err)
	}

	return brands, nil
}

// NameExists reports whether another brand already uses the name
func (r *brandRepository) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM brands WHERE name = $1 AND id != $2)`,
		name,
		excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check brand name: %w", err)
	}
	return exists, nil
}

func brandConditions(filter BrandFilter, prefix string) ([]string, []any) {
	conditions := []string{}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("%sname ILIKE $%d", prefix, len(args)))
	}
	if filter.ManufacturerID != uuid.Nil {
		args = append(args, filter.ManufacturerID)
		conditions = append(conditions, fmt.Sprintf("%smanufacturer_id = $%d", prefix, len(args)))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, prefix+"active = TRUE")
	}

	return conditions, args
}
