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

var ErrManufacturerNotFound = errors.New("manufacturer not found")

// ManufacturerFilter narrows manufacturer listings.
type ManufacturerFilter struct {
	Search  string
	Country string
	Skip    int
	Limit   int
}

// ManufacturerRepository defines the interface for manufacturer data access
type ManufacturerRepository interface {
	Create(ctx context.Context, manufacturer *domain.Manufacturer) error
	Update(ctx context.Context, manufacturer *domain.Manufacturer) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Manufacturer, error)
	List(ctx context.Context, filter ManufacturerFilter) ([]*domain.Manufacturer, error)
	ListWithBrandCounts(ctx context.Context, filter ManufacturerFilter) ([]*domain.ManufacturerWithBrands, error)
	CountBrands(ctx context.Context, id uuid.UUID) (int, error)
	NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	TaxIDExists(ctx context.Context, taxID string, excludeID uuid.UUID) (bool, error)
}

type manufacturerRepository struct {
	db *sql.DB
}

// NewManufacturerRepository creates a new instance of ManufacturerRepository
func NewManufacturerRepository(db *sql.DB) ManufacturerRepository {
	return &manufacturerRepository{db: db}
}

// Create inserts a new manufacturer into the database using parameterized queries
func (r *manufacturerRepository) Create(ctx context.Context, manufacturer *domain.Manufacturer) error {
	query := `
		INSERT INTO manufacturers (id, name, tax_id, country, logo_url, website, main_business_line, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		manufacturer.ID,
		manufacturer.Name,
		manufacturer.TaxID,
		manufacturer.Country,
		manufacturer.LogoURL,
		manufacturer.Website,
		manufacturer.MainBusinessLine,
		manufacturer.CreatedAt,
		manufacturer.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create manufacturer: %w", err)
	}

	return nil
}

// Update overwrites a manufacturer's mutable fields
func (r *manufacturerRepository) Update(ctx context.Context, manufacturer *domain.Manufacturer) error {
	query := `
		UPDATE manufacturers
		SET name = $2, tax_id = $3, country = $4, logo_url = $5, website = $6, main_business_line = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		manufacturer.ID,
		manufacturer.Name,
		manufacturer.TaxID,
		manufacturer.Country,
		manufacturer.LogoURL,
		manufacturer.Website,
		manufacturer.MainBusinessLine,
		manufacturer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update manufacturer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrManufacturerNotFound
	}

	return nil
}

// Delete removes a manufacturer by ID
func (r *manufacturerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM manufacturers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete manufacturer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrManufacturerNotFound
	}

	return nil
}

// FindByID retrieves a manufacturer by ID using parameterized queries
func (r *manufacturerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Manufacturer, error) {
	query := `
		SELECT id, name, tax_id, country, logo_url, website, main_business_line, created_at, updated_at
		FROM manufacturers
		WHERE id = $1
	`

	manufacturer := &domain.Manufacturer{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&manufacturer.ID,
		&manufacturer.Name,
		&manufacturer.TaxID,
		&manufacturer.Country,
		&manufacturer.LogoURL,
		&manufacturer.Website,
		&manufacturer.MainBusinessLine,
		&manufacturer.CreatedAt,
		&manufacturer.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrManufacturerNotFound
		}
		return nil, fmt.Errorf("failed to find manufacturer by ID: %w", err)
	}

	return manufacturer, nil
}

// List retrieves manufacturers matching the filter, ordered by name
func (r *manufacturerRepository) List(ctx context.Context, filter ManufacturerFilter) ([]*domain.Manufacturer, error) {
	query := `
		SELECT id, name, tax_id, country, logo_url, website, main_business_line, created_at, updated_at
		FROM manufacturers
	`

	conditions := []string{}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.Country != "" {
		args = append(args, filter.Country)
		conditions = append(conditions, fmt.Sprintf("country = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d", len(args))
	args = append(args, filter.Skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list manufacturers: %w", err)
	}
	defer rows.Close()

	manufacturers := []*domain.Manufacturer{}
	for rows.Next() {
		manufacturer := &domain.Manufacturer{}
		err := rows.Scan(
			&manufacturer.ID,
			&manufacturer.Name,
			&manufacturer.TaxID,
			&manufacturer.Country,
			&manufacturer.LogoURL,
			&manufacturer.Website,
			&manufacturer.MainBusinessLine,
			&manufacturer.CreatedAt,
			&manufacturer.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan manufacturer: %w", err)
		}
		manufacturers = append(manufacturers, manufacturer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating manufacturers: %w", err)
	}

	return manufacturers, nil
}

// ListWithBrandCounts retrieves manufacturers with the number of brands that
// reference each one
func (r *manufacturerRepository) ListWithBrandCounts(ctx context.Context, filter ManufacturerFilter) ([]*domain.ManufacturerWithBrands, error) {
	query := `
		SELECT m.id, m.name, m.tax_id, m.country, m.logo_url, m.website, m.main_business_line, m.created_at, m.updated_at,
		       COUNT(b.id) AS brand_count
		FROM manufacturers m
		LEFT JOIN brands b ON b.manufacturer_id = m.id
	`

	conditions := []string{}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("m.name ILIKE $%d", len(args)))
	}
	if filter.Country != "" {
		args = append(args, filter.Country)
		conditions = append(conditions, fmt.Sprintf("m.country = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " GROUP BY m.id"

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY m.name ASC LIMIT $%d", len(args))
	args = append(args, filter.Skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list manufacturers with brand counts: %w", err)
	}
	defer rows.Close()

	manufacturers := []*domain.ManufacturerWithBrands{}
	for rows.Next() {
		m := &domain.ManufacturerWithBrands{}
		err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.TaxID,
			&m.Country,
			&m.LogoURL,
			&m.Website,
			&m.MainBusinessLine,
			&m.CreatedAt,
			&m.UpdatedAt,
			&m.BrandCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan manufacturer: %w", err)
		}
		manufacturers = append(manufacturers, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating manufacturers: %w", err)
	}

	return manufacturers, nil
}

// CountBrands returns how many brands reference the manufacturer
func (r *manufacturerRepository) CountBrands(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM brands WHERE manufacturer_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count brands: %w", err)
	}
	return count, nil
}

// NameExists reports whether another manufacturer already uses the name
func (r *manufacturerRepository) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM manufacturers WHERE name = $1 AND id != $2)`,
		name,
		excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check manufacturer name: %w", err)
	}
	return exists, nil
}

// TaxIDExists reports whether another manufacturer already uses the tax ID
func (r *manufacturerRepository) TaxIDExists(ctx context.Context, taxID string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM manufacturers WHERE tax_id = $1 AND id != $2)`,
		taxID,
		excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check manufacturer tax ID: %w", err)
	}
	return exists, nil
}
