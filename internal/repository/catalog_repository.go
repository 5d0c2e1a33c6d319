package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pricewatch/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCatalogProductNotFound = errors.New("catalog product not found")
	ErrDuplicateSKU           = errors.New("catalog product with this SKU already exists")
)

// CatalogFilter narrows catalog listings. Search matches product names and
// SKUs. Nil UUIDs match everything.
type CatalogFilter struct {
	Search     string
	BrandID    uuid.UUID
	CategoryID uuid.UUID
	ActiveOnly bool
	Skip       int
	Limit      int
}

// CatalogRepository defines the interface for catalog product data access
type CatalogRepository interface {
	Create(ctx context.Context, product *domain.CatalogProduct) error
	Update(ctx context.Context, product *domain.CatalogProduct) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.CatalogProduct, error)
	List(ctx context.Context, filter CatalogFilter) ([]*domain.CatalogProduct, error)
	ListWithDetails(ctx context.Context, filter CatalogFilter) ([]*domain.CatalogProductWithDetails, error)
	ResolveByName(ctx context.Context, query string) (*domain.CatalogMatch, error)
	FindFirstByBrandAndPrefix(ctx context.Context, brandID uuid.UUID, prefix string) (*domain.CatalogProduct, error)
	NameExists(ctx context.Context, name string) (bool, error)
	SKUExists(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error)
	CountOffers(ctx context.Context, id uuid.UUID) (int, error)
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// Create inserts a new catalog product into the database using parameterized
// queries
func (r *catalogRepository) Create(ctx context.Context, product *domain.CatalogProduct) error {
	attrs, err := marshalAttributes(product.Attributes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products_catalog (id, name, sku, brand_id, category_id, attributes, image_url, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.SKU,
		product.BrandID,
		product.CategoryID,
		attrs,
		product.ImageURL,
		product.Active,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to create catalog product: %w", err)
	}

	return nil
}

// Update overwrites a catalog product's mutable fields
func (r *catalogRepository) Update(ctx context.Context, product *domain.CatalogProduct) error {
	attrs, err := marshalAttributes(product.Attributes)
	if err != nil {
		return err
	}

	query := `
		UPDATE products_catalog
		SET name = $2, sku = $3, brand_id = $4, category_id = $5, attributes = $6, image_url = $7, active = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.SKU,
		product.BrandID,
		product.CategoryID,
		attrs,
		product.ImageURL,
		product.Active,
		product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to update catalog product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrCatalogProductNotFound
	}

	return nil
}

// Delete removes a catalog product by ID
func (r *catalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products_catalog WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete catalog product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrCatalogProductNotFound
	}

	return nil
}

// FindByID retrieves a catalog product by ID using parameterized queries
func (r *catalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.CatalogProduct, error) {
	query := `
		SELECT id, name, sku, brand_id, category_id, attributes, image_url, active, created_at, updated_at
		FROM products_catalog
		WHERE id = $1
	`

	product, err := scanCatalogProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCatalogProductNotFound
		}
		return nil, fmt.Errorf("failed to find catalog product by ID: %w", err)
	}

	return product, nil
}

// List retrieves catalog products matching the filter, ordered by name
func (r *catalogRepository) List(ctx context.Context, filter CatalogFilter) ([]*domain.CatalogProduct, error) {
	query := `
		SELECT id, name, sku, brand_id, category_id, attributes, image_url, active, created_at, updated_at
		FROM products_catalog
	`

	conditions, args := catalogConditions(filter, "")
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY name ASC LIMIT $%d", len(args))
	args = append(args, filter.Skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog products: %w", err)
	}
	defer rows.Close()

	products := []*domain.CatalogProduct{}
	for rows.Next() {
		product, err := scanCatalogProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog products: %w", err)
	}

	return products, nil
}

// ListWithDetails retrieves catalog products joined with their brand and
// category names
func (r *catalogRepository) ListWithDetails(ctx context.Context, filter CatalogFilter) ([]*domain.CatalogProductWithDetails, error) {
	query := `
		SELECT pc.id, pc.name, pc.sku, pc.brand_id, pc.category_id, pc.attributes, pc.image_url, pc.active, pc.created_at, pc.updated_at,
		       b.name, c.name
		FROM products_catalog pc
		LEFT JOIN brands b ON b.id = pc.brand_id
		LEFT JOIN categories c ON c.id = pc.category_id
	`

	conditions, args := catalogConditions(filter, "pc.")
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY pc.name ASC LIMIT $%d", len(args))
	args = append(args, filter.Skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog products with details: %w", err)
	}
	defer rows.Close()

	products := []*domain.CatalogProductWithDetails{}
	for rows.Next() {
		p := &domain.CatalogProductWithDetails{}
		var attrs []byte
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.SKU,
			&p.BrandID,
			&p.CategoryID,
			&attrs,
			&p.ImageURL,
			&p.Active,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.BrandName,
			&p.CategoryName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog product: %w", err)
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &p.Attributes); err != nil {
				return nil, fmt.Errorf("failed to decode product attributes: %w", err)
			}
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog products: %w", err)
	}

	return products, nil
}

// ResolveByName finds the active catalog product most similar to the search
// text, using trigram similarity above 0.3. Returns nil without error when
// nothing matches.
func (r *catalogRepository) ResolveByName(ctx context.Context, search string) (*domain.CatalogMatch, error) {
	query := `
		SELECT pc.id, pc.name, pc.sku, pc.brand_id, b.name, pc.category_id, c.name
		FROM products_catalog pc
		LEFT JOIN brands b ON b.id = pc.brand_id
		LEFT JOIN categories c ON c.id = pc.category_id
		WHERE pc.active = TRUE
		  AND similarity(pc.name, $1) > 0.3
		ORDER BY similarity(pc.name, $1) DESC
		LIMIT 1
	`

	match := &domain.CatalogMatch{}
	err := r.db.QueryRowContext(ctx, query, search).Scan(
		&match.ID,
		&match.Name,
		&match.SKU,
		&match.BrandID,
		&match.BrandName,
		&match.CategoryID,
		&match.CategoryName,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve catalog product: %w", err)
	}

	return match, nil
}

// FindFirstByBrandAndPrefix retrieves one already-categorized product of the
// brand whose name starts with the prefix, case insensitively. Returns nil
// without error when nothing matches.
func (r *catalogRepository) FindFirstByBrandAndPrefix(ctx context.Context, brandID uuid.UUID, prefix string) (*domain.CatalogProduct, error) {
	query := `
		SELECT id, name, sku, brand_id, category_id, attributes, image_url, active, created_at, updated_at
		FROM products_catalog
		WHERE brand_id = $1
		  AND category_id IS NOT NULL
		  AND name ILIKE $2
		LIMIT 1
	`

	product, err := scanCatalogProduct(r.db.QueryRowContext(ctx, query, brandID, prefix+"%"))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find catalog product by prefix: %w", err)
	}

	return product, nil
}

// NameExists reports whether a catalog product already uses the exact name
func (r *catalogRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM products_catalog WHERE name = $1)`,
		name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check catalog product name: %w", err)
	}
	return exists, nil
}

// SKUExists reports whether another catalog product already uses the SKU
func (r *catalogRepository) SKUExists(ctx context.Context, sku string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM products_catalog WHERE sku = $1 AND id != $2)`,
		sku,
		excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check catalog product SKU: %w", err)
	}
	return exists, nil
}

// CountOffers returns how many store offers reference the catalog product
func (r *catalogRepository) CountOffers(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE catalog_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count catalog offers: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCatalogProduct(row rowScanner) (*domain.CatalogProduct, error) {
	product := &domain.CatalogProduct{}
	var attrs []byte
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.SKU,
		&product.BrandID,
		&product.CategoryID,
		&attrs,
		&product.ImageURL,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &product.Attributes); err != nil {
			return nil, fmt.Errorf("failed to decode product attributes: %w", err)
		}
	}

	return product, nil
}

func marshalAttributes(attrs map[string]any) (any, error) {
	if attrs == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product attributes: %w", err)
	}
	return encoded, nil
}

func catalogConditions(filter CatalogFilter, prefix string) ([]string, []any) {
	conditions := []string{}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(%sname ILIKE $%d OR %ssku ILIKE $%d)", prefix, len(args), prefix, len(args)))
	}
	if filter.BrandID != uuid.Nil {
		args = append(args, filter.BrandID)
		conditions = append(conditions, fmt.Sprintf("%sbrand_id = $%d", prefix, len(args)))
	}
	if filter.CategoryID != uuid.Nil {
		args = append(args, filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("%scategory_id = $%d", prefix, len(args)))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, prefix+"active = TRUE")
	}

	return conditions, args
}
