package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pricewatch/internal/domain"

	"github.com/google/uuid"
)

var ErrStoreNotFound = errors.New("store not found")

// StoreRepository defines the interface for store data access
type StoreRepository interface {
	Create(ctx context.Context, store *domain.Store) error
	Update(ctx context.Context, store *domain.Store) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Store, error)
	FindByFuzzyName(ctx context.Context, name string) (*domain.Store, error)
	List(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Store, error)
	Upsert(ctx context.Context, name, baseURL string) (*domain.Store, error)
	NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	CountOffers(ctx context.Context, id uuid.UUID) (int, error)
}

type storeRepository struct {
	db *sql.DB
}

// NewStoreRepository creates a new instance of StoreRepository
func NewStoreRepository(db *sql.DB) StoreRepository {
	return &storeRepository{db: db}
}

// Create inserts a new store into the database using parameterized queries
func (r *storeRepository) Create(ctx context.Context, store *domain.Store) error {
	query := `
		INSERT INTO stores (id, name, base_url, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		store.ID,
		store.Name,
		store.BaseURL,
		store.Active,
		store.CreatedAt,
		store.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	return nil
}

// Update overwrites a store's mutable fields
func (r *storeRepository) Update(ctx context.Context, store *domain.Store) error {
	query := `
		UPDATE stores
		SET name = $2, base_url = $3, active = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		store.ID,
		store.Name,
		store.BaseURL,
		store.Active,
		store.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update store: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrStoreNotFound
	}

	return nil
}

// Delete removes a store by ID
func (r *storeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete store: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ErrStoreNotFound
	}

	return nil
}

// FindByID retrieves a store by ID using parameterized queries
func (r *storeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Store, error) {
	query := `
		SELECT id, name, base_url, active, created_at, updated_at
		FROM stores
		WHERE id = $1
	`

	store := &domain.Store{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&store.ID,
		&store.Name,
		&store.BaseURL,
		&store.Active,
		&store.CreatedAt,
		&store.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to find store by ID: %w", err)
	}

	return store, nil
}

// FindByFuzzyName retrieves the active store that best matches the given
// name. Exact matches win, then stores whose name is contained in the search
// term ("Acuenta" for "Super Bodega Acuenta"), then the reverse containment,
// then trigram similarity above 0.3.
func (r *storeRepository) FindByFuzzyName(ctx context.Context, name string) (*domain.Store, error) {
	query := `
		SELECT id, name, base_url, active, created_at, updated_at,
		       similarity(name, $1) AS sim,
		       CASE
		           WHEN LOWER(name) = LOWER($1) THEN 1
		           WHEN LOWER($1) LIKE '%' || LOWER(name) || '%' THEN 2
		           WHEN LOWER(name) LIKE '%' || LOWER($1) || '%' THEN 3
		           ELSE 4
		       END AS match_rank
		FROM stores
		WHERE active = TRUE
		  AND (
		      LOWER(name) = LOWER($1)
		      OR LOWER(name) LIKE '%' || LOWER($1) || '%'
		      OR LOWER($1) LIKE '%' || LOWER(name) || '%'
		      OR similarity(name, $1) > 0.3
		  )
		ORDER BY match_rank ASC, sim DESC
		LIMIT 1
	`

	store := &domain.Store{}
	var sim float64
	var rank int
	err := r.db.QueryRowContext(ctx, query, name).Scan(
		&store.ID,
		&store.Name,
		&store.BaseURL,
		&store.Active,
		&store.CreatedAt,
		&store.UpdatedAt,
		&sim,
		&rank,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("failed to find store by fuzzy name: %w", err)
	}

	return store, nil
}

// List retrieves stores ordered by name
func (r *storeRepository) List(ctx context.Context, activeOnly bool, skip, limit int) ([]*domain.Store, error) {
	query := `
		SELECT id, name, base_url, active, created_at, updated_at
		FROM stores
	`
	if activeOnly {
		query += " WHERE active = TRUE"
	}
	query += " ORDER BY name ASC LIMIT $1 OFFSET $2"

	rows, err := r.db.QueryContext(ctx, query, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	stores := []*domain.Store{}
	for rows.Next() {
		store := &domain.Store{}
		err := rows.Scan(
			&store.ID,
			&store.Name,
			&store.BaseURL,
			&store.Active,
			&store.CreatedAt,
			&store.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, store)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stores: %w", err)
	}

	return stores, nil
}

// Upsert inserts a store by name or touches the existing row. New stores are
// created inactive so operators can vet them before their offers surface.
func (r *storeRepository) Upsert(ctx context.Context, name, baseURL string) (*domain.Store, error) {
	query := `
		INSERT INTO stores (id, name, base_url, active, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, NOW(), NOW())
		ON CONFLICT (name) DO UPDATE SET updated_at = NOW()
		RETURNING id, name, base_url, active, created_at, updated_at
	`

	store := &domain.Store{}
	err := r.db.QueryRowContext(ctx, query, uuid.New(), name, baseURL).Scan(
		&store.ID,
		&store.Name,
		&store.BaseURL,
		&store.Active,
		&store.CreatedAt,
		&store.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert store: %w", err)
	}

	return store, nil
}

// NameExists reports whether another store already uses the name
func (r *storeRepository) NameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM stores WHERE name = $1 AND id != $2)`,
		name,
		excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check store name: %w", err)
	}
	return exists, nil
}

// CountOffers returns how many offers reference the store
func (r *storeRepository) CountOffers(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE store_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count store offers: %w", err)
	}
	return count, nil
}
