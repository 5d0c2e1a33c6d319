package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pricewatch/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpsertOfferParams carries one scraped observation of a product at a store.
type UpsertOfferParams struct {
	CatalogID          uuid.UUID
	StoreID            uuid.UUID
	URL                string
	Price              decimal.Decimal
	OriginalPrice      decimal.NullDecimal
	DiscountPercentage decimal.NullDecimal
	Currency           string
	InStock            bool
	ScrapedAt          time.Time
}

// OfferRepository defines the interface for store offer data access
type OfferRepository interface {
	ListByCatalogID(ctx context.Context, catalogID uuid.UUID) ([]*domain.OfferView, error)
	ListAll(ctx context.Context, skip, limit int) ([]*domain.OfferView, error)
	UpsertOfferWithPrice(ctx context.Context, params UpsertOfferParams) (*domain.ProductOffer, error)
}

type offerRepository struct {
	db *sql.DB
}

// NewOfferRepository creates a new instance of OfferRepository
func NewOfferRepository(db *sql.DB) OfferRepository {
	return &offerRepository{db: db}
}

// ListByCatalogID retrieves the active store offers for one catalog product
// with their current prices. Offers from active stores come first, then
// cheapest first; offers without a price row sort last.
func (r *offerRepository) ListByCatalogID(ctx context.Context, catalogID uuid.UUID) ([]*domain.OfferView, error) {
	query := `
		SELECT p.id, p.catalog_id, p.store_id, p.category_id, p.url, p.current_price, p.active, p.created_at, p.updated_at, p.last_scraped_at,
		       s.name, s.active,
		       pr.id, pr.product_id, pr.price, pr.original_price, pr.discount_percentage, pr.currency, pr.in_stock, pr.created_at, pr.updated_at
		FROM products p
		JOIN stores s ON s.id = p.store_id
		LEFT JOIN prices pr ON pr.product_id = p.id
		WHERE p.catalog_id = $1 AND p.active = TRUE
		ORDER BY s.active DESC, pr.price ASC NULLS LAST
	`

	rows, err := r.db.QueryContext(ctx, query, catalogID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	offers := []*domain.OfferView{}
	for rows.Next() {
		view := &domain.OfferView{}
		var price priceColumns
		err := rows.Scan(
			&view.ID,
			&view.CatalogID,
			&view.StoreID,
			&view.CategoryID,
			&view.URL,
			&view.CurrentPrice,
			&view.Active,
			&view.CreatedAt,
			&view.UpdatedAt,
			&view.LastScrapedAt,
			&view.StoreName,
			&view.StoreActive,
			&price.id,
			&price.productID,
			&price.price,
			&price.originalPrice,
			&price.discount,
			&price.currency,
			&price.inStock,
			&price.createdAt,
			&price.updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		view.Price = price.toPrice()
		offers = append(offers, view)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}

	return offers, nil
}

// ListAll retrieves every offer joined with its catalog entry, store and
// current price, grouped by catalog name and then ordered like
// ListByCatalogID.
func (r *offerRepository) ListAll(ctx context.Context, skip, limit int) ([]*domain.OfferView, error) {
	query := `
		SELECT p.id, p.catalog_id, p.store_id, p.category_id, p.url, p.current_price, p.active, p.created_at, p.updated_at, p.last_scraped_at,
		       s.name, s.active,
		       pc.name, pc.sku, b.name, c.name,
		       pr.id, pr.product_id, pr.price, pr.original_price, pr.discount_percentage, pr.currency, pr.in_stock, pr.created_at, pr.updated_at
		FROM products p
		JOIN stores s ON s.id = p.store_id
		JOIN products_catalog pc ON pc.id = p.catalog_id
		LEFT JOIN brands b ON b.id = pc.brand_id
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN prices pr ON pr.product_id = p.id
		WHERE p.active = TRUE
		ORDER BY pc.name ASC, s.active DESC, pr.price ASC NULLS LAST
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	offers := []*domain.OfferView{}
	for rows.Next() {
		view := &domain.OfferView{}
		var price priceColumns
		err := rows.Scan(
			&view.ID,
			&view.CatalogID,
			&view.StoreID,
			&view.CategoryID,
			&view.URL,
			&view.CurrentPrice,
			&view.Active,
			&view.CreatedAt,
			&view.UpdatedAt,
			&view.LastScrapedAt,
			&view.StoreName,
			&view.StoreActive,
			&view.CatalogName,
			&view.CatalogSKU,
			&view.BrandName,
			&view.CategoryName,
			&price.id,
			&price.productID,
			&price.price,
			&price.originalPrice,
			&price.discount,
			&price.currency,
			&price.inStock,
			&price.createdAt,
			&price.updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		view.Price = price.toPrice()
		offers = append(offers, view)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offers: %w", err)
	}

	return offers, nil
}

// UpsertOfferWithPrice records one scraped observation atomically: the offer
// row is inserted or refreshed, and its single price row is overwritten. The
// offer copies its category from the catalog entry at insert time.
func (r *offerRepository) UpsertOfferWithPrice(ctx context.Context, params UpsertOfferParams) (*domain.ProductOffer, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	offerQuery := `
		INSERT INTO products (id, catalog_id, store_id, category_id, url, current_price, active, created_at, updated_at, last_scraped_at)
		SELECT $1, pc.id, $3, pc.category_id, $4, $5, TRUE, NOW(), NOW(), $6
		FROM products_catalog pc
		WHERE pc.id = $2
		ON CONFLICT (catalog_id, store_id) DO UPDATE
		SET url = EXCLUDED.url,
		    current_price = EXCLUDED.current_price,
		    last_scraped_at = EXCLUDED.last_scraped_at,
		    updated_at = NOW()
		RETURNING id, catalog_id, store_id, category_id, url, current_price, active, created_at, updated_at, last_scraped_at
	`

	offer := &domain.ProductOffer{}
	err = tx.QueryRowContext(
		ctx,
		offerQuery,
		uuid.New(),
		params.CatalogID,
		params.StoreID,
		params.URL,
		params.Price,
		params.ScrapedAt,
	).Scan(
		&offer.ID,
		&offer.CatalogID,
		&offer.StoreID,
		&offer.CategoryID,
		&offer.URL,
		&offer.CurrentPrice,
		&offer.Active,
		&offer.CreatedAt,
		&offer.UpdatedAt,
		&offer.LastScrapedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCatalogProductNotFound
		}
		return nil, fmt.Errorf("failed to upsert offer: %w", err)
	}

	priceQuery := `
		INSERT INTO prices (id, product_id, price, original_price, discount_percentage, currency, in_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (product_id) DO UPDATE
		SET price = EXCLUDED.price,
		    original_price = EXCLUDED.original_price,
		    discount_percentage = EXCLUDED.discount_percentage,
		    in_stock = EXCLUDED.in_stock,
		    updated_at = NOW()
	`

	_, err = tx.ExecContext(
		ctx,
		priceQuery,
		uuid.New(),
		offer.ID,
		params.Price,
		params.OriginalPrice,
		params.DiscountPercentage,
		params.Currency,
		params.InStock,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert price: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit offer upsert: %w", err)
	}

	return offer, nil
}

// priceColumns holds the nullable LEFT JOIN columns of a price row.
type priceColumns struct {
	id            uuid.NullUUID
	productID     uuid.NullUUID
	price         decimal.NullDecimal
	originalPrice decimal.NullDecimal
	discount      decimal.NullDecimal
	currency      sql.NullString
	inStock       sql.NullBool
	createdAt     sql.NullTime
	updatedAt     sql.NullTime
}

func (p *priceColumns) toPrice() *domain.Price {
	if !p.id.Valid {
		return nil
	}
	return &domain.Price{
		ID:                 p.id.UUID,
		ProductID:          p.productID.UUID,
		Price:              p.price.Decimal,
		OriginalPrice:      p.originalPrice,
		DiscountPercentage: p.discount,
		Currency:           p.currency.String,
		InStock:            p.inStock.Bool,
		CreatedAt:          p.createdAt.Time,
		UpdatedAt:          p.updatedAt.Time,
	}
}
