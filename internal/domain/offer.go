package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductOffer is a store-specific listing of a catalog product. At most one
// offer exists per (catalog, store) pair.
type ProductOffer struct {
	ID            uuid.UUID           `json:"id" db:"id"`
	CatalogID     uuid.UUID           `json:"catalog_id" db:"catalog_id"`
	StoreID       uuid.UUID           `json:"store_id" db:"store_id"`
	CategoryID    *uuid.UUID          `json:"category_id" db:"category_id"`
	URL           string              `json:"url" db:"url"`
	CurrentPrice  decimal.NullDecimal `json:"current_price" db:"current_price"`
	Active        bool                `json:"active" db:"active"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
	LastScrapedAt *time.Time          `json:"last_scraped_at" db:"last_scraped_at"`
}

// Price is the current price record for an offer. One row per offer,
// overwritten in place on every scrape.
type Price struct {
	ID                 uuid.UUID           `json:"id" db:"id"`
	ProductID          uuid.UUID           `json:"product_id" db:"product_id"`
	Price              decimal.Decimal     `json:"price" db:"price"`
	OriginalPrice      decimal.NullDecimal `json:"original_price" db:"original_price"`
	DiscountPercentage decimal.NullDecimal `json:"discount_percentage" db:"discount_percentage"`
	Currency           string              `json:"currency" db:"currency"`
	InStock            bool                `json:"in_stock" db:"in_stock"`
	CreatedAt          time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" db:"updated_at"`
}
