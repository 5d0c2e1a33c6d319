package domain

import (
	"time"

	"github.com/google/uuid"
)

// CatalogProduct is the canonical, store-independent identity of a product.
// SKU, when present, is globally unique. Attributes holds free-form
// source-specific metadata (stored as JSONB).
type CatalogProduct struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	Name       string         `json:"name" db:"name"`
	SKU        *string        `json:"sku" db:"sku"`
	BrandID    *uuid.UUID     `json:"brand_id" db:"brand_id"`
	CategoryID *uuid.UUID     `json:"category_id" db:"category_id"`
	Attributes map[string]any `json:"attributes" db:"attributes"`
	ImageURL   *string        `json:"image_url" db:"image_url"`
	Active     bool           `json:"active" db:"active"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// CatalogProductUpdate carries a sparse catalog product update.
type CatalogProductUpdate struct {
	Name       Optional[string]         `json:"name"`
	SKU        Optional[*string]        `json:"sku"`
	BrandID    Optional[*uuid.UUID]     `json:"brand_id"`
	CategoryID Optional[*uuid.UUID]     `json:"category_id"`
	Attributes Optional[map[string]any] `json:"attributes"`
	ImageURL   Optional[*string]        `json:"image_url"`
	Active     Optional[bool]           `json:"active"`
}

// Apply copies the provided fields onto base and returns the merged value.
func (u CatalogProductUpdate) Apply(base CatalogProduct) CatalogProduct {
	if u.Name.Set {
		base.Name = u.Name.Value
	}
	if u.SKU.Set {
		base.SKU = u.SKU.Value
	}
	if u.BrandID.Set {
		base.BrandID = u.BrandID.Value
	}
	if u.CategoryID.Set {
		base.CategoryID = u.CategoryID.Value
	}
	if u.Attributes.Set {
		base.Attributes = u.Attributes.Value
	}
	if u.ImageURL.Set {
		base.ImageURL = u.ImageURL.Value
	}
	if u.Active.Set {
		base.Active = u.Active.Value
	}
	return base
}
