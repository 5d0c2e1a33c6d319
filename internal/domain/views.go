package domain

import (
	"github.com/google/uuid"
)

// CatalogMatch is the slim catalog projection used when resolving a search
// query to a canonical product.
type CatalogMatch struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	SKU          *string    `json:"sku"`
	BrandID      *uuid.UUID `json:"brand_id"`
	BrandName    *string    `json:"brand_name"`
	CategoryID   *uuid.UUID `json:"category_id"`
	CategoryName *string    `json:"category_name"`
}

// OfferView is an offer joined with its store, current price and catalog
// context, shaped for API responses.
type OfferView struct {
	ProductOffer
	Price        *Price  `json:"price"`
	StoreName    string  `json:"store_name"`
	StoreActive  bool    `json:"store_active"`
	CatalogName  *string `json:"catalog_name,omitempty"`
	CatalogSKU   *string `json:"catalog_sku,omitempty"`
	BrandName    *string `json:"brand_name,omitempty"`
	CategoryName *string `json:"category_name,omitempty"`
}

// SearchResult is the response shape of a product search: the resolved
// catalog entry plus its per-store offers. A search that resolves nothing
// returns the zero UUID, the raw query as the name and no offers.
type SearchResult struct {
	CatalogID    uuid.UUID    `json:"catalog_id"`
	CatalogName  string       `json:"catalog_name"`
	CatalogSKU   *string      `json:"catalog_sku,omitempty"`
	BrandName    *string      `json:"brand_name,omitempty"`
	CategoryName *string      `json:"category_name,omitempty"`
	Offers       []*OfferView `json:"products"`
	TotalStores  int          `json:"total_stores"`
	WasScraped   bool         `json:"was_scraped"`
}

// BrandWithManufacturer is a brand joined with its manufacturer's name and
// country for listing endpoints.
type BrandWithManufacturer struct {
	Brand
	ManufacturerName    *string `json:"manufacturer_name"`
	ManufacturerCountry *string `json:"manufacturer_country"`
}

// ManufacturerWithBrands is a manufacturer annotated with how many brands
// reference it.
type ManufacturerWithBrands struct {
	Manufacturer
	BrandCount int `json:"brand_count"`
}

// CatalogProductWithDetails is a catalog product joined with its brand and
// category names.
type CatalogProductWithDetails struct {
	CatalogProduct
	BrandName    *string `json:"brand_name"`
	CategoryName *string `json:"category_name"`
}

// CategoryNode is a category with its resolved children, used to render the
// category tree.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}

// ImportedProduct describes one catalog entry created by a brand import.
type ImportedProduct struct {
	Name     string  `json:"name"`
	SKU      string  `json:"sku"`
	Category *string `json:"category"`
}

// BrandImportResult summarizes a brand catalog import run.
type BrandImportResult struct {
	Status          string            `json:"status"`
	Total           int               `json:"total"`
	CreatedCount    int               `json:"created_count"`
	SkippedCount    int               `json:"skipped_count"`
	CreatedProducts []ImportedProduct `json:"created_products"`
}
