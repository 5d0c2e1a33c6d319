package domain

import (
	"time"

	"github.com/google/uuid"
)

// Brand represents a product brand, optionally owned by a manufacturer.
// ProductCount is maintained by the storage layer as catalog products are
// attached to or detached from the brand.
type Brand struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	ManufacturerID *uuid.UUID `json:"manufacturer_id" db:"manufacturer_id"`
	Name           string     `json:"name" db:"name"`
	LogoURL        *string    `json:"logo_url" db:"logo_url"`
	ProductCount   int        `json:"product_count" db:"product_count"`
	Active         bool       `json:"active" db:"active"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// BrandUpdate carries a sparse brand update.
type BrandUpdate struct {
	Name           Optional[string]     `json:"name"`
	ManufacturerID Optional[*uuid.UUID] `json:"manufacturer_id"`
	LogoURL        Optional[*string]    `json:"logo_url"`
	Active         Optional[bool]       `json:"active"`
}

// Apply copies the provided fields onto base and returns the merged value.
func (u BrandUpdate) Apply(base Brand) Brand {
	if u.Name.Set {
		base.Name = u.Name.Value
	}
	if u.ManufacturerID.Set {
		base.ManufacturerID = u.ManufacturerID.Value
	}
	if u.LogoURL.Set {
		base.LogoURL = u.LogoURL.Value
	}
	if u.Active.Set {
		base.Active = u.Active.Value
	}
	return base
}
