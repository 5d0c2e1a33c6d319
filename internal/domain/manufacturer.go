package domain

import (
	"time"

	"github.com/google/uuid"
)

// Manufacturer represents a company that owns one or more brands
type Manufacturer struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	TaxID            *string   `json:"tax_id" db:"tax_id"`
	Country          *string   `json:"country" db:"country"`
	LogoURL          *string   `json:"logo_url" db:"logo_url"`
	Website          *string   `json:"website" db:"website"`
	MainBusinessLine *string   `json:"main_business_line" db:"main_business_line"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// ManufacturerUpdate carries a sparse manufacturer update. Only fields
// present in the request payload are applied.
type ManufacturerUpdate struct {
	Name             Optional[string]  `json:"name"`
	TaxID            Optional[*string] `json:"tax_id"`
	Country          Optional[*string] `json:"country"`
	LogoURL          Optional[*string] `json:"logo_url"`
	Website          Optional[*string] `json:"website"`
	MainBusinessLine Optional[*string] `json:"main_business_line"`
}

// Apply copies the provided fields onto base and returns the merged value.
func (u ManufacturerUpdate) Apply(base Manufacturer) Manufacturer {
	if u.Name.Set {
		base.Name = u.Name.Value
	}
	if u.TaxID.Set {
		base.TaxID = u.TaxID.Value
	}
	if u.Country.Set {
		base.Country = u.Country.Value
	}
	if u.LogoURL.Set {
		base.LogoURL = u.LogoURL.Value
	}
	if u.Website.Set {
		base.Website = u.Website.Value
	}
	if u.MainBusinessLine.Set {
		base.MainBusinessLine = u.MainBusinessLine.Value
	}
	return base
}
