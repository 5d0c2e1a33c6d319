package domain

import (
	"time"

	"github.com/google/uuid"
)

// Store is a retailer that sells catalog products. Stores auto-created
// during price ingestion start inactive, pending validation by an operator.
type Store struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	BaseURL   string    `json:"base_url" db:"base_url"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// StoreUpdate carries a sparse store update.
type StoreUpdate struct {
	Name    Optional[string] `json:"name"`
	BaseURL Optional[string] `json:"base_url"`
	Active  Optional[bool]   `json:"active"`
}

// Apply copies the provided fields onto base and returns the merged value.
func (u StoreUpdate) Apply(base Store) Store {
	if u.Name.Set {
		base.Name = u.Name.Value
	}
	if u.BaseURL.Set {
		base.BaseURL = u.BaseURL.Value
	}
	if u.Active.Set {
		base.Active = u.Active.Value
	}
	return base
}
