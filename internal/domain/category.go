package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is a node in the product taxonomy tree. Root categories have no
// parent. A category may never be its own ancestor.
type Category struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Slug         string     `json:"slug" db:"slug"`
	Description  *string    `json:"description" db:"description"`
	ParentID     *uuid.UUID `json:"parent_id" db:"parent_id"`
	ProductCount int        `json:"product_count" db:"product_count"`
	Active       bool       `json:"active" db:"active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// CategoryUpdate carries a sparse category update. ParentID distinguishes
// "not provided" from an explicit null (detach to root).
type CategoryUpdate struct {
	Name        Optional[string]     `json:"name"`
	Slug        Optional[string]     `json:"slug"`
	Description Optional[*string]    `json:"description"`
	ParentID    Optional[*uuid.UUID] `json:"parent_id"`
	Active      Optional[bool]       `json:"active"`
}

// Apply copies the provided fields onto base and returns the merged value.
func (u CategoryUpdate) Apply(base Category) Category {
	if u.Name.Set {
		base.Name = u.Name.Value
	}
	if u.Slug.Set {
		base.Slug = u.Slug.Value
	}
	if u.Description.Set {
		base.Description = u.Description.Value
	}
	if u.ParentID.Set {
		base.ParentID = u.ParentID.Value
	}
	if u.Active.Set {
		base.Active = u.Active.Value
	}
	return base
}

// slugFolder strips diacritic marks so "Líder" slugs to "lider".
var slugFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify derives the canonical slug for a name: diacritics folded,
// lowercased, runs of non-alphanumeric characters collapsed to a single
// hyphen, leading and trailing hyphens trimmed. The derivation is
// idempotent.
func Slugify(name string) string {
	folded, _, err := transform.String(slugFolder, name)
	if err != nil {
		folded = name
	}
	lower := strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(lower))
	pendingHyphen := false
	for _, r := range lower {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingHyphen = true
			continue
		}
		if pendingHyphen && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingHyphen = false
		b.WriteRune(r)
	}
	return b.String()
}
