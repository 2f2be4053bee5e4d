// internal/models/product.go
package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	OwnerID      uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name         string         `json:"name" gorm:"size:255;not null"`
	Category     string         `json:"category" gorm:"size:100;index"`
	SubCategory  string         `json:"sub_category" gorm:"size:100"`
	Description  string         `json:"description" gorm:"type:text"`
	MaterialSpec string         `json:"material_spec" gorm:"type:text"`
	SKU          string         `json:"sku" gorm:"size:100"`
	Images       pq.StringArray `json:"images" gorm:"type:text[]"`
	Status       ContentStatus  `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	// ReviewNote holds the last rejection note; cleared on resubmission.
	ReviewNote     string `json:"review_note,omitempty" gorm:"type:text"`
	PendingPublish bool   `json:"pending_publish" gorm:"default:false;index"`

	Owner Account `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

// IsPublicVisible reports whether the product appears on public pages.
// Recomputed on every call; an approved record with no images stays
// hidden until an asset reference lands.
func (p *Product) IsPublicVisible() bool {
	return p.Status == StatusPublished && len(p.Images) >= 1
}

// MarshalJSON includes the derived visibility so API reads never carry a
// stale cached value.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		PublicVisible bool `json:"public_visible"`
	}{
		alias:         alias(p),
		PublicVisible: p.IsPublicVisible(),
	})
}
