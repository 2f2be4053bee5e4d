// internal/models/proposal.go
package models

import (
	"github.com/google/uuid"
)

// CategoryProposal is a factory-proposed catalog category. Approval
// materializes it into the site configuration draft; it only reaches the
// public pages once the configuration is published.
type CategoryProposal struct {
	BaseModel
	OwnerID     uuid.UUID     `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title       string        `json:"title" gorm:"size:255;not null"`
	Subtitle    string        `json:"subtitle" gorm:"size:255"`
	Description string        `json:"description" gorm:"type:text"`
	CoverImage  string        `json:"cover_image" gorm:"size:500"`
	Status      ContentStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	ReviewNote  string        `json:"review_note,omitempty" gorm:"type:text"`

	Owner Account `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

// Materialize returns the category entry appended to the configuration
// draft on approval. The proposal id doubles as the category id so
// product references stay resolvable.
func (p *CategoryProposal) Materialize() map[string]interface{} {
	return map[string]interface{}{
		"id":          p.ID.String(),
		"title":       p.Title,
		"subtitle":    p.Subtitle,
		"description": p.Description,
		"cover_image": p.CoverImage,
	}
}
