// internal/models/siteconfig.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// SiteConfigDraft is the single mutable working copy of the site
// configuration. Revision is the optimistic concurrency token: every
// write bumps it, and a stale token fails the write.
type SiteConfigDraft struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Content       JSONB     `json:"content" gorm:"type:jsonb;not null"`
	Revision      int64     `json:"revision" gorm:"not null;default:0"`
	Dirty         bool      `json:"dirty" gorm:"not null;default:false"`
	ActiveVersion int64     `json:"active_version" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (SiteConfigDraft) TableName() string { return "site_config_drafts" }

// ConfigVersion stores an immutable snapshot of the draft at publish
// time. Rows are append-only: rollback mints a new version, it never
// touches an existing one.
type ConfigVersion struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Version     int64     `json:"version" gorm:"uniqueIndex;not null"`
	Content     JSONB     `json:"content" gorm:"type:jsonb;not null"`
	Message     string    `json:"message,omitempty" gorm:"type:text"`
	PublishedBy uuid.UUID `json:"published_by" gorm:"type:uuid;not null"`
	PublishedAt time.Time `json:"published_at" gorm:"not null"`
}

func (ConfigVersion) TableName() string { return "config_versions" }

// DefaultSiteConfigContent seeds the working draft for a fresh install.
func DefaultSiteConfigContent() JSONB {
	page := func() map[string]interface{} {
		return map[string]interface{}{
			"hero_title":    "",
			"hero_subtitle": "",
			"hero_image":    "",
			"intro":         "",
		}
	}
	return JSONB{
		"navigation": map[string]interface{}{
			"logo":          "",
			"banner_images": []interface{}{},
		},
		"pages": map[string]interface{}{
			"home":     page(),
			"about":    page(),
			"products": page(),
			"contact":  page(),
		},
		"categories": []interface{}{},
	}
}
