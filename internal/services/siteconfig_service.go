// internal/services/siteconfig_service.go
package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/northfab/portal-backend/internal/apperrors"
	"github.com/northfab/portal-backend/internal/models"
	"github.com/northfab/portal-backend/internal/utils"
)

// SiteConfigService manages the single configuration draft and its
// append-only version history. Draft writes use the revision token for
// optimistic concurrency; publishes are serialized by publishMu plus a
// row lock so version numbers stay monotonic and gap-free.
type SiteConfigService struct {
	db        *gorm.DB
	audit     *AuditService
	publishMu sync.Mutex
}

type UpdateDraftRequest struct {
	Revision int64     `json:"revision"`
	Patches  []PatchOp `json:"patches" validate:"required,min=1"`
}

type PublishRequest struct {
	Message string `json:"message,omitempty" validate:"omitempty,max=500"`
}

type RollbackRequest struct {
	Version int64  `json:"version" validate:"required,min=1"`
	Message string `json:"message,omitempty" validate:"omitempty,max=500"`
}

func NewSiteConfigService(db *gorm.DB, audit *AuditService) *SiteConfigService {
	return &SiteConfigService{db: db, audit: audit}
}

// GetDraft returns the working copy with its revision token and dirty
// indicator.
func (s *SiteConfigService) GetDraft() (*models.SiteConfigDraft, error) {
	var draft models.SiteConfigDraft
	if err := s.db.First(&draft).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("site configuration draft")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &draft, nil
}

// UpdateDraft applies a batch of patch operations against the draft.
// The whole batch is validated before any write; a stale revision token
// loses to the concurrent writer and the caller must re-read the draft.
func (s *SiteConfigService) UpdateDraft(actor models.Actor, req *UpdateDraftRequest) (*models.SiteConfigDraft, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}
	if err := validatePatchOps(req.Patches); err != nil {
		return nil, err
	}

	var draft models.SiteConfigDraft

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&draft).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("site configuration draft")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if draft.Revision != req.Revision {
			return apperrors.Conflict("draft revision %d is stale, current revision is %d", req.Revision, draft.Revision)
		}

		oldContent := draft.Content
		newContent := applyPatchOps(draft.Content, req.Patches)

		result := tx.Model(&models.SiteConfigDraft{}).
			Where("id = ? AND revision = ?", draft.ID, req.Revision).
			Updates(map[string]interface{}{
				"content":  newContent,
				"revision": draft.Revision + 1,
				"dirty":    true,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update draft: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.Conflict("draft was modified concurrently")
		}

		draft.Content = newContent
		draft.Revision++
		draft.Dirty = true

		if s.audit != nil {
			s.audit.Record(actor.AccountID, "UPDATE_SITE_CONFIG_DRAFT", "site_config_draft", &draft.ID,
				map[string]interface{}{"content": map[string]interface{}(oldContent)},
				map[string]interface{}{"content": map[string]interface{}(newContent), "revision": draft.Revision})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &draft, nil
}

// Publish snapshots the current draft content into a new immutable
// version and marks it active. Version numbers are assigned as last+1
// under the publish lock, so concurrent publishes each get a distinct
// consecutive number.
func (s *SiteConfigService) Publish(actor models.Actor, message string) (*models.ConfigVersion, error) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	var version models.ConfigVersion

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var draft models.SiteConfigDraft
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&draft).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("site configuration draft")
			}
			return fmt.Errorf("database error: %w", err)
		}

		last, err := lastVersionNumber(tx)
		if err != nil {
			return err
		}

		version = models.ConfigVersion{
			Version:     last + 1,
			Content:     deepCopyMap(draft.Content),
			Message:     message,
			PublishedBy: actor.AccountID,
			PublishedAt: time.Now().UTC(),
		}
		if err := tx.Create(&version).Error; err != nil {
			return fmt.Errorf("failed to create configuration version: %w", err)
		}

		updates := map[string]interface{}{
			"dirty":          false,
			"active_version": version.Version,
		}
		if err := tx.Model(&models.SiteConfigDraft{}).Where("id = ?", draft.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update draft after publish: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(actor.AccountID, "PUBLISH_SITE_CONFIG", "config_version", &version.ID, nil,
			map[string]interface{}{"version": version.Version, "message": message})
	}

	return &version, nil
}

// Rollback overwrites the draft with the target version's snapshot and
// publishes the result as a brand new version. History is append-only;
// the rolled-back-to version itself is never modified.
func (s *SiteConfigService) Rollback(actor models.Actor, req *RollbackRequest) (*models.ConfigVersion, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	var newVersion models.ConfigVersion

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var target models.ConfigVersion
		if err := tx.First(&target, "version = ?", req.Version).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("configuration version")
			}
			return fmt.Errorf("database error: %w", err)
		}

		var draft models.SiteConfigDraft
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&draft).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("site configuration draft")
			}
			return fmt.Errorf("database error: %w", err)
		}

		last, err := lastVersionNumber(tx)
		if err != nil {
			return err
		}

		message := req.Message
		if message == "" {
			message = fmt.Sprintf("rollback to version %d", target.Version)
		}

		newVersion = models.ConfigVersion{
			Version:     last + 1,
			Content:     deepCopyMap(target.Content),
			Message:     message,
			PublishedBy: actor.AccountID,
			PublishedAt: time.Now().UTC(),
		}
		if err := tx.Create(&newVersion).Error; err != nil {
			return fmt.Errorf("failed to create configuration version: %w", err)
		}

		updates := map[string]interface{}{
			"content":        models.JSONB(deepCopyMap(target.Content)),
			"revision":       draft.Revision + 1,
			"dirty":          false,
			"active_version": newVersion.Version,
		}
		if err := tx.Model(&models.SiteConfigDraft{}).Where("id = ?", draft.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to overwrite draft: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(actor.AccountID, "ROLLBACK_SITE_CONFIG", "config_version", &newVersion.ID, nil,
			map[string]interface{}{"version": newVersion.Version, "rolled_back_to": req.Version})
	}

	return &newVersion, nil
}

// ActiveSnapshot serves the public site configuration: the content of
// the currently active published version.
func (s *SiteConfigService) ActiveSnapshot() (*models.ConfigVersion, error) {
	draft, err := s.GetDraft()
	if err != nil {
		return nil, err
	}
	if draft.ActiveVersion == 0 {
		return nil, apperrors.NotFound("published site configuration")
	}

	var version models.ConfigVersion
	if err := s.db.First(&version, "version = ?", draft.ActiveVersion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("published site configuration")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &version, nil
}

// CurrentVersion reports the active version number without the content
// payload. Clients poll this to detect a cut-over cheaply.
func (s *SiteConfigService) CurrentVersion() (int64, time.Time, error) {
	draft, err := s.GetDraft()
	if err != nil {
		return 0, time.Time{}, err
	}
	if draft.ActiveVersion == 0 {
		return 0, time.Time{}, nil
	}

	var version models.ConfigVersion
	if err := s.db.Select("version", "published_at").
		First(&version, "version = ?", draft.ActiveVersion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, time.Time{}, apperrors.NotFound("published site configuration")
		}
		return 0, time.Time{}, fmt.Errorf("database error: %w", err)
	}
	return version.Version, version.PublishedAt, nil
}

// ListHistory returns published versions, newest first.
func (s *SiteConfigService) ListHistory(params utils.PaginationParams) ([]models.ConfigVersion, int64, error) {
	query := s.db.Model(&models.ConfigVersion{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count versions: %w", err)
	}

	var versions []models.ConfigVersion
	if err := query.Order("version DESC").
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&versions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch versions: %w", err)
	}

	return versions, total, nil
}

// GetVersion returns one published snapshot by its version number.
func (s *SiteConfigService) GetVersion(number int64) (*models.ConfigVersion, error) {
	var version models.ConfigVersion
	if err := s.db.First(&version, "version = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("configuration version")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &version, nil
}

// AppendCategoryTx adds a materialized category entry to the draft's
// categories list inside the caller's transaction. Used by proposal
// approval so the category lands atomically with the status change.
func (s *SiteConfigService) AppendCategoryTx(tx *gorm.DB, entry map[string]interface{}) error {
	var draft models.SiteConfigDraft
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&draft).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("site configuration draft")
		}
		return fmt.Errorf("database error: %w", err)
	}

	content := deepCopyMap(draft.Content)
	categories, _ := content["categories"].([]interface{})
	entryID, _ := entry["id"].(string)
	for _, existing := range categories {
		if m, ok := existing.(map[string]interface{}); ok {
			if id, _ := m["id"].(string); id != "" && id == entryID {
				return apperrors.Conflict("category %q already exists in the configuration draft", entryID)
			}
		}
	}
	content["categories"] = append(categories, deepCopyValue(map[string]interface{}(entry)))

	updates := map[string]interface{}{
		"content":  models.JSONB(content),
		"revision": draft.Revision + 1,
		"dirty":    true,
	}
	if err := tx.Model(&models.SiteConfigDraft{}).Where("id = ?", draft.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to append category to draft: %w", err)
	}
	return nil
}

func lastVersionNumber(tx *gorm.DB) (int64, error) {
	var last int64
	err := tx.Model(&models.ConfigVersion{}).
		Select("COALESCE(MAX(version), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read last version: %w", err)
	}
	return last, nil
}
