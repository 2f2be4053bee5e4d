// internal/services/content_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/northfab/portal-backend/internal/apperrors"
	"github.com/northfab/portal-backend/internal/models"
	"github.com/northfab/portal-backend/internal/utils"
)

// ContentService owns the product lifecycle: draft → awaiting_review →
// published | rejected. Factory accounts edit their own drafts; only
// admins decide. Transitions are linearizable per product.
type ContentService struct {
	db             *gorm.DB
	storage        *StorageService
	notifications  *NotificationService
	audit          *AuditService
	releaseTimeout time.Duration
}

type CreateProductRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=255"`
	Category     string   `json:"category,omitempty"`
	SubCategory  string   `json:"sub_category,omitempty"`
	Description  string   `json:"description,omitempty"`
	MaterialSpec string   `json:"material_spec,omitempty"`
	SKU          string   `json:"sku,omitempty" validate:"omitempty,max=100"`
	Images       []string `json:"images,omitempty"`
}

type UpdateProductRequest struct {
	Name         string   `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Category     *string  `json:"category,omitempty"`
	SubCategory  *string  `json:"sub_category,omitempty"`
	Description  *string  `json:"description,omitempty"`
	MaterialSpec *string  `json:"material_spec,omitempty"`
	SKU          *string  `json:"sku,omitempty"`
	Images       []string `json:"images,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	OwnerID *uuid.UUID
	Status  *models.ContentStatus
}

func NewContentService(db *gorm.DB, storage *StorageService, notifications *NotificationService, audit *AuditService, releaseTimeout time.Duration) *ContentService {
	return &ContentService{
		db:             db,
		storage:        storage,
		notifications:  notifications,
		audit:          audit,
		releaseTimeout: releaseTimeout,
	}
}

func (s *ContentService) CreateDraft(actor models.Actor, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.Validation("product name must not be empty")
	}

	product := &models.Product{
		OwnerID:      actor.AccountID,
		Name:         req.Name,
		Category:     req.Category,
		SubCategory:  req.SubCategory,
		Description:  req.Description,
		MaterialSpec: req.MaterialSpec,
		SKU:          req.SKU,
		Images:       pq.StringArray(req.Images),
		Status:       models.StatusDraft,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// GetProduct returns the record subject to visibility rules: public
// callers (nil actor) only see published products with at least one
// asset reference; the owner and admins see everything.
func (s *ContentService) GetProduct(id uuid.UUID, actor *models.Actor) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if actor != nil && (actor.IsAdmin() || actor.AccountID == product.OwnerID) {
		return &product, nil
	}

	if !product.IsPublicVisible() {
		return nil, apperrors.NotFound("product")
	}

	return &product, nil
}

func (s *ContentService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{})

	if params.OwnerID != nil {
		query = query.Where("owner_id = ?", *params.OwnerID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = utils.ApplySort(query, params.PaginationParams, "created_at", "updated_at", "name", "status", "category")
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// PublicProducts lists what end users see. The visibility condition is
// evaluated against current row state on every call, never cached.
func (s *ContentService) PublicProducts(params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Where("status = ?", models.StatusPublished).
		Where("COALESCE(array_length(images, 1), 0) >= 1")

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = utils.ApplySort(query, params, "created_at", "updated_at", "name", "category")
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// UpdateProduct applies non-status field edits. Factory callers may only
// touch their own records while in draft or rejected; admins may edit any
// record in any status and the edit takes effect immediately.
func (s *ContentService) UpdateProduct(id uuid.UUID, actor models.Actor, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !actor.IsAdmin() {
		if product.OwnerID != actor.AccountID {
			return nil, apperrors.Authorization("not the owner of this product")
		}
		if product.Status != models.StatusDraft && product.Status != models.StatusRejected {
			return nil, apperrors.InvalidState(string(product.Status), "product cannot be edited while under review or published")
		}
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.SubCategory != nil {
		updates["sub_category"] = *req.SubCategory
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.MaterialSpec != nil {
		updates["material_spec"] = *req.MaterialSpec
	}
	if req.SKU != nil {
		updates["sku"] = *req.SKU
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload product: %w", err)
	}

	return &product, nil
}

// SubmitForReview moves an owned draft or rejected record into the
// review queue. A record without any asset reference is rejected here
// outright; the previous rejection note is cleared on resubmission.
func (s *ContentService) SubmitForReview(id uuid.UUID, actor models.Actor) (*models.Product, error) {
	var product models.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("product")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if product.OwnerID != actor.AccountID {
			return apperrors.Authorization("not the owner of this product")
		}
		if product.Status != models.StatusDraft && product.Status != models.StatusRejected {
			return apperrors.InvalidState(string(product.Status), "only draft or rejected products can be submitted")
		}
		if len(product.Images) == 0 {
			return apperrors.Validation("a product needs at least one image before submission")
		}

		updates := map[string]interface{}{
			"status":      models.StatusAwaitingReview,
			"review_note": "",
		}
		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to submit product: %w", err)
		}
		product.Status = models.StatusAwaitingReview
		product.ReviewNote = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifications != nil {
		s.notifications.NotifySubmission("product", product.ID, product.Name)
	}

	return &product, nil
}

// Decide approves or rejects a product awaiting review. The row lock
// makes racing decisions linearizable: the loser observes a status that
// already left awaiting_review and gets the invalid-state outcome.
func (s *ContentService) Decide(id uuid.UUID, action models.DecisionAction, note string, actor models.Actor) (*models.Product, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Authorization("only administrators can decide on submissions")
	}

	var product models.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("product")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if product.Status != models.StatusAwaitingReview {
			return apperrors.InvalidState(string(product.Status), "product is not awaiting review")
		}

		updates := map[string]interface{}{}
		switch action {
		case models.DecisionApprove:
			updates["status"] = models.StatusPublished
			updates["pending_publish"] = true
			updates["review_note"] = note
		case models.DecisionReject:
			updates["status"] = models.StatusRejected
			updates["review_note"] = note
		default:
			return apperrors.Validation("unknown decision action %q", action)
		}

		if err := tx.Model(&product).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to record decision: %w", err)
		}
		if action == models.DecisionApprove {
			product.Status = models.StatusPublished
			product.PendingPublish = true
		} else {
			product.Status = models.StatusRejected
		}
		product.ReviewNote = note
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(actor.AccountID, "DECIDE_PRODUCT", "product", &product.ID, nil,
			map[string]interface{}{"action": action, "note": note, "status": product.Status})
	}

	return &product, nil
}

// Delete removes a product. Admins may delete anything; factory callers
// only their own draft or rejected records. Asset references are released
// after the delete commits, best effort with a bounded timeout.
func (s *ContentService) Delete(id uuid.UUID, actor models.Actor) error {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("product")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if !actor.IsAdmin() {
		if product.OwnerID != actor.AccountID {
			return apperrors.Authorization("not the owner of this product")
		}
		if product.Status != models.StatusDraft && product.Status != models.StatusRejected {
			return apperrors.InvalidState(string(product.Status), "only draft or rejected products can be deleted")
		}
	}

	if err := s.db.Delete(&product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if s.audit != nil {
		s.audit.Record(actor.AccountID, "DELETE_PRODUCT", "product", &product.ID,
			map[string]interface{}{"name": product.Name, "status": product.Status}, nil)
	}

	if s.storage != nil && len(product.Images) > 0 {
		refs := append([]string(nil), product.Images...)
		timeout := s.releaseTimeout
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			s.storage.ReleaseReferences(ctx, refs)
		}()
	}

	return nil
}

// ClearPendingPublish resets the pending-publish indicator on published
// products; invoked by the publish coordinator after a configuration
// cut-over. Returns the number of rows cleared.
func (s *ContentService) ClearPendingPublish() (int64, error) {
	result := s.db.Model(&models.Product{}).
		Where("status = ? AND pending_publish = ?", models.StatusPublished, true).
		Update("pending_publish", false)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear pending publish flags: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// PendingPublishCount reports approved products not yet covered by a
// configuration publish, for the review-queue view.
func (s *ContentService) PendingPublishCount() (int64, error) {
	var count int64
	err := s.db.Model(&models.Product{}).
		Where("status = ? AND pending_publish = ?", models.StatusPublished, true).
		Count(&count).Error
	return count, err
}
