// internal/services/proposal_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/northfab/portal-backend/internal/apperrors"
	"github.com/northfab/portal-backend/internal/database"
	"github.com/northfab/portal-backend/internal/models"
	"github.com/northfab/portal-backend/internal/utils"
)

// ProposalService runs the category proposal lifecycle. It mirrors the
// product state machine; the difference is in approval, which also
// materializes the category into the site configuration draft so both
// writes commit or fail together.
type ProposalService struct {
	db            *gorm.DB
	siteConfig    *SiteConfigService
	notifications *NotificationService
	audit         *AuditService
}

type CreateProposalRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Subtitle    string `json:"subtitle,omitempty" validate:"omitempty,max=255"`
	Description string `json:"description,omitempty"`
	CoverImage  string `json:"cover_image,omitempty"`
}

type UpdateProposalRequest struct {
	Title       string  `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Subtitle    *string `json:"subtitle,omitempty"`
	Description *string `json:"description,omitempty"`
	CoverImage  *string `json:"cover_image,omitempty"`
}

type ProposalSearchParams struct {
	utils.PaginationParams
	OwnerID *uuid.UUID
	Status  *models.ContentStatus
}

func NewProposalService(db *gorm.DB, siteConfig *SiteConfigService, notifications *NotificationService, audit *AuditService) *ProposalService {
	return &ProposalService{
		db:            db,
		siteConfig:    siteConfig,
		notifications: notifications,
		audit:         audit,
	}
}

func (s *ProposalService) CreateDraft(actor models.Actor, req *CreateProposalRequest) (*models.CategoryProposal, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.Validation("proposal title must not be empty")
	}

	proposal := &models.CategoryProposal{
		OwnerID:     actor.AccountID,
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		Status:      models.StatusDraft,
	}

	if err := s.db.Create(proposal).Error; err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	return proposal, nil
}

func (s *ProposalService) GetProposal(id uuid.UUID, actor models.Actor) (*models.CategoryProposal, error) {
	var proposal models.CategoryProposal
	if err := s.db.First(&proposal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("category proposal")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !actor.IsAdmin() && proposal.OwnerID != actor.AccountID {
		return nil, apperrors.Authorization("not the owner of this proposal")
	}

	return &proposal, nil
}

func (s *ProposalService) SearchProposals(params ProposalSearchParams) ([]models.CategoryProposal, int64, error) {
	query := s.db.Model(&models.CategoryProposal{})

	if params.OwnerID != nil {
		query = query.Where("owner_id = ?", *params.OwnerID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count proposals: %w", err)
	}

	query = utils.ApplySort(query, params.PaginationParams, "created_at", "updated_at", "title", "status")
	query = utils.ApplyPagination(query, params.PaginationParams)

	var proposals []models.CategoryProposal
	if err := query.Find(&proposals).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch proposals: %w", err)
	}

	return proposals, total, nil
}

func (s *ProposalService) UpdateProposal(id uuid.UUID, actor models.Actor, req *UpdateProposalRequest) (*models.CategoryProposal, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	var proposal models.CategoryProposal
	if err := s.db.First(&proposal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("category proposal")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !actor.IsAdmin() {
		if proposal.OwnerID != actor.AccountID {
			return nil, apperrors.Authorization("not the owner of this proposal")
		}
		if proposal.Status != models.StatusDraft && proposal.Status != models.StatusRejected {
			return nil, apperrors.InvalidState(string(proposal.Status), "proposal cannot be edited while under review or published")
		}
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Subtitle != nil {
		updates["subtitle"] = *req.Subtitle
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CoverImage != nil {
		updates["cover_image"] = *req.CoverImage
	}

	if len(updates) > 0 {
		if err := s.db.Model(&proposal).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update proposal: %w", err)
		}
	}

	if err := s.db.First(&proposal, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload proposal: %w", err)
	}

	return &proposal, nil
}

func (s *ProposalService) SubmitForReview(id uuid.UUID, actor models.Actor) (*models.CategoryProposal, error) {
	var proposal models.CategoryProposal

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&proposal, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("category proposal")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if proposal.OwnerID != actor.AccountID {
			return apperrors.Authorization("not the owner of this proposal")
		}
		if proposal.Status != models.StatusDraft && proposal.Status != models.StatusRejected {
			return apperrors.InvalidState(string(proposal.Status), "only draft or rejected proposals can be submitted")
		}
		if strings.TrimSpace(proposal.Title) == "" {
			return apperrors.Validation("proposal title must not be empty")
		}
		if strings.TrimSpace(proposal.CoverImage) == "" {
			return apperrors.Validation("a category proposal needs a cover image before submission")
		}

		updates := map[string]interface{}{
			"status":      models.StatusAwaitingReview,
			"review_note": "",
		}
		if err := tx.Model(&proposal).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to submit proposal: %w", err)
		}
		proposal.Status = models.StatusAwaitingReview
		proposal.ReviewNote = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifications != nil {
		s.notifications.NotifySubmission("category_proposal", proposal.ID, proposal.Title)
	}

	return &proposal, nil
}

// Decide approves or rejects a proposal awaiting review. Approval also
// appends the materialized category entry to the configuration draft in
// the same transaction, so a draft write failure rolls the decision back.
func (s *ProposalService) Decide(id uuid.UUID, action models.DecisionAction, note string, actor models.Actor) (*models.CategoryProposal, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Authorization("only administrators can decide on submissions")
	}

	var proposal models.CategoryProposal

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&proposal, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("category proposal")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if proposal.Status != models.StatusAwaitingReview {
			return apperrors.InvalidState(string(proposal.Status), "proposal is not awaiting review")
		}

		updates := map[string]interface{}{}
		switch action {
		case models.DecisionApprove:
			updates["status"] = models.StatusPublished
			updates["review_note"] = note
		case models.DecisionReject:
			updates["status"] = models.StatusRejected
			updates["review_note"] = note
		default:
			return apperrors.Validation("unknown decision action %q", action)
		}

		if err := tx.Model(&proposal).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to record decision: %w", err)
		}

		if action == models.DecisionApprove {
			if err := s.siteConfig.AppendCategoryTx(tx, proposal.Materialize()); err != nil {
				return err
			}
			proposal.Status = models.StatusPublished
		} else {
			proposal.Status = models.StatusRejected
		}
		proposal.ReviewNote = note
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(actor.AccountID, "DECIDE_CATEGORY_PROPOSAL", "category_proposal", &proposal.ID, nil,
			map[string]interface{}{"action": action, "note": note, "status": proposal.Status})
	}

	return &proposal, nil
}

func (s *ProposalService) Delete(id uuid.UUID, actor models.Actor) error {
	var proposal models.CategoryProposal
	if err := s.db.First(&proposal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("category proposal")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if !actor.IsAdmin() {
		if proposal.OwnerID != actor.AccountID {
			return apperrors.Authorization("not the owner of this proposal")
		}
		if proposal.Status != models.StatusDraft && proposal.Status != models.StatusRejected {
			return apperrors.InvalidState(string(proposal.Status), "only draft or rejected proposals can be deleted")
		}
	}

	if err := s.db.Delete(&proposal).Error; err != nil {
		return fmt.Errorf("failed to delete proposal: %w", err)
	}

	if s.audit != nil {
		s.audit.Record(actor.AccountID, "DELETE_CATEGORY_PROPOSAL", "category_proposal", &proposal.ID,
			map[string]interface{}{"title": proposal.Title, "status": proposal.Status}, nil)
	}

	return nil
}
