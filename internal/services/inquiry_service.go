// internal/services/inquiry_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/northfab/portal-backend/internal/apperrors"
	"github.com/northfab/portal-backend/internal/models"
	"github.com/northfab/portal-backend/internal/utils"
)

type InquiryService struct {
	db            *gorm.DB
	notifications *NotificationService
}

type CreateInquiryRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company string `json:"company,omitempty" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

func NewInquiryService(db *gorm.DB, notifications *NotificationService) *InquiryService {
	return &InquiryService{db: db, notifications: notifications}
}

func (s *InquiryService) Create(req *CreateInquiryRequest) (*models.Inquiry, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	inquiry := &models.Inquiry{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Message: req.Message,
	}
	if err := s.db.Create(inquiry).Error; err != nil {
		return nil, fmt.Errorf("failed to create inquiry: %w", err)
	}

	if s.notifications != nil {
		s.notifications.NotifySubmission("inquiry", inquiry.ID, inquiry.Name)
	}

	return inquiry, nil
}

func (s *InquiryService) List(params utils.PaginationParams, handledOnly *bool) ([]models.Inquiry, int64, error) {
	query := s.db.Model(&models.Inquiry{})
	if handledOnly != nil {
		query = query.Where("handled = ?", *handledOnly)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count inquiries: %w", err)
	}

	var inquiries []models.Inquiry
	if err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&inquiries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch inquiries: %w", err)
	}

	return inquiries, total, nil
}

func (s *InquiryService) MarkHandled(id uuid.UUID) error {
	result := s.db.Model(&models.Inquiry{}).Where("id = ?", id).Update("handled", true)
	if result.Error != nil {
		return fmt.Errorf("failed to update inquiry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("inquiry")
	}
	return nil
}
