// internal/services/notification_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/northfab/portal-backend/internal/apperrors"
	"github.com/northfab/portal-backend/internal/models"
)

// NotificationService writes review-queue notifications for
// administrators. Rows only; delivery beyond the portal is an external
// concern. Writes are asynchronous, so one in flight at process exit
// may be lost.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) NotifySubmission(resourceType string, resourceID uuid.UUID, name string) {
	notification := &models.AdminNotification{
		Type:                "review_submission",
		Title:               fmt.Sprintf("New %s awaiting review", resourceType),
		Message:             fmt.Sprintf("%q was submitted for review.", name),
		Status:              "unread",
		RelatedResourceType: resourceType,
		RelatedResourceID:   &resourceID,
	}

	go func() {
		if err := s.db.Create(notification).Error; err != nil {
			logrus.WithError(err).Error("Failed to create admin notification")
		}
	}()
}

func (s *NotificationService) List(unreadOnly bool, page, limit int) ([]models.AdminNotification, int64, error) {
	query := s.db.Model(&models.AdminNotification{})
	if unreadOnly {
		query = query.Where("status = ?", "unread")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.AdminNotification
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (s *NotificationService) MarkRead(id uuid.UUID) error {
	result := s.db.Model(&models.AdminNotification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  "read",
			"read_at": gorm.Expr("NOW()"),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("notification")
	}
	return nil
}
