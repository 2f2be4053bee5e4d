// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/northfab/portal-backend/internal/apperrors"
	"github.com/northfab/portal-backend/internal/models"
	"github.com/northfab/portal-backend/internal/utils"
)

type AuthService struct {
	db       *gorm.DB
	ttlHours int
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginResponse struct {
	Token   string          `json:"token"`
	Account *models.Account `json:"account"`
}

func NewAuthService(db *gorm.DB, ttlHours int) *AuthService {
	return &AuthService{db: db, ttlHours: ttlHours}
}

func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed: %v", err)
	}

	var account models.Account
	if err := s.db.First(&account, "username = ?", req.Username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Authorization("invalid username or password")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !account.Active {
		return nil, apperrors.Authorization("account is disabled")
	}

	if !account.CheckPassword(req.Password) {
		logrus.WithField("username", req.Username).Warn("Failed login attempt")
		return nil, apperrors.Authorization("invalid username or password")
	}

	token, err := utils.GenerateJWT(account.ID, account.Username, string(account.Role), s.ttlHours)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now().UTC()
	if err := s.db.Model(&account).Update("last_login_at", now).Error; err != nil {
		logrus.WithError(err).Warn("Failed to record last login time")
	}
	account.LastLoginAt = &now

	return &LoginResponse{Token: token, Account: &account}, nil
}

// GetAccount returns a single account by id, used by the profile endpoint.
func (s *AuthService) GetAccount(id uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := s.db.First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("account")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &account, nil
}
