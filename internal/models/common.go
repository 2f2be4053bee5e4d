// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/northfab/portal-backend/internal/apperrors"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type AccountRole string

const (
	RoleFactory AccountRole = "factory"
	RoleAdmin   AccountRole = "admin"
)

// ContentStatus is the closed lifecycle enum shared by products and
// category proposals. Unknown values are rejected at the store boundary,
// never defaulted.
type ContentStatus string

const (
	StatusDraft          ContentStatus = "draft"
	StatusAwaitingReview ContentStatus = "awaiting_review"
	StatusPublished      ContentStatus = "published"
	StatusRejected       ContentStatus = "rejected"
)

func ParseContentStatus(s string) (ContentStatus, error) {
	switch ContentStatus(s) {
	case StatusDraft, StatusAwaitingReview, StatusPublished, StatusRejected:
		return ContentStatus(s), nil
	}
	return "", apperrors.Validation("unknown content status %q", s)
}

type DecisionAction string

const (
	DecisionApprove DecisionAction = "approve"
	DecisionReject  DecisionAction = "reject"
)

func ParseDecisionAction(s string) (DecisionAction, error) {
	switch DecisionAction(s) {
	case DecisionApprove, DecisionReject:
		return DecisionAction(s), nil
	}
	return "", apperrors.Validation("unknown decision action %q", s)
}

// Actor is the verified identity capability every operation consumes.
// Role and account id come from the authenticated token, never from
// caller-supplied request state.
type Actor struct {
	AccountID uuid.UUID
	Role      AccountRole
}

func (a Actor) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a Actor) IsFactory() bool { return a.Role == RoleFactory }
