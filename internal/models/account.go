// internal/models/account.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Account is a portal operator login. The portal ships with exactly two
// seeded accounts, one per role; there is no self-registration.
type Account struct {
	BaseModel
	Username     string      `json:"username" gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string      `json:"-" gorm:"size:255;not null"`
	Role         AccountRole `json:"role" gorm:"type:varchar(20);not null;index"`
	DisplayName  string      `json:"display_name" gorm:"size:100"`
	Active       bool        `json:"active" gorm:"default:true"`
	LastLoginAt  *time.Time  `json:"last_login_at"`
}

func (a *Account) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
