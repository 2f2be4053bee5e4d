// internal/services/testutil_test.go
package services

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/northfab/portal-backend/internal/models"
)

// openTestDB connects to the database named by TEST_DATABASE_URL and
// resets the portal tables. Suites that need postgres semantics (row
// locks, jsonb, text arrays) skip when the variable is unset.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.Product{},
		&models.CategoryProposal{},
		&models.SiteConfigDraft{},
		&models.ConfigVersion{},
		&models.AuditLog{},
		&models.AdminNotification{},
		&models.Inquiry{},
	))

	for _, table := range []string{
		"audit_logs", "admin_notifications", "inquiries",
		"config_versions", "site_config_drafts",
		"products", "category_proposals", "accounts",
	} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}

	return db
}

func seedAccount(t *testing.T, db *gorm.DB, username string, role models.AccountRole) models.Actor {
	t.Helper()

	account := &models.Account{
		Username:    username,
		Role:        role,
		DisplayName: username,
		Active:      true,
	}
	require.NoError(t, account.SetPassword("testing-password-1"))
	require.NoError(t, db.Create(account).Error)

	return models.Actor{AccountID: account.ID, Role: role}
}

func seedConfigDraft(t *testing.T, db *gorm.DB) models.SiteConfigDraft {
	t.Helper()

	draft := models.SiteConfigDraft{
		ID:      uuid.New(),
		Content: models.DefaultSiteConfigContent(),
	}
	require.NoError(t, db.Create(&draft).Error)
	return draft
}
