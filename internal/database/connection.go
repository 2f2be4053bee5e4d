// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/northfab/portal-backend/internal/config"
	"github.com/northfab/portal-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Account{},
		&models.Product{},
		&models.CategoryProposal{},
		&models.SiteConfigDraft{},
		&models.ConfigVersion{},
		&models.AuditLog{},
		&models.AdminNotification{},
		&models.Inquiry{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Account indexes
		"CREATE INDEX IF NOT EXISTS idx_accounts_role ON accounts(role)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_owner ON products(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_status ON products(category, status)",
		"CREATE INDEX IF NOT EXISTS idx_products_status_pending ON products(status, pending_publish)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Proposal indexes
		"CREATE INDEX IF NOT EXISTS idx_category_proposals_owner ON category_proposals(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_category_proposals_status ON category_proposals(status)",

		// Config version indexes
		"CREATE INDEX IF NOT EXISTS idx_config_versions_published_at ON config_versions(published_at DESC)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_actor_action ON audit_logs(actor_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_admin_notifications_status ON admin_notifications(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_inquiries_handled ON inquiries(handled, created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// SeedInitialData creates the two operator accounts and the single
// configuration draft row when they do not exist yet.
func SeedInitialData(db *gorm.DB, cfg config.PortalConfig) error {
	log.Println("Seeding initial data...")

	seedAccount := func(username, password string, role models.AccountRole, display string) error {
		var count int64
		db.Model(&models.Account{}).Where("role = ?", role).Count(&count)
		if count > 0 {
			return nil
		}

		account := &models.Account{
			Username:    username,
			Role:        role,
			DisplayName: display,
			Active:      true,
		}
		if err := account.SetPassword(password); err != nil {
			return fmt.Errorf("failed to set %s password: %w", role, err)
		}
		if err := db.Create(account).Error; err != nil {
			return fmt.Errorf("failed to create %s account: %w", role, err)
		}
		log.Printf("Default %s account created successfully", role)
		return nil
	}

	if err := seedAccount(cfg.FactoryUsername, cfg.FactoryPassword, models.RoleFactory, "Manufacturing Site"); err != nil {
		return err
	}
	if err := seedAccount(cfg.AdminUsername, cfg.AdminPassword, models.RoleAdmin, "Site Administrator"); err != nil {
		return err
	}

	// Exactly one working draft exists at any time.
	var draftCount int64
	db.Model(&models.SiteConfigDraft{}).Count(&draftCount)
	if draftCount == 0 {
		draft := &models.SiteConfigDraft{
			Content:       models.DefaultSiteConfigContent(),
			Revision:      0,
			Dirty:         false,
			ActiveVersion: 0,
		}
		if err := db.Create(draft).Error; err != nil {
			return fmt.Errorf("failed to create configuration draft: %w", err)
		}
		log.Println("Initial site configuration draft created")
	}

	log.Println("Initial data seeding completed")
	return nil
}

// WithTransaction runs fn inside a transaction, rolling back on error
// or panic. Errors from fn are returned unchanged so typed domain
// errors survive the commit path. Used where a single decision spans
// more than one aggregate, such as proposal approval writing both the
// proposal row and the configuration draft.
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
