// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/northfab/portal-backend/internal/config"
	"github.com/northfab/portal-backend/internal/handlers"
	"github.com/northfab/portal-backend/internal/middleware"
	"github.com/northfab/portal-backend/internal/models"
	"github.com/northfab/portal-backend/internal/services"
)

// Setup wires services, handlers and routes into a gin engine.
func Setup(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	auditService := services.NewAuditService(db)
	notificationService := services.NewNotificationService(db)
	releaseTimeout := time.Duration(cfg.Portal.AssetReleaseTimeout) * time.Second

	contentService := services.NewContentService(db, storageService, notificationService, auditService, releaseTimeout)
	siteConfigService := services.NewSiteConfigService(db, auditService)
	proposalService := services.NewProposalService(db, siteConfigService, notificationService, auditService)
	publishService := services.NewPublishService(contentService, proposalService, siteConfigService, auditService)
	authService := services.NewAuthService(db, cfg.JWT.AccessTokenTTL)
	inquiryService := services.NewInquiryService(db, notificationService)

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(contentService)
	proposalHandler := handlers.NewProposalHandler(proposalService)
	siteConfigHandler := handlers.NewSiteConfigHandler(siteConfigService)
	publishHandler := handlers.NewPublishHandler(publishService)
	adminHandler := handlers.NewAdminHandler(auditService, notificationService, inquiryService)
	uploadHandler := handlers.NewUploadHandler(storageService)
	inquiryHandler := handlers.NewInquiryHandler(inquiryService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	// Public surface for the marketing site.
	v1.GET("/site-config", siteConfigHandler.PublicConfig)
	v1.GET("/site-config/version", siteConfigHandler.PublicVersion)
	v1.GET("/products", productHandler.PublicList)
	v1.GET("/products/:id", productHandler.PublicGet)
	v1.POST("/inquiries", middleware.InquiryRateLimit(), inquiryHandler.Create)

	auth := v1.Group("/auth")
	{
		auth.POST("/login", middleware.AuthRateLimit(), authHandler.Login)
		auth.GET("/profile", middleware.AuthRequired(), authHandler.Profile)
	}

	factory := v1.Group("/factory")
	factory.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleFactory))
	{
		factory.POST("/products", productHandler.Create)
		factory.GET("/products", productHandler.List)
		factory.GET("/products/:id", productHandler.Get)
		factory.PUT("/products/:id", productHandler.Update)
		factory.POST("/products/:id/submit", productHandler.Submit)
		factory.DELETE("/products/:id", productHandler.Delete)

		factory.POST("/category-requests", proposalHandler.Create)
		factory.GET("/category-requests", proposalHandler.List)
		factory.GET("/category-requests/:id", proposalHandler.Get)
		factory.PUT("/category-requests/:id", proposalHandler.Update)
		factory.POST("/category-requests/:id/submit", proposalHandler.Submit)
		factory.DELETE("/category-requests/:id", proposalHandler.Delete)

		factory.POST("/uploads", middleware.UploadRateLimit(), uploadHandler.Upload)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("/review-queue", publishHandler.QueueSummary)

		admin.POST("/products", productHandler.Create)
		admin.GET("/products", productHandler.List)
		admin.GET("/products/:id", productHandler.Get)
		admin.PUT("/products/:id", productHandler.Update)
		admin.DELETE("/products/:id", productHandler.Delete)
		admin.POST("/products/:id/decision", productHandler.Decide)
		admin.POST("/products/bulk-decision", publishHandler.BulkDecideProducts)

		admin.GET("/category-requests", proposalHandler.List)
		admin.GET("/category-requests/:id", proposalHandler.Get)
		admin.PUT("/category-requests/:id", proposalHandler.Update)
		admin.DELETE("/category-requests/:id", proposalHandler.Delete)
		admin.POST("/category-requests/:id/decision", proposalHandler.Decide)
		admin.POST("/category-requests/bulk-decision", publishHandler.BulkDecideProposals)

		admin.GET("/site-config/draft", siteConfigHandler.GetDraft)
		admin.PATCH("/site-config/draft", siteConfigHandler.PatchDraft)
		admin.POST("/site-config/publish", siteConfigHandler.Publish)
		admin.GET("/site-config/versions", siteConfigHandler.History)
		admin.GET("/site-config/versions/:version", siteConfigHandler.GetVersion)
		admin.POST("/site-config/rollback", siteConfigHandler.Rollback)

		admin.POST("/publish", publishHandler.PublishAll)

		admin.GET("/audit-logs", adminHandler.ListAuditLogs)
		admin.GET("/notifications", adminHandler.ListNotifications)
		admin.POST("/notifications/:id/read", adminHandler.MarkNotificationRead)
		admin.GET("/inquiries", adminHandler.ListInquiries)
		admin.POST("/inquiries/:id/handled", adminHandler.MarkInquiryHandled)

		admin.POST("/uploads", middleware.UploadRateLimit(), uploadHandler.Upload)
	}

	return r, nil
}
