// internal/handlers/siteconfig_handler.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/northfab/portal-backend/internal/i18n"
	"github.com/northfab/portal-backend/internal/services"
	"github.com/northfab/portal-backend/internal/utils"
)

type SiteConfigHandler struct {
	configService *services.SiteConfigService
}

func NewSiteConfigHandler(configService *services.SiteConfigService) *SiteConfigHandler {
	return &SiteConfigHandler{configService: configService}
}

// PublicConfig serves the active published configuration snapshot.
// GET /v1/site-config
func (h *SiteConfigHandler) PublicConfig(c *gin.Context) {
	version, err := h.configService.ActiveSnapshot()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, version.Content, gin.H{
		"version":      version.Version,
		"published_at": version.PublishedAt,
	})
}

// PublicVersion serves just the active version number, a cheap poll
// target for cache invalidation.
// GET /v1/site-config/version
func (h *SiteConfigHandler) PublicVersion(c *gin.Context) {
	version, publishedAt, err := h.configService.CurrentVersion()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	resp := gin.H{"version": version}
	if version > 0 {
		resp["published_at"] = publishedAt
	}
	utils.SuccessResponse(c, resp)
}

// GetDraft returns the working copy with its revision token.
// GET /v1/admin/site-config/draft
func (h *SiteConfigHandler) GetDraft(c *gin.Context) {
	draft, err := h.configService.GetDraft()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, draft)
}

// PatchDraft applies dotted-path patch operations to the draft.
// PATCH /v1/admin/site-config/draft
func (h *SiteConfigHandler) PatchDraft(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	var req services.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, "validation.invalid"), err.Error())
		return
	}

	draft, err := h.configService.UpdateDraft(actor, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, draft)
}

// Publish snapshots the draft into a new version.
// POST /v1/admin/site-config/publish
func (h *SiteConfigHandler) Publish(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	var req services.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, "validation.invalid"), err.Error())
		return
	}

	version, err := h.configService.Publish(actor, req.Message)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponseWithMeta(c, version, gin.H{"message": i18n.T(lang, "site_config.published")})
}

// History lists published versions, newest first.
// GET /v1/admin/site-config/versions
func (h *SiteConfigHandler) History(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	versions, total, err := h.configService.ListHistory(params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(versions, total, params)
	utils.PaginatedResponse(c, result)
}

// GetVersion returns one published snapshot.
// GET /v1/admin/site-config/versions/:version
func (h *SiteConfigHandler) GetVersion(c *gin.Context) {
	number, err := strconv.ParseInt(c.Param("version"), 10, 64)
	if err != nil || number < 1 {
		utils.BadRequestResponse(c, "invalid version number", nil)
		return
	}

	version, err := h.configService.GetVersion(number)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, version)
}

// Rollback publishes the target version's snapshot as a new version.
// POST /v1/admin/site-config/rollback
func (h *SiteConfigHandler) Rollback(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	var req services.RollbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, "validation.invalid"), err.Error())
		return
	}

	version, err := h.configService.Rollback(actor, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponseWithMeta(c, version, gin.H{"message": i18n.T(lang, "site_config.rolled_back")})
}
