// internal/handlers/publish_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/northfab/portal-backend/internal/i18n"
	"github.com/northfab/portal-backend/internal/services"
	"github.com/northfab/portal-backend/internal/utils"
)

type PublishHandler struct {
	publishService *services.PublishService
}

func NewPublishHandler(publishService *services.PublishService) *PublishHandler {
	return &PublishHandler{publishService: publishService}
}

// QueueSummary backs the admin review dashboard.
// GET /v1/admin/review-queue
func (h *PublishHandler) QueueSummary(c *gin.Context) {
	summary, err := h.publishService.QueueSummary()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, summary)
}

// BulkDecideProducts applies one decision to many products, reporting
// per-id outcomes.
// POST /v1/admin/products/bulk-decision
func (h *PublishHandler) BulkDecideProducts(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	var req services.BulkDecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, "validation.invalid"), err.Error())
		return
	}

	result, err := h.publishService.BulkDecideProducts(actor, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /v1/admin/category-requests/bulk-decision
func (h *PublishHandler) BulkDecideProposals(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	var req services.BulkDecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, "validation.invalid"), err.Error())
		return
	}

	result, err := h.publishService.BulkDecideProposals(actor, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// PublishAll cuts the draft over to a new version and clears pending
// publish indicators.
// POST /v1/admin/publish
func (h *PublishHandler) PublishAll(c *gin.Context) {
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

	result, err := h.publishService.PublishAll(actor, req.Message)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponseWithMeta(c, result, gin.H{"message": i18n.T(lang, "publish.completed")})
}
