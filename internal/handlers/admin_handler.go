// internal/handlers/admin_handler.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/northfab/portal-backend/internal/i18n"
	"github.com/northfab/portal-backend/internal/services"
	"github.com/northfab/portal-backend/internal/utils"
)

// AdminHandler covers the admin side surfaces that are not part of a
// content lifecycle: audit logs, notifications and inquiry triage.
type AdminHandler struct {
	auditService        *services.AuditService
	notificationService *services.NotificationService
	inquiryService      *services.InquiryService
}

func NewAdminHandler(audit *services.AuditService, notifications *services.NotificationService, inquiries *services.InquiryService) *AdminHandler {
	return &AdminHandler{
		auditService:        audit,
		notificationService: notifications,
		inquiryService:      inquiries,
	}
}

// GET /v1/admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	logs, total, err := h.auditService.List(services.ListAuditParams{
		Page:         params.Page,
		Limit:        params.Limit,
		Action:       c.Query("action"),
		ResourceType: c.Query("resource_type"),
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(logs, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /v1/admin/notifications
func (h *AdminHandler) ListNotifications(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))

	notifications, total, err := h.notificationService.List(unreadOnly, params.Page, params.Limit)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(notifications, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /v1/admin/notifications/:id/read
func (h *AdminHandler) MarkNotificationRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid notification id", nil)
		return
	}

	if err := h.notificationService.MarkRead(id); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"read": true})
}

// GET /v1/admin/inquiries
func (h *AdminHandler) ListInquiries(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var handled *bool
	if raw := c.Query("handled"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.BadRequestResponse(c, "invalid handled filter", nil)
			return
		}
		handled = &v
	}

	inquiries, total, err := h.inquiryService.List(params, handled)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(inquiries, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /v1/admin/inquiries/:id/handled
func (h *AdminHandler) MarkInquiryHandled(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid inquiry id", nil)
		return
	}

	if err := h.inquiryService.MarkHandled(id); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, "inquiry.handled")})
}
