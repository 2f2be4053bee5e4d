// internal/handlers/inquiry_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/northfab/portal-backend/internal/i18n"
	"github.com/northfab/portal-backend/internal/services"
	"github.com/northfab/portal-backend/internal/utils"
)

type InquiryHandler struct {
	inquiryService *services.InquiryService
}

func NewInquiryHandler(inquiryService *services.InquiryService) *InquiryHandler {
	return &InquiryHandler{inquiryService: inquiryService}
}

// Create receives a contact form submission from the public site.
// POST /v1/inquiries
func (h *InquiryHandler) Create(c *gin.Context) {
	var req services.CreateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, "validation.invalid"), err.Error())
		return
	}

	inquiry, err := h.inquiryService.Create(&req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponseWithMeta(c, gin.H{"id": inquiry.ID}, gin.H{"message": i18n.T(lang, "inquiry.received")})
}
