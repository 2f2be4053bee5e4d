// internal/handlers/upload_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/northfab/portal-backend/internal/i18n"
	"github.com/northfab/portal-backend/internal/services"
	"github.com/northfab/portal-backend/internal/utils"
)

type UploadHandler struct {
	storageService *services.StorageService
}

func NewUploadHandler(storageService *services.StorageService) *UploadHandler {
	return &UploadHandler{storageService: storageService}
}

// Upload stores an asset and returns its reference string. The category
// form field selects the size and type policy (products, categories,
// site).
// POST /v1/factory/uploads, POST /v1/admin/uploads
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "file field is required", err.Error())
		return
	}
	defer file.Close()

	category := c.DefaultPostForm("category", "products")
	options := h.storageService.GetDefaultUploadOptions(category)

	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponseWithMeta(c, result, gin.H{"message": i18n.T(lang, "upload.success")})
}
