// internal/handlers/product_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/northfab/portal-backend/internal/i18n"
	"github.com/northfab/portal-backend/internal/models"
	"github.com/northfab/portal-backend/internal/services"
	"github.com/northfab/portal-backend/internal/utils"
)

type ProductHandler struct {
	contentService *services.ContentService
}

type DecisionRequest struct {
	Action string `json:"action" binding:"required"`
	Note   string `json:"note,omitempty"`
}

func NewProductHandler(contentService *services.ContentService) *ProductHandler {
	return &ProductHandler{contentService: contentService}
}

// Create opens a new product draft owned by the caller.
// POST /v1/factory/products, POST /v1/admin/products
func (h *ProductHandler) Create(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, "validation.invalid"), err.Error())
		return
	}

	product, err := h.contentService.CreateDraft(actor, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, product)
}

// Get returns one product under the caller's visibility rules.
// GET /v1/factory/products/:id, GET /v1/admin/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid product id", nil)
		return
	}

	product, err := h.contentService.GetProduct(id, &actor)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// List returns the caller's products; admins see every owner and can
// filter by status.
// GET /v1/factory/products, GET /v1/admin/products
func (h *ProductHandler) List(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	params := services.ProductSearchParams{PaginationParams: utils.GetPaginationParams(c)}

	if !actor.IsAdmin() {
		owner := actor.AccountID
		params.OwnerID = &owner
	}

	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseContentStatus(raw)
		if err != nil {
			utils.AppErrorResponse(c, err)
			return
		}
		params.Status = &status
	}

	products, total, err := h.contentService.SearchProducts(params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// Update edits product fields subject to ownership and status rules.
// PUT /v1/factory/products/:id, PUT /v1/admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid product id", nil)
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, "validation.invalid"), err.Error())
		return
	}

	product, err := h.contentService.UpdateProduct(id, actor, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// Submit moves the caller's draft into the review queue.
// POST /v1/factory/products/:id/submit
func (h *ProductHandler) Submit(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid product id", nil)
		return
	}

	product, err := h.contentService.SubmitForReview(id, actor)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponseWithMeta(c, product, gin.H{"message": i18n.T(lang, "product.submitted")})
}

// Decide records the admin's approve or reject outcome.
// POST /v1/admin/products/:id/decision
func (h *ProductHandler) Decide(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid product id", nil)
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, "validation.invalid"), err.Error())
		return
	}

	action, err := models.ParseDecisionAction(req.Action)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	product, err := h.contentService.Decide(id, action, req.Note, actor)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}

// Delete removes a product and releases its asset references.
// DELETE /v1/factory/products/:id, DELETE /v1/admin/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid product id", nil)
		return
	}

	if err := h.contentService.Delete(id, actor); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, "product.deleted")})
}

// PublicList serves the marketing site catalog: published products with
// at least one image.
// GET /v1/products
func (h *ProductHandler) PublicList(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	products, total, err := h.contentService.PublicProducts(params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// PublicGet serves one visible product to anonymous callers.
// GET /v1/products/:id
func (h *ProductHandler) PublicGet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid product id", nil)
		return
	}

	product, err := h.contentService.GetProduct(id, nil)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, product)
}
