// internal/handlers/proposal_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/northfab/portal-backend/internal/i18n"
	"github.com/northfab/portal-backend/internal/models"
	"github.com/northfab/portal-backend/internal/services"
	"github.com/northfab/portal-backend/internal/utils"
)

type ProposalHandler struct {
	proposalService *services.ProposalService
}

func NewProposalHandler(proposalService *services.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService}
}

// Create opens a new category proposal draft.
// POST /v1/factory/category-requests, POST /v1/admin/category-requests
func (h *ProposalHandler) Create(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	var req services.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, "validation.invalid"), err.Error())
		return
	}

	proposal, err := h.proposalService.CreateDraft(actor, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, proposal)
}

// GET /v1/factory/category-requests/:id, GET /v1/admin/category-requests/:id
func (h *ProposalHandler) Get(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid proposal id", nil)
		return
	}

	proposal, err := h.proposalService.GetProposal(id, actor)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, proposal)
}

// GET /v1/factory/category-requests, GET /v1/admin/category-requests
func (h *ProposalHandler) List(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	params := services.ProposalSearchParams{PaginationParams: utils.GetPaginationParams(c)}

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

	proposals, total, err := h.proposalService.SearchProposals(params)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(proposals, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// PUT /v1/factory/category-requests/:id, PUT /v1/admin/category-requests/:id
func (h *ProposalHandler) Update(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid proposal id", nil)
		return
	}

	var req services.UpdateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, "validation.invalid"), err.Error())
		return
	}

	proposal, err := h.proposalService.UpdateProposal(id, actor, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, proposal)
}

// POST /v1/factory/category-requests/:id/submit
func (h *ProposalHandler) Submit(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid proposal id", nil)
		return
	}

	proposal, err := h.proposalService.SubmitForReview(id, actor)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponseWithMeta(c, proposal, gin.H{"message": i18n.T(lang, "category_request.submitted")})
}

// POST /v1/admin/category-requests/:id/decision
func (h *ProposalHandler) Decide(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid proposal id", nil)
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

	proposal, err := h.proposalService.Decide(id, action, req.Note, actor)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, proposal)
}

// DELETE /v1/factory/category-requests/:id, DELETE /v1/admin/category-requests/:id
func (h *ProposalHandler) Delete(c *gin.Context) {
	actor, ok := utils.ActorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid proposal id", nil)
		return
	}

	if err := h.proposalService.Delete(id, actor); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, "category_request.deleted")})
}
