package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nia/backend/internal/application/lead"
)

// LeadHandler handles lead pipeline HTTP requests
type LeadHandler struct {
	BaseHandler
	leadService *lead.Service
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *lead.Service) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
	}
}

// Create godoc
// @ID           createLead
// @Summary      Create a lead
// @Description  Create a lead manually; leads can also be created by conversation analysis
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        request body lead.CreateLeadRequest true "Lead creation request"
// @Success      201 {object} dto.Response{data=lead.LeadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads [post]
func (h *LeadHandler) Create(c *gin.Context) {
	var req lead.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	// Unowned leads default to the authenticated user
	if req.OwnerID == nil {
		if userID, err := getUserID(c); err == nil {
			req.OwnerID = &userID
		}
	}

	result, err := h.leadService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @ID           getLeadById
// @Summary      Get a lead by ID
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} dto.Response{data=lead.LeadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id} [get]
func (h *LeadHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	result, err := h.leadService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listLeads
// @Summary      List leads
// @Description  List leads with pagination and optional status, source, owner and text filters
// @Tags         leads
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        search query string false "Search by company, contact or email"
// @Param        status query string false "Filter by pipeline status" Enums(new, contacted, qualified, converted, lost)
// @Param        source query string false "Filter by source" Enums(manual, conversation, voice_call, import)
// @Param        owner_id query string false "Filter by owner" format(uuid)
// @Success      200 {object} dto.Response{data=[]lead.LeadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	var filter lead.LeadListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	results, total, err := h.leadService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, results, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateLead
// @Summary      Update a lead
// @Description  Partially update a lead's contact details, deal value, notes or owner
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body lead.UpdateLeadRequest true "Lead update request"
// @Success      200 {object} dto.Response{data=lead.LeadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	var req lead.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.leadService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Transition godoc
// @ID           transitionLead
// @Summary      Move a lead through the pipeline
// @Description  Transition a lead to a new pipeline status; invalid transitions are rejected
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body lead.TransitionRequest true "Target status"
// @Success      200 {object} dto.Response{data=lead.LeadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id}/transition [post]
func (h *LeadHandler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	var req lead.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.leadService.Transition(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
// @ID           deleteLead
// @Summary      Delete a lead
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	if err := h.leadService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// PipelineStats godoc
// @ID           leadPipelineStats
// @Summary      Lead pipeline counts
// @Description  Count of leads per pipeline status
// @Tags         leads
// @Produce      json
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /leads/stats [get]
func (h *LeadHandler) PipelineStats(c *gin.Context) {
	stats, err := h.leadService.PipelineStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// RegisterRoutes registers lead routes
func (h *LeadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	leads := rg.Group("/leads")
	{
		leads.POST("", h.Create)
		leads.GET("", h.List)
		leads.GET("/stats", h.PipelineStats)
		leads.GET("/:id", h.GetByID)
		leads.PUT("/:id", h.Update)
		leads.POST("/:id/transition", h.Transition)
		leads.DELETE("/:id", h.Delete)
	}
}
