package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nia/backend/internal/application/insight"
)

// InsightHandler serves cached AI recommendations per lead
type InsightHandler struct {
	BaseHandler
	insightService *insight.Service
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(insightService *insight.Service) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
	}
}

// GetForLead godoc
// @ID           getLeadInsights
// @Summary      Get recommendations for a lead
// @Description  Serve the cached recommendation set, generating one on a cache miss
// @Tags         insights
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} dto.Response{data=insight.InsightResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id}/insights [get]
func (h *InsightHandler) GetForLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	result, err := h.insightService.GetForLead(c.Request.Context(), leadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Refresh godoc
// @ID           refreshLeadInsights
// @Summary      Regenerate recommendations for a lead
// @Description  Bypass the cache and regenerate the recommendation set
// @Tags         insights
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} dto.Response{data=insight.InsightResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id}/insights/refresh [post]
func (h *InsightHandler) Refresh(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	result, err := h.insightService.Refresh(c.Request.Context(), leadID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Invalidate godoc
// @ID           invalidateLeadInsights
// @Summary      Drop cached recommendations for a lead
// @Tags         insights
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id}/insights [delete]
func (h *InsightHandler) Invalidate(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lead ID")
		return
	}

	if err := h.insightService.Invalidate(c.Request.Context(), leadID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers insight routes under the lead resource
func (h *InsightHandler) RegisterRoutes(rg *gin.RouterGroup) {
	leads := rg.Group("/leads")
	{
		leads.GET("/:id/insights", h.GetForLead)
		leads.POST("/:id/insights/refresh", h.Refresh)
		leads.DELETE("/:id/insights", h.Invalidate)
	}
}
