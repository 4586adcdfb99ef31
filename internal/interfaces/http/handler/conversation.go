package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nia/backend/internal/application/conversation"
)

// ConversationHandler handles conversation analysis HTTP requests
type ConversationHandler struct {
	BaseHandler
	analyzeService *conversation.Service
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(analyzeService *conversation.Service) *ConversationHandler {
	return &ConversationHandler{
		analyzeService: analyzeService,
	}
}

// Analyze godoc
// @ID           analyzeConversation
// @Summary      Analyze a conversation transcript
// @Description  Run AI extraction over a raw transcript; a matching lead is linked or created
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Param        request body conversation.AnalyzeRequest true "Transcript to analyze"
// @Success      200 {object} dto.Response{data=conversation.AnalysisResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /conversations/analyze [post]
func (h *ConversationHandler) Analyze(c *gin.Context) {
	var req conversation.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.analyzeService.Analyze(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID godoc
// @ID           getAnalysisById
// @Summary      Get an analysis by ID
// @Tags         conversations
// @Produce      json
// @Param        id path string true "Analysis ID" format(uuid)
// @Success      200 {object} dto.Response{data=conversation.AnalysisResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /conversations/{id} [get]
func (h *ConversationHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid analysis ID")
		return
	}

	result, err := h.analyzeService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listAnalyses
// @Summary      List conversation analyses
// @Tags         conversations
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        status query string false "Filter by status" Enums(pending, completed, failed)
// @Param        lead_id query string false "Filter by linked lead" format(uuid)
// @Success      200 {object} dto.Response{data=[]conversation.AnalysisResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	var filter conversation.AnalysisListFilter
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

	results, total, err := h.analyzeService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, results, total, filter.Page, filter.PageSize)
}

// Reanalyze godoc
// @ID           reanalyzeConversation
// @Summary      Re-run extraction for an analysis
// @Description  Re-run AI extraction over the stored transcript of an existing analysis
// @Tags         conversations
// @Produce      json
// @Param        id path string true "Analysis ID" format(uuid)
// @Success      200 {object} dto.Response{data=conversation.AnalysisResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /conversations/{id}/reanalyze [post]
func (h *ConversationHandler) Reanalyze(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid analysis ID")
		return
	}

	result, err := h.analyzeService.Reanalyze(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
// @ID           deleteAnalysis
// @Summary      Delete an analysis
// @Tags         conversations
// @Produce      json
// @Param        id path string true "Analysis ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /conversations/{id} [delete]
func (h *ConversationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid analysis ID")
		return
	}

	if err := h.analyzeService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers conversation analysis routes
func (h *ConversationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	conversations := rg.Group("/conversations")
	{
		conversations.POST("/analyze", h.Analyze)
		conversations.GET("", h.List)
		conversations.GET("/:id", h.GetByID)
		conversations.POST("/:id/reanalyze", h.Reanalyze)
		conversations.DELETE("/:id", h.Delete)
	}
}
