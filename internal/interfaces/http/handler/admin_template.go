package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nia/backend/internal/application/adminconfig"
	domainconfig "github.com/nia/backend/internal/domain/adminconfig"
	"github.com/nia/backend/internal/interfaces/http/middleware"
)

// TemplateHandler handles prompt template administration. All routes are
// admin-only.
type TemplateHandler struct {
	BaseHandler
	templateService *adminconfig.Service
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService *adminconfig.Service) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
	}
}

// Create godoc
// @ID           createPromptTemplate
// @Summary      Create a prompt template
// @Description  Create a prompt template for one of the AI pipelines
// @Tags         admin-templates
// @Accept       json
// @Produce      json
// @Param        request body adminconfig.CreateTemplateRequest true "Template definition"
// @Success      201 {object} dto.Response{data=adminconfig.TemplateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/templates [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	var req adminconfig.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.templateService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @ID           getPromptTemplateById
// @Summary      Get a prompt template by ID
// @Tags         admin-templates
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Success      200 {object} dto.Response{data=adminconfig.TemplateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/templates/{id} [get]
func (h *TemplateHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	result, err := h.templateService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listPromptTemplates
// @Summary      List prompt templates
// @Tags         admin-templates
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        kind query string false "Filter by pipeline" Enums(extraction, recommendation, questions, intelligence)
// @Param        active query bool false "Filter by active flag"
// @Success      200 {object} dto.Response{data=[]adminconfig.TemplateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	var filter adminconfig.TemplateListFilter
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

	results, err := h.templateService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, results, int64(len(results)), filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updatePromptTemplate
// @Summary      Update a prompt template
// @Description  Update a template's name or body; body changes bump the version
// @Tags         admin-templates
// @Accept       json
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Param        request body adminconfig.UpdateTemplateRequest true "Template update request"
// @Success      200 {object} dto.Response{data=adminconfig.TemplateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/templates/{id} [put]
func (h *TemplateHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	var req adminconfig.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.templateService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Activate godoc
// @ID           activatePromptTemplate
// @Summary      Activate a prompt template
// @Description  Make a template the active one for its pipeline, deactivating any previous
// @Tags         admin-templates
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Success      200 {object} dto.Response{data=adminconfig.TemplateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/templates/{id}/activate [post]
func (h *TemplateHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	result, err := h.templateService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Deactivate godoc
// @ID           deactivatePromptTemplate
// @Summary      Deactivate a prompt template
// @Description  Deactivate a template; its pipeline falls back to the built-in prompt
// @Tags         admin-templates
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Success      200 {object} dto.Response{data=adminconfig.TemplateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/templates/{id}/deactivate [post]
func (h *TemplateHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	result, err := h.templateService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
// @ID           deletePromptTemplate
// @Summary      Delete a prompt template
// @Tags         admin-templates
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/templates/{id} [delete]
func (h *TemplateHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Preview godoc
// @ID           previewPromptTemplate
// @Summary      Preview a rendered template
// @Description  Render the template body with sample placeholder values without saving anything
// @Tags         admin-templates
// @Accept       json
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Param        request body adminconfig.PreviewRequest true "Sample placeholder values"
// @Success      200 {object} dto.Response{data=adminconfig.PreviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/templates/{id}/preview [post]
func (h *TemplateHandler) Preview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	var req adminconfig.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.templateService.Preview(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Effective godoc
// @ID           effectivePromptTemplate
// @Summary      Get the effective prompt for a pipeline
// @Description  Return the prompt body a pipeline would use right now and whether it is a custom template
// @Tags         admin-templates
// @Produce      json
// @Param        kind path string true "Pipeline kind" Enums(extraction, recommendation, questions, intelligence)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/templates/effective/{kind} [get]
func (h *TemplateHandler) Effective(c *gin.Context) {
	kind, err := domainconfig.ParseKind(c.Param("kind"))
	if err != nil {
		h.BadRequest(c, "Invalid template kind")
		return
	}

	body, custom, err := h.templateService.EffectiveBody(c.Request.Context(), kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"kind":   string(kind),
		"body":   body,
		"custom": custom,
	})
}

// RegisterRoutes registers prompt template routes
func (h *TemplateHandler) RegisterRoutes(rg *gin.RouterGroup) {
	templates := rg.Group("/admin/templates", middleware.RequireAdmin())
	{
		templates.POST("", h.Create)
		templates.GET("", h.List)
		templates.GET("/effective/:kind", h.Effective)
		templates.GET("/:id", h.GetByID)
		templates.PUT("/:id", h.Update)
		templates.POST("/:id/activate", h.Activate)
		templates.POST("/:id/deactivate", h.Deactivate)
		templates.POST("/:id/preview", h.Preview)
		templates.DELETE("/:id", h.Delete)
	}
}
