package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nia/backend/internal/application/dashboard"
	"github.com/nia/backend/internal/interfaces/http/middleware"
)

// DashboardHandler serves aggregate pipeline statistics
type DashboardHandler struct {
	BaseHandler
	statsService *dashboard.StatsService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(statsService *dashboard.StatsService) *DashboardHandler {
	return &DashboardHandler{
		statsService: statsService,
	}
}

// Stats godoc
// @ID           dashboardStats
// @Summary      Dashboard statistics snapshot
// @Description  Serve the current dashboard snapshot, recomputing it when stale
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=dashboard.Snapshot}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	snapshot, err := h.statsService.Get(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, snapshot)
}

// Recompute godoc
// @ID           recomputeDashboardStats
// @Summary      Force a dashboard recompute
// @Description  Recompute the snapshot immediately instead of waiting for the TTL
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=dashboard.Snapshot}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dashboard/stats/recompute [post]
func (h *DashboardHandler) Recompute(c *gin.Context) {
	snapshot, err := h.statsService.Recompute(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, snapshot)
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	dash := rg.Group("/dashboard", middleware.RequireAdmin())
	{
		dash.GET("/stats", h.Stats)
		dash.POST("/stats/recompute", h.Recompute)
	}
}
