package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"skillup-tracker/internal/observability"
	"skillup-tracker/internal/service"
)

// DashboardHandler serves the progress statistics endpoint.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats returns the caller's dashboard statistics
// GET /api/dashboard/stats/
func (h *DashboardHandler) Stats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		respondError(c, Unauthorized("missing or invalid authentication"))
		return
	}

	started := time.Now()
	stats, err := h.dashboard.ComputeStats(c.Request.Context(), userID)
	observability.ObserveDashboard(started, err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toDashboardStatsResponse(*stats))
}
