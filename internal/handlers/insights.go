package handlers

import (
	"net/http"

	"github.com/cradlehq/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// InsightsHandler handles insights-related HTTP requests
type InsightsHandler struct {
	analyticsService service.AnalyticsService
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(analyticsService service.AnalyticsService) *InsightsHandler {
	return &InsightsHandler{
		analyticsService: analyticsService,
	}
}

// GetInsights returns insights and alerts for a child
// GET /api/v1/children/:child_id/insights?days=
func (h *InsightsHandler) GetInsights(c *gin.Context) {
	userID, childID, days, ok := analyticsParams(c)
	if !ok {
		return
	}

	// Too little data is a normal answer (data_sufficient=false), not an error
	insights, err := h.analyticsService.GetInsights(c.Request.Context(), userID, childID, days)
	if err != nil {
		writeServiceError(c, err, "failed to get insights")
		return
	}

	c.JSON(http.StatusOK, insights)
}
