package handlers

import (
	"net/http"

	"github.com/cradlehq/backend/internal/analytics"
	"github.com/cradlehq/backend/internal/apierror"
	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/internal/service"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetDaily handles GET /api/v1/children/:child_id/analytics/daily?days=
func (h *AnalyticsHandler) GetDaily(c *gin.Context) {
	userID, childID, days, ok := analyticsParams(c)
	if !ok {
		return
	}

	daily, err := h.analyticsService.GetDailyAnalytics(c.Request.Context(), userID, childID, days)
	if err != nil {
		writeServiceError(c, err, "failed to get daily analytics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"child_id": childID,
		"days":     daily,
	})
}

// GetPatterns handles GET /api/v1/children/:child_id/analytics/patterns?days=
func (h *AnalyticsHandler) GetPatterns(c *gin.Context) {
	userID, childID, days, ok := analyticsParams(c)
	if !ok {
		return
	}

	patterns, err := h.analyticsService.GetPatterns(c.Request.Context(), userID, childID, days)
	if err != nil {
		writeServiceError(c, err, "failed to get patterns")
		return
	}

	c.JSON(http.StatusOK, patterns)
}

// GetTrends handles GET /api/v1/children/:child_id/analytics/trends?days=&metric=
func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	userID, childID, days, ok := analyticsParams(c)
	if !ok {
		return
	}

	metric := c.Query("metric")
	if metric != "" {
		if _, known := analytics.MetricByName(metric); !known {
			apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), []apierror.FieldError{
				{Field: "metric", Message: "unknown trend metric", Code: "invalid_value"},
			}))
			return
		}
	}

	trends, err := h.analyticsService.GetTrends(c.Request.Context(), userID, childID, days)
	if err != nil {
		writeServiceError(c, err, "failed to get trends")
		return
	}

	if metric != "" {
		filtered := make([]models.TrendResult, 0, 1)
		for _, trend := range trends {
			if trend.Metric == metric {
				filtered = append(filtered, trend)
			}
		}
		trends = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"child_id": childID,
		"trends":   trends,
	})
}

// GetWeekly handles GET /api/v1/children/:child_id/analytics/weekly
func (h *AnalyticsHandler) GetWeekly(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	childID, ok := childFromPath(c)
	if !ok {
		return
	}

	summary, err := h.analyticsService.GetWeeklySummary(c.Request.Context(), userID, childID)
	if err != nil {
		writeServiceError(c, err, "failed to get weekly summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"child_id": childID,
		"weekly":   summary,
	})
}

// analyticsParams reads the user, the child and the ?days window
func analyticsParams(c *gin.Context) (userID, childID string, days int, ok bool) {
	if userID, ok = userFromContext(c); !ok {
		return
	}
	if childID, ok = childFromPath(c); !ok {
		return
	}
	days, ok = queryInt(c, "days")
	return
}
