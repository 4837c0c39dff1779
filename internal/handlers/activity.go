package handlers

import (
	"net/http"
	"time"

	"github.com/cradlehq/backend/internal/apierror"
	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// defaultListWindow is the span GET /activities covers without start/end
const defaultListWindow = 7 * 24 * time.Hour

type ActivityHandler struct {
	activityService service.ActivityService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
	}
}

// CreateActivity handles POST /api/v1/children/:child_id/activities
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	childID, ok := childFromPath(c)
	if !ok {
		return
	}

	var req models.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.FromBindingError(apierror.GetRequestID(c), err))
		return
	}

	activity, err := h.activityService.CreateActivity(c.Request.Context(), userID, childID, &req)
	if err != nil {
		writeServiceError(c, err, "failed to create activity")
		return
	}

	c.JSON(http.StatusCreated, activity)
}

// ListActivities handles GET /api/v1/children/:child_id/activities
// Query: category, start, end (RFC3339). Defaults to the last 7 days.
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	childID, ok := childFromPath(c)
	if !ok {
		return
	}

	end := time.Now()
	start := end.Add(-defaultListWindow)

	var fieldErrors []apierror.FieldError
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fieldErrors = append(fieldErrors, apierror.FieldError{
				Field:   "end",
				Message: "must be a valid RFC3339 timestamp",
				Code:    "invalid_format",
			})
		} else {
			end = t
			start = end.Add(-defaultListWindow)
		}
	}
	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fieldErrors = append(fieldErrors, apierror.FieldError{
				Field:   "start",
				Message: "must be a valid RFC3339 timestamp",
				Code:    "invalid_format",
			})
		} else {
			start = t
		}
	}
	if len(fieldErrors) == 0 && start.After(end) {
		fieldErrors = append(fieldErrors, apierror.FieldError{
			Field:   "start",
			Message: "must not be after end",
			Code:    "invalid_range",
		})
	}
	if len(fieldErrors) > 0 {
		apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), fieldErrors))
		return
	}

	activities, err := h.activityService.ListActivities(c.Request.Context(), userID, childID, models.Category(c.Query("category")), start, end)
	if err != nil {
		writeServiceError(c, err, "failed to list activities")
		return
	}

	c.JSON(http.StatusOK, activities)
}

// DeleteActivity handles DELETE /api/v1/children/:child_id/activities/:id
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	childID, ok := childFromPath(c)
	if !ok {
		return
	}

	if err := h.activityService.DeleteActivity(c.Request.Context(), userID, childID, c.Param("id")); err != nil {
		writeServiceError(c, err, "failed to delete activity")
		return
	}

	c.Status(http.StatusNoContent)
}
