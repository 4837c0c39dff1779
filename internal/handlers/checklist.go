package handlers

import (
	"net/http"

	"github.com/cradlehq/backend/internal/apierror"
	"github.com/cradlehq/backend/internal/models"
	"github.com/cradlehq/backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ChecklistHandler handles the personalised checklist endpoints
type ChecklistHandler struct {
	checklistService service.ChecklistService
}

// NewChecklistHandler creates a new checklist handler
func NewChecklistHandler(checklistService service.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{
		checklistService: checklistService,
	}
}

// Generate handles POST /api/v1/children/:child_id/checklist/generate
func (h *ChecklistHandler) Generate(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	childID, ok := childFromPath(c)
	if !ok {
		return
	}

	result, err := h.checklistService.Generate(c.Request.Context(), userID, childID)
	if err != nil {
		writeServiceError(c, err, "failed to generate checklist")
		return
	}

	status := http.StatusOK
	if result.Inserted > 0 {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// GetChecklist handles GET /api/v1/children/:child_id/checklist?view=&days=
func (h *ChecklistHandler) GetChecklist(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	childID, ok := childFromPath(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days")
	if !ok {
		return
	}

	view := models.ChecklistView(c.DefaultQuery("view", string(models.ChecklistViewAll)))
	checklist, err := h.checklistService.GetChecklist(c.Request.Context(), userID, childID, view, days)
	if err != nil {
		writeServiceError(c, err, "failed to get checklist")
		return
	}

	c.JSON(http.StatusOK, checklist)
}

// UpdateItem handles PATCH /api/v1/children/:child_id/checklist/:item_id
func (h *ChecklistHandler) UpdateItem(c *gin.Context) {
	userID, ok := userFromContext(c)
	if !ok {
		return
	}
	childID, ok := childFromPath(c)
	if !ok {
		return
	}

	var req models.UpdateChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.FromBindingError(apierror.GetRequestID(c), err))
		return
	}

	item, err := h.checklistService.SetCompleted(c.Request.Context(), userID, childID, c.Param("item_id"), &req)
	if err != nil {
		writeServiceError(c, err, "failed to update checklist item")
		return
	}

	c.JSON(http.StatusOK, item)
}
