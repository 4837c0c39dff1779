package handlers

import (
	"errors"
	"strconv"

	"github.com/cradlehq/backend/internal/apierror"
	"github.com/cradlehq/backend/internal/logger"
	"github.com/cradlehq/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// userFromContext returns the authenticated user id or writes a 401
func userFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if id, ok := userID.(string); exists && ok && id != "" {
		return id, true
	}
	apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
	return "", false
}

// childFromPath validates the :child_id path parameter and tags the request
// context with it for logging.
func childFromPath(c *gin.Context) (string, bool) {
	childID := c.Param("child_id")
	if _, err := uuid.Parse(childID); err != nil {
		apierror.WriteProblem(c, apierror.NewInvalidUUIDError(apierror.GetRequestID(c), "child_id", childID))
		return "", false
	}
	c.Request = c.Request.WithContext(logger.WithChildID(c.Request.Context(), childID))
	return childID, true
}

// queryInt parses an optional integer query parameter; absent means 0
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		apierror.WriteProblem(c, apierror.NewValidationError(apierror.GetRequestID(c), []apierror.FieldError{
			{Field: name, Message: "must be an integer", Code: "invalid_type"},
		}))
		return 0, false
	}
	return n, true
}

// writeServiceError maps service errors to problem responses. Unknown
// errors are logged and answered with a generic 500.
func writeServiceError(c *gin.Context, err error, msg string) {
	requestID := apierror.GetRequestID(c)

	switch {
	case errors.Is(err, service.ErrChildNotFound):
		apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "Child", c.Param("child_id")))
	case errors.Is(err, service.ErrActivityNotFound):
		apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "Activity", c.Param("id")))
	case errors.Is(err, service.ErrChecklistItemNotFound):
		apierror.WriteProblem(c, apierror.NewNotFoundError(requestID, "Checklist item", c.Param("item_id")))
	case errors.Is(err, service.ErrInvalidUUID), errors.Is(err, service.ErrNotUUIDv7):
		apierror.WriteProblem(c, apierror.NewInvalidUUIDError(requestID, "id", err.Error()))
	case errors.Is(err, service.ErrFutureTimestamp):
		apierror.WriteProblem(c, apierror.NewFutureTimestampError(requestID, "id"))
	case errors.Is(err, service.ErrInvalidActivity):
		apierror.WriteProblem(c, apierror.NewInvalidActivityError(requestID, err.Error()))
	case errors.Is(err, service.ErrInvalidView):
		apierror.WriteProblem(c, apierror.NewValidationError(requestID, []apierror.FieldError{
			{Field: "view", Message: "must be one of: all, upcoming, overdue", Code: "oneof"},
		}))
	default:
		logger.Ctx(c.Request.Context()).Error(msg, logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
	}
}
