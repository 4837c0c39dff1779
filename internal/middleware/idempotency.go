package middleware

import (
	"bytes"
	"net/http"

	"github.com/cradlehq/backend/internal/apierror"
	"github.com/cradlehq/backend/internal/logger"
	"github.com/cradlehq/backend/internal/repository"
	"github.com/gin-gonic/gin"
)

const (
	// IdempotencyKeyHeader is the HTTP header name for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
)

// idempotencyBodyWriter wraps gin.ResponseWriter to capture the response body for idempotency caching
type idempotencyBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *idempotencyBodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a mutating request repeats
// an Idempotency-Key already seen for the same route and user. Only 2xx
// responses are stored. GET and DELETE requests pass straight through.
func Idempotency(repo repository.IdempotencyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Ctx(c.Request.Context())

		// Only apply to mutating requests
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
			c.Next()
			return
		}

		// Check for idempotency key header
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			// No idempotency key - proceed without caching
			c.Next()
			return
		}

		// Set by the auth middleware
		userIDStr := c.GetString("user_id")
		if userIDStr == "" {
			log.Warn("idempotency check failed: no user_id in context")
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			c.Abort()
			return
		}

		// Concrete path, so one key cannot replay across children
		route := method + " " + c.Request.URL.Path

		// Check for existing idempotency record
		existing, err := repo.Get(c.Request.Context(), key, route, userIDStr)
		if err != nil {
			log.Error("failed to check idempotency key",
				logger.Err(err),
				logger.String("key", key),
			)
			// A store outage must not block writes
			c.Next()
			return
		}

		// If we found an existing record, replay the cached response
		if existing != nil {
			log.Info("replaying idempotent response",
				logger.String("key", key),
				logger.String("route", route),
				logger.Int("status_code", existing.StatusCode),
			)

			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.StatusCode, "application/json", existing.ResponseBody)
			c.Abort()
			return
		}

		blw := &idempotencyBodyWriter{
			body:           bytes.NewBuffer(nil),
			ResponseWriter: c.Writer,
		}
		c.Writer = blw

		c.Next()

		statusCode := c.Writer.Status()
		if statusCode >= 200 && statusCode < 300 {
			if err := repo.Store(c.Request.Context(), key, route, userIDStr, blw.body.Bytes(), statusCode); err != nil {
				log.Warn("failed to store idempotency key",
					logger.Err(err),
					logger.String("key", key),
				)
			} else {
				log.Debug("stored idempotency key",
					logger.String("key", key),
					logger.String("route", route),
					logger.Int("status_code", statusCode),
				)
			}
		}
	}
}
