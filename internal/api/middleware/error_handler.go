// Package middleware provides the Gin middleware of multiauth: request IDs,
// centralized error rendering and the guard provider selector.
//
// Import Path: kv-shepherd.io/multiauth/internal/api/middleware
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "kv-shepherd.io/multiauth/internal/pkg/errors"
)

// ErrorHandler renders the last error added via c.Error() as JSON.
// Validation errors keep the {"error": <bag>, "status_code": 422} shape.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log := LoggerFrom(c.Request.Context())

		if vErr, ok := apperrors.IsValidationError(err); ok {
			c.JSON(http.StatusUnprocessableEntity, validationBody(vErr))
			return
		}

		if appErr, ok := apperrors.IsAppError(err); ok {
			log.Warn("request error",
				zap.String("code", appErr.Code),
				zap.String("message", appErr.Message),
				zap.Int("status", appErr.HTTPStatus),
				zap.Error(appErr.Err),
			)
			body := gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			}
			if len(appErr.Params) > 0 {
				body["params"] = appErr.Params
			}
			c.JSON(appErr.HTTPStatus, body)
			return
		}

		log.Error("unhandled request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "An internal error occurred",
		})
	}
}
