package middleware

import (
	"errors"
	"net/http"

	"careers-backend/internal/delivery/http/response"
	"careers-backend/pkg/apperror"
	"careers-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Check if there are errors appended to the context
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("Request failed",
					"path", c.FullPath(),
					"request_id", c.GetString("RequestID"),
					"kind", appErr.Kind,
					"error", appErr.Unwrap(),
				)
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Flags)
			return
		}

		// SECURITY: Never expose internal error details to clients.
		logger.Log.Error("Internal Server Error",
			"path", c.FullPath(),
			"request_id", c.GetString("RequestID"),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
