package response

import (
	"errors"
	"net/http"

	"careers-backend/internal/domain"
	"careers-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorBody documents the error shape. Flags from the error are merged in at
// the top level, e.g. {"success":false,"msg":"...","expired":true}.
type ErrorBody struct {
	Success   bool   `json:"success"`
	Msg       string `json:"msg"`
	RequestID string `json:"request_id,omitempty"`
}

func requestID(c *gin.Context) string {
	reqID, _ := c.Get(string(domain.KeyRequestID))
	idStr, _ := reqID.(string) // Safe type assertion
	return idStr
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

// Error sends an error response with optional boolean flags
func Error(c *gin.Context, code int, message string, flags map[string]bool) {
	body := gin.H{
		"success": false,
		"msg":     message,
	}
	if id := requestID(c); id != "" {
		body["request_id"] = id
	}
	for name, v := range flags {
		body[name] = v
	}
	c.JSON(code, body)
}

// AbortWithError renders err and stops the chain. Non-AppErrors become a
// generic 500.
func AbortWithError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		Error(c, appErr.Code, appErr.Message, appErr.Flags)
	} else {
		Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
	c.Abort()
}
