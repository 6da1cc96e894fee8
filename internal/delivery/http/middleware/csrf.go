package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"careers-backend/internal/delivery/http/response"
	"careers-backend/internal/domain"
	"careers-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

const (
	// CSRFTokenCookieName is the name of the cookie that stores the CSRF token
	CSRFTokenCookieName = "csrf_token"
	// CSRFTokenHeaderName is the name of the header that must contain the CSRF token
	CSRFTokenHeaderName = "X-CSRF-Token"
	// CSRFTokenLength is the length of the generated token in bytes (32 bytes = 64 hex chars)
	CSRFTokenLength = 32
	// CSRFTokenExpiry is how long the token is valid
	CSRFTokenExpiry = 24 * time.Hour
)

// generateCSRFToken creates a cryptographically secure random token
func generateCSRFToken() (string, error) {
	bytes := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func setCSRFCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CSRFTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(CSRFTokenExpiry.Seconds()),
		Secure:   true,
		HttpOnly: false, // JS must read it
		SameSite: http.SameSiteNoneMode,
	})
}

// CSRFMiddleware implements the double-submit cookie pattern. It must run
// after the auth gate: only mutations authenticated by the session cookie
// are checked, since header credentials are never sent implicitly.
//
// The token is also echoed in the X-CSRF-Token response header so a
// frontend on another origin can read it.
func CSRFMiddleware(secLogger *security.SecurityLogger) gin.HandlerFunc {
	if secLogger == nil {
		secLogger = security.DefaultLogger()
	}

	return func(c *gin.Context) {
		csrfCookie, err := c.Cookie(CSRFTokenCookieName)
		if err != nil || csrfCookie == "" {
			newToken, err := generateCSRFToken()
			if err != nil {
				response.Error(c, http.StatusInternalServerError, "Failed to generate security token", nil)
				c.Abort()
				return
			}
			setCSRFCookie(c, newToken)
			csrfCookie = newToken
		}
		c.Header(CSRFTokenHeaderName, csrfCookie)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if c.GetString(string(domain.KeyAuthSource)) != domain.AuthSourceCookie {
			c.Next()
			return
		}

		headerToken := c.GetHeader(CSRFTokenHeaderName)
		if headerToken == "" || subtle.ConstantTimeCompare([]byte(headerToken), []byte(csrfCookie)) != 1 {
			reqID := c.GetString(string(domain.KeyRequestID))
			secLogger.Log(c.Request.Context(), security.SecurityEvent{
				Event:     security.EventCSRFViolation,
				IP:        c.ClientIP(),
				UserAgent: c.GetHeader("User-Agent"),
				RequestID: reqID,
				Details:   map[string]interface{}{"path": c.FullPath(), "missing": headerToken == ""},
			})
			msg := "Invalid CSRF token"
			if headerToken == "" {
				msg = "Missing CSRF token"
			}
			response.Error(c, http.StatusForbidden, msg, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
