package v1

import (
	"net/http"
	"strconv"
	"time"

	"careers-backend/internal/delivery/http/middleware"
	"careers-backend/internal/domain"
	"careers-backend/pkg/apperror"
	"careers-backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

func requestMeta(c *gin.Context) domain.RequestMeta {
	return domain.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString(string(domain.KeyRequestID)),
	}
}

// setSessionCookie delivers the session to browsers. The cookie outlives the
// credential; the signed expiry inside is what counts.
func setSessionCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.CookieLifetime.Seconds()),
		Expires:  time.Now().Add(auth.CookieLifetime),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// currentCandidate reads the identity set by the auth gate. Request bodies
// never carry identity.
func currentCandidate(c *gin.Context) (domain.CandidateID, bool) {
	id, ok := middleware.CandidateID(c)
	if !ok {
		c.Error(domain.ErrUnauthenticated())
		return "", false
	}
	return id, true
}

// viewer returns the optional candidate for public read paths.
func viewer(c *gin.Context) *domain.CandidateID {
	if id, ok := middleware.CandidateID(c); ok {
		return &id
	}
	return nil
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.BadRequest("Invalid " + name))
		return 0, false
	}
	return id, true
}
