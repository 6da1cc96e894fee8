package middleware

import (
	"errors"
	"net/http"
	"strings"

	"careers-backend/internal/delivery/http/response"
	"careers-backend/internal/domain"
	"careers-backend/pkg/apperror"
	"careers-backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

// AuthTokenHeader carries the session for clients that cannot use cookies.
const AuthTokenHeader = "x-auth-token"

// ExtractSessionToken finds the session credential on the request. Order:
// x-auth-token header, Authorization bearer, then the auth_token cookie.
func ExtractSessionToken(c *gin.Context) (token string, source string) {
	if t := strings.TrimSpace(c.GetHeader(AuthTokenHeader)); t != "" {
		return t, domain.AuthSourceHeader
	}
	if h := c.GetHeader("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		if t := strings.TrimSpace(h[7:]); t != "" {
			return t, domain.AuthSourceHeader
		}
	}
	if cookie, err := c.Cookie(auth.CookieName); err == nil && cookie != "" {
		return cookie, domain.AuthSourceCookie
	}
	return "", ""
}

func resolveCandidate(c *gin.Context, authUC domain.CandidateAuthUsecase) (*domain.Candidate, string, error) {
	token, source := ExtractSessionToken(c)
	if token == "" {
		return nil, "", domain.ErrUnauthenticated()
	}
	candidate, err := authUC.Authenticate(c.Request.Context(), token)
	if err != nil {
		return nil, "", err
	}
	return candidate, source, nil
}

func setCandidate(c *gin.Context, candidate *domain.Candidate, source string) {
	c.Set(string(domain.KeyCandidateID), candidate.ID)
	c.Set(string(domain.KeyUserEmail), candidate.Email)
	c.Set(string(domain.KeyEmailVerified), candidate.EmailVerified)
	c.Set(string(domain.KeyUserRole), domain.RoleCandidate)
	c.Set(string(domain.KeyAuthSource), source)
}

// CandidateAuth requires a valid session for a verified candidate.
func CandidateAuth(authUC domain.CandidateAuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		candidate, source, err := resolveCandidate(c, authUC)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}
		setCandidate(c, candidate, source)
		c.Next()
	}
}

// OptionalCandidateAuth identifies the candidate when it can and otherwise
// lets the request through anonymously.
func OptionalCandidateAuth(authUC domain.CandidateAuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		if candidate, source, err := resolveCandidate(c, authUC); err == nil {
			setCandidate(c, candidate, source)
		}
		c.Next()
	}
}

// AdminAuth requires an admin session.
func AdminAuth(sessions *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, source := ExtractSessionToken(c)
		if token == "" {
			response.AbortWithError(c, domain.ErrUnauthenticated())
			return
		}

		claims, err := sessions.Parse(token)
		if err != nil {
			if errors.Is(err, auth.ErrSessionExpired) {
				response.AbortWithError(c, domain.ErrSessionExpired())
				return
			}
			response.AbortWithError(c, domain.ErrInvalidSession())
			return
		}
		if claims.Role != domain.RoleAdmin {
			response.AbortWithError(c, apperror.New(http.StatusForbidden, "Admin access required", nil))
			return
		}

		c.Set(string(domain.KeyUserEmail), claims.Email)
		c.Set(string(domain.KeyUserRole), domain.RoleAdmin)
		c.Set(string(domain.KeyAuthSource), source)
		c.Next()
	}
}

// CandidateID returns the authenticated candidate, if any.
func CandidateID(c *gin.Context) (domain.CandidateID, bool) {
	v, ok := c.Get(string(domain.KeyCandidateID))
	if !ok {
		return "", false
	}
	id, ok := v.(domain.CandidateID)
	return id, ok
}

// CandidateEmail returns the authenticated candidate's email.
func CandidateEmail(c *gin.Context) string {
	return c.GetString(string(domain.KeyUserEmail))
}
