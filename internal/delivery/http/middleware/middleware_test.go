package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"careers-backend/internal/domain"
	"careers-backend/pkg/auth"
	"careers-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAuthUC struct {
	mock.Mock
}

func (m *mockAuthUC) Register(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockAuthUC) ResendVerification(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockAuthUC) Verify(ctx context.Context, token, email string) (*domain.AuthResult, error) {
	args := m.Called(ctx, token, email)
	res, _ := args.Get(0).(*domain.AuthResult)
	return res, args.Error(1)
}

func (m *mockAuthUC) RequestLogin(ctx context.Context, email string, meta domain.RequestMeta) error {
	return m.Called(ctx, email, meta).Error(0)
}

func (m *mockAuthUC) VerifyLogin(ctx context.Context, token, email, presented string, meta domain.RequestMeta) (*domain.AuthResult, error) {
	args := m.Called(ctx, token, email, presented, meta)
	res, _ := args.Get(0).(*domain.AuthResult)
	return res, args.Error(1)
}

func (m *mockAuthUC) Authenticate(ctx context.Context, sessionToken string) (*domain.Candidate, error) {
	args := m.Called(ctx, sessionToken)
	c, _ := args.Get(0).(*domain.Candidate)
	return c, args.Error(1)
}

func (m *mockAuthUC) GetCandidate(ctx context.Context, id domain.CandidateID) (*domain.Candidate, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*domain.Candidate)
	return c, args.Error(1)
}

const testCandidateID = domain.CandidateID("5b0c2f39-6a4e-4c53-9d0e-0f3a3b1c7d21")

func verifiedCandidate() *domain.Candidate {
	return &domain.Candidate{ID: testCandidateID, Email: "jane@example.com", EmailVerified: true}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestExtractSessionToken(t *testing.T) {
	run := func(setup func(r *http.Request)) (string, string) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		setup(c.Request)
		return ExtractSessionToken(c)
	}

	t.Run("Should prefer the x-auth-token header", func(t *testing.T) {
		tok, src := run(func(r *http.Request) {
			r.Header.Set(AuthTokenHeader, "from-header")
			r.Header.Set("Authorization", "Bearer from-bearer")
			r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "from-cookie"})
		})
		assert.Equal(t, "from-header", tok)
		assert.Equal(t, domain.AuthSourceHeader, src)
	})

	t.Run("Should fall back to the bearer token", func(t *testing.T) {
		tok, src := run(func(r *http.Request) {
			r.Header.Set("Authorization", "bearer from-bearer")
			r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "from-cookie"})
		})
		assert.Equal(t, "from-bearer", tok)
		assert.Equal(t, domain.AuthSourceHeader, src)
	})

	t.Run("Should use the cookie last", func(t *testing.T) {
		tok, src := run(func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "from-cookie"})
		})
		assert.Equal(t, "from-cookie", tok)
		assert.Equal(t, domain.AuthSourceCookie, src)
	})

	t.Run("Should return nothing when no credential is present", func(t *testing.T) {
		tok, src := run(func(r *http.Request) {})
		assert.Empty(t, tok)
		assert.Empty(t, src)
	})
}

func TestCandidateAuth(t *testing.T) {
	newRouter := func(uc domain.CandidateAuthUsecase) *gin.Engine {
		r := gin.New()
		r.GET("/me", CandidateAuth(uc), func(c *gin.Context) {
			id, _ := CandidateID(c)
			c.JSON(http.StatusOK, gin.H{"id": id, "email": CandidateEmail(c), "source": c.GetString(string(domain.KeyAuthSource))})
		})
		return r
	}

	t.Run("Should reject requests without a credential", func(t *testing.T) {
		uc := new(mockAuthUC)
		w := httptest.NewRecorder()
		newRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, false, decodeBody(t, w)["success"])
		uc.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("Should surface the expired flag", func(t *testing.T) {
		uc := new(mockAuthUC)
		uc.On("Authenticate", mock.Anything, "old").Return(nil, domain.ErrSessionExpired())

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthTokenHeader, "old")
		w := httptest.NewRecorder()
		newRouter(uc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, true, decodeBody(t, w)[domain.FlagExpired])
	})

	t.Run("Should expose the candidate to handlers", func(t *testing.T) {
		uc := new(mockAuthUC)
		uc.On("Authenticate", mock.Anything, "good").Return(verifiedCandidate(), nil)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "good"})
		w := httptest.NewRecorder()
		newRouter(uc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, string(testCandidateID), body["id"])
		assert.Equal(t, "jane@example.com", body["email"])
		assert.Equal(t, domain.AuthSourceCookie, body["source"])
	})
}

func TestOptionalCandidateAuth(t *testing.T) {
	r := gin.New()
	uc := new(mockAuthUC)
	uc.On("Authenticate", mock.Anything, "bad").Return(nil, domain.ErrInvalidSession())
	r.GET("/jobs", OptionalCandidateAuth(uc), func(c *gin.Context) {
		_, ok := CandidateID(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})

	t.Run("Should let anonymous requests through", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decodeBody(t, w)["authenticated"])
	})

	t.Run("Should ignore an invalid credential", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		req.Header.Set(AuthTokenHeader, "bad")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decodeBody(t, w)["authenticated"])
	})
}

func TestAdminAuth(t *testing.T) {
	sessions := auth.NewSessionManager("middleware-test-secret-0123456789", "careers-test", time.Hour)
	r := gin.New()
	r.GET("/admin", AdminAuth(sessions), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	call := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	t.Run("Should accept an admin session", func(t *testing.T) {
		s, err := sessions.IssueAdmin("admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, call(s.Token))
	})

	t.Run("Should forbid a candidate session", func(t *testing.T) {
		s, err := sessions.IssueCandidate(string(testCandidateID), "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, call(s.Token))
	})

	t.Run("Should reject garbage and missing credentials", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("not-a-jwt"))
		assert.Equal(t, http.StatusUnauthorized, call(""))
	})
}

func TestCSRFMiddleware(t *testing.T) {
	newRouter := func(source string) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set(string(domain.KeyAuthSource), source)
			c.Next()
		})
		r.Use(CSRFMiddleware(security.NewNopLogger()))
		r.GET("/profile", func(c *gin.Context) { c.Status(http.StatusOK) })
		r.PUT("/profile", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	t.Run("Should issue a token on safe requests", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(domain.AuthSourceCookie).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, w.Header().Get(CSRFTokenHeaderName), CSRFTokenLength*2)
		assert.Contains(t, w.Header().Get("Set-Cookie"), CSRFTokenCookieName+"=")
	})

	t.Run("Should reject cookie-authenticated mutations without the header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/profile", nil)
		req.AddCookie(&http.Cookie{Name: CSRFTokenCookieName, Value: "abc"})
		w := httptest.NewRecorder()
		newRouter(domain.AuthSourceCookie).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Missing CSRF token", decodeBody(t, w)["msg"])
	})

	t.Run("Should reject a mismatched header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/profile", nil)
		req.AddCookie(&http.Cookie{Name: CSRFTokenCookieName, Value: "abc"})
		req.Header.Set(CSRFTokenHeaderName, "xyz")
		w := httptest.NewRecorder()
		newRouter(domain.AuthSourceCookie).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Should accept a matching header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/profile", nil)
		req.AddCookie(&http.Cookie{Name: CSRFTokenCookieName, Value: "abc"})
		req.Header.Set(CSRFTokenHeaderName, "abc")
		w := httptest.NewRecorder()
		newRouter(domain.AuthSourceCookie).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Should skip header-authenticated mutations", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(domain.AuthSourceHeader).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/profile", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(string(domain.KeyRequestID)))
	})

	t.Run("Should reuse a well-formed incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-12345678")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-12345678", w.Body.String())
		assert.Equal(t, "req-12345678", w.Header().Get(RequestIDHeader))
	})

	t.Run("Should replace a malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "bad id\n")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.NotEqual(t, "bad id\n", w.Body.String())
		assert.Len(t, w.Body.String(), 36)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := AuthRateLimitConfig(2, time.Minute)
	cfg.KeyPrefix = "rl:test:" + t.Name() + ":"

	r := gin.New()
	r.POST("/auth/register", RateLimitMiddleware(cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/register", nil))
		codes = append(codes, w.Code)
		if i == 2 {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadiness(t *testing.T) {
	newRouter := func(err error) *gin.Engine {
		r := gin.New()
		r.Use(Readiness(pingerFunc(func(context.Context) error { return err })))
		r.GET("/api", func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}

	t.Run("Should pass through when the database answers", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Should return 503 when the database is down", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(context.DeadlineExceeded).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "Database unavailable", decodeBody(t, w)["msg"])
	})
}
