package v1

import (
	"net/http"
	"time"

	"careers-backend/internal/delivery/http/middleware"
	"careers-backend/internal/delivery/http/response"
	"careers-backend/internal/domain"
	"careers-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.CandidateAuthUsecase
}

func NewAuthHandler(public *gin.RouterGroup, protected *gin.RouterGroup, limited gin.HandlerFunc, authUC domain.CandidateAuthUsecase) {
	handler := &AuthHandler{authUC: authUC}

	// Public Routes
	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/register", limited, handler.Register)
		publicAuth.POST("/resend-verification", limited, handler.ResendVerification)
		publicAuth.GET("/verify-email", limited, handler.VerifyEmail)
		publicAuth.POST("/request-login", limited, handler.RequestLogin)
		publicAuth.GET("/verify-login", limited, handler.VerifyLogin)
		publicAuth.POST("/logout", handler.Logout)
	}

	// Protected Routes
	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/me", handler.Me)
	}
}

type EmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// MessageResponse is the data payload of flows that only send an email.
type MessageResponse struct {
	Msg   string `json:"msg"`
	Email string `json:"email,omitempty"`
}

// SessionResponse is the data payload of flows that end in a session. The
// token is the same value set in the auth_token cookie.
type SessionResponse struct {
	Msg             string    `json:"msg"`
	Email           string    `json:"email"`
	Token           string    `json:"token"`
	ExpiresAt       time.Time `json:"expiresAt"`
	AlreadyVerified bool      `json:"alreadyVerified,omitempty"`
}

func bindEmail(c *gin.Context) (string, bool) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Email is required"))
		return "", false
	}
	return req.Email, true
}

// Register godoc
// @Summary      Register candidate
// @Description  Create or refresh a pending candidate and email a verification link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      EmailRequest  true  "Email"
// @Success      200      {object}  response.Response{data=MessageResponse}
// @Failure      400      {object}  response.ErrorBody
// @Failure      409      {object}  response.ErrorBody
// @Failure      503      {object}  response.ErrorBody
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	raw, ok := bindEmail(c)
	if !ok {
		return
	}
	email, err := h.authUC.Register(c.Request.Context(), raw)
	if err != nil {
		c.Error(err)
		return
	}
	msg := "Verification email sent. Please check your inbox."
	response.Success(c, http.StatusOK, msg, MessageResponse{Msg: msg, Email: email})
}

// ResendVerification godoc
// @Summary      Resend verification email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      EmailRequest  true  "Email"
// @Success      200      {object}  response.Response{data=MessageResponse}
// @Failure      404      {object}  response.ErrorBody
// @Failure      409      {object}  response.ErrorBody
// @Router       /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	raw, ok := bindEmail(c)
	if !ok {
		return
	}
	email, err := h.authUC.ResendVerification(c.Request.Context(), raw)
	if err != nil {
		c.Error(err)
		return
	}
	msg := "A new verification email has been sent."
	response.Success(c, http.StatusOK, msg, MessageResponse{Msg: msg, Email: email})
}

// VerifyEmail godoc
// @Summary      Verify email
// @Description  Consume a verification link and start a session. Opening an old link after verification logs the candidate in.
// @Tags         auth
// @Produce      json
// @Param        token  query     string  true   "Verification token"
// @Param        email  query     string  false  "Email"
// @Success      200    {object}  response.Response{data=SessionResponse}
// @Failure      400    {object}  response.ErrorBody
// @Router       /auth/verify-email [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.Error(domain.ErrInvalidOrExpiredToken())
		return
	}
	result, err := h.authUC.Verify(c.Request.Context(), token, c.Query("email"))
	if err != nil {
		c.Error(err)
		return
	}

	msg := "Email verified successfully."
	if result.AlreadyVerified {
		msg = "Email already verified. You are now logged in."
	}
	h.respondWithSession(c, msg, result)
}

// RequestLogin godoc
// @Summary      Request login link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      EmailRequest  true  "Email"
// @Success      200      {object}  response.Response{data=MessageResponse}
// @Failure      403      {object}  response.ErrorBody
// @Failure      404      {object}  response.ErrorBody
// @Router       /auth/request-login [post]
func (h *AuthHandler) RequestLogin(c *gin.Context) {
	raw, ok := bindEmail(c)
	if !ok {
		return
	}
	if err := h.authUC.RequestLogin(c.Request.Context(), raw, requestMeta(c)); err != nil {
		c.Error(err)
		return
	}
	msg := "Login link sent. Please check your inbox."
	response.Success(c, http.StatusOK, msg, MessageResponse{Msg: msg})
}

// VerifyLogin godoc
// @Summary      Verify login link
// @Tags         auth
// @Produce      json
// @Param        token  query     string  true  "Login token"
// @Param        email  query     string  true  "Email"
// @Success      200    {object}  response.Response{data=SessionResponse}
// @Failure      400    {object}  response.ErrorBody
// @Failure      403    {object}  response.ErrorBody
// @Router       /auth/verify-login [get]
func (h *AuthHandler) VerifyLogin(c *gin.Context) {
	token, email := c.Query("token"), c.Query("email")
	if token == "" || email == "" {
		c.Error(domain.ErrInvalidOrExpiredToken())
		return
	}
	presented, _ := middleware.ExtractSessionToken(c)

	result, err := h.authUC.VerifyLogin(c.Request.Context(), token, email, presented, requestMeta(c))
	if err != nil {
		c.Error(err)
		return
	}
	h.respondWithSession(c, "Logged in successfully.", result)
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	clearSessionCookie(c)
	response.Success(c, http.StatusOK, "Logged out", MessageResponse{Msg: "Logged out"})
}

// Me godoc
// @Summary      Current candidate
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Candidate}
// @Failure      401  {object}  response.ErrorBody
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := currentCandidate(c)
	if !ok {
		return
	}
	candidate, err := h.authUC.GetCandidate(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate retrieved", candidate)
}

func (h *AuthHandler) respondWithSession(c *gin.Context, msg string, result *domain.AuthResult) {
	setSessionCookie(c, result.Token)
	response.Success(c, http.StatusOK, msg, SessionResponse{
		Msg:             msg,
		Email:           result.Email,
		Token:           result.Token,
		ExpiresAt:       result.ExpiresAt,
		AlreadyVerified: result.AlreadyVerified,
	})
}
