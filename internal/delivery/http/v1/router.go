package v1

import (
	"net/http"
	"time"

	"careers-backend/config"
	"careers-backend/internal/delivery/http/middleware"
	"careers-backend/internal/delivery/http/response"
	"careers-backend/internal/domain"
	"careers-backend/internal/usecase"
	"careers-backend/pkg/auth"
	"careers-backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC        domain.CandidateAuthUsecase
	ProfileUC     domain.ProfileUsecase
	JobUC         domain.JobUsecase
	ApplicationUC domain.ApplicationUsecase
	UploadUC      domain.UploadUsecase
	AdminUC       domain.AdminUsecase
	HealthUC      usecase.HealthUsecase
	Sessions      *auth.SessionManager
	DB            middleware.Pinger
	SecLogger     *security.SecurityLogger
	Config        *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))
	r.Use(middleware.ErrorHandler())

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		status, healthy := deps.HealthUC.Check(c.Request.Context())
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	if deps.DB != nil {
		api.Use(middleware.Readiness(deps.DB))
	}
	api.GET("", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", nil)
	})

	authLimit := middleware.RateLimitMiddleware(middleware.AuthRateLimitConfig(cfg.RateLimitAuthThreshold, window))
	adminLoginLimit := middleware.RateLimitMiddleware(middleware.AdminLoginRateLimitConfig(window))
	uploadLimit := middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig(cfg.RateLimitUploadThreshold, window))

	// Candidate identity is optional on the job board.
	optional := api.Group("")
	optional.Use(middleware.OptionalCandidateAuth(deps.AuthUC))

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.CandidateAuth(deps.AuthUC))
	protected.Use(middleware.CSRFMiddleware(deps.SecLogger))

	admin := api.Group("")
	admin.Use(middleware.AdminAuth(deps.Sessions))
	{
		NewAuthHandler(api, protected, authLimit, deps.AuthUC)
		NewProfileHandler(protected, deps.ProfileUC)
		NewJobHandler(optional, deps.JobUC)
		NewApplicationHandler(protected, deps.ApplicationUC)
		NewUploadHandler(protected, uploadLimit, deps.UploadUC, cfg.UploadMaxBytes)
		NewAdminHandler(api, admin, adminLoginLimit, deps.AdminUC)
	}

	return r
}
