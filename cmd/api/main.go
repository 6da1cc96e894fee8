package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"careers-backend/config"
	_ "careers-backend/docs" // Important for Swagger
	v1 "careers-backend/internal/delivery/http/v1"
	"careers-backend/internal/domain"
	"careers-backend/internal/repository/postgres"
	"careers-backend/internal/usecase"
	"careers-backend/pkg/auth"
	"careers-backend/pkg/database"
	"careers-backend/pkg/email"
	"careers-backend/pkg/logger"
	"careers-backend/pkg/redis"
	"careers-backend/pkg/security"
	"careers-backend/pkg/security/antivirus"
	"careers-backend/pkg/storage"
	"careers-backend/pkg/token"
	"careers-backend/pkg/validation"
)

// @title           Careers Portal API
// @version         1.0
// @description     Candidate onboarding, job applications, and recruiter administration.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.AppEnv)
	secLogger := security.InitSecurityLogger("careers-backend", cfg.AppEnv)
	defer secLogger.Sync()
	logger.Log.Info("Starting careers backend", "port", cfg.Port, "env", cfg.AppEnv)

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.RunMigrations {
		if err := database.Migrate(ctx, dbPool); err != nil {
			logger.Log.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// 4. Setup Redis (optional, rate limits and login tracking fall back to memory)
	if err := redis.Initialize(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
		logger.Log.Warn("Redis unavailable, using in-memory fallback", "error", err)
	} else {
		defer redis.Close()
	}

	// 5. Setup Repositories
	candidateRepo := postgres.NewCandidateRepository(dbPool)
	profileRepo := postgres.NewProfileRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)

	// 6. Setup Email Dispatcher
	dispatcher := email.NewDispatcher(email.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.SMTPFromEmail,
		FromName:  cfg.SMTPFromName,
	})
	notifier := usecase.NewNotifier(dispatcher)

	// 7. Setup File Storage
	var fileStorage domain.FileStorage
	store, err := storage.NewS3Store(ctx, storage.Config{
		Provider:        storage.Provider(cfg.S3Provider),
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		PublicBaseURL:   cfg.S3PublicBaseURL,
		WasabiEndpoint:  cfg.WasabiEndpoint,
	})
	if err != nil {
		logger.Log.Warn("File storage not configured - uploads will be unavailable", "error", err)
	} else {
		fileStorage = store
	}

	// 8. Setup Upload Scanning
	var scanner antivirus.Scanner = antivirus.NewNoOpScanner()
	healthChecks := map[string]usecase.Pinger{
		"database": dbPool,
		"redis":    usecase.PingerFunc(redis.HealthCheck),
	}
	if cfg.ClamAVAddress != "" {
		clam := antivirus.NewClamAVScanner(cfg.ClamAVAddress, 30*time.Second)
		scanner = clam
		healthChecks["clamav"] = usecase.PingerFunc(func(ctx context.Context) error {
			if !clam.Available(ctx) {
				return errors.New("clamd unreachable")
			}
			return nil
		})
	} else {
		logger.Log.Warn("CLAMAV_ADDRESS not set - uploads are not scanned for malware")
	}

	// 9. Setup UseCases
	validate := validation.New()
	sessions := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionIssuer, auth.SessionTTL)

	trackerCfg := security.DefaultLoginTrackerConfig()
	trackerCfg.MaxAttempts = cfg.FailedLoginMaxAttempts
	trackerCfg.BlockDuration = time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute
	loginTracker := security.NewLoginTracker(trackerCfg, secLogger)

	authUC := usecase.NewCandidateAuthUsecase(
		candidateRepo, sessions, token.NewGenerator(), dispatcher, notifier, secLogger,
		usecase.CandidateAuthConfig{
			FrontendURL:       cfg.FrontendURL,
			OpsEmail:          cfg.OpsEmail,
			StrictLoginReplay: cfg.LoginReplayPolicy == config.ReplayStrict,
		},
	)
	profileUC := usecase.NewProfileUsecase(profileRepo, usecase.NewApplicationLock(applicationRepo), validate)
	jobUC := usecase.NewJobUsecase(jobRepo, applicationRepo)
	applicationUC := usecase.NewApplicationUsecase(applicationRepo, jobRepo, profileRepo, notifier)
	uploadUC := usecase.NewUploadUsecase(fileStorage, usecase.UploadConfig{
		MaxBytes: cfg.UploadMaxBytes,
		Scanner:  scanner,
		Quota:    security.NewUploadLimiter(cfg.UploadDailyLimit),
	}, secLogger)
	adminUC := usecase.NewAdminUsecase(
		usecase.AdminConfig{Email: cfg.AdminEmail, PasswordHash: cfg.AdminPasswordHash, TOTPSecret: cfg.AdminTOTPSecret},
		sessions, loginTracker, jobRepo, applicationRepo, candidateRepo, validate, secLogger,
	)
	healthUC := usecase.NewHealthUsecase(healthChecks)

	// 10. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:        authUC,
		ProfileUC:     profileUC,
		JobUC:         jobUC,
		ApplicationUC: applicationUC,
		UploadUC:      uploadUC,
		AdminUC:       adminUC,
		HealthUC:      healthUC,
		Sessions:      sessions,
		DB:            dbPool,
		SecLogger:     secLogger,
		Config:        cfg,
	})

	// 11. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	// Let queued notification emails finish.
	notifier.Wait()

	logger.Log.Info("Server exiting")
}
