package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"careers-backend/internal/domain"
	"careers-backend/pkg/apperror"
	"careers-backend/pkg/auth"
	"careers-backend/pkg/logger"
	"careers-backend/pkg/security"
	"careers-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// AdminConfig holds the single admin credential. TOTPSecret, when set,
// makes a one-time code mandatory.
type AdminConfig struct {
	Email        string
	PasswordHash string
	TOTPSecret   string
}

type adminUsecase struct {
	cfg           AdminConfig
	sessions      *auth.SessionManager
	tracker       domain.LoginAttemptTracker
	jobRepo       domain.JobRepository
	appRepo       domain.ApplicationRepository
	candidateRepo domain.CandidateRepository
	validate      *validator.Validate
	secLogger     *security.SecurityLogger
}

func NewAdminUsecase(
	cfg AdminConfig,
	sessions *auth.SessionManager,
	tracker domain.LoginAttemptTracker,
	jobRepo domain.JobRepository,
	appRepo domain.ApplicationRepository,
	candidateRepo domain.CandidateRepository,
	validate *validator.Validate,
	secLogger *security.SecurityLogger,
) domain.AdminUsecase {
	if validate == nil {
		validate = validation.New()
	}
	if secLogger == nil {
		secLogger = security.DefaultLogger()
	}
	return &adminUsecase{
		cfg:           cfg,
		sessions:      sessions,
		tracker:       tracker,
		jobRepo:       jobRepo,
		appRepo:       appRepo,
		candidateRepo: candidateRepo,
		validate:      validate,
		secLogger:     secLogger,
	}
}

func errTooManyAttempts() *apperror.AppError {
	return apperror.NewKind(apperror.KindForbidden, http.StatusTooManyRequests,
		"Too many failed login attempts. Please try again later.")
}

// Login checks the configured admin credential. Failed attempts count
// toward a temporary block per email and IP.
func (u *adminUsecase) Login(ctx context.Context, email, password, otp string, meta domain.RequestMeta) (*domain.AdminSession, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.BadRequest("Email and password are required")
	}
	if u.cfg.Email == "" || u.cfg.PasswordHash == "" {
		return nil, apperror.Unavailable("Admin login is not configured", nil)
	}

	blocked, err := u.tracker.IsBlocked(ctx, email, meta.IP)
	if err != nil {
		logger.Log.Warn("Login tracker unavailable", "error", err)
	}
	if blocked {
		u.secLogger.LogLoginBlocked(ctx, email, meta.IP, meta.UserAgent, meta.RequestID)
		return nil, errTooManyAttempts()
	}

	// Always run bcrypt so a wrong email costs the same as a wrong password.
	hashErr := bcrypt.CompareHashAndPassword([]byte(u.cfg.PasswordHash), []byte(password))
	if hashErr != nil || email != domain.NormalizeEmail(u.cfg.Email) {
		return nil, u.loginFailed(ctx, email, meta, "invalid_credentials", "Invalid email or password")
	}
	if u.cfg.TOTPSecret != "" && !totp.Validate(strings.TrimSpace(otp), u.cfg.TOTPSecret) {
		return nil, u.loginFailed(ctx, email, meta, "invalid_otp", "Invalid one-time code")
	}

	if err := u.tracker.ClearAttempts(ctx, email, meta.IP); err != nil {
		logger.Log.Warn("Failed to clear login attempts", "error", err)
	}

	session, err := u.sessions.IssueAdmin(email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u.secLogger.LogEmailEvent(ctx, security.EventLoginSuccess, email, meta.IP, meta.UserAgent, meta.RequestID, map[string]interface{}{"role": domain.RoleAdmin})

	return &domain.AdminSession{Email: email, Token: session.Token, ExpiresAt: session.ExpiresAt}, nil
}

func (u *adminUsecase) loginFailed(ctx context.Context, email string, meta domain.RequestMeta, reason, msg string) error {
	u.secLogger.LogLoginFailed(ctx, email, meta.IP, meta.UserAgent, meta.RequestID, reason)
	nowBlocked, _, err := u.tracker.RecordFailedAttempt(ctx, email, meta.IP, meta.UserAgent, meta.RequestID)
	if err != nil {
		logger.Log.Warn("Failed to record login attempt", "error", err)
	}
	if nowBlocked {
		return errTooManyAttempts()
	}
	return apperror.Unauthorized(msg)
}

// ListJobs returns every job, open or closed
func (u *adminUsecase) ListJobs(ctx context.Context) ([]domain.Job, error) {
	jobs, err := u.jobRepo.List(ctx, false)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list jobs: %w", err))
	}
	return jobs, nil
}

func (u *adminUsecase) CreateJob(ctx context.Context, input domain.JobInput) (*domain.Job, error) {
	job := &domain.Job{IsOpen: true}
	if err := u.applyJobInput(job, input); err != nil {
		return nil, err
	}
	if err := u.jobRepo.Create(ctx, job); err != nil {
		return nil, apperror.Internal(fmt.Errorf("create job: %w", err))
	}
	return job, nil
}

func (u *adminUsecase) UpdateJob(ctx context.Context, id int64, input domain.JobInput) (*domain.Job, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("load job: %w", err))
	}
	if job == nil {
		return nil, apperror.NotFound("Job not found")
	}
	if err := u.applyJobInput(job, input); err != nil {
		return nil, err
	}
	if err := u.jobRepo.Update(ctx, job); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Job not found")
		}
		return nil, apperror.Internal(fmt.Errorf("update job: %w", err))
	}
	return job, nil
}

func (u *adminUsecase) DeleteJob(ctx context.Context, id int64) error {
	if err := u.jobRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Job not found")
		}
		return apperror.Internal(fmt.Errorf("delete job: %w", err))
	}
	return nil
}

func (u *adminUsecase) applyJobInput(job *domain.Job, input domain.JobInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Deadline = strings.TrimSpace(input.Deadline)
	if err := u.validate.Struct(input); err != nil {
		return apperror.BadRequest(validation.FormatMessage(err))
	}

	job.Title = input.Title
	job.Department = strings.TrimSpace(input.Department)
	job.Location = strings.TrimSpace(input.Location)
	job.EmploymentType = input.EmploymentType
	job.Description = input.Description
	job.Requirements = nonNilSlice(input.Requirements)
	if input.IsOpen != nil {
		job.IsOpen = *input.IsOpen
	}

	job.Deadline = nil
	if input.Deadline != "" {
		d, err := time.Parse("2006-01-02", input.Deadline)
		if err != nil {
			return apperror.BadRequest("Deadline must use the format YYYY-MM-DD")
		}
		// Deadline is inclusive of the whole day.
		end := d.Add(24*time.Hour - time.Second)
		job.Deadline = &end
	}
	return nil
}

func (u *adminUsecase) ListApplications(ctx context.Context, filter domain.ApplicationFilter) (*domain.PaginatedResult[domain.Application], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperror.BadRequest("Invalid status. Must be: pending, reviewed, rejected, or selected")
	}
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)

	apps, total, err := u.appRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list applications: %w", err))
	}
	return paginate(apps, total, filter.Page, filter.PageSize), nil
}

func (u *adminUsecase) UpdateApplicationStatus(ctx context.Context, id int64, status domain.ApplicationStatus) error {
	if !status.Valid() {
		return apperror.BadRequest("Invalid status. Must be: pending, reviewed, rejected, or selected")
	}
	if err := u.appRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Application not found")
		}
		return apperror.Internal(fmt.Errorf("update application: %w", err))
	}
	return nil
}

// DeleteApplication removes one application. Removing a candidate's last
// application unlocks their profile.
func (u *adminUsecase) DeleteApplication(ctx context.Context, id int64) error {
	if err := u.appRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Application not found")
		}
		return apperror.Internal(fmt.Errorf("delete application: %w", err))
	}
	return nil
}

func (u *adminUsecase) ExportApplications(ctx context.Context, format string, jobID *int64) (*domain.ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = domain.ExportFormatXLSX
	}
	if format != domain.ExportFormatCSV && format != domain.ExportFormatXLSX {
		return nil, apperror.BadRequest("Unsupported export format: " + format)
	}

	rows, err := u.appRepo.ListForExport(ctx, jobID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("fetch applications for export: %w", err))
	}

	var file *domain.ExportFile
	if format == domain.ExportFormatCSV {
		file, err = exportCSV(rows)
	} else {
		file, err = exportExcel(rows)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	u.secLogger.Log(ctx, security.SecurityEvent{
		Event:   security.EventDataExport,
		Details: map[string]interface{}{"format": format, "rows": len(rows)},
	})
	return file, nil
}

func (u *adminUsecase) ListCandidates(ctx context.Context, page, pageSize int) (*domain.PaginatedResult[domain.CandidateSummary], error) {
	page, pageSize = normalizePage(page, pageSize)
	candidates, total, err := u.candidateRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list candidates: %w", err))
	}
	return paginate(candidates, total, page, pageSize), nil
}

// DeleteCandidate removes the candidate; profile and applications cascade.
func (u *adminUsecase) DeleteCandidate(ctx context.Context, id domain.CandidateID) error {
	if err := u.candidateRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Candidate not found")
		}
		return apperror.Internal(fmt.Errorf("delete candidate: %w", err))
	}
	u.secLogger.Log(ctx, security.SecurityEvent{
		Event:        security.EventCandidateDeleted,
		SubjectType:  "candidate_id",
		SubjectValue: id.String(),
	})
	return nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func paginate[T any](data []T, total int64, page, pageSize int) *domain.PaginatedResult[T] {
	if data == nil {
		data = []T{}
	}
	return &domain.PaginatedResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}
}
