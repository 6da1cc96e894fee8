package domain

import (
	"context"
	"time"
)

// PaginatedResult for list responses
type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

type AdminSession struct {
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

// LoginAttemptTracker blocks repeated failed admin logins.
type LoginAttemptTracker interface {
	IsBlocked(ctx context.Context, email, ip string) (bool, error)
	RecordFailedAttempt(ctx context.Context, email, ip, userAgent, requestID string) (bool, int, error)
	ClearAttempts(ctx context.Context, email, ip string) error
}

type AdminUsecase interface {
	Login(ctx context.Context, email, password, otp string, meta RequestMeta) (*AdminSession, error)

	// Jobs
	ListJobs(ctx context.Context) ([]Job, error)
	CreateJob(ctx context.Context, input JobInput) (*Job, error)
	UpdateJob(ctx context.Context, id int64, input JobInput) (*Job, error)
	DeleteJob(ctx context.Context, id int64) error

	// Applications
	ListApplications(ctx context.Context, filter ApplicationFilter) (*PaginatedResult[Application], error)
	UpdateApplicationStatus(ctx context.Context, id int64, status ApplicationStatus) error
	DeleteApplication(ctx context.Context, id int64) error
	ExportApplications(ctx context.Context, format string, jobID *int64) (*ExportFile, error)

	// Candidates
	ListCandidates(ctx context.Context, page, pageSize int) (*PaginatedResult[CandidateSummary], error)
	DeleteCandidate(ctx context.Context, id CandidateID) error
}
