package domain

import (
	"context"
	"time"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusReviewed ApplicationStatus = "reviewed"
	ApplicationStatusRejected ApplicationStatus = "rejected"
	ApplicationStatusSelected ApplicationStatus = "selected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusReviewed, ApplicationStatusRejected, ApplicationStatusSelected:
		return true
	}
	return false
}

// Application is unique per (candidate, job) at the storage layer.
type Application struct {
	ID          int64             `json:"id"`
	CandidateID CandidateID       `json:"candidate_id"`
	JobID       int64             `json:"job_id"`
	ProfileID   *string           `json:"profile_id,omitempty"`
	Email       string            `json:"email"`
	Status      ApplicationStatus `json:"status"`
	CoverLetter *string           `json:"cover_letter,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	// Joined data for list responses
	JobTitle      *string `json:"job_title,omitempty"`
	CandidateName *string `json:"candidate_name,omitempty"`
}

type ApplicationFilter struct {
	JobID    *int64
	Status   ApplicationStatus
	Page     int
	PageSize int
}

// ApplicationExportRow is one flattened row of the applicant export.
type ApplicationExportRow struct {
	ApplicationID int64
	JobTitle      string
	Status        ApplicationStatus
	AppliedAt     time.Time
	Email         string
	FullName      string
	Gender        string
	DateOfBirth   *time.Time
	NationalID    string
	Phone         string
	Address       string
	Skills        []string
	ResumeURL     string
}

type ApplicationRepository interface {
	// Create returns ErrDuplicateApplication when the pair already exists.
	Create(ctx context.Context, app *Application) error
	ExistsForCandidate(ctx context.Context, candidateID CandidateID) (bool, error)
	ListByCandidate(ctx context.Context, candidateID CandidateID) ([]Application, error)
	AppliedJobIDs(ctx context.Context, candidateID CandidateID) (map[int64]bool, error)
	List(ctx context.Context, filter ApplicationFilter) ([]Application, int64, error)
	ListForExport(ctx context.Context, jobID *int64) ([]ApplicationExportRow, error)
	UpdateStatus(ctx context.Context, id int64, status ApplicationStatus) error
	Delete(ctx context.Context, id int64) error
}

type ApplicationUsecase interface {
	Apply(ctx context.Context, candidateID CandidateID, email string, jobID int64, coverLetter string) (*Application, error)
	ListMine(ctx context.Context, candidateID CandidateID) ([]Application, error)
}
