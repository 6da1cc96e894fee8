package domain

import (
	"context"
	"time"
)

const (
	EmploymentFullTime = "full_time"
	EmploymentPartTime = "part_time"
	EmploymentContract = "contract"
)

type Job struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Department     string     `json:"department"`
	Location       string     `json:"location"`
	EmploymentType string     `json:"employment_type"`
	Description    string     `json:"description"`
	Requirements   []string   `json:"requirements"`
	IsOpen         bool       `json:"is_open"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AcceptsApplications reports whether the job is open and not past its deadline.
func (j *Job) AcceptsApplications(now time.Time) bool {
	if !j.IsOpen {
		return false
	}
	return j.Deadline == nil || !now.After(*j.Deadline)
}

type JobInput struct {
	Title          string   `json:"title" validate:"required,min=3,max=200"`
	Department     string   `json:"department" validate:"required,max=100"`
	Location       string   `json:"location" validate:"required,max=100"`
	EmploymentType string   `json:"employment_type" validate:"required,oneof=full_time part_time contract"`
	Description    string   `json:"description" validate:"required,max=10000"`
	Requirements   []string `json:"requirements" validate:"max=50,dive,required,max=300"`
	IsOpen         *bool    `json:"is_open"`
	Deadline       string   `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// JobListing decorates a job with the viewer's application state when known.
type JobListing struct {
	Job
	HasApplied *bool `json:"hasApplied,omitempty"`
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	Update(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id int64) (*Job, error)
	List(ctx context.Context, openOnly bool) ([]Job, error)
	Delete(ctx context.Context, id int64) error
}

type JobUsecase interface {
	ListOpen(ctx context.Context, viewer *CandidateID) ([]JobListing, error)
	GetJob(ctx context.Context, id int64, viewer *CandidateID) (*JobListing, error)
}
