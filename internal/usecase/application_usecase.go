package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"careers-backend/internal/domain"
	"careers-backend/pkg/apperror"
	"careers-backend/pkg/email"
)

const maxCoverLetterLength = 5000

type applicationUsecase struct {
	applicationRepo domain.ApplicationRepository
	jobRepo         domain.JobRepository
	profileRepo     domain.ProfileRepository
	notifier        *Notifier
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(
	appRepo domain.ApplicationRepository,
	jobRepo domain.JobRepository,
	profileRepo domain.ProfileRepository,
	notifier *Notifier,
) domain.ApplicationUsecase {
	return &applicationUsecase{
		applicationRepo: appRepo,
		jobRepo:         jobRepo,
		profileRepo:     profileRepo,
		notifier:        notifier,
	}
}

// Apply submits the candidate's current profile to an open job. The first
// successful call locks the profile.
func (uc *applicationUsecase) Apply(ctx context.Context, candidateID domain.CandidateID, candidateEmail string, jobID int64, coverLetter string) (*domain.Application, error) {
	if jobID <= 0 {
		return nil, apperror.BadRequest("A valid job is required")
	}
	coverLetter = strings.TrimSpace(coverLetter)
	if len(coverLetter) > maxCoverLetterLength {
		return nil, apperror.BadRequest(fmt.Sprintf("Cover letter must be at most %d characters", maxCoverLetterLength))
	}

	// 1. Job must exist and still accept applications
	job, err := uc.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("load job: %w", err))
	}
	if job == nil {
		return nil, apperror.NotFound("Job not found")
	}
	if !job.AcceptsApplications(time.Now()) {
		return nil, apperror.BadRequest("This job is no longer accepting applications")
	}

	// 2. Candidate must have a profile
	profile, err := uc.profileRepo.GetByCandidateID(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("load profile: %w", err))
	}
	if profile == nil {
		return nil, apperror.Forbidden("Complete your profile before applying")
	}

	// 3. Create; the (candidate, job) constraint rejects duplicates
	app := &domain.Application{
		CandidateID: candidateID,
		JobID:       jobID,
		ProfileID:   &profile.ID,
		Email:       domain.NormalizeEmail(candidateEmail),
		Status:      domain.ApplicationStatusPending,
	}
	if coverLetter != "" {
		app.CoverLetter = &coverLetter
	}

	if err := uc.applicationRepo.Create(ctx, app); err != nil {
		if errors.Is(err, domain.ErrDuplicateApplication) {
			return nil, domain.ErrAlreadyApplied()
		}
		return nil, apperror.Internal(fmt.Errorf("create application: %w", err))
	}
	app.JobTitle = &job.Title

	to, title := app.Email, job.Title
	uc.notifier.Send(to, "application_received", func() (email.Message, error) {
		return email.ApplicationReceived(to, title)
	})

	return app, nil
}

// ListMine returns all applications for the current candidate
func (uc *applicationUsecase) ListMine(ctx context.Context, candidateID domain.CandidateID) ([]domain.Application, error) {
	apps, err := uc.applicationRepo.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list applications: %w", err))
	}
	return apps, nil
}
