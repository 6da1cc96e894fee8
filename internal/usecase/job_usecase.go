package usecase

import (
	"context"
	"fmt"
	"time"

	"careers-backend/internal/domain"
	"careers-backend/pkg/apperror"
)

type jobUsecase struct {
	jobRepo domain.JobRepository
	appRepo domain.ApplicationRepository
}

func NewJobUsecase(jobRepo domain.JobRepository, appRepo domain.ApplicationRepository) domain.JobUsecase {
	return &jobUsecase{jobRepo: jobRepo, appRepo: appRepo}
}

// ListOpen returns jobs accepting applications. hasApplied is only set when
// the viewer is authenticated.
func (u *jobUsecase) ListOpen(ctx context.Context, viewer *domain.CandidateID) ([]domain.JobListing, error) {
	jobs, err := u.jobRepo.List(ctx, true)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("list jobs: %w", err))
	}

	var applied map[int64]bool
	if viewer != nil {
		applied, err = u.appRepo.AppliedJobIDs(ctx, *viewer)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("applied jobs: %w", err))
		}
	}

	listings := make([]domain.JobListing, 0, len(jobs))
	for _, job := range jobs {
		listings = append(listings, listing(job, viewer, applied))
	}
	return listings, nil
}

func (u *jobUsecase) GetJob(ctx context.Context, id int64, viewer *domain.CandidateID) (*domain.JobListing, error) {
	job, err := u.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("load job: %w", err))
	}
	if job == nil || !job.AcceptsApplications(time.Now()) {
		return nil, apperror.NotFound("Job not found")
	}

	var applied map[int64]bool
	if viewer != nil {
		applied, err = u.appRepo.AppliedJobIDs(ctx, *viewer)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("applied jobs: %w", err))
		}
	}

	l := listing(*job, viewer, applied)
	return &l, nil
}

func listing(job domain.Job, viewer *domain.CandidateID, applied map[int64]bool) domain.JobListing {
	l := domain.JobListing{Job: job}
	if viewer != nil {
		has := applied[job.ID]
		l.HasApplied = &has
	}
	return l
}
