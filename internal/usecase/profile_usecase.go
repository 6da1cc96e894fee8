package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"careers-backend/internal/domain"
	"careers-backend/pkg/apperror"
	"careers-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const duplicateNationalIDMessage = "This national ID is already registered to another candidate."

// applicationLock derives the profile lock from application existence. It
// is recomputed on every call.
type applicationLock struct {
	apps domain.ApplicationRepository
}

func NewApplicationLock(apps domain.ApplicationRepository) domain.LockEvaluator {
	return &applicationLock{apps: apps}
}

func (l *applicationLock) IsLocked(ctx context.Context, candidateID domain.CandidateID) (bool, error) {
	return l.apps.ExistsForCandidate(ctx, candidateID)
}

type profileUsecase struct {
	profileRepo domain.ProfileRepository
	lock        domain.LockEvaluator
	validate    *validator.Validate
}

func NewProfileUsecase(profileRepo domain.ProfileRepository, lock domain.LockEvaluator, validate *validator.Validate) domain.ProfileUsecase {
	if validate == nil {
		validate = validation.New()
	}
	return &profileUsecase{
		profileRepo: profileRepo,
		lock:        lock,
		validate:    validate,
	}
}

func (u *profileUsecase) GetProfile(ctx context.Context, candidateID domain.CandidateID) (*domain.ProfileView, error) {
	profile, err := u.profileRepo.GetByCandidateID(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("load profile: %w", err))
	}
	locked, err := u.lock.IsLocked(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("evaluate lock: %w", err))
	}
	return &domain.ProfileView{Profile: profile, IsLocked: locked}, nil
}

func (u *profileUsecase) UpsertProfile(ctx context.Context, candidateID domain.CandidateID, email string, input domain.ProfileInput) (*domain.ProfileView, error) {
	// Lock is checked before anything about the payload.
	locked, err := u.lock.IsLocked(ctx, candidateID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("evaluate lock: %w", err))
	}
	if locked {
		return nil, domain.ErrProfileLocked()
	}

	trimProfileInput(&input)
	if err := u.validate.Struct(input); err != nil {
		return nil, apperror.BadRequest(validation.FormatMessage(err))
	}

	dob, err := time.Parse("2006-01-02", input.DateOfBirth)
	if err != nil {
		return nil, apperror.BadRequest("Date of birth must use the format YYYY-MM-DD")
	}
	if dob.After(time.Now()) {
		return nil, apperror.BadRequest("Date of birth cannot be in the future")
	}

	nationalID := validation.NormalizeNationalID(input.NationalID)
	taken, err := u.profileRepo.NationalIDTakenByOther(ctx, nationalID, candidateID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("check national id: %w", err))
	}
	if taken {
		return nil, domain.ErrDuplicateField(duplicateNationalIDMessage)
	}

	profile := &domain.Profile{
		CandidateID:    candidateID,
		Email:          domain.NormalizeEmail(email),
		FullName:       input.FullName,
		DateOfBirth:    dob,
		Gender:         input.Gender,
		NationalID:     nationalID,
		Phone:          input.Phone,
		Address:        input.Address,
		ResumeURL:      input.ResumeURL,
		Education:      nonNilSlice(input.Education),
		Experience:     nonNilSlice(input.Experience),
		Skills:         nonNilSlice(input.Skills),
		Certifications: nonNilSlice(input.Certifications),
	}
	if input.PhotoURL != "" {
		photo := input.PhotoURL
		profile.PhotoURL = &photo
	}

	if err := u.profileRepo.Upsert(ctx, profile); err != nil {
		// The pre-check can race with another candidate's write.
		if errors.Is(err, domain.ErrDuplicateNationalID) {
			return nil, domain.ErrDuplicateField(duplicateNationalIDMessage)
		}
		return nil, apperror.Internal(fmt.Errorf("upsert profile: %w", err))
	}

	return &domain.ProfileView{Profile: profile, IsLocked: false}, nil
}

func trimProfileInput(in *domain.ProfileInput) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)
	in.NationalID = strings.TrimSpace(in.NationalID)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.ResumeURL = strings.TrimSpace(in.ResumeURL)
	in.PhotoURL = strings.TrimSpace(in.PhotoURL)
	for i, s := range in.Skills {
		in.Skills[i] = strings.TrimSpace(s)
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
