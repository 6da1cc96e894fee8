package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"careers-backend/internal/domain"
	"careers-backend/internal/usecase"
	"careers-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validProfileInput() domain.ProfileInput {
	return domain.ProfileInput{
		FullName:    "Somchai Jaidee",
		DateOfBirth: "1999-05-01",
		Gender:      domain.GenderMale,
		NationalID:  "1-2345-67890-12-3",
		Phone:       "+66812345678",
		Address:     "99 Sukhumvit Road, Bangkok",
		ResumeURL:   "https://files.example.com/resumes/cv.pdf",
		Skills:      []string{"Go", " SQL "},
		Education:   []domain.Education{{Degree: "BSc", Institution: "Chulalongkorn University", Year: 2020}},
	}
}

func TestProfileLock(t *testing.T) {
	ctx := context.Background()
	cid := domain.NewCandidateID()

	t.Run("Should reject writes while locked before validating", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		apps := new(MockApplicationRepo)
		apps.On("ExistsForCandidate", ctx, cid).Return(true, nil)
		uc := usecase.NewProfileUsecase(profiles, usecase.NewApplicationLock(apps), nil)

		// Empty input would fail validation; the lock must win.
		_, err := uc.UpsertProfile(ctx, cid, "ana@example.com", domain.ProfileInput{})
		appErr := requireAppError(t, err, apperror.KindProfileLocked, http.StatusForbidden)
		assert.True(t, appErr.Flags[domain.FlagLocked])
		profiles.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("Should report lock state on read", func(t *testing.T) {
		profiles := new(MockProfileRepo)
		apps := new(MockApplicationRepo)
		profiles.On("GetByCandidateID", ctx, cid).Return(nil, nil)
		apps.On("ExistsForCandidate", ctx, cid).Return(false, nil).Once()
		apps.On("ExistsForCandidate", ctx, cid).Return(true, nil)
		uc := usecase.NewProfileUsecase(profiles, usecase.NewApplicationLock(apps), nil)

		view, err := uc.GetProfile(ctx, cid)
		require.NoError(t, err)
		assert.Nil(t, view.Profile)
		assert.False(t, view.IsLocked)

		// Recomputed on every read.
		view, err = uc.GetProfile(ctx, cid)
		require.NoError(t, err)
		assert.True(t, view.IsLocked)
	})
}

func TestUpsertProfile(t *testing.T) {
	ctx := context.Background()
	cid := domain.NewCandidateID()

	setup := func() (*MockProfileRepo, domain.ProfileUsecase) {
		profiles := new(MockProfileRepo)
		apps := new(MockApplicationRepo)
		apps.On("ExistsForCandidate", ctx, cid).Return(false, nil)
		return profiles, usecase.NewProfileUsecase(profiles, usecase.NewApplicationLock(apps), nil)
	}

	t.Run("Should normalize and store a valid profile", func(t *testing.T) {
		profiles, uc := setup()
		profiles.On("NationalIDTakenByOther", ctx, "1234567890123", cid).Return(false, nil)
		profiles.On("Upsert", ctx, mock.AnythingOfType("*domain.Profile")).Return(nil).Run(func(args mock.Arguments) {
			p := args.Get(1).(*domain.Profile)
			assert.Equal(t, cid, p.CandidateID)
			assert.Equal(t, "1234567890123", p.NationalID)
			assert.Equal(t, "ana@example.com", p.Email)
			assert.Equal(t, []string{"Go", "SQL"}, p.Skills)
			assert.NotNil(t, p.Experience)
			assert.Nil(t, p.PhotoURL)
		})

		view, err := uc.UpsertProfile(ctx, cid, "Ana@example.com", validProfileInput())
		require.NoError(t, err)
		assert.False(t, view.IsLocked)
		assert.Equal(t, 1999, view.Profile.DateOfBirth.Year())
	})

	t.Run("Should reject invalid payload", func(t *testing.T) {
		profiles, uc := setup()
		in := validProfileInput()
		in.NationalID = "12345"
		in.Gender = "unknown"

		_, err := uc.UpsertProfile(ctx, cid, "ana@example.com", in)
		appErr := requireAppError(t, err, apperror.KindValidation, http.StatusBadRequest)
		assert.Contains(t, appErr.Message, "National ID")
		profiles.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("Should reject future date of birth", func(t *testing.T) {
		_, uc := setup()
		in := validProfileInput()
		in.DateOfBirth = "2999-01-01"

		_, err := uc.UpsertProfile(ctx, cid, "ana@example.com", in)
		requireAppError(t, err, apperror.KindValidation, http.StatusBadRequest)
	})

	t.Run("Should reject national id held by another candidate", func(t *testing.T) {
		profiles, uc := setup()
		profiles.On("NationalIDTakenByOther", ctx, "1234567890123", cid).Return(true, nil)

		_, err := uc.UpsertProfile(ctx, cid, "ana@example.com", validProfileInput())
		appErr := requireAppError(t, err, apperror.KindDuplicateField, http.StatusConflict)
		assert.True(t, appErr.Flags[domain.FlagDuplicate])
	})

	t.Run("Should map a racing unique violation to duplicate", func(t *testing.T) {
		profiles, uc := setup()
		profiles.On("NationalIDTakenByOther", ctx, "1234567890123", cid).Return(false, nil)
		profiles.On("Upsert", ctx, mock.Anything).Return(domain.ErrDuplicateNationalID)

		_, err := uc.UpsertProfile(ctx, cid, "ana@example.com", validProfileInput())
		requireAppError(t, err, apperror.KindDuplicateField, http.StatusConflict)
	})
}
