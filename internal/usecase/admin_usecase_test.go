package usecase_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"testing"
	"time"

	"careers-backend/internal/domain"
	"careers-backend/internal/usecase"
	"careers-backend/pkg/apperror"
	"careers-backend/pkg/auth"
	"careers-backend/pkg/security"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

type adminFixture struct {
	tracker    *MockTracker
	jobs       *MockJobRepo
	apps       *MockApplicationRepo
	candidates *MockCandidateRepo
	sessions   *auth.SessionManager
	uc         domain.AdminUsecase
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	return newAdminFixtureWithTOTP(t, "")
}

func newAdminFixtureWithTOTP(t *testing.T, totpSecret string) *adminFixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	f := &adminFixture{
		tracker:    new(MockTracker),
		jobs:       new(MockJobRepo),
		apps:       new(MockApplicationRepo),
		candidates: new(MockCandidateRepo),
		sessions:   auth.NewSessionManager(testSecret, testIssuer, auth.SessionTTL),
	}
	f.uc = usecase.NewAdminUsecase(
		usecase.AdminConfig{Email: "admin@example.com", PasswordHash: string(hash), TOTPSecret: totpSecret},
		f.sessions, f.tracker, f.jobs, f.apps, f.candidates, nil, security.NewNopLogger(),
	)
	return f
}

func TestAdminLogin(t *testing.T) {
	ctx := context.Background()
	meta := domain.RequestMeta{IP: "198.51.100.1", UserAgent: "ua", RequestID: "req-1"}

	t.Run("Should issue admin session for correct credentials", func(t *testing.T) {
		f := newAdminFixture(t)
		f.tracker.On("IsBlocked", ctx, "admin@example.com", meta.IP).Return(false, nil)
		f.tracker.On("ClearAttempts", ctx, "admin@example.com", meta.IP).Return(nil)

		session, err := f.uc.Login(ctx, "Admin@Example.com", "correct horse", "", meta)
		require.NoError(t, err)
		claims, err := f.sessions.Parse(session.Token)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, claims.Role)
	})

	t.Run("Should record failed attempt on wrong password", func(t *testing.T) {
		f := newAdminFixture(t)
		f.tracker.On("IsBlocked", ctx, "admin@example.com", meta.IP).Return(false, nil)
		f.tracker.On("RecordFailedAttempt", ctx, "admin@example.com", meta.IP, meta.UserAgent, meta.RequestID).Return(false, 1, nil)

		_, err := f.uc.Login(ctx, "admin@example.com", "wrong", "", meta)
		requireAppError(t, err, apperror.KindUnauthenticated, http.StatusUnauthorized)
		f.tracker.AssertNotCalled(t, "ClearAttempts", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should refuse blocked callers without checking the password", func(t *testing.T) {
		f := newAdminFixture(t)
		f.tracker.On("IsBlocked", ctx, "admin@example.com", meta.IP).Return(true, nil)

		_, err := f.uc.Login(ctx, "admin@example.com", "correct horse", "", meta)
		requireAppError(t, err, apperror.KindForbidden, http.StatusTooManyRequests)
	})

	t.Run("Should block once the attempt limit is reached", func(t *testing.T) {
		f := newAdminFixture(t)
		f.tracker.On("IsBlocked", ctx, "admin@example.com", meta.IP).Return(false, nil)
		f.tracker.On("RecordFailedAttempt", ctx, "admin@example.com", meta.IP, meta.UserAgent, meta.RequestID).Return(true, 5, nil)

		_, err := f.uc.Login(ctx, "admin@example.com", "wrong", "", meta)
		requireAppError(t, err, apperror.KindForbidden, http.StatusTooManyRequests)
	})

	t.Run("Should require a valid one-time code when TOTP is configured", func(t *testing.T) {
		key, err := totp.Generate(totp.GenerateOpts{Issuer: "careers-backend", AccountName: "admin@example.com"})
		require.NoError(t, err)

		f := newAdminFixtureWithTOTP(t, key.Secret())
		f.tracker.On("IsBlocked", ctx, "admin@example.com", meta.IP).Return(false, nil)
		f.tracker.On("RecordFailedAttempt", ctx, "admin@example.com", meta.IP, meta.UserAgent, meta.RequestID).Return(false, 1, nil)
		f.tracker.On("ClearAttempts", ctx, "admin@example.com", meta.IP).Return(nil)

		_, err = f.uc.Login(ctx, "admin@example.com", "correct horse", "", meta)
		requireAppError(t, err, apperror.KindUnauthenticated, http.StatusUnauthorized)

		code, err := totp.GenerateCode(key.Secret(), time.Now())
		require.NoError(t, err)
		session, err := f.uc.Login(ctx, "admin@example.com", "correct horse", code, meta)
		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
	})
}

func TestAdminJobs(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create an open job with inclusive deadline", func(t *testing.T) {
		f := newAdminFixture(t)
		f.jobs.On("Create", ctx, mock.AnythingOfType("*domain.Job")).Return(nil)

		job, err := f.uc.CreateJob(ctx, domain.JobInput{
			Title:          "Science Teacher",
			Department:     "Science",
			Location:       "Bangkok",
			EmploymentType: domain.EmploymentFullTime,
			Description:    "Teach grade 10 science.",
			Requirements:   []string{"B.Ed"},
			Deadline:       "2030-06-30",
		})
		require.NoError(t, err)
		assert.True(t, job.IsOpen)
		require.NotNil(t, job.Deadline)
		assert.Equal(t, 30, job.Deadline.Day())
		assert.Equal(t, 23, job.Deadline.Hour())
	})

	t.Run("Should reject invalid job input", func(t *testing.T) {
		f := newAdminFixture(t)
		_, err := f.uc.CreateJob(ctx, domain.JobInput{Title: "x", EmploymentType: "gig"})
		requireAppError(t, err, apperror.KindValidation, http.StatusBadRequest)
		f.jobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Should return not found when updating unknown job", func(t *testing.T) {
		f := newAdminFixture(t)
		f.jobs.On("GetByID", ctx, int64(99)).Return(nil, nil)

		_, err := f.uc.UpdateJob(ctx, 99, domain.JobInput{})
		requireAppError(t, err, apperror.KindNotFound, http.StatusNotFound)
	})
}

func TestAdminApplications(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject unknown status", func(t *testing.T) {
		f := newAdminFixture(t)
		err := f.uc.UpdateApplicationStatus(ctx, 1, "hired")
		requireAppError(t, err, apperror.KindValidation, http.StatusBadRequest)
	})

	t.Run("Should map missing application to not found", func(t *testing.T) {
		f := newAdminFixture(t)
		f.apps.On("Delete", ctx, int64(5)).Return(domain.ErrNotFound)

		err := f.uc.DeleteApplication(ctx, 5)
		requireAppError(t, err, apperror.KindNotFound, http.StatusNotFound)
	})

	t.Run("Should normalize pagination", func(t *testing.T) {
		f := newAdminFixture(t)
		f.apps.On("List", ctx, domain.ApplicationFilter{Page: 1, PageSize: 20}).Return([]domain.Application{}, int64(45), nil)

		res, err := f.uc.ListApplications(ctx, domain.ApplicationFilter{Page: 0, PageSize: 1000})
		require.NoError(t, err)
		assert.Equal(t, 3, res.TotalPages)
		assert.NotNil(t, res.Data)
	})
}

func TestAdminExport(t *testing.T) {
	ctx := context.Background()
	dob := time.Date(1999, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.ApplicationExportRow{{
		ApplicationID: 12,
		JobTitle:      "Science Teacher",
		Status:        domain.ApplicationStatusPending,
		AppliedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Email:         "ana@example.com",
		FullName:      "Ana, Maria",
		DateOfBirth:   &dob,
		Skills:        []string{"Go", "SQL"},
	}}

	t.Run("Should export CSV with quoted fields", func(t *testing.T) {
		f := newAdminFixture(t)
		f.apps.On("ListForExport", ctx, (*int64)(nil)).Return(rows, nil)

		file, err := f.uc.ExportApplications(ctx, "csv", nil)
		require.NoError(t, err)
		assert.Contains(t, file.Filename, ".csv")

		records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "APPLICATION ID", records[0][0])
		assert.Equal(t, "Ana, Maria", records[1][5])
		assert.Equal(t, "1999-05-01", records[1][7])
		assert.Equal(t, "Go, SQL", records[1][11])
	})

	t.Run("Should export XLSX by default", func(t *testing.T) {
		f := newAdminFixture(t)
		f.apps.On("ListForExport", ctx, (*int64)(nil)).Return(rows, nil)

		file, err := f.uc.ExportApplications(ctx, "", nil)
		require.NoError(t, err)
		assert.Contains(t, file.Filename, ".xlsx")

		book, err := excelize.OpenReader(bytes.NewReader(file.Data))
		require.NoError(t, err)
		defer book.Close()
		v, err := book.GetCellValue("Applications", "B2")
		require.NoError(t, err)
		assert.Equal(t, "Science Teacher", v)
	})

	t.Run("Should reject unknown format", func(t *testing.T) {
		f := newAdminFixture(t)
		_, err := f.uc.ExportApplications(ctx, "pdf", nil)
		requireAppError(t, err, apperror.KindValidation, http.StatusBadRequest)
	})
}

func TestAdminDeleteCandidate(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)
	cid := domain.NewCandidateID()
	f.candidates.On("Delete", ctx, cid).Return(domain.ErrNotFound)

	err := f.uc.DeleteCandidate(ctx, cid)
	requireAppError(t, err, apperror.KindNotFound, http.StatusNotFound)
}
