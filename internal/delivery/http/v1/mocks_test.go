package v1

import (
	"context"

	"careers-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

type mockAuthUC struct {
	mock.Mock
}

func (m *mockAuthUC) Register(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockAuthUC) ResendVerification(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockAuthUC) Verify(ctx context.Context, token, email string) (*domain.AuthResult, error) {
	args := m.Called(ctx, token, email)
	res, _ := args.Get(0).(*domain.AuthResult)
	return res, args.Error(1)
}

func (m *mockAuthUC) RequestLogin(ctx context.Context, email string, meta domain.RequestMeta) error {
	return m.Called(ctx, email, meta).Error(0)
}

func (m *mockAuthUC) VerifyLogin(ctx context.Context, token, email, presented string, meta domain.RequestMeta) (*domain.AuthResult, error) {
	args := m.Called(ctx, token, email, presented, meta)
	res, _ := args.Get(0).(*domain.AuthResult)
	return res, args.Error(1)
}

func (m *mockAuthUC) Authenticate(ctx context.Context, sessionToken string) (*domain.Candidate, error) {
	args := m.Called(ctx, sessionToken)
	c, _ := args.Get(0).(*domain.Candidate)
	return c, args.Error(1)
}

func (m *mockAuthUC) GetCandidate(ctx context.Context, id domain.CandidateID) (*domain.Candidate, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*domain.Candidate)
	return c, args.Error(1)
}

type mockProfileUC struct {
	mock.Mock
}

func (m *mockProfileUC) GetProfile(ctx context.Context, id domain.CandidateID) (*domain.ProfileView, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*domain.ProfileView)
	return v, args.Error(1)
}

func (m *mockProfileUC) UpsertProfile(ctx context.Context, id domain.CandidateID, email string, input domain.ProfileInput) (*domain.ProfileView, error) {
	args := m.Called(ctx, id, email, input)
	v, _ := args.Get(0).(*domain.ProfileView)
	return v, args.Error(1)
}

type mockJobUC struct {
	mock.Mock
}

func (m *mockJobUC) ListOpen(ctx context.Context, viewer *domain.CandidateID) ([]domain.JobListing, error) {
	args := m.Called(ctx, viewer)
	v, _ := args.Get(0).([]domain.JobListing)
	return v, args.Error(1)
}

func (m *mockJobUC) GetJob(ctx context.Context, id int64, viewer *domain.CandidateID) (*domain.JobListing, error) {
	args := m.Called(ctx, id, viewer)
	v, _ := args.Get(0).(*domain.JobListing)
	return v, args.Error(1)
}

type mockApplicationUC struct {
	mock.Mock
}

func (m *mockApplicationUC) Apply(ctx context.Context, id domain.CandidateID, email string, jobID int64, coverLetter string) (*domain.Application, error) {
	args := m.Called(ctx, id, email, jobID, coverLetter)
	v, _ := args.Get(0).(*domain.Application)
	return v, args.Error(1)
}

func (m *mockApplicationUC) ListMine(ctx context.Context, id domain.CandidateID) ([]domain.Application, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).([]domain.Application)
	return v, args.Error(1)
}

type mockUploadUC struct {
	mock.Mock
}

func (m *mockUploadUC) Upload(ctx context.Context, id domain.CandidateID, kind domain.UploadKind, filename string, data []byte) (*domain.UploadResult, error) {
	args := m.Called(ctx, id, kind, filename, data)
	v, _ := args.Get(0).(*domain.UploadResult)
	return v, args.Error(1)
}

type mockAdminUC struct {
	mock.Mock
}

func (m *mockAdminUC) Login(ctx context.Context, email, password, otp string, meta domain.RequestMeta) (*domain.AdminSession, error) {
	args := m.Called(ctx, email, password, otp, meta)
	v, _ := args.Get(0).(*domain.AdminSession)
	return v, args.Error(1)
}

func (m *mockAdminUC) ListJobs(ctx context.Context) ([]domain.Job, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]domain.Job)
	return v, args.Error(1)
}

func (m *mockAdminUC) CreateJob(ctx context.Context, input domain.JobInput) (*domain.Job, error) {
	args := m.Called(ctx, input)
	v, _ := args.Get(0).(*domain.Job)
	return v, args.Error(1)
}

func (m *mockAdminUC) UpdateJob(ctx context.Context, id int64, input domain.JobInput) (*domain.Job, error) {
	args := m.Called(ctx, id, input)
	v, _ := args.Get(0).(*domain.Job)
	return v, args.Error(1)
}

func (m *mockAdminUC) DeleteJob(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAdminUC) ListApplications(ctx context.Context, filter domain.ApplicationFilter) (*domain.PaginatedResult[domain.Application], error) {
	args := m.Called(ctx, filter)
	v, _ := args.Get(0).(*domain.PaginatedResult[domain.Application])
	return v, args.Error(1)
}

func (m *mockAdminUC) UpdateApplicationStatus(ctx context.Context, id int64, status domain.ApplicationStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockAdminUC) DeleteApplication(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAdminUC) ExportApplications(ctx context.Context, format string, jobID *int64) (*domain.ExportFile, error) {
	args := m.Called(ctx, format, jobID)
	v, _ := args.Get(0).(*domain.ExportFile)
	return v, args.Error(1)
}

func (m *mockAdminUC) ListCandidates(ctx context.Context, page, pageSize int) (*domain.PaginatedResult[domain.CandidateSummary], error) {
	args := m.Called(ctx, page, pageSize)
	v, _ := args.Get(0).(*domain.PaginatedResult[domain.CandidateSummary])
	return v, args.Error(1)
}

func (m *mockAdminUC) DeleteCandidate(ctx context.Context, id domain.CandidateID) error {
	return m.Called(ctx, id).Error(0)
}
