package usecase_test

import (
	"context"
	"sync"
	"time"

	"careers-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockCandidateRepo struct {
	mock.Mock
}

func (m *MockCandidateRepo) candidate(args mock.Arguments) (*domain.Candidate, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepo) UpsertPendingVerification(ctx context.Context, email, token string, expiry time.Time) (*domain.Candidate, error) {
	return m.candidate(m.Called(ctx, email, token, expiry))
}
func (m *MockCandidateRepo) GetByID(ctx context.Context, id domain.CandidateID) (*domain.Candidate, error) {
	return m.candidate(m.Called(ctx, id))
}
func (m *MockCandidateRepo) GetByEmail(ctx context.Context, email string) (*domain.Candidate, error) {
	return m.candidate(m.Called(ctx, email))
}
func (m *MockCandidateRepo) FindByVerificationToken(ctx context.Context, token string) (*domain.Candidate, error) {
	return m.candidate(m.Called(ctx, token))
}
func (m *MockCandidateRepo) MarkVerified(ctx context.Context, id domain.CandidateID, token string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, token, at)
	return args.Bool(0), args.Error(1)
}
func (m *MockCandidateRepo) SetLoginToken(ctx context.Context, id domain.CandidateID, token string, expiry time.Time) error {
	return m.Called(ctx, id, token, expiry).Error(0)
}
func (m *MockCandidateRepo) ConsumeLoginToken(ctx context.Context, id domain.CandidateID, token string) (bool, error) {
	args := m.Called(ctx, id, token)
	return args.Bool(0), args.Error(1)
}
func (m *MockCandidateRepo) ClearLoginToken(ctx context.Context, id domain.CandidateID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockCandidateRepo) List(ctx context.Context, page, pageSize int) ([]domain.CandidateSummary, int64, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.CandidateSummary), args.Get(1).(int64), args.Error(2)
}
func (m *MockCandidateRepo) Delete(ctx context.Context, id domain.CandidateID) error {
	return m.Called(ctx, id).Error(0)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetByCandidateID(ctx context.Context, candidateID domain.CandidateID) (*domain.Profile, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
func (m *MockProfileRepo) NationalIDTakenByOther(ctx context.Context, nationalID string, candidateID domain.CandidateID) (bool, error) {
	args := m.Called(ctx, nationalID, candidateID)
	return args.Bool(0), args.Error(1)
}
func (m *MockProfileRepo) Upsert(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	return m.Called(ctx, app).Error(0)
}
func (m *MockApplicationRepo) ExistsForCandidate(ctx context.Context, candidateID domain.CandidateID) (bool, error) {
	args := m.Called(ctx, candidateID)
	return args.Bool(0), args.Error(1)
}
func (m *MockApplicationRepo) ListByCandidate(ctx context.Context, candidateID domain.CandidateID) ([]domain.Application, error) {
	args := m.Called(ctx, candidateID)
	return args.Get(0).([]domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) AppliedJobIDs(ctx context.Context, candidateID domain.CandidateID) (map[int64]bool, error) {
	args := m.Called(ctx, candidateID)
	return args.Get(0).(map[int64]bool), args.Error(1)
}
func (m *MockApplicationRepo) List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Application), args.Get(1).(int64), args.Error(2)
}
func (m *MockApplicationRepo) ListForExport(ctx context.Context, jobID *int64) ([]domain.ApplicationExportRow, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).([]domain.ApplicationExportRow), args.Error(1)
}
func (m *MockApplicationRepo) UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *MockApplicationRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) Create(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}
func (m *MockJobRepo) Update(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}
func (m *MockJobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}
func (m *MockJobRepo) List(ctx context.Context, openOnly bool) ([]domain.Job, error) {
	args := m.Called(ctx, openOnly)
	return args.Get(0).([]domain.Job), args.Error(1)
}
func (m *MockJobRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) IsBlocked(ctx context.Context, email, ip string) (bool, error) {
	args := m.Called(ctx, email, ip)
	return args.Bool(0), args.Error(1)
}
func (m *MockTracker) RecordFailedAttempt(ctx context.Context, email, ip, userAgent, requestID string) (bool, int, error) {
	args := m.Called(ctx, email, ip, userAgent, requestID)
	return args.Bool(0), args.Int(1), args.Error(2)
}
func (m *MockTracker) ClearAttempts(ctx context.Context, email, ip string) error {
	return m.Called(ctx, email, ip).Error(0)
}

// recordingMailer captures every message it is asked to send.
type recordingMailer struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

type sentMail struct {
	To, Subject, HTML string
}

func (r *recordingMailer) Send(_ context.Context, to, subject, html string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.sent = append(r.sent, sentMail{To: to, Subject: subject, HTML: html})
	return "<test@localhost>", nil
}

func (r *recordingMailer) Sent() []sentMail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentMail(nil), r.sent...)
}

type fakeStorage struct {
	err         error
	key         string
	contentType string
	body        []byte
}

func (f *fakeStorage) Put(_ context.Context, key, contentType string, body []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.key, f.contentType, f.body = key, contentType, body
	return "https://files.example.com/" + key, nil
}
