package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CandidateID is the only key ownership queries accept. Email is display data.
type CandidateID string

func (id CandidateID) String() string {
	return string(id)
}

// ParseCandidateID validates that s is a UUID.
func ParseCandidateID(s string) (CandidateID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return CandidateID(parsed.String()), nil
}

// NewCandidateID returns a fresh random id.
func NewCandidateID() CandidateID {
	return CandidateID(uuid.NewString())
}

type Candidate struct {
	ID                      CandidateID `json:"id"`
	Email                   string      `json:"email"`
	EmailVerified           bool        `json:"email_verified"`
	VerificationToken       *string     `json:"-"`
	VerificationTokenExpiry *time.Time  `json:"-"`
	LoginToken              *string     `json:"-"`
	LoginTokenExpiry        *time.Time  `json:"-"`
	ProfileID               *string     `json:"profile_id,omitempty"`
	VerifiedAt              *time.Time  `json:"verified_at,omitempty"`
	CreatedAt               time.Time   `json:"created_at"`
	UpdatedAt               time.Time   `json:"updated_at"`
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// VerificationTokenMatches compares exactly first, then case-insensitively.
func (c *Candidate) VerificationTokenMatches(token string) bool {
	if c.VerificationToken == nil || token == "" {
		return false
	}
	stored := *c.VerificationToken
	return stored == token || strings.EqualFold(stored, token)
}

// VerificationExpired reports whether the verification token is past its expiry.
// A missing expiry counts as expired.
func (c *Candidate) VerificationExpired(now time.Time) bool {
	return c.VerificationTokenExpiry == nil || now.After(*c.VerificationTokenExpiry)
}

func (c *Candidate) LoginTokenMatches(token string) bool {
	return c.LoginToken != nil && token != "" && *c.LoginToken == token
}

func (c *Candidate) LoginExpired(now time.Time) bool {
	return c.LoginTokenExpiry == nil || now.After(*c.LoginTokenExpiry)
}

// CandidateSummary is the admin list row.
type CandidateSummary struct {
	ID               CandidateID `json:"id"`
	Email            string      `json:"email"`
	EmailVerified    bool        `json:"email_verified"`
	FullName         *string     `json:"full_name,omitempty"`
	ApplicationCount int         `json:"application_count"`
	CreatedAt        time.Time   `json:"created_at"`
}

// AuthResult is returned by flows that end in a session.
type AuthResult struct {
	CandidateID     CandidateID `json:"-"`
	Email           string      `json:"email"`
	Token           string      `json:"token"`
	ExpiresAt       time.Time   `json:"expires_at"`
	AlreadyVerified bool        `json:"alreadyVerified,omitempty"`
	Replayed        bool        `json:"-"`
}

// RequestMeta carries caller details used for security logging.
type RequestMeta struct {
	IP        string
	UserAgent string
	RequestID string
}

type CandidateRepository interface {
	// UpsertPendingVerification creates the candidate or reissues the token of an
	// unverified one. Returns ErrAlreadyVerified when the email is verified.
	UpsertPendingVerification(ctx context.Context, email, token string, expiry time.Time) (*Candidate, error)
	GetByID(ctx context.Context, id CandidateID) (*Candidate, error)
	GetByEmail(ctx context.Context, email string) (*Candidate, error)
	// FindByVerificationToken tries an exact match, then a case-insensitive one.
	FindByVerificationToken(ctx context.Context, token string) (*Candidate, error)
	// MarkVerified consumes the verification token. False means the token was
	// already gone.
	MarkVerified(ctx context.Context, id CandidateID, token string, at time.Time) (bool, error)
	SetLoginToken(ctx context.Context, id CandidateID, token string, expiry time.Time) error
	ConsumeLoginToken(ctx context.Context, id CandidateID, token string) (bool, error)
	ClearLoginToken(ctx context.Context, id CandidateID) error
	List(ctx context.Context, page, pageSize int) ([]CandidateSummary, int64, error)
	Delete(ctx context.Context, id CandidateID) error
}

type CandidateAuthUsecase interface {
	Register(ctx context.Context, email string) (string, error)
	ResendVerification(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, token, email string) (*AuthResult, error)
	RequestLogin(ctx context.Context, email string, meta RequestMeta) error
	VerifyLogin(ctx context.Context, token, email, presentedSession string, meta RequestMeta) (*AuthResult, error)
	// Authenticate resolves a session credential to a verified candidate.
	Authenticate(ctx context.Context, sessionToken string) (*Candidate, error)
	GetCandidate(ctx context.Context, id CandidateID) (*Candidate, error)
}
