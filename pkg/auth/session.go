package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionTTL is the validity embedded in every session credential.
	SessionTTL = 7 * 24 * time.Hour
	// CookieLifetime is the transport lifetime of the session cookie. The
	// embedded expiry remains the real control.
	CookieLifetime = 30 * 24 * time.Hour
	// CookieName carries the session for browser clients.
	CookieName = "auth_token"
)

var (
	ErrSessionExpired = errors.New("session expired")
	ErrInvalidSession = errors.New("invalid session")
)

// Claims is the signed session payload.
type Claims struct {
	CandidateID string `json:"cid,omitempty"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// Session is one credential with two delivery targets: cookie and response body.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// SessionManager signs and verifies HS256 session credentials.
type SessionManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(secret, issuer string, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &SessionManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// IssueCandidate mints a candidate session.
func (m *SessionManager) IssueCandidate(candidateID, email string) (Session, error) {
	return m.issue(Claims{CandidateID: candidateID, Email: email, Role: "candidate"}, candidateID)
}

// IssueAdmin mints an admin session keyed by the admin email.
func (m *SessionManager) IssueAdmin(email string) (Session, error) {
	return m.issue(Claims{Email: email, Role: "admin"}, email)
}

func (m *SessionManager) issue(claims Claims, subject string) (Session, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}
	return Session{Token: signed, ExpiresAt: expiresAt}, nil
}

// Parse verifies a credential. Expired credentials return ErrSessionExpired,
// anything else unusable returns ErrInvalidSession.
func (m *SessionManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return claims, nil
}
