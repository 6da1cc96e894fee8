package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"careers-backend/internal/domain"
	"careers-backend/pkg/apperror"
	"careers-backend/pkg/auth"
	"careers-backend/pkg/email"
	"careers-backend/pkg/logger"
	"careers-backend/pkg/security"
	"careers-backend/pkg/token"

	"github.com/go-playground/validator/v10"
)

// CandidateAuthConfig carries the settings the auth flows need from config.
type CandidateAuthConfig struct {
	FrontendURL string
	OpsEmail    string
	// StrictLoginReplay rejects consumed login links unless the caller
	// already holds a valid session for the same candidate.
	StrictLoginReplay bool
}

type candidateAuthUsecase struct {
	repo      domain.CandidateRepository
	sessions  *auth.SessionManager
	tokens    *token.Generator
	mailer    domain.Mailer
	notifier  *Notifier
	secLogger *security.SecurityLogger
	validate  *validator.Validate
	cfg       CandidateAuthConfig
}

func NewCandidateAuthUsecase(
	repo domain.CandidateRepository,
	sessions *auth.SessionManager,
	tokens *token.Generator,
	mailer domain.Mailer,
	notifier *Notifier,
	secLogger *security.SecurityLogger,
	cfg CandidateAuthConfig,
) domain.CandidateAuthUsecase {
	if secLogger == nil {
		secLogger = security.DefaultLogger()
	}
	return &candidateAuthUsecase{
		repo:      repo,
		sessions:  sessions,
		tokens:    tokens,
		mailer:    mailer,
		notifier:  notifier,
		secLogger: secLogger,
		validate:  validator.New(),
		cfg:       cfg,
	}
}

func (u *candidateAuthUsecase) Register(ctx context.Context, rawEmail string) (string, error) {
	addr, err := u.normalizeEmail(rawEmail)
	if err != nil {
		return "", err
	}
	return u.issueVerification(ctx, addr)
}

func (u *candidateAuthUsecase) ResendVerification(ctx context.Context, rawEmail string) (string, error) {
	addr, err := u.normalizeEmail(rawEmail)
	if err != nil {
		return "", err
	}

	candidate, err := u.repo.GetByEmail(ctx, addr)
	if err != nil {
		return "", apperror.Internal(fmt.Errorf("lookup candidate: %w", err))
	}
	if candidate == nil {
		return "", domain.ErrNotRegistered()
	}
	if candidate.EmailVerified {
		return "", domain.ErrAlreadyRegistered()
	}
	return u.issueVerification(ctx, addr)
}

// issueVerification creates or refreshes the pending candidate and mails the
// new link. The previous token stops working as soon as the row is updated.
func (u *candidateAuthUsecase) issueVerification(ctx context.Context, addr string) (string, error) {
	tok, expiry, err := u.tokens.Generate(token.VerificationTTL)
	if err != nil {
		return "", apperror.Internal(err)
	}

	candidate, err := u.repo.UpsertPendingVerification(ctx, addr, tok, expiry)
	if errors.Is(err, domain.ErrAlreadyVerified) {
		return "", domain.ErrAlreadyRegistered()
	}
	if err != nil {
		return "", apperror.Internal(fmt.Errorf("upsert candidate: %w", err))
	}

	msg, err := email.Verification(email.ActionLink(u.cfg.FrontendURL, "/verify-email", tok, candidate.Email))
	if err != nil {
		return "", apperror.Internal(err)
	}
	if _, err := u.mailer.Send(ctx, candidate.Email, msg.Subject, msg.HTML); err != nil {
		logger.Log.Error("Verification email failed", "candidate_id", candidate.ID, "error", err)
		return "", domain.ErrEmailDispatchFailed(err)
	}

	u.secLogger.LogEmailEvent(ctx, security.EventVerificationSent, candidate.Email, "", "", "", nil)
	return candidate.Email, nil
}

func (u *candidateAuthUsecase) Verify(ctx context.Context, rawToken, rawEmail string) (*domain.AuthResult, error) {
	tok := decodeParam(rawToken)
	if tok == "" {
		return nil, domain.ErrInvalidOrExpiredToken()
	}

	var (
		candidate *domain.Candidate
		err       error
	)
	if addr := domain.NormalizeEmail(decodeParam(rawEmail)); addr != "" {
		candidate, err = u.repo.GetByEmail(ctx, addr)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("lookup candidate: %w", err))
		}
		if candidate == nil {
			return nil, domain.ErrInvalidOrExpiredToken()
		}
		if !candidate.VerificationTokenMatches(tok) {
			if candidate.EmailVerified {
				// Old verification link opened again: log the owner in.
				return u.startSession(candidate, true)
			}
			return nil, domain.ErrInvalidOrExpiredToken()
		}
	} else {
		candidate, err = u.repo.FindByVerificationToken(ctx, tok)
		if err != nil {
			return nil, apperror.Internal(fmt.Errorf("lookup token: %w", err))
		}
		if candidate == nil {
			return nil, domain.ErrInvalidOrExpiredToken()
		}
	}

	now := time.Now()
	if candidate.VerificationExpired(now) {
		return nil, domain.ErrTokenExpired()
	}

	ok, err := u.repo.MarkVerified(ctx, candidate.ID, *candidate.VerificationToken, now)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("mark verified: %w", err))
	}
	if !ok {
		return nil, domain.ErrInvalidOrExpiredToken()
	}
	candidate.EmailVerified = true
	candidate.VerifiedAt = &now
	candidate.VerificationToken = nil
	candidate.VerificationTokenExpiry = nil

	result, err := u.startSession(candidate, false)
	if err != nil {
		return nil, err
	}

	u.secLogger.LogEmailEvent(ctx, security.EventEmailVerified, candidate.Email, "", "", "", nil)

	addr := candidate.Email
	u.notifier.Send(addr, "welcome", func() (email.Message, error) {
		return email.Welcome(addr, u.cfg.FrontendURL+"/profile")
	})
	u.notifier.Send(u.cfg.OpsEmail, "ops_new_candidate", func() (email.Message, error) {
		return email.OpsNewCandidate(addr)
	})

	return result, nil
}

func (u *candidateAuthUsecase) RequestLogin(ctx context.Context, rawEmail string, meta domain.RequestMeta) error {
	addr, err := u.normalizeEmail(rawEmail)
	if err != nil {
		return err
	}

	candidate, err := u.repo.GetByEmail(ctx, addr)
	if err != nil {
		return apperror.Internal(fmt.Errorf("lookup candidate: %w", err))
	}
	if candidate == nil {
		return domain.ErrNotRegistered()
	}
	if !candidate.EmailVerified {
		return domain.ErrNotVerified()
	}

	tok, expiry, err := u.tokens.Generate(token.LoginTTL)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := u.repo.SetLoginToken(ctx, candidate.ID, tok, expiry); err != nil {
		return apperror.Internal(fmt.Errorf("store login token: %w", err))
	}

	msg, err := email.LoginLink(email.ActionLink(u.cfg.FrontendURL, "/verify-login", tok, candidate.Email))
	if err != nil {
		return apperror.Internal(err)
	}
	if _, err := u.mailer.Send(ctx, candidate.Email, msg.Subject, msg.HTML); err != nil {
		logger.Log.Error("Login email failed", "candidate_id", candidate.ID, "error", err)
		return domain.ErrEmailDispatchFailed(err)
	}

	u.secLogger.LogEmailEvent(ctx, security.EventLoginLinkRequested, candidate.Email, meta.IP, meta.UserAgent, meta.RequestID, nil)
	return nil
}

func (u *candidateAuthUsecase) VerifyLogin(ctx context.Context, rawToken, rawEmail, presentedSession string, meta domain.RequestMeta) (*domain.AuthResult, error) {
	tok := decodeParam(rawToken)
	addr := domain.NormalizeEmail(decodeParam(rawEmail))
	if tok == "" || addr == "" {
		return nil, domain.ErrInvalidOrExpiredToken()
	}

	candidate, err := u.repo.GetByEmail(ctx, addr)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("lookup candidate: %w", err))
	}
	if candidate == nil {
		return nil, domain.ErrInvalidOrExpiredToken()
	}

	if !candidate.LoginTokenMatches(tok) {
		if !candidate.EmailVerified {
			return nil, domain.ErrNotVerified()
		}
		return u.replayLogin(ctx, candidate, presentedSession, meta)
	}

	if candidate.LoginExpired(time.Now()) {
		if err := u.repo.ClearLoginToken(ctx, candidate.ID); err != nil {
			logger.Log.Warn("Failed to clear expired login token", "candidate_id", candidate.ID, "error", err)
		}
		return nil, domain.ErrTokenExpired()
	}

	consumed, err := u.repo.ConsumeLoginToken(ctx, candidate.ID, tok)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("consume login token: %w", err))
	}
	if !consumed {
		// Another request used the link first.
		return u.replayLogin(ctx, candidate, presentedSession, meta)
	}

	result, err := u.startSession(candidate, false)
	if err != nil {
		return nil, err
	}
	u.secLogger.LogEmailEvent(ctx, security.EventLoginSuccess, candidate.Email, meta.IP, meta.UserAgent, meta.RequestID, nil)
	return result, nil
}

// replayLogin handles a login link that no longer matches the stored token.
func (u *candidateAuthUsecase) replayLogin(ctx context.Context, candidate *domain.Candidate, presented string, meta domain.RequestMeta) (*domain.AuthResult, error) {
	details := map[string]interface{}{"strict": u.cfg.StrictLoginReplay}

	if presented != "" {
		claims, err := u.sessions.Parse(presented)
		if err == nil && claims.Role == domain.RoleCandidate && claims.CandidateID == candidate.ID.String() {
			details["outcome"] = "session_reused"
			u.secLogger.LogEmailEvent(ctx, security.EventLoginLinkReplayed, candidate.Email, meta.IP, meta.UserAgent, meta.RequestID, details)
			return &domain.AuthResult{
				CandidateID: candidate.ID,
				Email:       candidate.Email,
				Token:       presented,
				ExpiresAt:   claims.ExpiresAt.Time,
				Replayed:    true,
			}, nil
		}
	}

	if u.cfg.StrictLoginReplay {
		details["outcome"] = "rejected"
		u.secLogger.LogEmailEvent(ctx, security.EventLoginLinkReplayed, candidate.Email, meta.IP, meta.UserAgent, meta.RequestID, details)
		return nil, domain.ErrInvalidOrExpiredToken()
	}

	details["outcome"] = "session_issued"
	u.secLogger.LogEmailEvent(ctx, security.EventLoginLinkReplayed, candidate.Email, meta.IP, meta.UserAgent, meta.RequestID, details)
	result, err := u.startSession(candidate, false)
	if err != nil {
		return nil, err
	}
	result.Replayed = true
	return result, nil
}

func (u *candidateAuthUsecase) Authenticate(ctx context.Context, sessionToken string) (*domain.Candidate, error) {
	if sessionToken == "" {
		return nil, domain.ErrUnauthenticated()
	}

	claims, err := u.sessions.Parse(sessionToken)
	if err != nil {
		return nil, domain.ErrSessionExpired()
	}
	if claims.Role != domain.RoleCandidate {
		return nil, domain.ErrInvalidSession()
	}
	id, err := domain.ParseCandidateID(claims.CandidateID)
	if err != nil {
		return nil, domain.ErrInvalidSession()
	}

	candidate, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("load candidate: %w", err))
	}
	if candidate == nil {
		return nil, domain.ErrInvalidSession()
	}
	if !candidate.EmailVerified {
		return nil, domain.ErrNotVerified()
	}
	return candidate, nil
}

func (u *candidateAuthUsecase) GetCandidate(ctx context.Context, id domain.CandidateID) (*domain.Candidate, error) {
	candidate, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("load candidate: %w", err))
	}
	if candidate == nil {
		return nil, apperror.NotFound("Candidate not found")
	}
	return candidate, nil
}

func (u *candidateAuthUsecase) startSession(candidate *domain.Candidate, alreadyVerified bool) (*domain.AuthResult, error) {
	session, err := u.sessions.IssueCandidate(candidate.ID.String(), candidate.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.AuthResult{
		CandidateID:     candidate.ID,
		Email:           candidate.Email,
		Token:           session.Token,
		ExpiresAt:       session.ExpiresAt,
		AlreadyVerified: alreadyVerified,
	}, nil
}

func (u *candidateAuthUsecase) normalizeEmail(raw string) (string, error) {
	addr := domain.NormalizeEmail(raw)
	if err := u.validate.Var(addr, "required,email,max=254"); err != nil {
		return "", apperror.BadRequest("A valid email address is required")
	}
	return addr, nil
}

// decodeParam accepts both url-encoded and already-decoded link values.
// PathUnescape leaves '+' alone so plus-addressed emails survive.
func decodeParam(raw string) string {
	raw = strings.TrimSpace(raw)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return strings.TrimSpace(decoded)
	}
	return raw
}
