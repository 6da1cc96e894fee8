package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"careers-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const candidateColumns = `id, email, email_verified, verification_token, verification_token_expiry,
	login_token, login_token_expiry, profile_id, verified_at, created_at, updated_at`

type candidateRepository struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepository{db: db}
}

func scanCandidate(row pgx.Row) (*domain.Candidate, error) {
	var c domain.Candidate
	var id string
	err := row.Scan(
		&id, &c.Email, &c.EmailVerified, &c.VerificationToken, &c.VerificationTokenExpiry,
		&c.LoginToken, &c.LoginTokenExpiry, &c.ProfileID, &c.VerifiedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.ID = domain.CandidateID(id)
	return &c, nil
}

// UpsertPendingVerification inserts a new candidate or reissues the token of an
// unverified one in a single statement. A verified row is left untouched and
// yields no RETURNING row.
func (r *candidateRepository) UpsertPendingVerification(ctx context.Context, email, token string, expiry time.Time) (*domain.Candidate, error) {
	query := `
		INSERT INTO candidates (email, email_verified, verification_token, verification_token_expiry, created_at, updated_at)
		VALUES ($1, FALSE, $2, $3, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE
			SET verification_token = EXCLUDED.verification_token,
			    verification_token_expiry = EXCLUDED.verification_token_expiry,
			    updated_at = NOW()
			WHERE candidates.email_verified = FALSE
		RETURNING ` + candidateColumns

	c, err := scanCandidate(r.db.QueryRow(ctx, query, email, token, expiry))
	if err != nil {
		return nil, fmt.Errorf("upsert candidate: %w", err)
	}
	if c == nil {
		return nil, domain.ErrAlreadyVerified
	}
	return c, nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id domain.CandidateID) (*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`
	return scanCandidate(r.db.QueryRow(ctx, query, string(id)))
}

func (r *candidateRepository) GetByEmail(ctx context.Context, email string) (*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE email = $1`
	return scanCandidate(r.db.QueryRow(ctx, query, domain.NormalizeEmail(email)))
}

func (r *candidateRepository) FindByVerificationToken(ctx context.Context, token string) (*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE verification_token = $1`
	c, err := scanCandidate(r.db.QueryRow(ctx, query, token))
	if err != nil || c != nil {
		return c, err
	}

	query = `SELECT ` + candidateColumns + ` FROM candidates
		WHERE verification_token IS NOT NULL AND lower(verification_token) = lower($1)
		ORDER BY updated_at DESC LIMIT 1`
	return scanCandidate(r.db.QueryRow(ctx, query, token))
}

// MarkVerified is the only statement that sets email_verified. It is
// conditioned on the token still being present so it can succeed once.
func (r *candidateRepository) MarkVerified(ctx context.Context, id domain.CandidateID, token string, at time.Time) (bool, error) {
	query := `
		UPDATE candidates
		SET email_verified = TRUE,
		    verified_at = COALESCE(verified_at, $3),
		    verification_token = NULL,
		    verification_token_expiry = NULL,
		    updated_at = NOW()
		WHERE id = $1
		  AND verification_token IS NOT NULL
		  AND lower(verification_token) = lower($2)`
	tag, err := r.db.Exec(ctx, query, string(id), token, at)
	if err != nil {
		return false, fmt.Errorf("mark verified: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *candidateRepository) SetLoginToken(ctx context.Context, id domain.CandidateID, token string, expiry time.Time) error {
	query := `UPDATE candidates SET login_token = $2, login_token_expiry = $3, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, string(id), token, expiry)
	if err != nil {
		return fmt.Errorf("set login token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *candidateRepository) ConsumeLoginToken(ctx context.Context, id domain.CandidateID, token string) (bool, error) {
	query := `
		UPDATE candidates
		SET login_token = NULL, login_token_expiry = NULL, updated_at = NOW()
		WHERE id = $1 AND login_token = $2`
	tag, err := r.db.Exec(ctx, query, string(id), token)
	if err != nil {
		return false, fmt.Errorf("consume login token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *candidateRepository) ClearLoginToken(ctx context.Context, id domain.CandidateID) error {
	query := `UPDATE candidates SET login_token = NULL, login_token_expiry = NULL, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, string(id))
	return err
}

func (r *candidateRepository) List(ctx context.Context, page, pageSize int) ([]domain.CandidateSummary, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT c.id, c.email, c.email_verified, p.full_name,
		       (SELECT COUNT(*) FROM applications a WHERE a.candidate_id = c.id) AS application_count,
		       c.created_at
		FROM candidates c
		LEFT JOIN profiles p ON p.candidate_id = c.id
		ORDER BY c.created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.CandidateSummary
	for rows.Next() {
		var s domain.CandidateSummary
		var id string
		if err := rows.Scan(&id, &s.Email, &s.EmailVerified, &s.FullName, &s.ApplicationCount, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		s.ID = domain.CandidateID(id)
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Delete removes the candidate. Profile and applications go with it via
// ON DELETE CASCADE.
func (r *candidateRepository) Delete(ctx context.Context, id domain.CandidateID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
