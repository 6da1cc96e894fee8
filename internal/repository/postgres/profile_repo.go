package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"careers-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByCandidateID(ctx context.Context, candidateID domain.CandidateID) (*domain.Profile, error) {
	query := `
		SELECT id, candidate_id, email, full_name, date_of_birth, gender, national_id, phone, address,
		       resume_url, photo_url, education, experience, skills, certifications, created_at, updated_at
		FROM profiles WHERE candidate_id = $1`

	var p domain.Profile
	var id, cid string
	var education, experience, certifications []byte
	var skills []string

	err := r.db.QueryRow(ctx, query, string(candidateID)).Scan(
		&id, &cid, &p.Email, &p.FullName, &p.DateOfBirth, &p.Gender, &p.NationalID, &p.Phone, &p.Address,
		&p.ResumeURL, &p.PhotoURL, &education, &experience, pq.Array(&skills), &certifications,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.ID = id
	p.CandidateID = domain.CandidateID(cid)
	p.Skills = skills

	if err := json.Unmarshal(education, &p.Education); err != nil {
		return nil, fmt.Errorf("decode education: %w", err)
	}
	if err := json.Unmarshal(experience, &p.Experience); err != nil {
		return nil, fmt.Errorf("decode experience: %w", err)
	}
	if err := json.Unmarshal(certifications, &p.Certifications); err != nil {
		return nil, fmt.Errorf("decode certifications: %w", err)
	}
	return &p, nil
}

func (r *profileRepo) NationalIDTakenByOther(ctx context.Context, nationalID string, candidateID domain.CandidateID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM profiles WHERE national_id = $1 AND candidate_id <> $2)`,
		nationalID, string(candidateID),
	).Scan(&exists)
	return exists, err
}

// Upsert writes the profile in one statement keyed by candidate_id and links
// the candidate back-reference.
func (r *profileRepo) Upsert(ctx context.Context, p *domain.Profile) error {
	education, err := marshalList(p.Education)
	if err != nil {
		return err
	}
	experience, err := marshalList(p.Experience)
	if err != nil {
		return err
	}
	certifications, err := marshalList(p.Certifications)
	if err != nil {
		return err
	}
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO profiles (candidate_id, email, full_name, date_of_birth, gender, national_id, phone, address,
		                      resume_url, photo_url, education, experience, skills, certifications, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12::jsonb, $13, $14::jsonb, NOW(), NOW())
		ON CONFLICT (candidate_id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			date_of_birth = EXCLUDED.date_of_birth,
			gender = EXCLUDED.gender,
			national_id = EXCLUDED.national_id,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			resume_url = EXCLUDED.resume_url,
			photo_url = EXCLUDED.photo_url,
			education = EXCLUDED.education,
			experience = EXCLUDED.experience,
			skills = EXCLUDED.skills,
			certifications = EXCLUDED.certifications,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	var id string
	err = tx.QueryRow(ctx, query,
		string(p.CandidateID), p.Email, p.FullName, p.DateOfBirth, string(p.Gender), p.NationalID, p.Phone, p.Address,
		p.ResumeURL, p.PhotoURL, string(education), string(experience), pq.Array(skills), string(certifications),
	).Scan(&id, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if uniqueViolation(err) == constraintNationalID {
			return domain.ErrDuplicateNationalID
		}
		return fmt.Errorf("upsert profile: %w", err)
	}
	p.ID = id

	if _, err := tx.Exec(ctx, `UPDATE candidates SET profile_id = $2, updated_at = NOW() WHERE id = $1 AND profile_id IS DISTINCT FROM $2`,
		string(p.CandidateID), id); err != nil {
		return fmt.Errorf("link profile: %w", err)
	}

	return tx.Commit(ctx)
}

func marshalList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}
