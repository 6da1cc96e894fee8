package postgres

import (
	"context"
	"fmt"
	"strings"

	"careers-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

// Create relies on applications_candidate_job_key so concurrent submissions for
// the same pair cannot both succeed.
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (candidate_id, job_id, profile_id, email, status, cover_letter, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		string(app.CandidateID), app.JobID, app.ProfileID, app.Email, string(app.Status), app.CoverLetter,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if uniqueViolation(err) == constraintCandidateJob {
			return domain.ErrDuplicateApplication
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (r *applicationRepo) ExistsForCandidate(ctx context.Context, candidateID domain.CandidateID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE candidate_id = $1)`, string(candidateID),
	).Scan(&exists)
	return exists, err
}

func (r *applicationRepo) ListByCandidate(ctx context.Context, candidateID domain.CandidateID) ([]domain.Application, error) {
	query := `
		SELECT a.id, a.candidate_id, a.job_id, a.profile_id, a.email, a.status, a.cover_letter,
		       a.created_at, a.updated_at, j.title, NULL::text
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.candidate_id = $1
		ORDER BY a.created_at DESC`
	return r.queryApplications(ctx, query, string(candidateID))
}

func (r *applicationRepo) AppliedJobIDs(ctx context.Context, candidateID domain.CandidateID) (map[int64]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT job_id FROM applications WHERE candidate_id = $1`, string(candidateID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (r *applicationRepo) List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, int64, error) {
	where, args := applicationWhere(filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM applications a`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(`
		SELECT a.id, a.candidate_id, a.job_id, a.profile_id, a.email, a.status, a.cover_letter,
		       a.created_at, a.updated_at, j.title, p.full_name
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		LEFT JOIN profiles p ON p.candidate_id = a.candidate_id
		%s
		ORDER BY a.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	apps, err := r.queryApplications(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func applicationWhere(filter domain.ApplicationFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if filter.JobID != nil {
		args = append(args, *filter.JobID)
		conds = append(conds, fmt.Sprintf("a.job_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *applicationRepo) queryApplications(ctx context.Context, query string, args ...interface{}) ([]domain.Application, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []domain.Application{}
	for rows.Next() {
		var a domain.Application
		var cid string
		var status string
		if err := rows.Scan(
			&a.ID, &cid, &a.JobID, &a.ProfileID, &a.Email, &status, &a.CoverLetter,
			&a.CreatedAt, &a.UpdatedAt, &a.JobTitle, &a.CandidateName,
		); err != nil {
			return nil, err
		}
		a.CandidateID = domain.CandidateID(cid)
		a.Status = domain.ApplicationStatus(status)
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *applicationRepo) ListForExport(ctx context.Context, jobID *int64) ([]domain.ApplicationExportRow, error) {
	query := `
		SELECT a.id, j.title, a.status, a.created_at, a.email,
		       COALESCE(p.full_name, ''), COALESCE(p.gender, ''), p.date_of_birth,
		       COALESCE(p.national_id, ''), COALESCE(p.phone, ''), COALESCE(p.address, ''),
		       COALESCE(p.skills, '{}'), COALESCE(p.resume_url, '')
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		LEFT JOIN profiles p ON p.candidate_id = a.candidate_id
		WHERE ($1::bigint IS NULL OR a.job_id = $1)
		ORDER BY j.title, a.created_at`

	rows, err := r.db.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ApplicationExportRow
	for rows.Next() {
		var row domain.ApplicationExportRow
		var status string
		var skills []string
		if err := rows.Scan(
			&row.ApplicationID, &row.JobTitle, &status, &row.AppliedAt, &row.Email,
			&row.FullName, &row.Gender, &row.DateOfBirth,
			&row.NationalID, &row.Phone, &row.Address,
			pq.Array(&skills), &row.ResumeURL,
		); err != nil {
			return nil, err
		}
		row.Status = domain.ApplicationStatus(status)
		row.Skills = skills
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *applicationRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
