package postgres

import (
	"context"
	"errors"

	"careers-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const jobColumns = `id, title, department, location, employment_type, description, requirements, is_open, deadline, created_at, updated_at`

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `INSERT INTO jobs (title, department, location, employment_type, description, requirements, is_open, deadline, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()) RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		job.Title, job.Department, job.Location, job.EmploymentType, job.Description,
		pq.Array(nonNil(job.Requirements)), job.IsOpen, job.Deadline,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	query := `UPDATE jobs SET title = $2, department = $3, location = $4, employment_type = $5, description = $6,
              requirements = $7, is_open = $8, deadline = $9, updated_at = NOW()
              WHERE id = $1 RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		job.ID, job.Title, job.Department, job.Location, job.EmploymentType, job.Description,
		pq.Array(nonNil(job.Requirements)), job.IsOpen, job.Deadline,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	job, err := scanJob(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return job, err
}

func (r *jobRepo) List(ctx context.Context, openOnly bool) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	if openOnly {
		query += ` WHERE is_open = TRUE AND (deadline IS NULL OR deadline >= NOW())`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (r *jobRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	var requirements []string
	err := row.Scan(
		&job.ID, &job.Title, &job.Department, &job.Location, &job.EmploymentType, &job.Description,
		pq.Array(&requirements), &job.IsOpen, &job.Deadline, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	job.Requirements = nonNil(requirements)
	return &job, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
