package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/campusjobs/campusjobs/internal/model"
)

// Common errors for job repository operations.
var (
	ErrJobNotFound = errors.New("job not found")
)

// JobFilter defines filters for listing jobs.
type JobFilter struct {
	ActiveOnly bool
	Types      []model.JobType
}

const jobColumns = `j.id, j.company_id, j.title, j.description, j.location, j.type, j.is_active, j.created_at, j.updated_at`

// CreateJob inserts a new job.
func (r *Repository) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (id, company_id, title, description, location, type, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.CompanyID,
		job.Title,
		job.Description,
		job.Location,
		job.Type,
		job.IsActive,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// GetJobByID retrieves a job with full company detail, owner and application count.
func (r *Repository) GetJobByID(ctx context.Context, id string) (*model.Job, error) {
	query := `
		SELECT ` + jobColumns + `,
		       cp.user_id, cp.company_name, cp.logo_url, cp.description,
		       (SELECT COUNT(*) FROM applications a WHERE a.job_id = j.id)
		FROM jobs j
		JOIN company_profiles cp ON cp.id = j.company_id
		WHERE j.id = $1
	`

	job, err := scanJobWithCompany(r.pool.QueryRow(ctx, query, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job by ID: %w", err)
	}

	return job, nil
}

// ListJobs retrieves jobs newest first with public company fields and application counts.
func (r *Repository) ListJobs(ctx context.Context, filter JobFilter) ([]*model.Job, error) {
	query := `
		SELECT ` + jobColumns + `,
		       cp.user_id, cp.company_name, cp.logo_url, cp.description,
		       (SELECT COUNT(*) FROM applications a WHERE a.job_id = j.id)
		FROM jobs j
		JOIN company_profiles cp ON cp.id = j.company_id
		WHERE TRUE
	`
	var args []any

	if filter.ActiveOnly {
		query += " AND j.is_active"
	}

	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		query += fmt.Sprintf(" AND j.type = ANY($%d)", len(args)+1)
		args = append(args, pq.Array(types))
	}

	query += " ORDER BY j.created_at DESC, j.id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*model.Job, 0)
	for rows.Next() {
		job, err := scanJobWithCompany(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}

	return jobs, nil
}

// ListJobsByCompany retrieves the jobs of one company, newest first, with
// application counts. activeOnly drops inactive postings.
func (r *Repository) ListJobsByCompany(ctx context.Context, companyID string, activeOnly bool) ([]*model.Job, error) {
	query := `
		SELECT ` + jobColumns + `,
		       (SELECT COUNT(*) FROM applications a WHERE a.job_id = j.id)
		FROM jobs j
		WHERE j.company_id = $1 AND (NOT $2::boolean OR j.is_active)
		ORDER BY j.created_at DESC, j.id DESC
	`

	rows, err := r.pool.Query(ctx, query, companyID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list company jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*model.Job, 0)
	for rows.Next() {
		var job model.Job
		var count int
		if err := rows.Scan(
			&job.ID, &job.CompanyID, &job.Title, &job.Description, &job.Location,
			&job.Type, &job.IsActive, &job.CreatedAt, &job.UpdatedAt,
			&count,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		job.ApplicationCount = &count
		jobs = append(jobs, &job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}

	return jobs, nil
}

// UpdateJob writes a job's mutable fields and refreshes UpdatedAt.
func (r *Repository) UpdateJob(ctx context.Context, job *model.Job) error {
	job.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE jobs
		SET title = $2, description = $3, location = $4, type = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Title,
		job.Description,
		job.Location,
		job.Type,
		job.IsActive,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrJobNotFound
	}

	return nil
}

// DeleteJob permanently removes a job. Its applications go with it (ON DELETE CASCADE).
func (r *Repository) DeleteJob(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrJobNotFound
	}

	return nil
}

// scanJobWithCompany scans a job row followed by owner, company and count columns.
func scanJobWithCompany(row pgx.Row, withDescription bool) (*model.Job, error) {
	var (
		job         model.Job
		company     model.CompanySummary
		description *string
		count       int
	)

	err := row.Scan(
		&job.ID, &job.CompanyID, &job.Title, &job.Description, &job.Location,
		&job.Type, &job.IsActive, &job.CreatedAt, &job.UpdatedAt,
		&job.OwnerUserID, &company.CompanyName, &company.LogoURL, &description,
		&count,
	)
	if err != nil {
		return nil, err
	}

	company.ID = job.CompanyID
	if withDescription {
		company.Description = description
	}
	job.Company = &company
	job.ApplicationCount = &count

	return &job, nil
}
