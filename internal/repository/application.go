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

// Common errors for application repository operations.
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationExists   = errors.New("application already exists for this job and student")
)

// applicationJobStudentKey is the unique constraint on (job_id, student_id).
const applicationJobStudentKey = "applications_job_student_key"

// CreateApplication inserts a new application.
// A second application for the same (job, student) pair fails with
// ErrApplicationExists; the unique index decides, so concurrent inserts are safe.
func (r *Repository) CreateApplication(ctx context.Context, app *model.Application) error {
	query := `
		INSERT INTO applications (id, job_id, student_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		app.ID,
		app.JobID,
		app.StudentID,
		app.Status,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, applicationJobStudentKey) {
			return ErrApplicationExists
		}
		// The job was deleted between lookup and insert.
		if isForeignKeyViolation(err) {
			return ErrJobNotFound
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetApplicationByID retrieves an application together with the user owning its job.
func (r *Repository) GetApplicationByID(ctx context.Context, id string) (*model.Application, error) {
	query := `
		SELECT a.id, a.job_id, a.student_id, a.status, a.created_at, a.updated_at, cp.user_id
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN company_profiles cp ON cp.id = j.company_id
		WHERE a.id = $1
	`

	var app model.Application
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&app.ID,
		&app.JobID,
		&app.StudentID,
		&app.Status,
		&app.CreatedAt,
		&app.UpdatedAt,
		&app.OwnerUserID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application by ID: %w", err)
	}

	return &app, nil
}

// UpdateApplicationStatus sets the status of an application and refreshes UpdatedAt.
func (r *Repository) UpdateApplicationStatus(ctx context.Context, app *model.Application) error {
	app.UpdatedAt = time.Now().UTC()

	result, err := r.pool.Exec(ctx, `
		UPDATE applications
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, app.ID, app.Status, app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrApplicationNotFound
	}

	return nil
}

// ListApplicationsByStudent retrieves a student's applications, newest first,
// each with its job and the job's company.
func (r *Repository) ListApplicationsByStudent(ctx context.Context, studentID string) ([]*model.Application, error) {
	query := `
		SELECT a.id, a.job_id, a.student_id, a.status, a.created_at, a.updated_at,
		       j.title, j.type, j.location, j.is_active,
		       cp.id, cp.company_name, cp.logo_url
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN company_profiles cp ON cp.id = j.company_id
		WHERE a.student_id = $1
		ORDER BY a.created_at DESC, a.id DESC
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list student applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*model.Application, 0)
	for rows.Next() {
		var (
			app      model.Application
			job      model.ApplicationJob
			company  model.CompanySummary
			isActive bool
		)
		if err := rows.Scan(
			&app.ID, &app.JobID, &app.StudentID, &app.Status, &app.CreatedAt, &app.UpdatedAt,
			&job.Title, &job.Type, &job.Location, &isActive,
			&company.ID, &company.CompanyName, &company.LogoURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		job.ID = app.JobID
		job.IsActive = &isActive
		job.Company = &company
		app.Job = &job
		apps = append(apps, &app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}

	return apps, nil
}

// ListApplicationsByCompany retrieves applications across all jobs of a company,
// newest first, each with the applicant and job title. An empty statuses slice
// means every status.
func (r *Repository) ListApplicationsByCompany(ctx context.Context, companyID string, statuses []model.ApplicationStatus) ([]*model.Application, error) {
	query := `
		SELECT a.id, a.job_id, a.student_id, a.status, a.created_at, a.updated_at,
		       sp.first_name, sp.last_name, sp.resume_url, u.email,
		       j.title
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN student_profiles sp ON sp.id = a.student_id
		JOIN users u ON u.id = sp.user_id
		WHERE j.company_id = $1
	`
	args := []any{companyID}

	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		query += fmt.Sprintf(" AND a.status = ANY($%d)", len(args)+1)
		args = append(args, pq.Array(values))
	}

	query += " ORDER BY a.created_at DESC, a.id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list company applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*model.Application, 0)
	for rows.Next() {
		var (
			app     model.Application
			student model.ApplicantSummary
			job     model.ApplicationJob
		)
		if err := rows.Scan(
			&app.ID, &app.JobID, &app.StudentID, &app.Status, &app.CreatedAt, &app.UpdatedAt,
			&student.FirstName, &student.LastName, &student.ResumeURL, &student.Email,
			&job.Title,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		job.ID = app.JobID
		app.Job = &job
		app.Student = &student
		apps = append(apps, &app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}

	return apps, nil
}

// ListApplicationsByJob retrieves the applications for one job, newest first, with applicant summaries.
func (r *Repository) ListApplicationsByJob(ctx context.Context, jobID string) ([]*model.Application, error) {
	query := `
		SELECT a.id, a.job_id, a.student_id, a.status, a.created_at, a.updated_at,
		       sp.first_name, sp.last_name, sp.resume_url, u.email
		FROM applications a
		JOIN student_profiles sp ON sp.id = a.student_id
		JOIN users u ON u.id = sp.user_id
		WHERE a.job_id = $1
		ORDER BY a.created_at DESC, a.id DESC
	`

	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*model.Application, 0)
	for rows.Next() {
		var (
			app     model.Application
			student model.ApplicantSummary
		)
		if err := rows.Scan(
			&app.ID, &app.JobID, &app.StudentID, &app.Status, &app.CreatedAt, &app.UpdatedAt,
			&student.FirstName, &student.LastName, &student.ResumeURL, &student.Email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		app.Student = &student
		apps = append(apps, &app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}

	return apps, nil
}
