package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/campusjobs/campusjobs/internal/metrics"
	"github.com/campusjobs/campusjobs/internal/model"
	"github.com/campusjobs/campusjobs/internal/repository"
)

// ApplicationService handles the application ledger.
type ApplicationService struct {
	store   ApplicationStore
	jobs    JobCache
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewApplicationService creates a new ApplicationService. jobCache is used only to
// drop stale application counts and may be nil.
func NewApplicationService(store ApplicationStore, jobCache JobCache, recorder metrics.Recorder, logger *slog.Logger) *ApplicationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplicationService{
		store:   store,
		jobs:    jobCache,
		metrics: recorder,
		logger:  logger.With("component", "application_service"),
	}
}

// Create records the acting student's application to an active job.
// A second application to the same job is a Conflict; the storage unique
// constraint decides, so concurrent attempts yield exactly one success.
func (s *ApplicationService) Create(ctx context.Context, userID, jobID string) (*model.Application, error) {
	if jobID == "" {
		return nil, invalid("jobId is required")
	}

	student, err := s.store.GetStudentProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, forbidden("Student profile not found")
		}
		return nil, err
	}

	job, err := s.store.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, notFound("Job not found")
		}
		return nil, err
	}
	if !job.IsActive {
		return nil, forbidden("This job is no longer accepting applications")
	}

	now := time.Now().UTC()
	app := &model.Application{
		ID:          ulid.Make().String(),
		JobID:       job.ID,
		StudentID:   student.ID,
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		OwnerUserID: job.OwnerUserID,
	}

	if err := s.store.CreateApplication(ctx, app); err != nil {
		switch {
		case errors.Is(err, repository.ErrApplicationExists):
			s.metrics.IncApplicationConflict()
			return nil, conflict("You have already applied to this job")
		case errors.Is(err, repository.ErrJobNotFound):
			return nil, notFound("Job not found")
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	app.Job = &model.ApplicationJob{
		ID:       job.ID,
		Title:    job.Title,
		Type:     job.Type,
		Location: job.Location,
		IsActive: &job.IsActive,
	}
	if job.Company != nil {
		app.Job.Company = &model.CompanySummary{
			ID:          job.Company.ID,
			CompanyName: job.Company.CompanyName,
			LogoURL:     job.Company.LogoURL,
		}
	}

	s.metrics.IncApplicationCreated()
	s.invalidateJob(ctx, job.ID)

	return app, nil
}

// UpdateStatus sets an application's status. Only the owner of the job may do so;
// any status may follow any other.
func (s *ApplicationService) UpdateStatus(ctx context.Context, applicationID, userID string, status model.ApplicationStatus) (*model.Application, error) {
	if !status.IsValid() {
		return nil, invalid(fmt.Sprintf("invalid status %q", status))
	}

	app, err := s.store.GetApplicationByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, notFound("Application not found")
		}
		return nil, err
	}
	if userID == "" || app.OwnerUserID != userID {
		return nil, forbidden("You can only update applications for your own jobs")
	}

	app.Status = status
	if err := s.store.UpdateApplicationStatus(ctx, app); err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return nil, notFound("Application not found")
		}
		return nil, err
	}

	s.metrics.IncApplicationStatusChanged(string(status))

	return app, nil
}

// ListMine returns the acting student's applications, newest first. A user
// without a student profile gets an empty list.
func (s *ApplicationService) ListMine(ctx context.Context, userID string) ([]*model.Application, error) {
	student, err := s.store.GetStudentProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return []*model.Application{}, nil
		}
		return nil, err
	}
	return s.store.ListApplicationsByStudent(ctx, student.ID)
}

// ListReceived returns applications across all of the acting company's jobs,
// newest first, optionally filtered by status. A user without a company
// profile gets an empty list.
func (s *ApplicationService) ListReceived(ctx context.Context, userID string, statuses []model.ApplicationStatus) ([]*model.Application, error) {
	for _, st := range statuses {
		if !st.IsValid() {
			return nil, invalid(fmt.Sprintf("invalid status %q", st))
		}
	}

	company, err := s.store.GetCompanyProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return []*model.Application{}, nil
		}
		return nil, err
	}
	return s.store.ListApplicationsByCompany(ctx, company.ID, statuses)
}

// ListForJob returns the applications to one job the acting user owns.
func (s *ApplicationService) ListForJob(ctx context.Context, jobID, userID string) ([]*model.Application, error) {
	job, err := s.store.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, notFound("Job not found")
		}
		return nil, err
	}
	if !job.OwnedBy(userID) {
		return nil, forbidden("You can only view applications for your own jobs")
	}
	return s.store.ListApplicationsByJob(ctx, jobID)
}

func (s *ApplicationService) invalidateJob(ctx context.Context, jobID string) {
	if s.jobs == nil {
		return
	}
	if err := s.jobs.DeleteJob(ctx, jobID); err != nil {
		s.logger.Warn("job cache invalidation failed", slog.String("job_id", jobID), slog.String("error", err.Error()))
	}
}
