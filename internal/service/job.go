package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/campusjobs/campusjobs/internal/cache"
	"github.com/campusjobs/campusjobs/internal/metrics"
	"github.com/campusjobs/campusjobs/internal/model"
	"github.com/campusjobs/campusjobs/internal/repository"
)

// JobService handles the job catalog.
type JobService struct {
	store    JobStore
	cache    JobCache
	cacheTTL time.Duration
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewJobService creates a new JobService. jobCache may be nil to disable detail caching.
func NewJobService(store JobStore, jobCache JobCache, cacheTTL time.Duration, recorder metrics.Recorder, logger *slog.Logger) *JobService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultJobTTL
	}
	return &JobService{
		store:    store,
		cache:    jobCache,
		cacheTTL: cacheTTL,
		metrics:  recorder,
		logger:   logger.With("component", "job_service"),
	}
}

// ListJobsInput defines input for listing jobs.
type ListJobsInput struct {
	IncludeInactive bool
	Types           []model.JobType
}

// List returns jobs newest first. Only active jobs unless IncludeInactive is set.
func (s *JobService) List(ctx context.Context, input ListJobsInput) ([]*model.Job, error) {
	for _, t := range input.Types {
		if !t.IsValid() {
			return nil, invalid(fmt.Sprintf("invalid job type %q", t))
		}
	}

	return s.store.ListJobs(ctx, repository.JobFilter{
		ActiveOnly: !input.IncludeInactive,
		Types:      input.Types,
	})
}

// Get returns one job with full company detail. Reads go through the job cache.
// A fill is dropped when the job is invalidated while it loads.
func (s *JobService) Get(ctx context.Context, id string) (*model.Job, error) {
	fill := false
	var generation int64
	if s.cache != nil {
		cached, err := s.cache.GetJob(ctx, id)
		if err == nil {
			s.metrics.IncJobCacheHit()
			return cached.ToJob(id), nil
		}
		if errors.Is(err, cache.ErrCacheMiss) {
			s.metrics.IncJobCacheMiss()
		} else {
			// Redis error - fall through to DB
			s.logger.Warn("job cache read failed", slog.String("job_id", id), slog.String("error", err.Error()))
		}

		generation, err = s.cache.JobGeneration(ctx, id)
		if err == nil {
			fill = true
		} else {
			s.logger.Warn("job cache generation read failed", slog.String("job_id", id), slog.String("error", err.Error()))
		}
	}

	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}

	if fill {
		err := s.cache.SetJob(ctx, job, s.cacheTTL, generation)
		switch {
		case errors.Is(err, cache.ErrStaleJob):
			s.logger.Debug("job cache fill skipped", slog.String("job_id", id))
		case err != nil:
			s.logger.Warn("job cache write failed", slog.String("job_id", id), slog.String("error", err.Error()))
		}
	}

	return job, nil
}

// ListByCompany returns the active jobs of a company profile, newest first.
func (s *JobService) ListByCompany(ctx context.Context, companyID string) ([]*model.Job, error) {
	return s.store.ListJobsByCompany(ctx, companyID, true)
}

// ListMine returns every job of the acting company user, inactive ones
// included. A user without a company profile gets an empty list.
func (s *JobService) ListMine(ctx context.Context, userID string) ([]*model.Job, error) {
	profile, err := s.store.GetCompanyProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return []*model.Job{}, nil
		}
		return nil, err
	}
	return s.store.ListJobsByCompany(ctx, profile.ID, false)
}

// CreateJobInput defines input for creating a job.
type CreateJobInput struct {
	UserID      string
	Title       string
	Description string
	Location    *string
	Type        model.JobType
}

// Create posts a new active job for the acting user's company.
func (s *JobService) Create(ctx context.Context, input CreateJobInput) (*model.Job, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, invalid("title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, invalid("description is required")
	}
	if !input.Type.IsValid() {
		return nil, invalid(fmt.Sprintf("invalid job type %q", input.Type))
	}

	profile, err := s.store.GetCompanyProfileByUserID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, forbidden("Company profile not found")
		}
		return nil, err
	}

	now := time.Now().UTC()
	job := &model.Job{
		ID:          ulid.Make().String(),
		CompanyID:   profile.ID,
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Type:        input.Type,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
		OwnerUserID: input.UserID,
		Company: &model.CompanySummary{
			ID:          profile.ID,
			CompanyName: profile.CompanyName,
		},
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.metrics.IncJobCreated()

	return job, nil
}

// Update applies a partial update to a job the acting user owns.
func (s *JobService) Update(ctx context.Context, jobID, userID string, patch model.JobPatch) (*model.Job, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, invalid("title must not be empty")
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		return nil, invalid("description must not be empty")
	}
	if patch.Type != nil && !patch.Type.IsValid() {
		return nil, invalid(fmt.Sprintf("invalid job type %q", *patch.Type))
	}

	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.OwnedBy(userID) {
		return nil, forbidden("You can only update your own jobs")
	}

	if patch.IsEmpty() {
		return job, nil
	}

	patch.Apply(job)
	if err := s.store.UpdateJob(ctx, job); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, notFound("Job not found")
		}
		return nil, err
	}

	s.metrics.IncJobUpdated()
	s.invalidate(ctx, jobID)

	return job, nil
}

// Delete permanently removes a job the acting user owns, along with its applications.
func (s *JobService) Delete(ctx context.Context, jobID, userID string) error {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return err
	}
	if !job.OwnedBy(userID) {
		return forbidden("You can only delete your own jobs")
	}

	if err := s.store.DeleteJob(ctx, jobID); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return notFound("Job not found")
		}
		return err
	}

	s.metrics.IncJobDeleted()
	s.invalidate(ctx, jobID)

	return nil
}

func (s *JobService) loadJob(ctx context.Context, id string) (*model.Job, error) {
	job, err := s.store.GetJobByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, notFound("Job not found")
		}
		return nil, err
	}
	return job, nil
}

// invalidate drops the cached detail. Failures only delay freshness until the TTL.
func (s *JobService) invalidate(ctx context.Context, jobID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteJob(ctx, jobID); err != nil {
		s.logger.Warn("job cache invalidation failed", slog.String("job_id", jobID), slog.String("error", err.Error()))
	}
}
