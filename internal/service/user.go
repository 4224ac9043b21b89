package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/campusjobs/campusjobs/internal/cache"
	"github.com/campusjobs/campusjobs/internal/metrics"
	"github.com/campusjobs/campusjobs/internal/model"
	"github.com/campusjobs/campusjobs/internal/repository"
)

// UserService handles registration and profiles.
type UserService struct {
	store   UserStore
	roles   RoleCache
	jobs    JobCache
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewUserService creates a new UserService. roles and jobs may be nil when
// the matching cache is disabled; jobs must be the cache JobService reads.
func NewUserService(store UserStore, roles RoleCache, jobs JobCache, recorder metrics.Recorder, logger *slog.Logger) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		store:   store,
		roles:   roles,
		jobs:    jobs,
		metrics: recorder,
		logger:  logger.With("component", "user_service"),
	}
}

// RegisterInput defines input for registering the caller.
type RegisterInput struct {
	UserID      string
	Email       string
	Role        model.Role
	FirstName   string
	LastName    string
	CompanyName string
}

// Register creates the caller's user record and the profile matching its role.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if input.UserID == "" {
		return nil, invalid("user id is required")
	}
	if input.Email == "" {
		return nil, invalid("email is required")
	}
	if !input.Role.IsValid() {
		return nil, invalid(fmt.Sprintf("invalid role %q", input.Role))
	}

	user := &model.User{
		ID:    input.UserID,
		Email: input.Email,
		Role:  input.Role,
	}
	fields := model.ProfileFieldsFor(input.Role, input.FirstName, input.LastName, input.CompanyName)

	if err := s.store.CreateUser(ctx, user, fields); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, conflict("User already registered")
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.metrics.IncUserRegistered(string(user.Role))
	s.cacheRole(ctx, user.ID, user.Role)

	return user, nil
}

// GetMe returns the caller's user record. An unknown caller has not registered yet.
func (s *UserService) GetMe(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notRegistered("User not found. Please complete registration.")
		}
		return nil, err
	}
	return user, nil
}

// GetProfile returns the caller's user record with profiles.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// UpdateStudentProfile applies a partial update to the caller's student profile.
func (s *UserService) UpdateStudentProfile(ctx context.Context, userID string, patch model.StudentProfilePatch) (*model.StudentProfile, error) {
	role, err := s.lookupRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role != model.RoleStudent {
		return nil, forbidden("Only students can update student profile")
	}

	profile, err := s.store.UpdateStudentProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, notFound("Student profile not found")
		}
		return nil, err
	}
	return profile, nil
}

// UpdateCompanyProfile applies a partial update to the caller's company profile.
func (s *UserService) UpdateCompanyProfile(ctx context.Context, userID string, patch model.CompanyProfilePatch) (*model.CompanyProfile, error) {
	role, err := s.lookupRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role != model.RoleCompany {
		return nil, forbidden("Only companies can update company profile")
	}

	profile, err := s.store.UpdateCompanyProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, notFound("Company profile not found")
		}
		return nil, err
	}

	s.invalidateCompanyJobs(ctx, profile.ID)
	return profile, nil
}

// invalidateCompanyJobs drops the cached detail of every job of a company,
// since each entry embeds the company's name, logo and description.
func (s *UserService) invalidateCompanyJobs(ctx context.Context, companyID string) {
	if s.jobs == nil {
		return
	}

	jobs, err := s.store.ListJobsByCompany(ctx, companyID, false)
	if err != nil {
		s.logger.Warn("company job listing for cache invalidation failed",
			slog.String("company_id", companyID),
			slog.String("error", err.Error()),
		)
		return
	}
	for _, job := range jobs {
		if err := s.jobs.DeleteJob(ctx, job.ID); err != nil {
			s.logger.Warn("job cache invalidation failed", slog.String("job_id", job.ID), slog.String("error", err.Error()))
		}
	}
}

// Role returns the caller's registered role for route guards.
// An unregistered caller gets a NotRegistered error.
func (s *UserService) Role(ctx context.Context, userID string) (model.Role, error) {
	role, err := s.resolveRole(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", notRegistered("Complete registration first")
	}
	return role, err
}

// lookupRole is Role for profile updates, where a missing user is NotFound.
func (s *UserService) lookupRole(ctx context.Context, userID string) (model.Role, error) {
	role, err := s.resolveRole(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", notFound("User not found")
	}
	return role, err
}

// resolveRole reads through the role cache. Roles are immutable, so entries never go stale.
func (s *UserService) resolveRole(ctx context.Context, userID string) (model.Role, error) {
	if s.roles != nil {
		role, err := s.roles.GetUserRole(ctx, userID)
		if err == nil {
			return role, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("role cache read failed", slog.String("error", err.Error()))
		}
	}

	role, err := s.store.GetUserRole(ctx, userID)
	if err != nil {
		return "", err
	}

	s.cacheRole(ctx, userID, role)
	return role, nil
}

func (s *UserService) cacheRole(ctx context.Context, userID string, role model.Role) {
	if s.roles == nil {
		return
	}
	if err := s.roles.SetUserRole(ctx, userID, role); err != nil {
		s.logger.Warn("role cache write failed", slog.String("error", err.Error()))
	}
}
