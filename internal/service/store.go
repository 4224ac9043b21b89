// Package service provides business logic for the application.
package service

import (
	"context"
	"time"

	"github.com/campusjobs/campusjobs/internal/model"
	"github.com/campusjobs/campusjobs/internal/repository"
)

// UserStore is the persistence the user service needs.
// *repository.Repository satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User, fields model.ProfileFields) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserRole(ctx context.Context, id string) (model.Role, error)
	GetStudentProfileByUserID(ctx context.Context, userID string) (*model.StudentProfile, error)
	GetCompanyProfileByUserID(ctx context.Context, userID string) (*model.CompanyProfile, error)
	UpdateStudentProfile(ctx context.Context, userID string, patch model.StudentProfilePatch) (*model.StudentProfile, error)
	UpdateCompanyProfile(ctx context.Context, userID string, patch model.CompanyProfilePatch) (*model.CompanyProfile, error)
	ListJobsByCompany(ctx context.Context, companyID string, activeOnly bool) ([]*model.Job, error)
}

// JobStore is the persistence the job service needs.
type JobStore interface {
	GetCompanyProfileByUserID(ctx context.Context, userID string) (*model.CompanyProfile, error)
	CreateJob(ctx context.Context, job *model.Job) error
	GetJobByID(ctx context.Context, id string) (*model.Job, error)
	ListJobs(ctx context.Context, filter repository.JobFilter) ([]*model.Job, error)
	ListJobsByCompany(ctx context.Context, companyID string, activeOnly bool) ([]*model.Job, error)
	UpdateJob(ctx context.Context, job *model.Job) error
	DeleteJob(ctx context.Context, id string) error
}

// ApplicationStore is the persistence the application service needs.
type ApplicationStore interface {
	GetStudentProfileByUserID(ctx context.Context, userID string) (*model.StudentProfile, error)
	GetCompanyProfileByUserID(ctx context.Context, userID string) (*model.CompanyProfile, error)
	GetJobByID(ctx context.Context, id string) (*model.Job, error)
	CreateApplication(ctx context.Context, app *model.Application) error
	GetApplicationByID(ctx context.Context, id string) (*model.Application, error)
	UpdateApplicationStatus(ctx context.Context, app *model.Application) error
	ListApplicationsByStudent(ctx context.Context, studentID string) ([]*model.Application, error)
	ListApplicationsByCompany(ctx context.Context, companyID string, statuses []model.ApplicationStatus) ([]*model.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID string) ([]*model.Application, error)
}

// RoleCache caches registered roles. *cache.Cache satisfies it.
type RoleCache interface {
	GetUserRole(ctx context.Context, userID string) (model.Role, error)
	SetUserRole(ctx context.Context, userID string, role model.Role) error
}

// JobCache caches job detail reads. *cache.Cache satisfies it.
// SetJob must refuse to write when DeleteJob ran after JobGeneration was read.
type JobCache interface {
	GetJob(ctx context.Context, id string) (*model.CachedJob, error)
	JobGeneration(ctx context.Context, id string) (int64, error)
	SetJob(ctx context.Context, job *model.Job, ttl time.Duration, generation int64) error
	DeleteJob(ctx context.Context, id string) error
}
