package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/campusjobs/campusjobs/internal/cache"
	"github.com/campusjobs/campusjobs/internal/model"
	"github.com/campusjobs/campusjobs/internal/repository"
)

// memStore is an in-memory UserStore, JobStore and ApplicationStore that
// enforces the same uniqueness rules as the schema.
type memStore struct {
	mu        sync.Mutex
	users     map[string]*model.User
	students  map[string]*model.StudentProfile // by user id
	companies map[string]*model.CompanyProfile // by user id
	jobs      map[string]*model.Job
	apps      map[string]*model.Application
	pairs     map[[2]string]bool // (job id, student profile id)
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[string]*model.User),
		students:  make(map[string]*model.StudentProfile),
		companies: make(map[string]*model.CompanyProfile),
		jobs:      make(map[string]*model.Job),
		apps:      make(map[string]*model.Application),
		pairs:     make(map[[2]string]bool),
	}
}

func (m *memStore) CreateUser(_ context.Context, user *model.User, fields model.ProfileFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; ok {
		return repository.ErrUserExists
	}

	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	switch f := fields.(type) {
	case model.StudentFields:
		p := &model.StudentProfile{ID: ulid.Make().String(), UserID: user.ID, FirstName: f.FirstName, LastName: f.LastName, CreatedAt: now, UpdatedAt: now}
		m.students[user.ID] = p
		user.StudentProfile = p
	case model.CompanyFields:
		p := &model.CompanyProfile{ID: ulid.Make().String(), UserID: user.ID, CompanyName: f.CompanyName, CreatedAt: now, UpdatedAt: now}
		m.companies[user.ID] = p
		user.CompanyProfile = p
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := *u
	if p, ok := m.students[id]; ok {
		cp := *p
		out.StudentProfile = &cp
	}
	if p, ok := m.companies[id]; ok {
		cp := *p
		out.CompanyProfile = &cp
	}
	return &out, nil
}

func (m *memStore) GetUserRole(_ context.Context, id string) (model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return "", repository.ErrUserNotFound
	}
	return u.Role, nil
}

func (m *memStore) GetStudentProfileByUserID(_ context.Context, userID string) (*model.StudentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.students[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	out := *p
	return &out, nil
}

func (m *memStore) GetCompanyProfileByUserID(_ context.Context, userID string) (*model.CompanyProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.companies[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	out := *p
	return &out, nil
}

func (m *memStore) UpdateStudentProfile(_ context.Context, userID string, patch model.StudentProfilePatch) (*model.StudentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.students[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	if patch.FirstName != nil {
		p.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		p.LastName = *patch.LastName
	}
	p.ResumeURL = patch.ResumeURL.Apply(p.ResumeURL)
	p.UpdatedAt = time.Now().UTC()
	out := *p
	return &out, nil
}

func (m *memStore) UpdateCompanyProfile(_ context.Context, userID string, patch model.CompanyProfilePatch) (*model.CompanyProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.companies[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	if patch.CompanyName != nil {
		p.CompanyName = *patch.CompanyName
	}
	p.Description = patch.Description.Apply(p.Description)
	p.LogoURL = patch.LogoURL.Apply(p.LogoURL)
	p.UpdatedAt = time.Now().UTC()
	out := *p
	return &out, nil
}

func (m *memStore) CreateJob(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *job
	stored.Company = nil
	stored.ApplicationCount = nil
	m.jobs[job.ID] = &stored
	return nil
}

// companyByID returns the company profile with the given profile id. Caller holds mu.
func (m *memStore) companyByID(id string) *model.CompanyProfile {
	for _, c := range m.companies {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// decorate returns a copy of job with owner, company and count attached. Caller holds mu.
func (m *memStore) decorate(job *model.Job, withDescription bool) *model.Job {
	out := *job
	if c := m.companyByID(job.CompanyID); c != nil {
		out.OwnerUserID = c.UserID
		out.Company = &model.CompanySummary{ID: c.ID, CompanyName: c.CompanyName, LogoURL: c.LogoURL}
		if withDescription {
			out.Company.Description = c.Description
		}
	}
	count := 0
	for _, a := range m.apps {
		if a.JobID == job.ID {
			count++
		}
	}
	out.ApplicationCount = &count
	return &out
}

func (m *memStore) GetJobByID(_ context.Context, id string) (*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	return m.decorate(job, true), nil
}

func (m *memStore) ListJobs(_ context.Context, filter repository.JobFilter) ([]*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Job, 0)
	for _, job := range m.jobs {
		if filter.ActiveOnly && !job.IsActive {
			continue
		}
		if len(filter.Types) > 0 && !containsType(filter.Types, job.Type) {
			continue
		}
		out = append(out, m.decorate(job, false))
	}
	sortJobs(out)
	return out, nil
}

func (m *memStore) ListJobsByCompany(_ context.Context, companyID string, activeOnly bool) ([]*model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Job, 0)
	for _, job := range m.jobs {
		if activeOnly && !job.IsActive {
			continue
		}
		if job.CompanyID == companyID {
			j := m.decorate(job, false)
			j.Company = nil
			out = append(out, j)
		}
	}
	sortJobs(out)
	return out, nil
}

func (m *memStore) UpdateJob(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[job.ID]; !ok {
		return repository.ErrJobNotFound
	}
	job.UpdatedAt = time.Now().UTC()
	stored := *job
	stored.Company = nil
	stored.ApplicationCount = nil
	m.jobs[job.ID] = &stored
	return nil
}

func (m *memStore) DeleteJob(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[id]; !ok {
		return repository.ErrJobNotFound
	}
	delete(m.jobs, id)
	for appID, a := range m.apps {
		if a.JobID == id {
			delete(m.pairs, [2]string{a.JobID, a.StudentID})
			delete(m.apps, appID)
		}
	}
	return nil
}

func (m *memStore) CreateApplication(_ context.Context, app *model.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[app.JobID]; !ok {
		return repository.ErrJobNotFound
	}
	key := [2]string{app.JobID, app.StudentID}
	if m.pairs[key] {
		return repository.ErrApplicationExists
	}
	m.pairs[key] = true
	stored := *app
	stored.Job = nil
	stored.Student = nil
	m.apps[app.ID] = &stored
	return nil
}

func (m *memStore) GetApplicationByID(_ context.Context, id string) (*model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.apps[id]
	if !ok {
		return nil, repository.ErrApplicationNotFound
	}
	out := *a
	if job, ok := m.jobs[a.JobID]; ok {
		if c := m.companyByID(job.CompanyID); c != nil {
			out.OwnerUserID = c.UserID
		}
	}
	return &out, nil
}

func (m *memStore) UpdateApplicationStatus(_ context.Context, app *model.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.apps[app.ID]
	if !ok {
		return repository.ErrApplicationNotFound
	}
	app.UpdatedAt = time.Now().UTC()
	a.Status = app.Status
	a.UpdatedAt = app.UpdatedAt
	return nil
}

func (m *memStore) ListApplicationsByStudent(_ context.Context, studentID string) ([]*model.Application, error) {
	return m.listApps(func(a *model.Application) bool { return a.StudentID == studentID }), nil
}

func (m *memStore) ListApplicationsByCompany(_ context.Context, companyID string, statuses []model.ApplicationStatus) ([]*model.Application, error) {
	m.mu.Lock()
	jobIDs := make(map[string]bool)
	for _, j := range m.jobs {
		if j.CompanyID == companyID {
			jobIDs[j.ID] = true
		}
	}
	m.mu.Unlock()

	return m.listApps(func(a *model.Application) bool {
		if !jobIDs[a.JobID] {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if a.Status == s {
				return true
			}
		}
		return false
	}), nil
}

func (m *memStore) ListApplicationsByJob(_ context.Context, jobID string) ([]*model.Application, error) {
	return m.listApps(func(a *model.Application) bool { return a.JobID == jobID }), nil
}

func (m *memStore) listApps(keep func(*model.Application) bool) []*model.Application {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Application, 0)
	for _, a := range m.apps {
		if keep(a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *memStore) jobCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func sortJobs(jobs []*model.Job) {
	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
		}
		return jobs[i].ID > jobs[j].ID
	})
}

func containsType(types []model.JobType, t model.JobType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// memCache is an in-memory RoleCache and JobCache.
type memCache struct {
	mu      sync.Mutex
	roles   map[string]model.Role
	jobs    map[string]*model.CachedJob
	gens    map[string]int64
	deletes int
}

func newMemCache() *memCache {
	return &memCache{
		roles: make(map[string]model.Role),
		jobs:  make(map[string]*model.CachedJob),
		gens:  make(map[string]int64),
	}
}

func (c *memCache) GetUserRole(_ context.Context, userID string) (model.Role, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	role, ok := c.roles[userID]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return role, nil
}

func (c *memCache) SetUserRole(_ context.Context, userID string, role model.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[userID] = role
	return nil
}

func (c *memCache) GetJob(_ context.Context, id string) (*model.CachedJob, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.jobs[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cached, nil
}

func (c *memCache) JobGeneration(_ context.Context, id string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[id], nil
}

func (c *memCache) SetJob(_ context.Context, job *model.Job, _ time.Duration, generation int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[job.ID] != generation {
		return cache.ErrStaleJob
	}
	c.jobs[job.ID] = job.ToCachedJob()
	return nil
}

func (c *memCache) DeleteJob(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.jobs, id)
	c.gens[id]++
	c.deletes++
	return nil
}

func (c *memCache) hasJob(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.jobs[id]
	return ok
}
