package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusjobs/campusjobs/internal/metrics"
	"github.com/campusjobs/campusjobs/internal/model"
)

type testEnv struct {
	ctx     context.Context
	store   *memStore
	cache   *memCache
	metrics *metrics.InMemoryRecorder
	users   *UserService
	jobs    *JobService
	apps    *ApplicationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	c := newMemCache()
	rec := metrics.NewInMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &testEnv{
		ctx:     context.Background(),
		store:   store,
		cache:   c,
		metrics: rec,
		users:   NewUserService(store, c, c, rec, logger),
		jobs:    NewJobService(store, c, 0, rec, logger),
		apps:    NewApplicationService(store, c, rec, logger),
	}
}

func (e *testEnv) registerStudent(t *testing.T, id string) *model.User {
	t.Helper()
	user, err := e.users.Register(e.ctx, RegisterInput{
		UserID:    id,
		Email:     id + "@example.com",
		Role:      model.RoleStudent,
		FirstName: "Stu",
		LastName:  id,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) registerCompany(t *testing.T, id, name string) *model.User {
	t.Helper()
	user, err := e.users.Register(e.ctx, RegisterInput{
		UserID:      id,
		Email:       id + "@example.com",
		Role:        model.RoleCompany,
		CompanyName: name,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) postJob(t *testing.T, ownerID, title string) *model.Job {
	t.Helper()
	job, err := e.jobs.Create(e.ctx, CreateJobInput{
		UserID:      ownerID,
		Title:       title,
		Description: "Build things",
		Type:        model.JobTypeInternship,
	})
	require.NoError(t, err)
	return job
}
