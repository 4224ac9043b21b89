package service

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusjobs/campusjobs/internal/model"
)

// Student applies, company accepts, student sees ACCEPTED, second apply conflicts.
func TestApplicationService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.registerCompany(t, "idp|c", "Acme")
	env.registerStudent(t, "idp|s")
	job := env.postJob(t, "idp|c", "Backend Intern")

	app, err := env.apps.Create(env.ctx, "idp|s", job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, app.Status)
	require.NotNil(t, app.Job)
	assert.Equal(t, "Backend Intern", app.Job.Title)
	require.NotNil(t, app.Job.Company)
	assert.Equal(t, "Acme", app.Job.Company.CompanyName)

	updated, err := env.apps.UpdateStatus(env.ctx, app.ID, "idp|c", model.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, updated.Status)

	mine, err := env.apps.ListMine(env.ctx, "idp|s")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, model.StatusAccepted, mine[0].Status)

	_, err = env.apps.Create(env.ctx, "idp|s", job.ID)
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "You have already applied to this job", err.Error())

	snap := env.metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.ApplicationsCreated)
	assert.Equal(t, uint64(1), snap.ApplicationConflicts)
	assert.Equal(t, uint64(1), snap.ApplicationStatusChanges["ACCEPTED"])
}

func TestApplicationService_ConcurrentCreateSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	env.registerCompany(t, "idp|c", "Acme")
	env.registerStudent(t, "idp|s")
	job := env.postJob(t, "idp|c", "Popular")

	const attempts = 16
	var (
		wg        sync.WaitGroup
		succeeded int64
		conflicts int64
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.apps.Create(env.ctx, "idp|s", job.ID)
			switch {
			case err == nil:
				atomic.AddInt64(&succeeded, 1)
			case KindOf(err) == KindConflict:
				atomic.AddInt64(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), succeeded)
	assert.Equal(t, int64(attempts-1), conflicts)
}

func TestApplicationService_InactiveJobForbidden(t *testing.T) {
	env := newTestEnv(t)
	env.registerCompany(t, "idp|c", "Acme")
	env.registerStudent(t, "idp|s1")
	env.registerStudent(t, "idp|s2")
	job := env.postJob(t, "idp|c", "Closing")

	// s1 applied while open.
	_, err := env.apps.Create(env.ctx, "idp|s1", job.ID)
	require.NoError(t, err)

	inactive := false
	_, err = env.jobs.Update(env.ctx, job.ID, "idp|c", model.JobPatch{IsActive: &inactive})
	require.NoError(t, err)

	// Forbidden regardless of prior application state.
	for _, student := range []string{"idp|s1", "idp|s2"} {
		_, err = env.apps.Create(env.ctx, student, job.ID)
		require.ErrorIs(t, err, ErrForbidden, student)
	}
}

func TestApplicationService_CreateErrors(t *testing.T) {
	env := newTestEnv(t)
	env.registerCompany(t, "idp|c", "Acme")
	env.registerStudent(t, "idp|s")
	job := env.postJob(t, "idp|c", "Intern")

	_, err := env.apps.Create(env.ctx, "idp|c", job.ID)
	assert.ErrorIs(t, err, ErrForbidden, "company has no student profile")

	_, err = env.apps.Create(env.ctx, "idp|s", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.apps.Create(env.ctx, "idp|s", "")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestApplicationService_CreateInvalidatesJobCache(t *testing.T) {
	env := newTestEnv(t)
	env.registerCompany(t, "idp|c", "Acme")
	env.registerStudent(t, "idp|s")
	job := env.postJob(t, "idp|c", "Intern")

	before, err := env.jobs.Get(env.ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, before.ApplicationCount)
	assert.Equal(t, 0, *before.ApplicationCount)

	_, err = env.apps.Create(env.ctx, "idp|s", job.ID)
	require.NoError(t, err)

	after, err := env.jobs.Get(env.ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, after.ApplicationCount)
	assert.Equal(t, 1, *after.ApplicationCount)
}

func TestApplicationService_UpdateStatusChecks(t *testing.T) {
	env := newTestEnv(t)
	env.registerCompany(t, "idp|c1", "One")
	env.registerCompany(t, "idp|c2", "Two")
	env.registerStudent(t, "idp|s")
	job := env.postJob(t, "idp|c1", "Intern")

	app, err := env.apps.Create(env.ctx, "idp|s", job.ID)
	require.NoError(t, err)

	_, err = env.apps.UpdateStatus(env.ctx, app.ID, "idp|c2", model.StatusRejected)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.apps.UpdateStatus(env.ctx, app.ID, "idp|s", model.StatusAccepted)
	assert.ErrorIs(t, err, ErrForbidden, "students cannot set status")

	_, err = env.apps.UpdateStatus(env.ctx, "missing", "idp|c1", model.StatusAccepted)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.apps.UpdateStatus(env.ctx, app.ID, "idp|c1", "HIRED")
	assert.ErrorIs(t, err, ErrInvalid)
}

// Any status may follow any other, including leaving a decision.
func TestApplicationService_StatusTransitionsUnrestricted(t *testing.T) {
	env := newTestEnv(t)
	env.registerCompany(t, "idp|c", "Acme")
	env.registerStudent(t, "idp|s")
	job := env.postJob(t, "idp|c", "Intern")

	app, err := env.apps.Create(env.ctx, "idp|s", job.ID)
	require.NoError(t, err)

	sequence := []model.ApplicationStatus{
		model.StatusRejected,
		model.StatusPending,
		model.StatusAccepted,
		model.StatusReviewing,
	}
	for _, status := range sequence {
		updated, err := env.apps.UpdateStatus(env.ctx, app.ID, "idp|c", status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestApplicationService_EmptyListsWithoutProfile(t *testing.T) {
	env := newTestEnv(t)
	env.registerCompany(t, "idp|c", "Acme")
	env.registerStudent(t, "idp|s")

	mine, err := env.apps.ListMine(env.ctx, "idp|c")
	require.NoError(t, err)
	assert.NotNil(t, mine)
	assert.Empty(t, mine)

	received, err := env.apps.ListReceived(env.ctx, "idp|s", nil)
	require.NoError(t, err)
	assert.NotNil(t, received)
	assert.Empty(t, received)

	// Unregistered callers get the same.
	mine, err = env.apps.ListMine(env.ctx, "idp|ghost")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestApplicationService_ListReceivedAndForJob(t *testing.T) {
	env := newTestEnv(t)
	env.registerCompany(t, "idp|c", "Acme")
	env.registerCompany(t, "idp|other", "Other")
	env.registerStudent(t, "idp|s1")
	env.registerStudent(t, "idp|s2")
	jobA := env.postJob(t, "idp|c", "A")
	jobB := env.postJob(t, "idp|c", "B")
	foreign := env.postJob(t, "idp|other", "Foreign")

	a1, err := env.apps.Create(env.ctx, "idp|s1", jobA.ID)
	require.NoError(t, err)
	_, err = env.apps.Create(env.ctx, "idp|s2", jobB.ID)
	require.NoError(t, err)
	_, err = env.apps.Create(env.ctx, "idp|s1", foreign.ID)
	require.NoError(t, err)

	_, err = env.apps.UpdateStatus(env.ctx, a1.ID, "idp|c", model.StatusReviewing)
	require.NoError(t, err)

	received, err := env.apps.ListReceived(env.ctx, "idp|c", nil)
	require.NoError(t, err)
	assert.Len(t, received, 2)

	reviewing, err := env.apps.ListReceived(env.ctx, "idp|c", []model.ApplicationStatus{model.StatusReviewing})
	require.NoError(t, err)
	require.Len(t, reviewing, 1)
	assert.Equal(t, a1.ID, reviewing[0].ID)

	_, err = env.apps.ListReceived(env.ctx, "idp|c", []model.ApplicationStatus{"NOPE"})
	assert.ErrorIs(t, err, ErrInvalid)

	forJob, err := env.apps.ListForJob(env.ctx, jobA.ID, "idp|c")
	require.NoError(t, err)
	require.Len(t, forJob, 1)
	assert.Equal(t, a1.ID, forJob[0].ID)

	_, err = env.apps.ListForJob(env.ctx, "missing", "idp|c")
	assert.ErrorIs(t, err, ErrNotFound)
}
