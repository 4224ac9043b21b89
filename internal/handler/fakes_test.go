package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campusjobs/campusjobs/internal/auth"
	"github.com/campusjobs/campusjobs/internal/handler/dto"
	"github.com/campusjobs/campusjobs/internal/model"
	"github.com/campusjobs/campusjobs/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// withIdentity runs next as the given caller.
func withIdentity(userID, email string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.ContextWithIdentity(r.Context(), &model.Identity{ID: userID, Email: email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) dto.ErrorResponse {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	body := decodeBody[dto.ErrorResponse](t, rec)
	if body.StatusCode != status {
		t.Errorf("statusCode = %d, want %d", body.StatusCode, status)
	}
	if body.Code != code {
		t.Errorf("code = %q, want %q", body.Code, code)
	}
	if body.Error != http.StatusText(status) {
		t.Errorf("error = %q, want %q", body.Error, http.StatusText(status))
	}
	return body
}

type fakeUserService struct {
	registered []service.RegisterInput
	err        error
	user       *model.User
	student    model.StudentProfilePatch
	company    model.CompanyProfilePatch
}

func (f *fakeUserService) Register(_ context.Context, input service.RegisterInput) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.registered = append(f.registered, input)
	return &model.User{ID: input.UserID, Email: input.Email, Role: input.Role}, nil
}

func (f *fakeUserService) GetMe(_ context.Context, userID string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeUserService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	return f.GetMe(ctx, userID)
}

func (f *fakeUserService) UpdateStudentProfile(_ context.Context, userID string, patch model.StudentProfilePatch) (*model.StudentProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.student = patch
	return &model.StudentProfile{UserID: userID}, nil
}

func (f *fakeUserService) UpdateCompanyProfile(_ context.Context, userID string, patch model.CompanyProfilePatch) (*model.CompanyProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.company = patch
	return &model.CompanyProfile{UserID: userID}, nil
}

type fakeJobService struct {
	err        error
	listInput  service.ListJobsInput
	created    service.CreateJobInput
	patch      model.JobPatch
	gotJobID   string
	gotUserID  string
	gotCompany string
}

func (f *fakeJobService) List(_ context.Context, input service.ListJobsInput) ([]*model.Job, error) {
	f.listInput = input
	if f.err != nil {
		return nil, f.err
	}
	return []*model.Job{}, nil
}

func (f *fakeJobService) Get(_ context.Context, id string) (*model.Job, error) {
	f.gotJobID = id
	if f.err != nil {
		return nil, f.err
	}
	return &model.Job{ID: id}, nil
}

func (f *fakeJobService) ListByCompany(_ context.Context, companyID string) ([]*model.Job, error) {
	f.gotCompany = companyID
	return []*model.Job{}, f.err
}

func (f *fakeJobService) ListMine(_ context.Context, userID string) ([]*model.Job, error) {
	f.gotUserID = userID
	return []*model.Job{}, f.err
}

func (f *fakeJobService) Create(_ context.Context, input service.CreateJobInput) (*model.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = input
	return &model.Job{ID: "job-1", Title: input.Title, Type: input.Type, IsActive: true}, nil
}

func (f *fakeJobService) Update(_ context.Context, jobID, userID string, patch model.JobPatch) (*model.Job, error) {
	f.gotJobID, f.gotUserID, f.patch = jobID, userID, patch
	if f.err != nil {
		return nil, f.err
	}
	return &model.Job{ID: jobID}, nil
}

func (f *fakeJobService) Delete(_ context.Context, jobID, userID string) error {
	f.gotJobID, f.gotUserID = jobID, userID
	return f.err
}

type fakeApplicationService struct {
	err       error
	gotJobID  string
	gotAppID  string
	gotUserID string
	status    model.ApplicationStatus
	statuses  []model.ApplicationStatus
}

func (f *fakeApplicationService) Create(_ context.Context, userID, jobID string) (*model.Application, error) {
	f.gotUserID, f.gotJobID = userID, jobID
	if f.err != nil {
		return nil, f.err
	}
	return &model.Application{ID: "app-1", JobID: jobID, Status: model.StatusPending}, nil
}

func (f *fakeApplicationService) UpdateStatus(_ context.Context, applicationID, userID string, status model.ApplicationStatus) (*model.Application, error) {
	f.gotAppID, f.gotUserID, f.status = applicationID, userID, status
	if f.err != nil {
		return nil, f.err
	}
	return &model.Application{ID: applicationID, Status: status}, nil
}

func (f *fakeApplicationService) ListMine(_ context.Context, userID string) ([]*model.Application, error) {
	f.gotUserID = userID
	return []*model.Application{}, f.err
}

func (f *fakeApplicationService) ListReceived(_ context.Context, userID string, statuses []model.ApplicationStatus) ([]*model.Application, error) {
	f.gotUserID, f.statuses = userID, statuses
	return []*model.Application{}, f.err
}

func (f *fakeApplicationService) ListForJob(_ context.Context, jobID, userID string) ([]*model.Application, error) {
	f.gotJobID, f.gotUserID = jobID, userID
	return []*model.Application{}, f.err
}
