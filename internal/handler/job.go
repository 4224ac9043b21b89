package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/campusjobs/campusjobs/internal/auth"
	"github.com/campusjobs/campusjobs/internal/handler/dto"
	"github.com/campusjobs/campusjobs/internal/model"
	"github.com/campusjobs/campusjobs/internal/service"
)

// JobService is the part of *service.JobService the handlers use.
type JobService interface {
	List(ctx context.Context, input service.ListJobsInput) ([]*model.Job, error)
	Get(ctx context.Context, id string) (*model.Job, error)
	ListByCompany(ctx context.Context, companyID string) ([]*model.Job, error)
	ListMine(ctx context.Context, userID string) ([]*model.Job, error)
	Create(ctx context.Context, input service.CreateJobInput) (*model.Job, error)
	Update(ctx context.Context, jobID, userID string, patch model.JobPatch) (*model.Job, error)
	Delete(ctx context.Context, jobID, userID string) error
}

// JobHandler handles HTTP requests for the job catalog.
type JobHandler struct {
	svc    JobService
	logger *slog.Logger
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(svc JobService, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /jobs.
// Query: type=INTERNSHIP,FULL_TIME and includeInactive=true.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	input := service.ListJobsInput{}
	if v := query.Get("includeInactive"); v != "" {
		includeInactive, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_QUERY", "includeInactive must be true or false")
			return
		}
		input.IncludeInactive = includeInactive
	}
	for _, t := range splitList(query.Get("type")) {
		input.Types = append(input.Types, model.JobType(t))
	}

	jobs, err := h.svc.List(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Get handles GET /jobs/{id}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ListByCompany handles GET /jobs/company/{companyId}. Public, so only active postings are listed.
func (h *JobHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.ListByCompany(r.Context(), chi.URLParam(r, "companyId"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// ListMine handles GET /jobs/company/my-jobs.
func (h *JobHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.ListMine(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Create handles POST /jobs.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateJobRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	job, err := h.svc.Create(r.Context(), service.CreateJobInput{
		UserID:      auth.UserIDFromContext(r.Context()),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Type:        model.JobType(req.Type),
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("job_created",
		"job_id", job.ID,
		"company_id", job.CompanyID,
		"type", job.Type,
	)

	writeJSON(w, http.StatusCreated, job)
}

// Update handles PATCH /jobs/{id}.
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateJobRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	job, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()), req.ToPatch())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("job_updated", "job_id", job.ID)

	writeJSON(w, http.StatusOK, job)
}

// Delete handles DELETE /jobs/{id}.
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), id, auth.UserIDFromContext(r.Context())); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("job_deleted", "job_id", id)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Job deleted successfully"})
}

// splitList parses a comma separated query value, dropping blanks.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
