package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusjobs/campusjobs/internal/auth"
	"github.com/campusjobs/campusjobs/internal/handler/dto"
	"github.com/campusjobs/campusjobs/internal/model"
)

// ApplicationService is the part of *service.ApplicationService the handlers use.
type ApplicationService interface {
	Create(ctx context.Context, userID, jobID string) (*model.Application, error)
	UpdateStatus(ctx context.Context, applicationID, userID string, status model.ApplicationStatus) (*model.Application, error)
	ListMine(ctx context.Context, userID string) ([]*model.Application, error)
	ListReceived(ctx context.Context, userID string, statuses []model.ApplicationStatus) ([]*model.Application, error)
	ListForJob(ctx context.Context, jobID, userID string) ([]*model.Application, error)
}

// ApplicationHandler handles HTTP requests for job applications.
type ApplicationHandler struct {
	svc    ApplicationService
	logger *slog.Logger
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(svc ApplicationService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /applications.
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateApplicationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	app, err := h.svc.Create(r.Context(), auth.UserIDFromContext(r.Context()), req.JobID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("application_created",
		"application_id", app.ID,
		"job_id", app.JobID,
	)

	writeJSON(w, http.StatusCreated, app)
}

// UpdateStatus handles PATCH /applications/{id}/status.
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateApplicationStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	app, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()), model.ApplicationStatus(req.Status))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("application_status_changed",
		"application_id", app.ID,
		"status", app.Status,
	)

	writeJSON(w, http.StatusOK, app)
}

// ListMine handles GET /applications/my.
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.ListMine(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// ListReceived handles GET /applications/received.
// Query: status=PENDING,REVIEWING.
func (h *ApplicationHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	var statuses []model.ApplicationStatus
	for _, s := range splitList(r.URL.Query().Get("status")) {
		status := model.ApplicationStatus(s)
		if !status.IsValid() {
			writeError(w, http.StatusBadRequest, "INVALID_QUERY", "status must be one of [PENDING REVIEWING ACCEPTED REJECTED]")
			return
		}
		statuses = append(statuses, status)
	}

	apps, err := h.svc.ListReceived(r.Context(), auth.UserIDFromContext(r.Context()), statuses)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// ListForJob handles GET /applications/job/{jobId}.
func (h *ApplicationHandler) ListForJob(w http.ResponseWriter, r *http.Request) {
	apps, err := h.svc.ListForJob(r.Context(), chi.URLParam(r, "jobId"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}
