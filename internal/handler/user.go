package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/campusjobs/campusjobs/internal/auth"
	"github.com/campusjobs/campusjobs/internal/handler/dto"
	"github.com/campusjobs/campusjobs/internal/model"
	"github.com/campusjobs/campusjobs/internal/service"
)

// UserService is the part of *service.UserService the handlers use.
type UserService interface {
	Register(ctx context.Context, input service.RegisterInput) (*model.User, error)
	GetMe(ctx context.Context, userID string) (*model.User, error)
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	UpdateStudentProfile(ctx context.Context, userID string, patch model.StudentProfilePatch) (*model.StudentProfile, error)
	UpdateCompanyProfile(ctx context.Context, userID string, patch model.CompanyProfilePatch) (*model.CompanyProfile, error)
}

// UserHandler handles registration and profile requests.
type UserHandler struct {
	svc    UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /auth/register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	var req dto.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	email := req.Email
	if email == "" {
		email = identity.Email
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		UserID:      identity.ID,
		Email:       email,
		Role:        model.Role(req.Role),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user_registered",
		"user_id", user.ID,
		"role", user.Role,
	)

	writeJSON(w, http.StatusCreated, user)
}

// Me handles GET /auth/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetMe(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Profile handles GET /users/profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetProfile(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateStudentProfile handles PATCH /users/profile/student.
func (h *UserHandler) UpdateStudentProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateStudentProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.svc.UpdateStudentProfile(r.Context(), auth.UserIDFromContext(r.Context()), req.ToPatch())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpdateCompanyProfile handles PATCH /users/profile/company.
func (h *UserHandler) UpdateCompanyProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateCompanyProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.svc.UpdateCompanyProfile(r.Context(), auth.UserIDFromContext(r.Context()), req.ToPatch())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
