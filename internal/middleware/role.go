package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/campusjobs/campusjobs/internal/auth"
	"github.com/campusjobs/campusjobs/internal/model"
	"github.com/campusjobs/campusjobs/internal/service"
)

// RoleResolver returns the registered role of a user.
// *service.UserService satisfies it.
type RoleResolver interface {
	Role(ctx context.Context, userID string) (model.Role, error)
}

// RoleConfig holds configuration for the role guard.
type RoleConfig struct {
	Logger *slog.Logger
	Roles  RoleResolver
}

// RequireRole returns middleware that admits only registered users holding one
// of the given roles. Must be applied after Authenticate.
func RequireRole(cfg RoleConfig, allowed ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := auth.UserIDFromContext(r.Context())
			if userID == "" {
				writeAuthError(w)
				return
			}

			role, err := cfg.Roles.Role(r.Context(), userID)
			switch {
			case errors.Is(err, service.ErrNotRegistered):
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Complete registration first")
				return
			case err != nil:
				cfg.Logger.Error("role lookup failed",
					slog.String("error", err.Error()),
					slog.String("user_id", userID),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL", "Internal server error")
				return
			}

			if !slices.Contains(allowed, role) {
				cfg.Logger.Warn("role check failed",
					slog.String("user_id", userID),
					slog.String("role", string(role)),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
