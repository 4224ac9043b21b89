package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/campusjobs/campusjobs/internal/auth"
	"github.com/campusjobs/campusjobs/internal/model"
)

// IdentityResolver turns a bearer token into a verified identity.
// *auth.Resolver satisfies it.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*model.Identity, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Resolver IdentityResolver
}

// Authenticate returns a middleware that requires a valid bearer token and
// injects the caller's identity into the request context.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			identity, err := cfg.Resolver.Resolve(r.Context(), token)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "invalid_token", slog.String("error", err.Error()))
				writeAuthError(w)
				return
			}

			if sink := userIDSink(r.Context()); sink != nil {
				*sink = identity.ID
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("user_id", identity.ID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken reads "Authorization: Bearer <token>". The scheme is
// matched case-insensitively.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string, extra ...any) {
	args := []any{
		slog.String("reason", reason),
		slog.String("ip", clientIP(r)),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	}
	logger.Warn("authentication failed", append(args, extra...)...)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="campusjobs"`)
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing bearer token")
}
