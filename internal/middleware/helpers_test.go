package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campusjobs/campusjobs/internal/model"
)

type resolverFunc func(ctx context.Context, token string) (*model.Identity, error)

func (f resolverFunc) Resolve(ctx context.Context, token string) (*model.Identity, error) {
	return f(ctx, token)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.StatusCode != rec.Code {
		t.Errorf("body statusCode = %d, response code = %d", body.StatusCode, rec.Code)
	}
	return body
}
