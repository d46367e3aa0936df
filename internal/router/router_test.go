package router

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/regexflow/internal/handlers"
	"github.com/GregMSThompson/regexflow/internal/middleware"
	"github.com/GregMSThompson/regexflow/internal/response"
	"github.com/GregMSThompson/regexflow/pkg/logger"
)

type roleVerifier struct {
	role string
}

func (v roleVerifier) VerifyIDToken(_ context.Context, _ string) (*auth.Token, error) {
	return &auth.Token{UID: "uid-1", Claims: map[string]interface{}{middleware.RoleClaim: v.role}}, nil
}

func newTestRouter(role string) http.Handler {
	log := slog.New(logger.NewTestHandler(slog.LevelInfo))
	rh := response.New(log)
	deps := &handlers.Deps{Log: log, ResponseHandler: rh}
	return NewRouter(deps, middleware.NewMiddleware(roleVerifier{role: role}, rh), log)
}

func TestRoleGuards(t *testing.T) {
	tests := []struct {
		name   string
		role   string
		target string
	}{
		{"user on maker", "USER", "/maker/templates"},
		{"maker on checker", "MAKER", "/checker/templates/pending"},
		{"checker on maker", "CHECKER", "/maker/unparsed-sms"},
		{"missing claim on checker", "", "/checker/templates/active"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			req.Header.Set("Authorization", "Bearer token")
			rec := httptest.NewRecorder()

			newTestRouter(tt.role).ServeHTTP(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", rec.Code)
			}
		})
	}
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter("MAKER").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/maker/templates", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMetricsIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter("USER").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
