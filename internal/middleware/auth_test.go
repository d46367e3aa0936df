package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/internal/response"
	"github.com/GregMSThompson/regexflow/pkg/helpers"
)

type stubVerifier struct {
	token *auth.Token
	err   error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*auth.Token, error) {
	return s.token, s.err
}

func newTestMiddleware(v tokenVerifier) *Middleware {
	return NewMiddleware(v, response.New(nil))
}

func TestFirebaseAuthSetsIdentity(t *testing.T) {
	m := newTestMiddleware(&stubVerifier{token: &auth.Token{
		UID:    "uid-1",
		Claims: map[string]interface{}{"email": "maker@example.com", RoleClaim: "MAKER"},
	}})

	var gotUID, gotEmail string
	var gotRole models.Role
	h := m.FirebaseAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, gotEmail, gotRole = UID(r.Context()), Email(r.Context()), Role(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(helpers.TestCtx())
	req.Header.Set("Authorization", "Bearer token")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if gotUID != "uid-1" || gotEmail != "maker@example.com" || gotRole != models.RoleMaker {
		t.Fatalf("unexpected identity uid=%q email=%q role=%q", gotUID, gotEmail, gotRole)
	}
}

func TestFirebaseAuthDefaultsUnknownRole(t *testing.T) {
	m := newTestMiddleware(&stubVerifier{token: &auth.Token{UID: "uid-1", Claims: map[string]interface{}{RoleClaim: "ADMIN"}}})

	var gotRole models.Role
	h := m.FirebaseAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = Role(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(helpers.TestCtx())
	req.Header.Set("Authorization", "Bearer token")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if gotRole != models.RoleUser {
		t.Fatalf("expected USER fallback, got %q", gotRole)
	}
}

func TestFirebaseAuthRejects(t *testing.T) {
	cases := map[string]struct {
		header string
		err    error
	}{
		"missing": {header: ""},
		"scheme":  {header: "Basic abc"},
		"invalid": {header: "Bearer bad", err: errors.New("expired")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			m := newTestMiddleware(&stubVerifier{err: tc.err})
			called := false
			h := m.FirebaseAuth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(helpers.TestCtx())
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if called || rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401 without calling next, got %d called=%v", rr.Code, called)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	m := newTestMiddleware(&stubVerifier{})
	h := m.RequireRole(models.RoleChecker)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for role, want := range map[models.Role]int{
		models.RoleChecker: http.StatusNoContent,
		models.RoleMaker:   http.StatusForbidden,
	} {
		ctx := context.WithValue(helpers.TestCtx(), RoleKey, role)
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != want {
			t.Fatalf("role %s: status = %d, want %d", role, rr.Code, want)
		}
	}
}
