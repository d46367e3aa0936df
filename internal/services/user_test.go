package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/pkg/helpers"
)

type stubUserStore struct {
	user            *models.User
	createUserCalls int
	err             error
}

func (s *stubUserStore) CreateUser(_ context.Context, user *models.User) error {
	s.user = user
	s.createUserCalls++
	return s.err
}

func (s *stubUserStore) GetUser(_ context.Context, _ string) (*models.User, error) {
	return s.user, nil
}

type stubClaims struct {
	uid  string
	role models.Role
	err  error
}

func (s *stubClaims) SetRole(_ context.Context, uid string, role models.Role) error {
	s.uid, s.role = uid, role
	return s.err
}

func TestUserServiceCreateUser(t *testing.T) {
	store := &stubUserStore{}
	claims := &stubClaims{}
	svc := NewUserService(store, claims)

	ctx := helpers.TestCtx()
	now := time.Now()

	err := svc.CreateUser(ctx, "uid-123", "user@example.com", "Jane", "Doe", models.RoleMaker)
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if store.createUserCalls != 1 {
		t.Fatalf("CreateUser called %d times, want 1", store.createUserCalls)
	}

	if store.user == nil {
		t.Fatalf("store received nil user")
	}

	if store.user.UID != "uid-123" || store.user.Email != "user@example.com" || store.user.Role != models.RoleMaker {
		t.Fatalf("unexpected user identifiers: %+v", store.user)
	}

	if store.user.CreatedAt.Before(now) {
		t.Fatalf("CreatedAt set earlier than call time: %v before %v", store.user.CreatedAt, now)
	}

	if claims.uid != "uid-123" || claims.role != models.RoleMaker {
		t.Fatalf("role claim not set: %+v", claims)
	}
}

func TestUserServiceCreateUserDefaultsRole(t *testing.T) {
	store := &stubUserStore{}
	svc := NewUserService(store, &stubClaims{})

	if err := svc.CreateUser(helpers.TestCtx(), "uid-1", "a@b.c", "A", "B", ""); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if store.user.Role != models.RoleUser {
		t.Fatalf("expected default USER role, got %q", store.user.Role)
	}

	err := svc.CreateUser(helpers.TestCtx(), "uid-2", "a@b.c", "A", "B", "ADMIN")
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}
}

func TestUserServiceCreateUserStoreError(t *testing.T) {
	store := &stubUserStore{err: errors.New("store failure")}
	claims := &stubClaims{}
	svc := NewUserService(store, claims)

	err := svc.CreateUser(helpers.TestCtx(), "uid-456", "user2@example.com", "John", "Smith", models.RoleChecker)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if claims.uid != "" {
		t.Fatalf("role claim must not be set when the store fails")
	}
}
