package services

import (
	"context"
	"time"

	"github.com/GregMSThompson/regexflow/internal/errs"
	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/pkg/logger"
)

type userUSStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

// roleClaims sets the role custom claim that the auth middleware reads on later requests.
type roleClaims interface {
	SetRole(ctx context.Context, uid string, role models.Role) error
}

type userService struct {
	Store  userUSStore
	Claims roleClaims
}

func NewUserService(store userUSStore, claims roleClaims) *userService {
	return &userService{
		Store:  store,
		Claims: claims,
	}
}

func (s *userService) CreateUser(ctx context.Context, uid, email, first, last string, role models.Role) error {
	// Get logger from context - already has uid, request_id, method, path
	log := logger.FromContext(ctx)

	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return errs.NewValidationError("role must be one of MAKER, CHECKER, USER")
	}

	user := &models.User{
		UID:       uid,
		Email:     email,
		FirstName: first,
		LastName:  last,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err := s.Store.CreateUser(ctx, user)
	if err != nil {
		log.Error("failed to create user in store", "error", err)
		return err
	}

	if err := s.Claims.SetRole(ctx, uid, role); err != nil {
		log.Error("failed to set role claim", "error", err)
		return errs.NewExternalServiceError("firebase", "failed to assign role", true, err)
	}

	log.Info("user created successfully", "first_name", first, "last_name", last, "role", role)
	log.Debug("user created with full details", "user", user)

	return nil
}

func (s *userService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	return s.Store.GetUser(ctx, uid)
}
