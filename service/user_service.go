// service/user_service.go
package service

import (
	"context"

	"go.uber.org/zap"

	ew_errors "github.com/skarin/equipwatch/errors"
	logger "github.com/skarin/equipwatch/logging"
	"github.com/skarin/equipwatch/model"
	"github.com/skarin/equipwatch/util"
)

// UserStore is the persistence surface for the user directory.
type UserStore interface {
	UserReader
	CreateUser(ctx context.Context, user model.User) (string, error)
	SearchUsers(ctx context.Context, criteria model.UserSearchCriteria) ([]*model.User, error)
}

// UserCache caches user records keyed by ID.
type UserCache interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	SetUser(ctx context.Context, user model.User) error
	DeleteUser(ctx context.Context, userID string) error
}

// IUserService defines the interface for the user directory.
type IUserService interface {
	CreateUser(ctx context.Context, actor model.User, user model.User) (*model.User, error)
	GetUser(ctx context.Context, actor model.User, userID string) (*model.User, error)
	ListEngineers(ctx context.Context, actor model.User, criteria model.UserSearchCriteria) ([]*model.User, error)
}

// UserService handles the user directory: who exists and with which
// role. Authentication lives elsewhere; records here only drive access
// resolution and assignment targeting.
type UserService struct {
	users          UserStore
	validationUtil *util.ValidationUtil
	cacheService   UserCache
}

var _ IUserService = &UserService{}

func NewUserService(users UserStore, validationUtil *util.ValidationUtil, cacheService UserCache) *UserService {
	return &UserService{
		users:          users,
		validationUtil: validationUtil,
		cacheService:   cacheService,
	}
}

// CreateUser registers a user. Admin only: the role field decides
// whether every later access check short-circuits.
func (s *UserService) CreateUser(ctx context.Context, actor model.User, user model.User) (*model.User, error) {
	if actor.Role != model.RoleAdmin {
		return nil, ew_errors.ErrForbidden
	}
	if !model.ValidRole(user.Role) {
		return nil, ew_errors.ErrInvalidUserData
	}
	if err := s.validationUtil.ValidateUser(user); err != nil {
		return nil, err
	}

	userID, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = userID

	if err := s.cacheService.SetUser(ctx, user); err != nil {
		logger.Warn("Failed to cache created user", zap.Error(err))
	}
	return &user, nil
}

// GetUser fetches one user record. Privileged roles see everyone,
// engineers only themselves.
func (s *UserService) GetUser(ctx context.Context, actor model.User, userID string) (*model.User, error) {
	if !actor.Privileged() && actor.ID != userID {
		return nil, ew_errors.ErrForbidden
	}

	if cached, err := s.cacheService.GetUser(ctx, userID); err == nil && cached != nil {
		return cached, nil
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetUser(ctx, *user); err != nil {
		logger.Warn("Failed to cache user", zap.Error(err))
	}
	return user, nil
}

// ListEngineers lists the engineer directory, the candidates for
// grants and assignments.
func (s *UserService) ListEngineers(ctx context.Context, actor model.User, criteria model.UserSearchCriteria) ([]*model.User, error) {
	if !actor.Privileged() {
		return nil, ew_errors.ErrForbidden
	}
	criteria.Role = model.RoleEngineer
	return s.users.SearchUsers(ctx, criteria)
}
