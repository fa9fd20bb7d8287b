package services

import (
	"context"
	"strings"

	"libris/internal/adapters/persistence/models"
	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"

	"gorm.io/gorm"
)

// UserAdminRepoFactory binds a user administration repository to a role
// connection
type UserAdminRepoFactory func(db *gorm.DB) repositories.UserAdminRepository

// noRoles is what fn_get_user_roles returns for a user without roles
const noRoles = "NO_ROLES"

// UserAdminService reads account state and grants or revokes roles.
// Role changes take effect on the next request since the gate resolves
// roles per request.
type UserAdminService struct {
	broker  repositories.ConnectionBroker
	newRepo UserAdminRepoFactory
	log     logger.Logger
}

// NewUserAdminService creates a new user administration service
func NewUserAdminService(broker repositories.ConnectionBroker, newRepo UserAdminRepoFactory, log logger.Logger) *UserAdminService {
	return &UserAdminService{broker: broker, newRepo: newRepo, log: log}
}

// Status reports whether an account is active and whether it is locked
func (s *UserAdminService) Status(ctx context.Context, auth *domain.AuthenticatedContext, userID int64) (*domain.UserStatus, error) {
	status := &domain.UserStatus{UserID: userID}
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		repo := s.newRepo(db)
		active, err := repo.IsActive(ctx, userID)
		if err != nil {
			return err
		}
		locked, err := repo.IsLocked(ctx, userID)
		if err != nil {
			return err
		}
		status.IsActive = isSet(active)
		status.IsLocked = isSet(locked)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// Roles lists the active role codes of a user
func (s *UserAdminService) Roles(ctx context.Context, auth *domain.AuthenticatedContext, userID int64) (*domain.UserRoles, error) {
	result := &domain.UserRoles{UserID: userID, Roles: []string{}}
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).RoleList(ctx, userID)
		if err != nil {
			return err
		}
		list := strings.TrimSpace(deref(out.Value))
		if list == "" || list == noRoles {
			return nil
		}
		for _, code := range strings.Split(list, ",") {
			if code = strings.TrimSpace(code); code != "" {
				result.Roles = append(result.Roles, code)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// HasPermission reports whether a user holds a permission through any role
func (s *UserAdminService) HasPermission(ctx context.Context, auth *domain.AuthenticatedContext, userID int64, code string) (bool, error) {
	var granted bool
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).HasPermission(ctx, userID, code)
		if err != nil {
			return err
		}
		granted = isSet(out)
		return nil
	})
	return granted, err
}

// HasRole reports whether a user holds a role
func (s *UserAdminService) HasRole(ctx context.Context, auth *domain.AuthenticatedContext, userID int64, roleCode string) (bool, error) {
	var granted bool
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).HasRole(ctx, userID, roleCode)
		if err != nil {
			return err
		}
		granted = isSet(out)
		return nil
	})
	return granted, err
}

// AssignRole grants a role to a user on behalf of the caller
func (s *UserAdminService) AssignRole(ctx context.Context, auth *domain.AuthenticatedContext, userID, roleID int64) error {
	err := s.changeRole(ctx, auth, func(ctx context.Context, repo repositories.UserAdminRepository) (*models.StatusOut, error) {
		return repo.AssignRole(ctx, userID, roleID, auth.UserID)
	})
	if err != nil {
		return err
	}

	s.log.Info("Role assigned",
		logger.Int64("user_id", userID),
		logger.Int64("role_id", roleID),
		logger.Int64("assigned_by", auth.UserID),
	)
	return nil
}

// RevokeRole withdraws a role from a user
func (s *UserAdminService) RevokeRole(ctx context.Context, auth *domain.AuthenticatedContext, userID, roleID int64) error {
	err := s.changeRole(ctx, auth, func(ctx context.Context, repo repositories.UserAdminRepository) (*models.StatusOut, error) {
		return repo.RevokeRole(ctx, userID, roleID)
	})
	if err != nil {
		return err
	}

	s.log.Info("Role revoked",
		logger.Int64("user_id", userID),
		logger.Int64("role_id", roleID),
		logger.Int64("revoked_by", auth.UserID),
	)
	return nil
}

func (s *UserAdminService) changeRole(ctx context.Context, auth *domain.AuthenticatedContext, change func(context.Context, repositories.UserAdminRepository) (*models.StatusOut, error)) error {
	return s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := change(ctx, s.newRepo(db))
		if err != nil {
			return err
		}
		if !succeeded(out.Success) {
			return &domain.Rejection{Err: domain.ErrRoleChangeRejected, Message: deref(out.Message)}
		}
		return nil
	})
}

func isSet(v *models.FlagValue) bool {
	return v != nil && succeeded(v.Value)
}
