package services

import (
	"context"

	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"
)

// RoleResolver picks the acting role for a user
type RoleResolver struct {
	roleRepo repositories.RoleRepository
	log      logger.Logger
}

// NewRoleResolver creates a new role resolver
func NewRoleResolver(roleRepo repositories.RoleRepository, log logger.Logger) *RoleResolver {
	return &RoleResolver{roleRepo: roleRepo, log: log}
}

// Resolve returns the acting role and the full active role set of a user.
// Codes that do not name a known role are dropped with a warning, so every
// returned role has a vault entry. An empty result is ErrNoRoleAssigned.
func (r *RoleResolver) Resolve(ctx context.Context, userID int64) (domain.Role, domain.RoleSet, error) {
	codes, err := r.roleRepo.ActiveRoleCodes(ctx, userID)
	if err != nil {
		return 0, nil, err
	}

	roles := make([]domain.Role, 0, len(codes))
	for _, code := range codes {
		role, ok := domain.ParseRole(code)
		if !ok {
			r.log.Warn("Ignoring unknown role code",
				logger.Int64("user_id", userID),
				logger.String("role_code", code),
			)
			continue
		}
		roles = append(roles, role)
	}

	set := domain.NewRoleSet(roles...)
	acting, ok := set.Acting()
	if !ok {
		return 0, nil, domain.ErrNoRoleAssigned
	}
	return acting, set, nil
}
