package repositories

import (
	"context"

	"libris/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// userAdminRepository implements UserAdminRepository interface
type userAdminRepository struct {
	db    *gorm.DB
	procs *Procedures
}

// NewUserAdminRepository creates a new user administration repository
func NewUserAdminRepository(db *gorm.DB, procs *Procedures) UserAdminRepository {
	return &userAdminRepository{db: db, procs: procs}
}

func (r *userAdminRepository) flag(ctx context.Context, fn Func) (*models.FlagValue, error) {
	var out models.FlagValue
	if err := r.procs.Eval(ctx, r.db, fn, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsActive evaluates fn_is_user_active
func (r *userAdminRepository) IsActive(ctx context.Context, userID int64) (*models.FlagValue, error) {
	return r.flag(ctx, Func{Name: "fn_is_user_active", Args: []interface{}{userID}})
}

// IsLocked evaluates fn_is_account_locked
func (r *userAdminRepository) IsLocked(ctx context.Context, userID int64) (*models.FlagValue, error) {
	return r.flag(ctx, Func{Name: "fn_is_account_locked", Args: []interface{}{userID}})
}

// HasPermission evaluates fn_has_permission
func (r *userAdminRepository) HasPermission(ctx context.Context, userID int64, permissionCode string) (*models.FlagValue, error) {
	return r.flag(ctx, Func{Name: "fn_has_permission", Args: []interface{}{userID, permissionCode}})
}

// HasRole evaluates fn_has_role
func (r *userAdminRepository) HasRole(ctx context.Context, userID int64, roleCode string) (*models.FlagValue, error) {
	return r.flag(ctx, Func{Name: "fn_has_role", Args: []interface{}{userID, roleCode}})
}

// RoleList evaluates fn_get_user_roles, a comma separated list
func (r *userAdminRepository) RoleList(ctx context.Context, userID int64) (*models.TextValue, error) {
	var out models.TextValue
	if err := r.procs.Eval(ctx, r.db, Func{Name: "fn_get_user_roles", Args: []interface{}{userID}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignRole runs sp_assign_role_to_user
func (r *userAdminRepository) AssignRole(ctx context.Context, userID, roleID, assignedBy int64) (*models.StatusOut, error) {
	return r.status(ctx, Call{
		Procedure: "sp_assign_role_to_user",
		Args:      []interface{}{userID, roleID, assignedBy},
	})
}

// RevokeRole runs sp_revoke_role_from_user
func (r *userAdminRepository) RevokeRole(ctx context.Context, userID, roleID int64) (*models.StatusOut, error) {
	return r.status(ctx, Call{
		Procedure: "sp_revoke_role_from_user",
		Args:      []interface{}{userID, roleID},
	})
}

func (r *userAdminRepository) status(ctx context.Context, call Call) (*models.StatusOut, error) {
	call.Outs = []Out{
		{Name: "success", Kind: OutInt},
		{Name: "message", Kind: OutString},
	}
	var out models.StatusOut
	if err := r.procs.Run(ctx, r.db, call, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
