package repositories

import (
	"context"

	"gorm.io/gorm"
)

// roleRepository implements RoleRepository interface
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// ActiveRoleCodes returns the codes of every active, unexpired role
// assignment of a user. Ordering is left to the caller.
func (r *roleRepository) ActiveRoleCodes(ctx context.Context, userID int64) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Table("user_roles AS ur").
		Joins("INNER JOIN roles r ON ur.role_id = r.role_id").
		Where("ur.user_id = ?", userID).
		Where("ur.is_active = ?", "Y").
		Where("r.is_active = ?", "Y").
		Where("ur.expiry_date IS NULL OR ur.expiry_date > NOW()").
		Pluck("r.role_code", &codes).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return codes, nil
}

// staffRepository implements StaffRepository interface
type staffRepository struct {
	db *gorm.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{db: db}
}

// StaffIDForUser returns the active staff record linked to a user, or 0
// when the account has none
func (r *staffRepository) StaffIDForUser(ctx context.Context, userID int64) (int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Table("staff").
		Where("user_id = ?", userID).
		Where("is_active = ?", "Y").
		Limit(1).
		Pluck("staff_id", &ids).Error
	if err != nil {
		return 0, TranslateError(err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}
