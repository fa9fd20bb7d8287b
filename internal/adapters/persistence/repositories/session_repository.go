package repositories

import (
	"context"

	"libris/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// sessionRepository implements SessionRepository interface
type sessionRepository struct {
	db    *gorm.DB
	procs *Procedures
}

// NewSessionRepository creates a session repository on the admin connection
func NewSessionRepository(db *gorm.DB, procs *Procedures) SessionRepository {
	return &sessionRepository{db: db, procs: procs}
}

const sessionColumns = "sm.session_id, sm.user_id, sm.login_time, sm.last_activity_time, sm.logout_time, sm.session_status, sm.session_timeout_minutes, u.username"

// FindByToken looks a session up by its token, joined with its user.
// Returns gorm.ErrRecordNotFound when the token is unknown.
func (r *sessionRepository) FindByToken(ctx context.Context, token string) (*models.SessionWithUser, error) {
	var row models.SessionWithUser
	err := r.db.WithContext(ctx).
		Table("session_management AS sm").
		Select(sessionColumns).
		Joins("INNER JOIN users u ON sm.user_id = u.user_id").
		Where("sm.session_id = ?", token).
		Take(&row).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &row, nil
}

// Validate runs sp_validate_session, which also refreshes last activity
func (r *sessionRepository) Validate(ctx context.Context, token string) (*models.ValidateSessionOut, error) {
	var out models.ValidateSessionOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_validate_session",
		Args:      []interface{}{token},
		Outs: []Out{
			{Name: "is_valid", Kind: OutInt},
			{Name: "user_id", Kind: OutInt},
			{Name: "message", Kind: OutString},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Authenticate runs sp_authenticate_user
func (r *sessionRepository) Authenticate(ctx context.Context, username, password string) (*models.AuthenticateOut, error) {
	var out models.AuthenticateOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_authenticate_user",
		Args:      []interface{}{username, password},
		Outs: []Out{
			{Name: "session_id", Kind: OutString},
			{Name: "user_id", Kind: OutInt},
			{Name: "success", Kind: OutInt},
			{Name: "message", Kind: OutString},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout runs sp_logout_user
func (r *sessionRepository) Logout(ctx context.Context, token string) (*models.StatusOut, error) {
	var out models.StatusOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_logout_user",
		Args:      []interface{}{token},
		Outs: []Out{
			{Name: "success", Kind: OutInt},
			{Name: "message", Kind: OutString},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
