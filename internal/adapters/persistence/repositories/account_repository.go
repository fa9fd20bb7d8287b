package repositories

import (
	"context"

	"libris/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db    *gorm.DB
	procs *Procedures
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB, procs *Procedures) AccountRepository {
	return &accountRepository{db: db, procs: procs}
}

// RegisterPatron runs sp_register_patron
func (r *accountRepository) RegisterPatron(ctx context.Context, p RegisterPatronParams) (*models.RegisterPatronOut, error) {
	var out models.RegisterPatronOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_register_patron",
		Args: []interface{}{
			p.FirstName, p.LastName, p.Email, p.Password,
			p.Phone, p.Address, p.DateOfBirth,
		},
		Outs: []Out{
			{Name: "user_id", Kind: OutInt},
			{Name: "patron_id", Kind: OutInt},
			{Name: "card_number", Kind: OutString},
			{Name: "success", Kind: OutInt},
			{Name: "message", Kind: OutString},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword runs sp_change_password
func (r *accountRepository) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (*models.StatusOut, error) {
	var out models.StatusOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_change_password",
		Args:      []interface{}{userID, oldPassword, newPassword},
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
