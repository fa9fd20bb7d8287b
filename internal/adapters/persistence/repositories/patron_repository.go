package repositories

import (
	"context"

	"libris/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// patronRepository implements PatronRepository interface
type patronRepository struct {
	db    *gorm.DB
	procs *Procedures
}

// NewPatronRepository creates a new patron repository
func NewPatronRepository(db *gorm.DB, procs *Procedures) PatronRepository {
	return &patronRepository{db: db, procs: procs}
}

// RenewMembership runs sp_renew_membership
func (r *patronRepository) RenewMembership(ctx context.Context, patronID int64) (*models.RenewMembershipOut, error) {
	var out models.RenewMembershipOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_renew_membership",
		Args:      []interface{}{patronID},
		Outs:      []Out{{Name: "new_expiry_date", Kind: OutDateTime}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Suspend runs sp_suspend_patron
func (r *patronRepository) Suspend(ctx context.Context, patronID int64, reason string, staffID int64) error {
	return r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_suspend_patron",
		Args:      []interface{}{patronID, reason, staffID},
	}, nil)
}

// Reactivate runs sp_reactivate_patron
func (r *patronRepository) Reactivate(ctx context.Context, patronID, staffID int64) error {
	return r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_reactivate_patron",
		Args:      []interface{}{patronID, staffID},
	}, nil)
}

// Add runs sp_add_patron
func (r *patronRepository) Add(ctx context.Context, p AddPatronParams) (*models.AddPatronOut, error) {
	var out models.AddPatronOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_add_patron",
		Args: []interface{}{
			p.CardNumber, p.FirstName, p.LastName, p.Email, p.Phone,
			p.Address, p.DateOfBirth, p.MembershipType, p.BranchID,
		},
		Outs: []Out{
			{Name: "patron_id", Kind: OutInt},
			{Name: "membership_expiry", Kind: OutDateTime},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update runs sp_update_patron
func (r *patronRepository) Update(ctx context.Context, p UpdatePatronParams) error {
	return r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_update_patron",
		Args:      []interface{}{p.PatronID, p.Email, p.Phone, p.Address},
	}, nil)
}
