package repositories

import (
	"context"

	"libris/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// circulationRepository implements CirculationRepository interface
type circulationRepository struct {
	db    *gorm.DB
	procs *Procedures
}

// NewCirculationRepository creates a circulation repository on db, which
// is expected to be a role connection handed out by the broker
func NewCirculationRepository(db *gorm.DB, procs *Procedures) CirculationRepository {
	return &circulationRepository{db: db, procs: procs}
}

// Checkout runs sp_checkout_item
func (r *circulationRepository) Checkout(ctx context.Context, patronID, copyID, staffID int64) (*models.CheckoutOut, error) {
	var out models.CheckoutOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_checkout_item",
		Args:      []interface{}{patronID, copyID, staffID},
		Outs: []Out{
			{Name: "loan_id", Kind: OutInt},
			{Name: "due_date", Kind: OutDateTime},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Checkin runs sp_checkin_item
func (r *circulationRepository) Checkin(ctx context.Context, loanID, staffID int64) (*models.CheckinOut, error) {
	var out models.CheckinOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_checkin_item",
		Args:      []interface{}{loanID, staffID},
		Outs:      []Out{{Name: "fine_assessed", Kind: OutDecimal}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Renew runs sp_renew_loan
func (r *circulationRepository) Renew(ctx context.Context, loanID int64) (*models.RenewLoanOut, error) {
	var out models.RenewLoanOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_renew_loan",
		Args:      []interface{}{loanID},
		Outs: []Out{
			{Name: "new_due_date", Kind: OutDateTime},
			{Name: "renewal_count", Kind: OutInt},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeclareLost runs sp_declare_item_lost
func (r *circulationRepository) DeclareLost(ctx context.Context, loanID, staffID int64, replacementCost float64) (*models.DeclareLostOut, error) {
	var out models.DeclareLostOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_declare_item_lost",
		Args:      []interface{}{loanID, staffID, replacementCost},
		Outs:      []Out{{Name: "fine_id", Kind: OutInt}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLoan reads a loan by id
func (r *circulationRepository) GetLoan(ctx context.Context, loanID int64) (*models.Loan, error) {
	var loan models.Loan
	if err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Take(&loan).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &loan, nil
}
