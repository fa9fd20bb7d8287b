package repositories

import (
	"context"

	"libris/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// fineRepository implements FineRepository interface
type fineRepository struct {
	db    *gorm.DB
	procs *Procedures
}

// NewFineRepository creates a new fine repository
func NewFineRepository(db *gorm.DB, procs *Procedures) FineRepository {
	return &fineRepository{db: db, procs: procs}
}

// Assess runs sp_assess_fine
func (r *fineRepository) Assess(ctx context.Context, p AssessFineParams) (*models.AssessFineOut, error) {
	var out models.AssessFineOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_assess_fine",
		Args:      []interface{}{p.PatronID, p.LoanID, p.FineType, p.Amount, p.StaffID},
		Outs:      []Out{{Name: "fine_id", Kind: OutInt}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Waive runs sp_waive_fine
func (r *fineRepository) Waive(ctx context.Context, fineID int64, reason string, staffID int64) (*models.WaiveFineOut, error) {
	var out models.WaiveFineOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_waive_fine",
		Args:      []interface{}{fineID, reason, staffID},
		Outs:      []Out{{Name: "waived_amount", Kind: OutDecimal}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Pay runs sp_pay_fine. A zero staffID is passed as NULL (self-service).
func (r *fineRepository) Pay(ctx context.Context, fineID int64, amount float64, method string, staffID int64) (*models.PayFineOut, error) {
	var staff interface{}
	if staffID > 0 {
		staff = staffID
	}

	var out models.PayFineOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_pay_fine",
		Args:      []interface{}{fineID, amount, method, staff},
		Outs: []Out{
			{Name: "remaining_balance", Kind: OutDecimal},
			{Name: "new_status", Kind: OutString},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID reads a fine by id
func (r *fineRepository) GetByID(ctx context.Context, fineID int64) (*models.Fine, error) {
	var fine models.Fine
	if err := r.db.WithContext(ctx).Where("fine_id = ?", fineID).Take(&fine).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &fine, nil
}
