package repositories

import (
	"context"

	"libris/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// batchRepository implements BatchRepository interface
type batchRepository struct {
	db    *gorm.DB
	procs *Procedures
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *gorm.DB, procs *Procedures) BatchRepository {
	return &batchRepository{db: db, procs: procs}
}

// Run executes the maintenance procedure behind job
func (r *batchRepository) Run(ctx context.Context, job BatchJob) (*models.BatchOut, error) {
	var out models.BatchOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: job.Procedure(),
		Outs:      []Out{{Name: "processed_count", Kind: OutInt}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DailyReport runs sp_generate_daily_report. A nil branch reports on
// every branch.
func (r *batchRepository) DailyReport(ctx context.Context, branchID *int64) (*models.DailyReportOut, error) {
	var out models.DailyReportOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_generate_daily_report",
		Args:      []interface{}{branchID},
		Outs: []Out{
			{Name: "checkouts", Kind: OutInt},
			{Name: "returns", Kind: OutInt},
			{Name: "new_patrons", Kind: OutInt},
			{Name: "overdue", Kind: OutInt},
			{Name: "total_fines", Kind: OutDecimal},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
