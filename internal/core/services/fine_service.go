package services

import (
	"context"

	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"

	"gorm.io/gorm"
)

// FineRepoFactory binds a fine repository to a role connection
type FineRepoFactory func(db *gorm.DB) repositories.FineRepository

// FineEngine assesses, waives and collects fines. Amounts and the
// amount_paid <= amount_due invariant belong to the database.
type FineEngine struct {
	broker  repositories.ConnectionBroker
	newRepo FineRepoFactory
	log     logger.Logger
}

// NewFineEngine creates a new fine engine
func NewFineEngine(broker repositories.ConnectionBroker, newRepo FineRepoFactory, log logger.Logger) *FineEngine {
	return &FineEngine{broker: broker, newRepo: newRepo, log: log}
}

// AssessInput holds the arguments of a manual assessment
type AssessInput struct {
	PatronID int64
	LoanID   *int64
	Type     domain.FineType
	Amount   float64
	StaffID  int64
}

// Assess raises a fine against a patron
func (s *FineEngine) Assess(ctx context.Context, auth *domain.AuthenticatedContext, in AssessInput) (int64, error) {
	var fineID int64
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).Assess(ctx, repositories.AssessFineParams{
			PatronID: in.PatronID,
			LoanID:   in.LoanID,
			FineType: string(in.Type),
			Amount:   in.Amount,
			StaffID:  in.StaffID,
		})
		if err != nil {
			return err
		}
		if out.FineID == nil {
			return domain.ErrIncompleteResult
		}
		fineID = *out.FineID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("Fine assessed",
		logger.Int64("fine_id", fineID),
		logger.Int64("patron_id", in.PatronID),
		logger.String("type", string(in.Type)),
		logger.Float64("amount", in.Amount),
	)
	return fineID, nil
}

// Waive forgives the outstanding balance of a fine
func (s *FineEngine) Waive(ctx context.Context, auth *domain.AuthenticatedContext, fineID int64, reason string, staffID int64) (*domain.WaiverResult, error) {
	var result *domain.WaiverResult
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).Waive(ctx, fineID, reason, staffID)
		if err != nil {
			return err
		}
		result = &domain.WaiverResult{FineID: fineID}
		if out.WaivedAmount != nil {
			result.WaivedAmount = *out.WaivedAmount
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Fine waived",
		logger.Int64("fine_id", fineID),
		logger.Int64("staff_id", staffID),
	)
	return result, nil
}

// Pay records a payment. A negative remaining balance from the procedure
// is rejected rather than surfaced.
func (s *FineEngine) Pay(ctx context.Context, auth *domain.AuthenticatedContext, fineID int64, amount float64, method domain.PaymentMethod, staffID int64) (*domain.PaymentResult, error) {
	var result *domain.PaymentResult
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).Pay(ctx, fineID, amount, string(method), staffID)
		if err != nil {
			return err
		}
		if out.RemainingBalance == nil || out.NewStatus == nil {
			return domain.ErrIncompleteResult
		}
		status := domain.FineStatus(*out.NewStatus)
		if *out.RemainingBalance < 0 || !status.Valid() {
			return domain.ErrInconsistentResult
		}
		result = &domain.PaymentResult{
			FineID:           fineID,
			AmountPaid:       amount,
			RemainingBalance: *out.RemainingBalance,
			Status:           status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Fine payment recorded",
		logger.Int64("fine_id", fineID),
		logger.Float64("amount", amount),
		logger.String("status", string(result.Status)),
	)
	return result, nil
}

// Get reads one fine
func (s *FineEngine) Get(ctx context.Context, auth *domain.AuthenticatedContext, fineID int64) (*domain.Fine, error) {
	var fine *domain.Fine
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		row, err := s.newRepo(db).GetByID(ctx, fineID)
		if err != nil {
			return notFound(err, domain.ErrFineNotFound)
		}
		fine = row.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fine, nil
}
