package services

import (
	"context"
	"errors"

	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"

	"gorm.io/gorm"
)

// CirculationRepoFactory binds a circulation repository to a role connection
type CirculationRepoFactory func(db *gorm.DB) repositories.CirculationRepository

// CirculationService drives the loan lifecycle. Eligibility and loan
// periods live in the database procedures; this layer forwards arguments
// and turns OUT values into results. Nothing is retried.
type CirculationService struct {
	broker  repositories.ConnectionBroker
	newRepo CirculationRepoFactory
	log     logger.Logger
}

// NewCirculationService creates a new circulation service
func NewCirculationService(broker repositories.ConnectionBroker, newRepo CirculationRepoFactory, log logger.Logger) *CirculationService {
	return &CirculationService{broker: broker, newRepo: newRepo, log: log}
}

// Checkout lends a copy to a patron
func (s *CirculationService) Checkout(ctx context.Context, auth *domain.AuthenticatedContext, patronID, copyID, staffID int64) (*domain.CheckoutResult, error) {
	var result *domain.CheckoutResult
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).Checkout(ctx, patronID, copyID, staffID)
		if err != nil {
			return err
		}
		if out.LoanID == nil || out.DueDate == nil {
			return domain.ErrIncompleteResult
		}
		result = &domain.CheckoutResult{LoanID: *out.LoanID, DueDate: *out.DueDate}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Item checked out",
		logger.Int64("loan_id", result.LoanID),
		logger.Int64("patron_id", patronID),
		logger.Int64("copy_id", copyID),
		logger.String("principal", auth.Principal()),
	)
	return result, nil
}

// Checkin returns a loan. The fine amount is whatever the procedure
// assessed; a NULL fine means none was assessed.
func (s *CirculationService) Checkin(ctx context.Context, auth *domain.AuthenticatedContext, loanID, staffID int64) (*domain.CheckinResult, error) {
	var result *domain.CheckinResult
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).Checkin(ctx, loanID, staffID)
		if err != nil {
			return err
		}
		result = &domain.CheckinResult{LoanID: loanID}
		if out.FineAssessed != nil {
			result.FineAssessed = *out.FineAssessed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Item checked in",
		logger.Int64("loan_id", loanID),
		logger.Float64("fine_assessed", result.FineAssessed),
	)
	return result, nil
}

// Renew extends an active loan
func (s *CirculationService) Renew(ctx context.Context, auth *domain.AuthenticatedContext, loanID int64) (*domain.RenewalResult, error) {
	var result *domain.RenewalResult
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).Renew(ctx, loanID)
		if err != nil {
			return err
		}
		if out.NewDueDate == nil || out.RenewalCount == nil {
			return domain.ErrIncompleteResult
		}
		if *out.RenewalCount < 1 || *out.RenewalCount > domain.MaxRenewals {
			return domain.ErrInconsistentResult
		}
		result = &domain.RenewalResult{
			LoanID:       loanID,
			NewDueDate:   *out.NewDueDate,
			RenewalCount: *out.RenewalCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeclareLost closes a loan as lost; the procedure always raises a fine
func (s *CirculationService) DeclareLost(ctx context.Context, auth *domain.AuthenticatedContext, loanID, staffID int64, replacementCost float64) (*domain.LossResult, error) {
	var result *domain.LossResult
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).DeclareLost(ctx, loanID, staffID, replacementCost)
		if err != nil {
			return err
		}
		if out.FineID == nil {
			return domain.ErrIncompleteResult
		}
		result = &domain.LossResult{
			LoanID:          loanID,
			FineID:          *out.FineID,
			ReplacementCost: replacementCost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Item declared lost",
		logger.Int64("loan_id", loanID),
		logger.Int64("fine_id", result.FineID),
	)
	return result, nil
}

// GetLoan reads one loan
func (s *CirculationService) GetLoan(ctx context.Context, auth *domain.AuthenticatedContext, loanID int64) (*domain.Loan, error) {
	var loan *domain.Loan
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		row, err := s.newRepo(db).GetLoan(ctx, loanID)
		if err != nil {
			return notFound(err, domain.ErrLoanNotFound)
		}
		loan = row.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// notFound maps gorm's missing-row error onto a domain not-found code
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
