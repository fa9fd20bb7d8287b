package services

import (
	"context"
	"fmt"
	"time"

	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"

	"gorm.io/gorm"
)

// PatronRepoFactory binds a patron repository to a role connection
type PatronRepoFactory func(db *gorm.DB) repositories.PatronRepository

// PatronService maintains memberships
type PatronService struct {
	broker  repositories.ConnectionBroker
	newRepo PatronRepoFactory
	log     logger.Logger
}

// NewPatronService creates a new patron service
func NewPatronService(broker repositories.ConnectionBroker, newRepo PatronRepoFactory, log logger.Logger) *PatronService {
	return &PatronService{broker: broker, newRepo: newRepo, log: log}
}

// EnrollInput holds the arguments of a staff patron enrollment
type EnrollInput struct {
	CardNumber     string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Address        string
	DateOfBirth    time.Time
	MembershipType domain.MembershipType
	BranchID       int64
}

// ContactUpdate changes a patron's contact details. Nil fields are left
// untouched.
type ContactUpdate struct {
	Email   *string
	Phone   *string
	Address *string
}

// Empty reports whether the update changes nothing
func (u ContactUpdate) Empty() bool {
	return u.Email == nil && u.Phone == nil && u.Address == nil
}

// Enroll creates a patron record at a branch
func (s *PatronService) Enroll(ctx context.Context, auth *domain.AuthenticatedContext, in EnrollInput) (*domain.PatronEnrollment, error) {
	if !in.MembershipType.Valid() {
		return nil, fmt.Errorf("%w: unknown membership type %q", domain.ErrInvalidInput, in.MembershipType)
	}

	var result *domain.PatronEnrollment
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).Add(ctx, repositories.AddPatronParams{
			CardNumber:     in.CardNumber,
			FirstName:      in.FirstName,
			LastName:       in.LastName,
			Email:          in.Email,
			Phone:          in.Phone,
			Address:        in.Address,
			DateOfBirth:    in.DateOfBirth,
			MembershipType: string(in.MembershipType),
			BranchID:       in.BranchID,
		})
		if err != nil {
			return err
		}
		if out.PatronID == nil {
			return domain.ErrIncompleteResult
		}
		result = &domain.PatronEnrollment{PatronID: *out.PatronID, MembershipExpiry: out.MembershipExpiry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Patron enrolled",
		logger.Int64("patron_id", result.PatronID),
		logger.Int64("branch_id", in.BranchID),
		logger.String("principal", auth.Principal()),
	)
	return result, nil
}

// UpdateContact changes a patron's email, phone or address
func (s *PatronService) UpdateContact(ctx context.Context, auth *domain.AuthenticatedContext, patronID int64, in ContactUpdate) error {
	if in.Empty() {
		return fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}

	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		return s.newRepo(db).Update(ctx, repositories.UpdatePatronParams{
			PatronID: patronID,
			Email:    in.Email,
			Phone:    in.Phone,
			Address:  in.Address,
		})
	})
	if err != nil {
		return err
	}

	s.log.Info("Patron updated", logger.Int64("patron_id", patronID))
	return nil
}

// RenewMembership extends a patron's membership
func (s *PatronService) RenewMembership(ctx context.Context, auth *domain.AuthenticatedContext, patronID int64) (*domain.MembershipRenewal, error) {
	var result *domain.MembershipRenewal
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).RenewMembership(ctx, patronID)
		if err != nil {
			return err
		}
		if out.NewExpiryDate == nil {
			return domain.ErrIncompleteResult
		}
		result = &domain.MembershipRenewal{PatronID: patronID, NewExpiryDate: *out.NewExpiryDate}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Membership renewed", logger.Int64("patron_id", patronID))
	return result, nil
}

// Suspend blocks a patron from borrowing
func (s *PatronService) Suspend(ctx context.Context, auth *domain.AuthenticatedContext, patronID int64, reason string, staffID int64) error {
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		return s.newRepo(db).Suspend(ctx, patronID, reason, staffID)
	})
	if err != nil {
		return err
	}

	s.log.Info("Patron suspended",
		logger.Int64("patron_id", patronID),
		logger.Int64("staff_id", staffID),
	)
	return nil
}

// Reactivate lifts a suspension
func (s *PatronService) Reactivate(ctx context.Context, auth *domain.AuthenticatedContext, patronID, staffID int64) error {
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		return s.newRepo(db).Reactivate(ctx, patronID, staffID)
	})
	if err != nil {
		return err
	}

	s.log.Info("Patron reactivated",
		logger.Int64("patron_id", patronID),
		logger.Int64("staff_id", staffID),
	)
	return nil
}
