package handlers

import (
	"context"

	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"
	"libris/internal/core/services"
	"libris/internal/pkg/pagination"

	"github.com/stretchr/testify/mock"
)

type stubGate struct {
	auth *domain.AuthenticatedContext
	err  error
}

func (g stubGate) Authenticate(ctx context.Context, token string) (*domain.AuthenticatedContext, error) {
	if g.err != nil {
		return nil, g.err
	}
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	return g.auth, nil
}

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	args := m.Called(ctx, username, password)
	out, _ := args.Get(0).(*domain.LoginResult)
	return out, args.Error(1)
}

func (m *mockAccounts) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAccounts) ValidateSession(ctx context.Context, token string) (*domain.SessionValidation, error) {
	args := m.Called(ctx, token)
	out, _ := args.Get(0).(*domain.SessionValidation)
	return out, args.Error(1)
}

func (m *mockAccounts) Register(ctx context.Context, in services.RegisterInput) (*domain.Registration, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*domain.Registration)
	return out, args.Error(1)
}

func (m *mockAccounts) ChangePassword(ctx context.Context, auth *domain.AuthenticatedContext, oldPassword, newPassword string) error {
	return m.Called(ctx, auth, oldPassword, newPassword).Error(0)
}

func (m *mockAccounts) Me(auth *domain.AuthenticatedContext) *domain.AuthenticatedContext {
	return auth
}

type mockCirculation struct{ mock.Mock }

func (m *mockCirculation) Checkout(ctx context.Context, auth *domain.AuthenticatedContext, patronID, copyID, staffID int64) (*domain.CheckoutResult, error) {
	args := m.Called(ctx, auth, patronID, copyID, staffID)
	out, _ := args.Get(0).(*domain.CheckoutResult)
	return out, args.Error(1)
}

func (m *mockCirculation) Checkin(ctx context.Context, auth *domain.AuthenticatedContext, loanID, staffID int64) (*domain.CheckinResult, error) {
	args := m.Called(ctx, auth, loanID, staffID)
	out, _ := args.Get(0).(*domain.CheckinResult)
	return out, args.Error(1)
}

func (m *mockCirculation) Renew(ctx context.Context, auth *domain.AuthenticatedContext, loanID int64) (*domain.RenewalResult, error) {
	args := m.Called(ctx, auth, loanID)
	out, _ := args.Get(0).(*domain.RenewalResult)
	return out, args.Error(1)
}

func (m *mockCirculation) DeclareLost(ctx context.Context, auth *domain.AuthenticatedContext, loanID, staffID int64, replacementCost float64) (*domain.LossResult, error) {
	args := m.Called(ctx, auth, loanID, staffID, replacementCost)
	out, _ := args.Get(0).(*domain.LossResult)
	return out, args.Error(1)
}

func (m *mockCirculation) GetLoan(ctx context.Context, auth *domain.AuthenticatedContext, loanID int64) (*domain.Loan, error) {
	args := m.Called(ctx, auth, loanID)
	out, _ := args.Get(0).(*domain.Loan)
	return out, args.Error(1)
}

type mockReservations struct{ mock.Mock }

func (m *mockReservations) Place(ctx context.Context, auth *domain.AuthenticatedContext, materialID, patronID int64) (*domain.PlacementResult, error) {
	args := m.Called(ctx, auth, materialID, patronID)
	out, _ := args.Get(0).(*domain.PlacementResult)
	return out, args.Error(1)
}

func (m *mockReservations) Cancel(ctx context.Context, auth *domain.AuthenticatedContext, reservationID, patronID int64) error {
	return m.Called(ctx, auth, reservationID, patronID).Error(0)
}

func (m *mockReservations) Fulfill(ctx context.Context, auth *domain.AuthenticatedContext, reservationID, copyID, staffID int64) (*domain.FulfillmentResult, error) {
	args := m.Called(ctx, auth, reservationID, copyID, staffID)
	out, _ := args.Get(0).(*domain.FulfillmentResult)
	return out, args.Error(1)
}

func (m *mockReservations) Get(ctx context.Context, auth *domain.AuthenticatedContext, reservationID int64) (*domain.Reservation, error) {
	args := m.Called(ctx, auth, reservationID)
	out, _ := args.Get(0).(*domain.Reservation)
	return out, args.Error(1)
}

func (m *mockReservations) ListActive(ctx context.Context, auth *domain.AuthenticatedContext, patronID int64, params *pagination.Params) ([]*domain.Reservation, int64, error) {
	args := m.Called(ctx, auth, patronID, params)
	out, _ := args.Get(0).([]*domain.Reservation)
	return out, args.Get(1).(int64), args.Error(2)
}

type mockFines struct{ mock.Mock }

func (m *mockFines) Assess(ctx context.Context, auth *domain.AuthenticatedContext, in services.AssessInput) (int64, error) {
	args := m.Called(ctx, auth, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockFines) Waive(ctx context.Context, auth *domain.AuthenticatedContext, fineID int64, reason string, staffID int64) (*domain.WaiverResult, error) {
	args := m.Called(ctx, auth, fineID, reason, staffID)
	out, _ := args.Get(0).(*domain.WaiverResult)
	return out, args.Error(1)
}

func (m *mockFines) Pay(ctx context.Context, auth *domain.AuthenticatedContext, fineID int64, amount float64, method domain.PaymentMethod, staffID int64) (*domain.PaymentResult, error) {
	args := m.Called(ctx, auth, fineID, amount, method, staffID)
	out, _ := args.Get(0).(*domain.PaymentResult)
	return out, args.Error(1)
}

func (m *mockFines) Get(ctx context.Context, auth *domain.AuthenticatedContext, fineID int64) (*domain.Fine, error) {
	args := m.Called(ctx, auth, fineID)
	out, _ := args.Get(0).(*domain.Fine)
	return out, args.Error(1)
}

type mockPatrons struct{ mock.Mock }

func (m *mockPatrons) RenewMembership(ctx context.Context, auth *domain.AuthenticatedContext, patronID int64) (*domain.MembershipRenewal, error) {
	args := m.Called(ctx, auth, patronID)
	out, _ := args.Get(0).(*domain.MembershipRenewal)
	return out, args.Error(1)
}

func (m *mockPatrons) Suspend(ctx context.Context, auth *domain.AuthenticatedContext, patronID int64, reason string, staffID int64) error {
	return m.Called(ctx, auth, patronID, reason, staffID).Error(0)
}

func (m *mockPatrons) Reactivate(ctx context.Context, auth *domain.AuthenticatedContext, patronID, staffID int64) error {
	return m.Called(ctx, auth, patronID, staffID).Error(0)
}

func (m *mockPatrons) Enroll(ctx context.Context, auth *domain.AuthenticatedContext, in services.EnrollInput) (*domain.PatronEnrollment, error) {
	args := m.Called(ctx, auth, in)
	out, _ := args.Get(0).(*domain.PatronEnrollment)
	return out, args.Error(1)
}

func (m *mockPatrons) UpdateContact(ctx context.Context, auth *domain.AuthenticatedContext, patronID int64, in services.ContactUpdate) error {
	return m.Called(ctx, auth, patronID, in).Error(0)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) AddMaterial(ctx context.Context, auth *domain.AuthenticatedContext, in services.MaterialInput) (int64, error) {
	args := m.Called(ctx, auth, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCatalog) AddCopy(ctx context.Context, auth *domain.AuthenticatedContext, materialID int64, in services.CopyInput) (int64, error) {
	args := m.Called(ctx, auth, materialID, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCatalog) UpdateMaterial(ctx context.Context, auth *domain.AuthenticatedContext, materialID int64, in services.MaterialUpdate) error {
	return m.Called(ctx, auth, materialID, in).Error(0)
}

func (m *mockCatalog) DeleteMaterial(ctx context.Context, auth *domain.AuthenticatedContext, materialID, staffID int64) error {
	return m.Called(ctx, auth, materialID, staffID).Error(0)
}

func (m *mockCatalog) GetMaterial(ctx context.Context, auth *domain.AuthenticatedContext, materialID int64) (*domain.Material, error) {
	args := m.Called(ctx, auth, materialID)
	out, _ := args.Get(0).(*domain.Material)
	return out, args.Error(1)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Status(ctx context.Context, auth *domain.AuthenticatedContext, userID int64) (*domain.UserStatus, error) {
	args := m.Called(ctx, auth, userID)
	out, _ := args.Get(0).(*domain.UserStatus)
	return out, args.Error(1)
}

func (m *mockUsers) Roles(ctx context.Context, auth *domain.AuthenticatedContext, userID int64) (*domain.UserRoles, error) {
	args := m.Called(ctx, auth, userID)
	out, _ := args.Get(0).(*domain.UserRoles)
	return out, args.Error(1)
}

func (m *mockUsers) HasPermission(ctx context.Context, auth *domain.AuthenticatedContext, userID int64, code string) (bool, error) {
	args := m.Called(ctx, auth, userID, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockUsers) HasRole(ctx context.Context, auth *domain.AuthenticatedContext, userID int64, roleCode string) (bool, error) {
	args := m.Called(ctx, auth, userID, roleCode)
	return args.Bool(0), args.Error(1)
}

func (m *mockUsers) AssignRole(ctx context.Context, auth *domain.AuthenticatedContext, userID, roleID int64) error {
	return m.Called(ctx, auth, userID, roleID).Error(0)
}

func (m *mockUsers) RevokeRole(ctx context.Context, auth *domain.AuthenticatedContext, userID, roleID int64) error {
	return m.Called(ctx, auth, userID, roleID).Error(0)
}

type mockBatch struct{ mock.Mock }

func (m *mockBatch) Run(ctx context.Context, auth *domain.AuthenticatedContext, job repositories.BatchJob) (*domain.BatchResult, error) {
	args := m.Called(ctx, auth, job)
	out, _ := args.Get(0).(*domain.BatchResult)
	return out, args.Error(1)
}

func (m *mockBatch) DailyReport(ctx context.Context, auth *domain.AuthenticatedContext, branchID *int64) (*domain.DailyReport, error) {
	args := m.Called(ctx, auth, branchID)
	out, _ := args.Get(0).(*domain.DailyReport)
	return out, args.Error(1)
}
