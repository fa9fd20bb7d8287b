package services

import (
	"context"
	"time"

	"libris/internal/adapters/persistence/models"
	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// ============================================================
// Broker
// ============================================================

// fakeBroker runs fn inline and records which principals were used
type fakeBroker struct {
	principals []string
	err        error
}

func (b *fakeBroker) WithConnection(ctx context.Context, cred domain.DatabaseCredential, fn func(ctx context.Context, db *gorm.DB) error) error {
	b.principals = append(b.principals, cred.Principal)
	if b.err != nil {
		return b.err
	}
	return fn(ctx, nil)
}

// ============================================================
// Repositories
// ============================================================

type mockSessionRepo struct{ mock.Mock }

func (m *mockSessionRepo) FindByToken(ctx context.Context, token string) (*models.SessionWithUser, error) {
	args := m.Called(ctx, token)
	row, _ := args.Get(0).(*models.SessionWithUser)
	return row, args.Error(1)
}

func (m *mockSessionRepo) Validate(ctx context.Context, token string) (*models.ValidateSessionOut, error) {
	args := m.Called(ctx, token)
	out, _ := args.Get(0).(*models.ValidateSessionOut)
	return out, args.Error(1)
}

func (m *mockSessionRepo) Authenticate(ctx context.Context, username, password string) (*models.AuthenticateOut, error) {
	args := m.Called(ctx, username, password)
	out, _ := args.Get(0).(*models.AuthenticateOut)
	return out, args.Error(1)
}

func (m *mockSessionRepo) Logout(ctx context.Context, token string) (*models.StatusOut, error) {
	args := m.Called(ctx, token)
	out, _ := args.Get(0).(*models.StatusOut)
	return out, args.Error(1)
}

type mockAccountRepo struct{ mock.Mock }

func (m *mockAccountRepo) RegisterPatron(ctx context.Context, params repositories.RegisterPatronParams) (*models.RegisterPatronOut, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*models.RegisterPatronOut)
	return out, args.Error(1)
}

func (m *mockAccountRepo) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (*models.StatusOut, error) {
	args := m.Called(ctx, userID, oldPassword, newPassword)
	out, _ := args.Get(0).(*models.StatusOut)
	return out, args.Error(1)
}

type mockRoleRepo struct{ mock.Mock }

func (m *mockRoleRepo) ActiveRoleCodes(ctx context.Context, userID int64) ([]string, error) {
	args := m.Called(ctx, userID)
	codes, _ := args.Get(0).([]string)
	return codes, args.Error(1)
}

type mockStaffRepo struct{ mock.Mock }

func (m *mockStaffRepo) StaffIDForUser(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockCirculationRepo struct{ mock.Mock }

func (m *mockCirculationRepo) Checkout(ctx context.Context, patronID, copyID, staffID int64) (*models.CheckoutOut, error) {
	args := m.Called(ctx, patronID, copyID, staffID)
	out, _ := args.Get(0).(*models.CheckoutOut)
	return out, args.Error(1)
}

func (m *mockCirculationRepo) Checkin(ctx context.Context, loanID, staffID int64) (*models.CheckinOut, error) {
	args := m.Called(ctx, loanID, staffID)
	out, _ := args.Get(0).(*models.CheckinOut)
	return out, args.Error(1)
}

func (m *mockCirculationRepo) Renew(ctx context.Context, loanID int64) (*models.RenewLoanOut, error) {
	args := m.Called(ctx, loanID)
	out, _ := args.Get(0).(*models.RenewLoanOut)
	return out, args.Error(1)
}

func (m *mockCirculationRepo) DeclareLost(ctx context.Context, loanID, staffID int64, replacementCost float64) (*models.DeclareLostOut, error) {
	args := m.Called(ctx, loanID, staffID, replacementCost)
	out, _ := args.Get(0).(*models.DeclareLostOut)
	return out, args.Error(1)
}

func (m *mockCirculationRepo) GetLoan(ctx context.Context, loanID int64) (*models.Loan, error) {
	args := m.Called(ctx, loanID)
	out, _ := args.Get(0).(*models.Loan)
	return out, args.Error(1)
}

type mockReservationRepo struct{ mock.Mock }

func (m *mockReservationRepo) Place(ctx context.Context, materialID, patronID int64) (*models.PlaceReservationOut, error) {
	args := m.Called(ctx, materialID, patronID)
	out, _ := args.Get(0).(*models.PlaceReservationOut)
	return out, args.Error(1)
}

func (m *mockReservationRepo) Cancel(ctx context.Context, reservationID, patronID int64) error {
	return m.Called(ctx, reservationID, patronID).Error(0)
}

func (m *mockReservationRepo) Fulfill(ctx context.Context, reservationID, copyID, staffID int64) (*models.FulfillReservationOut, error) {
	args := m.Called(ctx, reservationID, copyID, staffID)
	out, _ := args.Get(0).(*models.FulfillReservationOut)
	return out, args.Error(1)
}

func (m *mockReservationRepo) PickupDeadline(ctx context.Context, reservationID int64) (*time.Time, error) {
	args := m.Called(ctx, reservationID)
	out, _ := args.Get(0).(*time.Time)
	return out, args.Error(1)
}

func (m *mockReservationRepo) GetByID(ctx context.Context, reservationID int64) (*models.Reservation, error) {
	args := m.Called(ctx, reservationID)
	out, _ := args.Get(0).(*models.Reservation)
	return out, args.Error(1)
}

func (m *mockReservationRepo) ListActiveByPatron(ctx context.Context, patronID int64, offset, limit int) ([]*models.Reservation, int64, error) {
	args := m.Called(ctx, patronID, offset, limit)
	rows, _ := args.Get(0).([]*models.Reservation)
	return rows, args.Get(1).(int64), args.Error(2)
}

type mockFineRepo struct{ mock.Mock }

func (m *mockFineRepo) Assess(ctx context.Context, params repositories.AssessFineParams) (*models.AssessFineOut, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*models.AssessFineOut)
	return out, args.Error(1)
}

func (m *mockFineRepo) Waive(ctx context.Context, fineID int64, reason string, staffID int64) (*models.WaiveFineOut, error) {
	args := m.Called(ctx, fineID, reason, staffID)
	out, _ := args.Get(0).(*models.WaiveFineOut)
	return out, args.Error(1)
}

func (m *mockFineRepo) Pay(ctx context.Context, fineID int64, amount float64, method string, staffID int64) (*models.PayFineOut, error) {
	args := m.Called(ctx, fineID, amount, method, staffID)
	out, _ := args.Get(0).(*models.PayFineOut)
	return out, args.Error(1)
}

func (m *mockFineRepo) GetByID(ctx context.Context, fineID int64) (*models.Fine, error) {
	args := m.Called(ctx, fineID)
	out, _ := args.Get(0).(*models.Fine)
	return out, args.Error(1)
}

type mockPatronRepo struct{ mock.Mock }

func (m *mockPatronRepo) RenewMembership(ctx context.Context, patronID int64) (*models.RenewMembershipOut, error) {
	args := m.Called(ctx, patronID)
	out, _ := args.Get(0).(*models.RenewMembershipOut)
	return out, args.Error(1)
}

func (m *mockPatronRepo) Suspend(ctx context.Context, patronID int64, reason string, staffID int64) error {
	return m.Called(ctx, patronID, reason, staffID).Error(0)
}

func (m *mockPatronRepo) Reactivate(ctx context.Context, patronID, staffID int64) error {
	return m.Called(ctx, patronID, staffID).Error(0)
}

func (m *mockPatronRepo) Add(ctx context.Context, params repositories.AddPatronParams) (*models.AddPatronOut, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*models.AddPatronOut)
	return out, args.Error(1)
}

func (m *mockPatronRepo) Update(ctx context.Context, params repositories.UpdatePatronParams) error {
	return m.Called(ctx, params).Error(0)
}

type mockCatalogRepo struct{ mock.Mock }

func (m *mockCatalogRepo) AddMaterial(ctx context.Context, params repositories.AddMaterialParams) (*models.AddMaterialOut, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*models.AddMaterialOut)
	return out, args.Error(1)
}

func (m *mockCatalogRepo) AddCopy(ctx context.Context, params repositories.AddCopyParams) (*models.AddCopyOut, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*models.AddCopyOut)
	return out, args.Error(1)
}

func (m *mockCatalogRepo) UpdateMaterial(ctx context.Context, params repositories.UpdateMaterialParams) error {
	return m.Called(ctx, params).Error(0)
}

func (m *mockCatalogRepo) DeleteMaterial(ctx context.Context, materialID, staffID int64) error {
	return m.Called(ctx, materialID, staffID).Error(0)
}

func (m *mockCatalogRepo) GetMaterial(ctx context.Context, materialID int64) (*models.Material, error) {
	args := m.Called(ctx, materialID)
	out, _ := args.Get(0).(*models.Material)
	return out, args.Error(1)
}

type mockUserAdminRepo struct{ mock.Mock }

func (m *mockUserAdminRepo) IsActive(ctx context.Context, userID int64) (*models.FlagValue, error) {
	res := m.Called(ctx, userID)
	out, _ := res.Get(0).(*models.FlagValue)
	return out, res.Error(1)
}

func (m *mockUserAdminRepo) IsLocked(ctx context.Context, userID int64) (*models.FlagValue, error) {
	res := m.Called(ctx, userID)
	out, _ := res.Get(0).(*models.FlagValue)
	return out, res.Error(1)
}

func (m *mockUserAdminRepo) RoleList(ctx context.Context, userID int64) (*models.TextValue, error) {
	res := m.Called(ctx, userID)
	out, _ := res.Get(0).(*models.TextValue)
	return out, res.Error(1)
}

func (m *mockUserAdminRepo) HasPermission(ctx context.Context, userID int64, code string) (*models.FlagValue, error) {
	res := m.Called(ctx, userID, code)
	out, _ := res.Get(0).(*models.FlagValue)
	return out, res.Error(1)
}

func (m *mockUserAdminRepo) HasRole(ctx context.Context, userID int64, roleCode string) (*models.FlagValue, error) {
	res := m.Called(ctx, userID, roleCode)
	out, _ := res.Get(0).(*models.FlagValue)
	return out, res.Error(1)
}

func (m *mockUserAdminRepo) AssignRole(ctx context.Context, userID, roleID, assignedBy int64) (*models.StatusOut, error) {
	res := m.Called(ctx, userID, roleID, assignedBy)
	out, _ := res.Get(0).(*models.StatusOut)
	return out, res.Error(1)
}

func (m *mockUserAdminRepo) RevokeRole(ctx context.Context, userID, roleID int64) (*models.StatusOut, error) {
	res := m.Called(ctx, userID, roleID)
	out, _ := res.Get(0).(*models.StatusOut)
	return out, res.Error(1)
}

type mockBatchRepo struct{ mock.Mock }

func (m *mockBatchRepo) Run(ctx context.Context, job repositories.BatchJob) (*models.BatchOut, error) {
	args := m.Called(ctx, job)
	out, _ := args.Get(0).(*models.BatchOut)
	return out, args.Error(1)
}

func (m *mockBatchRepo) DailyReport(ctx context.Context, branchID *int64) (*models.DailyReportOut, error) {
	args := m.Called(ctx, branchID)
	out, _ := args.Get(0).(*models.DailyReportOut)
	return out, args.Error(1)
}

// ============================================================
// Helpers
// ============================================================

func ptr[T any](v T) *T {
	return &v
}

func clerkContext() *domain.AuthenticatedContext {
	return &domain.AuthenticatedContext{
		UserID:     1,
		Username:   "clerk",
		ActingRole: domain.RoleCirculationClerk,
		Credential: domain.DatabaseCredential{Principal: "user_clerk", Secret: "x"},
		Roles:      domain.NewRoleSet(domain.RoleCirculationClerk),
	}
}
