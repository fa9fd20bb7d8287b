package services

import (
	"context"

	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"
	"libris/internal/pkg/pagination"
)

// Note: the authentication gate implements Authenticator (auth_gate.go)

// AccountService is the administrative-path surface used by the auth handler
type AccountService interface {
	Login(ctx context.Context, username, password string) (*domain.LoginResult, error)
	Logout(ctx context.Context, token string) error
	ValidateSession(ctx context.Context, token string) (*domain.SessionValidation, error)
	Register(ctx context.Context, in RegisterInput) (*domain.Registration, error)
	ChangePassword(ctx context.Context, auth *domain.AuthenticatedContext, oldPassword, newPassword string) error
	Me(auth *domain.AuthenticatedContext) *domain.AuthenticatedContext
}

// Circulation is the loan lifecycle surface
type Circulation interface {
	Checkout(ctx context.Context, auth *domain.AuthenticatedContext, patronID, copyID, staffID int64) (*domain.CheckoutResult, error)
	Checkin(ctx context.Context, auth *domain.AuthenticatedContext, loanID, staffID int64) (*domain.CheckinResult, error)
	Renew(ctx context.Context, auth *domain.AuthenticatedContext, loanID int64) (*domain.RenewalResult, error)
	DeclareLost(ctx context.Context, auth *domain.AuthenticatedContext, loanID, staffID int64, replacementCost float64) (*domain.LossResult, error)
	GetLoan(ctx context.Context, auth *domain.AuthenticatedContext, loanID int64) (*domain.Loan, error)
}

// ReservationQueue is the hold queue surface
type ReservationQueue interface {
	Place(ctx context.Context, auth *domain.AuthenticatedContext, materialID, patronID int64) (*domain.PlacementResult, error)
	Cancel(ctx context.Context, auth *domain.AuthenticatedContext, reservationID, patronID int64) error
	Fulfill(ctx context.Context, auth *domain.AuthenticatedContext, reservationID, copyID, staffID int64) (*domain.FulfillmentResult, error)
	Get(ctx context.Context, auth *domain.AuthenticatedContext, reservationID int64) (*domain.Reservation, error)
	ListActive(ctx context.Context, auth *domain.AuthenticatedContext, patronID int64, params *pagination.Params) ([]*domain.Reservation, int64, error)
}

// Fines is the fine surface
type Fines interface {
	Assess(ctx context.Context, auth *domain.AuthenticatedContext, in AssessInput) (int64, error)
	Waive(ctx context.Context, auth *domain.AuthenticatedContext, fineID int64, reason string, staffID int64) (*domain.WaiverResult, error)
	Pay(ctx context.Context, auth *domain.AuthenticatedContext, fineID int64, amount float64, method domain.PaymentMethod, staffID int64) (*domain.PaymentResult, error)
	Get(ctx context.Context, auth *domain.AuthenticatedContext, fineID int64) (*domain.Fine, error)
}

// Patrons is the membership surface
type Patrons interface {
	RenewMembership(ctx context.Context, auth *domain.AuthenticatedContext, patronID int64) (*domain.MembershipRenewal, error)
	Suspend(ctx context.Context, auth *domain.AuthenticatedContext, patronID int64, reason string, staffID int64) error
	Reactivate(ctx context.Context, auth *domain.AuthenticatedContext, patronID, staffID int64) error
	Enroll(ctx context.Context, auth *domain.AuthenticatedContext, in EnrollInput) (*domain.PatronEnrollment, error)
	UpdateContact(ctx context.Context, auth *domain.AuthenticatedContext, patronID int64, in ContactUpdate) error
}

// Catalog is the material and copy surface
type Catalog interface {
	AddMaterial(ctx context.Context, auth *domain.AuthenticatedContext, in MaterialInput) (int64, error)
	AddCopy(ctx context.Context, auth *domain.AuthenticatedContext, materialID int64, in CopyInput) (int64, error)
	UpdateMaterial(ctx context.Context, auth *domain.AuthenticatedContext, materialID int64, in MaterialUpdate) error
	DeleteMaterial(ctx context.Context, auth *domain.AuthenticatedContext, materialID, staffID int64) error
	GetMaterial(ctx context.Context, auth *domain.AuthenticatedContext, materialID int64) (*domain.Material, error)
}

// UserAdmin is the account state and role assignment surface
type UserAdmin interface {
	Status(ctx context.Context, auth *domain.AuthenticatedContext, userID int64) (*domain.UserStatus, error)
	Roles(ctx context.Context, auth *domain.AuthenticatedContext, userID int64) (*domain.UserRoles, error)
	HasPermission(ctx context.Context, auth *domain.AuthenticatedContext, userID int64, code string) (bool, error)
	HasRole(ctx context.Context, auth *domain.AuthenticatedContext, userID int64, roleCode string) (bool, error)
	AssignRole(ctx context.Context, auth *domain.AuthenticatedContext, userID, roleID int64) error
	RevokeRole(ctx context.Context, auth *domain.AuthenticatedContext, userID, roleID int64) error
}

// Batch is the maintenance surface
type Batch interface {
	Run(ctx context.Context, auth *domain.AuthenticatedContext, job repositories.BatchJob) (*domain.BatchResult, error)
	DailyReport(ctx context.Context, auth *domain.AuthenticatedContext, branchID *int64) (*domain.DailyReport, error)
}

var (
	_ Authenticator    = (*AuthenticationGate)(nil)
	_ AccountService   = (*AuthService)(nil)
	_ Circulation      = (*CirculationService)(nil)
	_ ReservationQueue = (*ReservationService)(nil)
	_ Fines            = (*FineEngine)(nil)
	_ Patrons          = (*PatronService)(nil)
	_ Catalog          = (*CatalogService)(nil)
	_ UserAdmin        = (*UserAdminService)(nil)
	_ Batch            = (*BatchService)(nil)
)
