package repositories

import (
	"context"
	"time"

	"libris/internal/adapters/persistence/models"
)

// SessionRepository reads sessions and runs the session procedures.
// It is always bound to the administrative connection.
type SessionRepository interface {
	FindByToken(ctx context.Context, token string) (*models.SessionWithUser, error)
	Validate(ctx context.Context, token string) (*models.ValidateSessionOut, error)
	Authenticate(ctx context.Context, username, password string) (*models.AuthenticateOut, error)
	Logout(ctx context.Context, token string) (*models.StatusOut, error)
}

// AccountRepository runs account maintenance procedures
type AccountRepository interface {
	RegisterPatron(ctx context.Context, params RegisterPatronParams) (*models.RegisterPatronOut, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (*models.StatusOut, error)
}

// RoleRepository reads role assignments
type RoleRepository interface {
	ActiveRoleCodes(ctx context.Context, userID int64) ([]string, error)
}

// StaffRepository links user accounts to staff records
type StaffRepository interface {
	StaffIDForUser(ctx context.Context, userID int64) (int64, error)
}

// CirculationRepository runs loan procedures on a role connection
type CirculationRepository interface {
	Checkout(ctx context.Context, patronID, copyID, staffID int64) (*models.CheckoutOut, error)
	Checkin(ctx context.Context, loanID, staffID int64) (*models.CheckinOut, error)
	Renew(ctx context.Context, loanID int64) (*models.RenewLoanOut, error)
	DeclareLost(ctx context.Context, loanID, staffID int64, replacementCost float64) (*models.DeclareLostOut, error)
	GetLoan(ctx context.Context, loanID int64) (*models.Loan, error)
}

// ReservationRepository runs hold queue procedures on a role connection
type ReservationRepository interface {
	Place(ctx context.Context, materialID, patronID int64) (*models.PlaceReservationOut, error)
	Cancel(ctx context.Context, reservationID, patronID int64) error
	Fulfill(ctx context.Context, reservationID, copyID, staffID int64) (*models.FulfillReservationOut, error)
	PickupDeadline(ctx context.Context, reservationID int64) (*time.Time, error)
	GetByID(ctx context.Context, reservationID int64) (*models.Reservation, error)
	ListActiveByPatron(ctx context.Context, patronID int64, offset, limit int) ([]*models.Reservation, int64, error)
}

// FineRepository runs fine procedures on a role connection
type FineRepository interface {
	Assess(ctx context.Context, params AssessFineParams) (*models.AssessFineOut, error)
	Waive(ctx context.Context, fineID int64, reason string, staffID int64) (*models.WaiveFineOut, error)
	Pay(ctx context.Context, fineID int64, amount float64, method string, staffID int64) (*models.PayFineOut, error)
	GetByID(ctx context.Context, fineID int64) (*models.Fine, error)
}

// PatronRepository runs membership procedures on a role connection
type PatronRepository interface {
	RenewMembership(ctx context.Context, patronID int64) (*models.RenewMembershipOut, error)
	Suspend(ctx context.Context, patronID int64, reason string, staffID int64) error
	Reactivate(ctx context.Context, patronID, staffID int64) error
	Add(ctx context.Context, params AddPatronParams) (*models.AddPatronOut, error)
	Update(ctx context.Context, params UpdatePatronParams) error
}

// CatalogRepository runs material and copy procedures on a role connection
type CatalogRepository interface {
	AddMaterial(ctx context.Context, params AddMaterialParams) (*models.AddMaterialOut, error)
	AddCopy(ctx context.Context, params AddCopyParams) (*models.AddCopyOut, error)
	UpdateMaterial(ctx context.Context, params UpdateMaterialParams) error
	DeleteMaterial(ctx context.Context, materialID, staffID int64) error
	GetMaterial(ctx context.Context, materialID int64) (*models.Material, error)
}

// UserAdminRepository reads account state and maintains role
// assignments on a role connection
type UserAdminRepository interface {
	IsActive(ctx context.Context, userID int64) (*models.FlagValue, error)
	IsLocked(ctx context.Context, userID int64) (*models.FlagValue, error)
	RoleList(ctx context.Context, userID int64) (*models.TextValue, error)
	HasPermission(ctx context.Context, userID int64, permissionCode string) (*models.FlagValue, error)
	HasRole(ctx context.Context, userID int64, roleCode string) (*models.FlagValue, error)
	AssignRole(ctx context.Context, userID, roleID, assignedBy int64) (*models.StatusOut, error)
	RevokeRole(ctx context.Context, userID, roleID int64) (*models.StatusOut, error)
}

// BatchRepository runs maintenance procedures
type BatchRepository interface {
	Run(ctx context.Context, job BatchJob) (*models.BatchOut, error)
	DailyReport(ctx context.Context, branchID *int64) (*models.DailyReportOut, error)
}

// RegisterPatronParams are the inputs of sp_register_patron
type RegisterPatronParams struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	Phone       *string
	Address     *string
	DateOfBirth *time.Time
}

// AssessFineParams are the inputs of sp_assess_fine
type AssessFineParams struct {
	PatronID int64
	LoanID   *int64
	FineType string
	Amount   float64
	StaffID  int64
}

// AddPatronParams are the inputs of sp_add_patron
type AddPatronParams struct {
	CardNumber     string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Address        string
	DateOfBirth    time.Time
	MembershipType string
	BranchID       int64
}

// UpdatePatronParams are the inputs of sp_update_patron. Nil fields keep
// their current value.
type UpdatePatronParams struct {
	PatronID int64
	Email    *string
	Phone    *string
	Address  *string
}

// AddMaterialParams are the inputs of sp_add_material
type AddMaterialParams struct {
	Title           string
	Subtitle        *string
	MaterialType    string
	ISBN            *string
	PublicationYear int
	PublisherID     *int64
	Language        string
	Pages           *int
	Description     *string
	TotalCopies     int
}

// AddCopyParams are the inputs of sp_add_copy
type AddCopyParams struct {
	MaterialID       int64
	Barcode          string
	BranchID         int64
	AcquisitionPrice float64
}

// UpdateMaterialParams are the inputs of sp_update_material. Nil fields
// keep their current value.
type UpdateMaterialParams struct {
	MaterialID  int64
	Title       *string
	Description *string
	Language    *string
}

// BatchJob names a maintenance procedure
type BatchJob string

const (
	JobOverdueNotifications BatchJob = "process_overdue_notifications"
	JobExpireMemberships    BatchJob = "expire_memberships"
	JobCleanupReservations  BatchJob = "cleanup_expired_reservations"
)

// BatchJobs lists every maintenance job in run order
var BatchJobs = []BatchJob{JobOverdueNotifications, JobExpireMemberships, JobCleanupReservations}

// Procedure returns the stored procedure behind the job
func (j BatchJob) Procedure() string {
	return "sp_" + string(j)
}

// Valid reports whether j is a known job
func (j BatchJob) Valid() bool {
	for _, known := range BatchJobs {
		if j == known {
			return true
		}
	}
	return false
}
