package domain

import (
	"fmt"
	"time"
)

// SessionStatus mirrors session_management.session_status
type SessionStatus string

const (
	SessionActive    SessionStatus = "ACTIVE"
	SessionExpired   SessionStatus = "EXPIRED"
	SessionLoggedOut SessionStatus = "LOGGED_OUT"
)

// Session is a server-side session bound to an opaque token
type Session struct {
	Token            string
	UserID           int64
	Username         string
	Status           SessionStatus
	LoginTime        time.Time
	LastActivityTime time.Time
	TimeoutMinutes   int
}

// SessionValidation is the outcome of the session validation procedure
type SessionValidation struct {
	Valid   bool
	UserID  int64
	Message string
}

// DatabaseCredential is the principal a role connects as
type DatabaseCredential struct {
	Principal string
	Secret    string `json:"-"`
}

// String never prints the secret.
func (c DatabaseCredential) String() string {
	return fmt.Sprintf("DatabaseCredential{Principal: %s}", c.Principal)
}

// GoString keeps %#v from printing the secret too.
func (c DatabaseCredential) GoString() string {
	return c.String()
}

// AuthenticatedContext is built once per request by the authentication gate
// and passed explicitly to every protected operation.
type AuthenticatedContext struct {
	UserID        int64              `json:"user_id"`
	Username      string             `json:"username"`
	ActingRole    Role               `json:"acting_role"`
	Credential    DatabaseCredential `json:"-"`
	Roles         RoleSet            `json:"roles"`
	StaffID       int64              `json:"staff_id,omitempty"`
	SessionStatus SessionStatus      `json:"session_status"`
}

// Principal is the database user this request runs as
func (a *AuthenticatedContext) Principal() string {
	return a.Credential.Principal
}

// IsStaff reports whether any held role is a staff role
func (a *AuthenticatedContext) IsStaff() bool {
	return a.Roles.Any(Role.IsStaff)
}

// HasStaffRecord reports whether the caller is linked to a staff row
func (a *AuthenticatedContext) HasStaffRecord() bool {
	return a.StaffID > 0
}

// IsAdministrative reports whether any held role is administrative
func (a *AuthenticatedContext) IsAdministrative() bool {
	return a.Roles.Any(Role.IsAdministrative)
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token  string
	UserID int64
}

// Registration is the outcome of patron self-registration
type Registration struct {
	UserID     int64  `json:"user_id"`
	PatronID   int64  `json:"patron_id"`
	CardNumber string `json:"card_number"`
}

// ============================================================
// Circulation
// ============================================================

// LoanStatus represents the lifecycle state of a loan
type LoanStatus string

const (
	LoanActive   LoanStatus = "Active"
	LoanReturned LoanStatus = "Returned"
	LoanOverdue  LoanStatus = "Overdue"
	LoanLost     LoanStatus = "Lost"
)

// MaxRenewals is the renewal ceiling enforced by the database
const MaxRenewals = 5

// Loan represents one borrowed copy
type Loan struct {
	LoanID       int64      `json:"loan_id"`
	PatronID     int64      `json:"patron_id"`
	CopyID       int64      `json:"copy_id"`
	CheckoutDate time.Time  `json:"checkout_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
	RenewalCount int        `json:"renewal_count"`
	Status       LoanStatus `json:"status"`
}

// CheckoutResult is returned by checkout
type CheckoutResult struct {
	LoanID  int64     `json:"loan_id"`
	DueDate time.Time `json:"due_date"`
}

// CheckinResult is returned by checkin
type CheckinResult struct {
	LoanID       int64   `json:"loan_id"`
	FineAssessed float64 `json:"fine_assessed"`
}

// RenewalResult is returned by renew
type RenewalResult struct {
	LoanID       int64     `json:"loan_id"`
	NewDueDate   time.Time `json:"new_due_date"`
	RenewalCount int       `json:"renewal_count"`
}

// LossResult is returned by a loss declaration
type LossResult struct {
	LoanID          int64   `json:"loan_id"`
	FineID          int64   `json:"fine_id"`
	ReplacementCost float64 `json:"replacement_cost"`
}

// ============================================================
// Reservations
// ============================================================

// ReservationStatus represents the state of a hold
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "Pending"
	ReservationReady     ReservationStatus = "Ready"
	ReservationFulfilled ReservationStatus = "Fulfilled"
	ReservationExpired   ReservationStatus = "Expired"
	ReservationCancelled ReservationStatus = "Cancelled"
)

// Reservation represents a hold in a material's queue
type Reservation struct {
	ReservationID   int64             `json:"reservation_id"`
	MaterialID      int64             `json:"material_id"`
	PatronID        int64             `json:"patron_id"`
	ReservationDate time.Time         `json:"reservation_date"`
	Status          ReservationStatus `json:"status"`
	QueuePosition   int               `json:"queue_position"`
	PickupDeadline  *time.Time        `json:"pickup_deadline,omitempty"`
}

// PlacementResult is returned by placing a hold
type PlacementResult struct {
	ReservationID int64 `json:"reservation_id"`
	QueuePosition int   `json:"queue_position"`
}

// FulfillmentResult is returned by fulfilling a hold
type FulfillmentResult struct {
	ReservationID  int64     `json:"reservation_id"`
	CopyID         int64     `json:"copy_id"`
	PickupDeadline time.Time `json:"pickup_deadline"`
}

// ============================================================
// Fines
// ============================================================

// FineType classifies a fine
type FineType string

const (
	FineOverdue       FineType = "Overdue"
	FineLostItem      FineType = "Lost Item"
	FineDamagedItem   FineType = "Damaged Item"
	FineProcessingFee FineType = "Processing Fee"
	FineLateFee       FineType = "Late Fee"
	FineOther         FineType = "Other"
)

// Valid reports whether t is a known fine type
func (t FineType) Valid() bool {
	switch t {
	case FineOverdue, FineLostItem, FineDamagedItem, FineProcessingFee, FineLateFee, FineOther:
		return true
	}
	return false
}

// FineStatus represents the settlement state of a fine
type FineStatus string

const (
	FineUnpaid        FineStatus = "Unpaid"
	FinePartiallyPaid FineStatus = "Partially Paid"
	FinePaid          FineStatus = "Paid"
	FineWaived        FineStatus = "Waived"
)

// Valid reports whether s is a known fine status
func (s FineStatus) Valid() bool {
	switch s {
	case FineUnpaid, FinePartiallyPaid, FinePaid, FineWaived:
		return true
	}
	return false
}

// PaymentMethod is how a fine was paid
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "Cash"
	PaymentCreditCard PaymentMethod = "Credit Card"
	PaymentDebitCard  PaymentMethod = "Debit Card"
	PaymentOnline     PaymentMethod = "Online"
	PaymentCheck      PaymentMethod = "Check"
)

// Valid reports whether m is an accepted payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentOnline, PaymentCheck:
		return true
	}
	return false
}

// Fine represents a charge against a patron
type Fine struct {
	FineID       int64      `json:"fine_id"`
	PatronID     int64      `json:"patron_id"`
	LoanID       *int64     `json:"loan_id,omitempty"`
	Type         FineType   `json:"fine_type"`
	AmountDue    float64    `json:"amount_due"`
	AmountPaid   float64    `json:"amount_paid"`
	Status       FineStatus `json:"status"`
	AssessedDate time.Time  `json:"assessed_date"`
}

// Balance is the outstanding amount
func (f *Fine) Balance() float64 {
	return f.AmountDue - f.AmountPaid
}

// PaymentResult is returned by a fine payment
type PaymentResult struct {
	FineID           int64      `json:"fine_id"`
	AmountPaid       float64    `json:"amount_paid"`
	RemainingBalance float64    `json:"remaining_balance"`
	Status           FineStatus `json:"status"`
}

// WaiverResult is returned by a fine waiver
type WaiverResult struct {
	FineID       int64   `json:"fine_id"`
	WaivedAmount float64 `json:"waived_amount"`
}

// ============================================================
// Patrons & batch jobs
// ============================================================

// MembershipRenewal is returned by renewing a membership
type MembershipRenewal struct {
	PatronID      int64     `json:"patron_id"`
	NewExpiryDate time.Time `json:"new_expiry_date"`
}

// BatchResult reports a maintenance job run
type BatchResult struct {
	Job       string    `json:"job"`
	Processed int64     `json:"processed"`
	RanAt     time.Time `json:"ran_at"`
}

// MembershipType is the membership category of a patron
type MembershipType string

const (
	MembershipStandard MembershipType = "Standard"
	MembershipStudent  MembershipType = "Student"
	MembershipChild    MembershipType = "Child"
	MembershipPremium  MembershipType = "Premium"
	MembershipVIP      MembershipType = "VIP"
)

// Valid reports whether t is a known membership type
func (t MembershipType) Valid() bool {
	switch t {
	case MembershipStandard, MembershipStudent, MembershipChild, MembershipPremium, MembershipVIP:
		return true
	}
	return false
}

// PatronEnrollment is returned by staff patron creation
type PatronEnrollment struct {
	PatronID         int64      `json:"patron_id"`
	MembershipExpiry *time.Time `json:"membership_expiry,omitempty"`
}

// DailyReport summarises one day of circulation, optionally per branch
type DailyReport struct {
	BranchID    *int64    `json:"branch_id,omitempty"`
	Checkouts   int64     `json:"checkouts"`
	Returns     int64     `json:"returns"`
	NewPatrons  int64     `json:"new_patrons"`
	Overdue     int64     `json:"overdue"`
	TotalFines  float64   `json:"total_fines"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ============================================================
// Catalog
// ============================================================

// MaterialType classifies a catalog entry
type MaterialType string

const (
	MaterialBook      MaterialType = "Book"
	MaterialEBook     MaterialType = "E-book"
	MaterialAudiobook MaterialType = "Audiobook"
	MaterialDVD       MaterialType = "DVD"
	MaterialCD        MaterialType = "CD"
	MaterialMagazine  MaterialType = "Magazine"
	MaterialJournal   MaterialType = "Journal"
	MaterialNewspaper MaterialType = "Newspaper"
	MaterialGame      MaterialType = "Game"
)

// Valid reports whether t is a known material type
func (t MaterialType) Valid() bool {
	switch t {
	case MaterialBook, MaterialEBook, MaterialAudiobook, MaterialDVD, MaterialCD,
		MaterialMagazine, MaterialJournal, MaterialNewspaper, MaterialGame:
		return true
	}
	return false
}

// Material is a catalog entry; copies are the lendable items
type Material struct {
	MaterialID      int64        `json:"material_id"`
	Title           string       `json:"title"`
	Subtitle        *string      `json:"subtitle,omitempty"`
	Type            MaterialType `json:"material_type"`
	ISBN            *string      `json:"isbn,omitempty"`
	PublicationYear *int         `json:"publication_year,omitempty"`
	Language        *string      `json:"language,omitempty"`
	Description     *string      `json:"description,omitempty"`
	TotalCopies     int          `json:"total_copies"`
	AvailableCopies int          `json:"available_copies"`
	DateAdded       time.Time    `json:"date_added"`
}

// ============================================================
// User administration
// ============================================================

// UserStatus is the account state of a user
type UserStatus struct {
	UserID   int64 `json:"user_id"`
	IsActive bool  `json:"is_active"`
	IsLocked bool  `json:"is_locked"`
}

// UserRoles lists the active role codes of a user
type UserRoles struct {
	UserID int64    `json:"user_id"`
	Roles  []string `json:"roles"`
}
