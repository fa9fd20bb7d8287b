package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInsufficientPrivilege  = errors.New("insufficient database privilege for this operation")
	ErrIncompleteResult       = errors.New("procedure returned an incomplete result")
	ErrInconsistentResult     = errors.New("procedure returned an inconsistent result")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrPasswordChangeRejected = errors.New("password change rejected")
	ErrLoginThrottled         = errors.New("too many login attempts, try again later")
	ErrRegistrationRejected   = errors.New("registration rejected")
	ErrRoleChangeRejected     = errors.New("role change rejected")
)

// ============================================================
// Authentication errors
// ============================================================

// AuthErrorKind distinguishes why authentication failed
type AuthErrorKind int

const (
	AuthMissingToken AuthErrorKind = iota + 1
	AuthInvalidSession
	AuthSessionExpired
	AuthNoRoleAssigned
	AuthNoCredentialMapping
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthMissingToken:
		return "missing_token"
	case AuthInvalidSession:
		return "invalid_session"
	case AuthSessionExpired:
		return "session_expired"
	case AuthNoRoleAssigned:
		return "no_role_assigned"
	case AuthNoCredentialMapping:
		return "no_credential_mapping"
	}
	return "unknown"
}

// RequiresLogin reports whether the caller has to authenticate again
func (k AuthErrorKind) RequiresLogin() bool {
	return k == AuthMissingToken || k == AuthInvalidSession || k == AuthSessionExpired
}

// Misconfiguration reports whether the failure points at a role or credential setup gap
func (k AuthErrorKind) Misconfiguration() bool {
	return k == AuthNoRoleAssigned || k == AuthNoCredentialMapping
}

// AuthError is returned by the authentication gate
type AuthError struct {
	Kind    AuthErrorKind
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s: %s", e.Kind, e.Message)
}

// Is matches on kind only
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

// NewAuthError creates an AuthError
func NewAuthError(kind AuthErrorKind, message string) *AuthError {
	return &AuthError{Kind: kind, Message: message}
}

// Auth sentinels for errors.Is
var (
	ErrMissingToken        = &AuthError{Kind: AuthMissingToken, Message: "session token required"}
	ErrInvalidSession      = &AuthError{Kind: AuthInvalidSession, Message: "Invalid session. Please login again."}
	ErrSessionExpired      = &AuthError{Kind: AuthSessionExpired, Message: "Session expired or invalid"}
	ErrNoRoleAssigned      = &AuthError{Kind: AuthNoRoleAssigned, Message: "No valid role found for user"}
	ErrNoCredentialMapping = &AuthError{Kind: AuthNoCredentialMapping, Message: "No database principal mapped for your role"}
)

// ============================================================
// Procedure errors
// ============================================================

// Band groups procedure error codes by the area that raised them
type Band int

const (
	BandUnknown Band = iota
	BandPatron
	BandCirculation
	BandReservation
	BandFine
)

func (b Band) String() string {
	switch b {
	case BandPatron:
		return "patron"
	case BandCirculation:
		return "circulation"
	case BandReservation:
		return "reservation"
	case BandFine:
		return "fine"
	}
	return "unknown"
}

// Procedure error codes raised with SIGNAL ... MYSQL_ERRNO
const (
	CodePatronNotFound      = 20101
	CodePatronNotEligible   = 20102
	CodeBorrowLimitReached  = 20103
	CodeDuplicateCardNumber = 20104

	CodeCopyNotAvailable   = 20201
	CodeLoanNotFound       = 20202
	CodeMaxRenewalsReached = 20203
	CodeLoanNotActive      = 20204
	CodeCopyNotFound       = 20205

	CodeReservationNotFound   = 20301
	CodeDuplicateReservation  = 20302
	CodeReservationNotPending = 20303
	CodeReservationNotOwned   = 20304
	CodeMaterialNotFound      = 20305

	CodeFineNotFound          = 20401
	CodePaymentExceedsBalance = 20402
	CodeFineAlreadySettled    = 20403
	CodeInvalidAmount         = 20404
)

const (
	procedureCodeMin = 20000
	procedureCodeMax = 20999
)

var procedureMessages = map[int]string{
	CodePatronNotFound:      "Patron not found",
	CodePatronNotEligible:   "Patron is not eligible to borrow",
	CodeBorrowLimitReached:  "Patron has reached the borrowing limit",
	CodeDuplicateCardNumber: "Library card number already exists",

	CodeCopyNotAvailable:   "Copy is not available for checkout",
	CodeLoanNotFound:       "Loan not found",
	CodeMaxRenewalsReached: "Maximum number of renewals reached",
	CodeLoanNotActive:      "Loan is not active",
	CodeCopyNotFound:       "Copy not found",

	CodeReservationNotFound:   "Reservation not found",
	CodeDuplicateReservation:  "Patron already holds a reservation for this material",
	CodeReservationNotPending: "Reservation is not pending",
	CodeReservationNotOwned:   "Reservation does not belong to this patron",
	CodeMaterialNotFound:      "Material not found",

	CodeFineNotFound:          "Fine not found",
	CodePaymentExceedsBalance: "Payment exceeds the outstanding balance",
	CodeFineAlreadySettled:    "Fine is already paid or waived",
	CodeInvalidAmount:         "Amount must be greater than zero",
}

var notFoundCodes = map[int]bool{
	CodePatronNotFound:      true,
	CodeLoanNotFound:        true,
	CodeCopyNotFound:        true,
	CodeReservationNotFound: true,
	CodeMaterialNotFound:    true,
	CodeFineNotFound:        true,
}

// IsProcedureCode reports whether code lies in the procedure error range
func IsProcedureCode(code int) bool {
	return code >= procedureCodeMin && code <= procedureCodeMax
}

// BandOf classifies a procedure error code
func BandOf(code int) Band {
	if !IsProcedureCode(code) {
		return BandUnknown
	}
	switch (code / 100) % 10 {
	case 1:
		return BandPatron
	case 2:
		return BandCirculation
	case 3:
		return BandReservation
	case 4:
		return BandFine
	}
	return BandUnknown
}

// DomainError is a business rule violation signalled by a procedure
type DomainError struct {
	Code   int
	Detail string
}

// NewDomainError creates a DomainError for code
func NewDomainError(code int, detail string) *DomainError {
	return &DomainError{Code: code, Detail: detail}
}

// Band returns the error band of the code
func (e *DomainError) Band() Band {
	return BandOf(e.Code)
}

// Message is the stable, user-presentable text for the code
func (e *DomainError) Message() string {
	if msg, ok := procedureMessages[e.Code]; ok {
		return msg
	}
	if e.Detail != "" {
		return e.Detail
	}
	return "Request violates a library rule"
}

// NotFound reports whether the code means a referenced record is missing
func (e *DomainError) NotFound() bool {
	return notFoundCodes[e.Code]
}

func (e *DomainError) Error() string {
	if e.Detail != "" && e.Detail != e.Message() {
		return fmt.Sprintf("%s error %d: %s (%s)", e.Band(), e.Code, e.Message(), e.Detail)
	}
	return fmt.Sprintf("%s error %d: %s", e.Band(), e.Code, e.Message())
}

// Is matches on code only
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// Domain error sentinels for errors.Is
var (
	ErrPatronNotFound      = NewDomainError(CodePatronNotFound, "")
	ErrPatronNotEligible   = NewDomainError(CodePatronNotEligible, "")
	ErrBorrowLimitReached  = NewDomainError(CodeBorrowLimitReached, "")
	ErrDuplicateCardNumber = NewDomainError(CodeDuplicateCardNumber, "")

	ErrCopyNotAvailable   = NewDomainError(CodeCopyNotAvailable, "")
	ErrLoanNotFound       = NewDomainError(CodeLoanNotFound, "")
	ErrMaxRenewalsReached = NewDomainError(CodeMaxRenewalsReached, "")
	ErrLoanNotActive      = NewDomainError(CodeLoanNotActive, "")
	ErrCopyNotFound       = NewDomainError(CodeCopyNotFound, "")

	ErrReservationNotFound   = NewDomainError(CodeReservationNotFound, "")
	ErrDuplicateReservation  = NewDomainError(CodeDuplicateReservation, "")
	ErrReservationNotPending = NewDomainError(CodeReservationNotPending, "")
	ErrReservationNotOwned   = NewDomainError(CodeReservationNotOwned, "")
	ErrMaterialNotFound      = NewDomainError(CodeMaterialNotFound, "")

	ErrFineNotFound          = NewDomainError(CodeFineNotFound, "")
	ErrPaymentExceedsBalance = NewDomainError(CodePaymentExceedsBalance, "")
	ErrFineAlreadySettled    = NewDomainError(CodeFineAlreadySettled, "")
	ErrInvalidAmount         = NewDomainError(CodeInvalidAmount, "")
)

// ============================================================
// Infrastructure errors
// ============================================================

// ConnectivityError means the database could not be reached or the
// connection was lost mid-call. It is never retried.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("database connectivity failure during %s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// IntegrityError is a constraint violation outside the procedure bands
type IntegrityError struct {
	Code   int
	Detail string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation %d: %s", e.Code, e.Detail)
}

// Rejection is an account operation the database refused with a message
// meant for the user (wrong password, duplicate email)
type Rejection struct {
	Err     error
	Message string
}

func (e *Rejection) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *Rejection) Unwrap() error {
	return e.Err
}
