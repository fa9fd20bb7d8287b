package models

import "time"

// Procedure OUT parameters are read back into these rows. Every field is
// a pointer: a NULL output must be detectable so callers never build a
// partial result from it.

// AuthenticateOut holds sp_authenticate_user outputs
type AuthenticateOut struct {
	SessionID *string `gorm:"column:session_id"`
	UserID    *int64  `gorm:"column:user_id"`
	Success   *int    `gorm:"column:success"`
	Message   *string `gorm:"column:message"`
}

// ValidateSessionOut holds sp_validate_session outputs
type ValidateSessionOut struct {
	IsValid *int    `gorm:"column:is_valid"`
	UserID  *int64  `gorm:"column:user_id"`
	Message *string `gorm:"column:message"`
}

// StatusOut holds the success/message pair most account procedures return
type StatusOut struct {
	Success *int    `gorm:"column:success"`
	Message *string `gorm:"column:message"`
}

// RegisterPatronOut holds sp_register_patron outputs
type RegisterPatronOut struct {
	UserID     *int64  `gorm:"column:user_id"`
	PatronID   *int64  `gorm:"column:patron_id"`
	CardNumber *string `gorm:"column:card_number"`
	Success    *int    `gorm:"column:success"`
	Message    *string `gorm:"column:message"`
}

// CheckoutOut holds sp_checkout_item outputs
type CheckoutOut struct {
	LoanID  *int64     `gorm:"column:loan_id"`
	DueDate *time.Time `gorm:"column:due_date"`
}

// CheckinOut holds sp_checkin_item outputs
type CheckinOut struct {
	FineAssessed *float64 `gorm:"column:fine_assessed"`
}

// RenewLoanOut holds sp_renew_loan outputs
type RenewLoanOut struct {
	NewDueDate   *time.Time `gorm:"column:new_due_date"`
	RenewalCount *int       `gorm:"column:renewal_count"`
}

// DeclareLostOut holds sp_declare_item_lost outputs
type DeclareLostOut struct {
	FineID *int64 `gorm:"column:fine_id"`
}

// PlaceReservationOut holds sp_place_reservation outputs
type PlaceReservationOut struct {
	ReservationID *int64 `gorm:"column:reservation_id"`
	QueuePosition *int   `gorm:"column:queue_position"`
}

// FulfillReservationOut holds sp_fulfill_reservation outputs
type FulfillReservationOut struct {
	PickupDeadline *time.Time `gorm:"column:pickup_deadline"`
}

// AssessFineOut holds sp_assess_fine outputs
type AssessFineOut struct {
	FineID *int64 `gorm:"column:fine_id"`
}

// WaiveFineOut holds sp_waive_fine outputs
type WaiveFineOut struct {
	WaivedAmount *float64 `gorm:"column:waived_amount"`
}

// PayFineOut holds sp_pay_fine outputs
type PayFineOut struct {
	RemainingBalance *float64 `gorm:"column:remaining_balance"`
	NewStatus        *string  `gorm:"column:new_status"`
}

// RenewMembershipOut holds sp_renew_membership outputs
type RenewMembershipOut struct {
	NewExpiryDate *time.Time `gorm:"column:new_expiry_date"`
}

// BatchOut holds the processed count of a maintenance procedure
type BatchOut struct {
	ProcessedCount *int64 `gorm:"column:processed_count"`
}

// AddPatronOut holds sp_add_patron outputs
type AddPatronOut struct {
	PatronID         *int64     `gorm:"column:patron_id"`
	MembershipExpiry *time.Time `gorm:"column:membership_expiry"`
}

// DailyReportOut holds sp_generate_daily_report outputs
type DailyReportOut struct {
	Checkouts  *int64   `gorm:"column:checkouts"`
	Returns    *int64   `gorm:"column:returns"`
	NewPatrons *int64   `gorm:"column:new_patrons"`
	Overdue    *int64   `gorm:"column:overdue"`
	TotalFines *float64 `gorm:"column:total_fines"`
}

// AddMaterialOut holds sp_add_material outputs
type AddMaterialOut struct {
	MaterialID *int64 `gorm:"column:material_id"`
}

// AddCopyOut holds sp_add_copy outputs
type AddCopyOut struct {
	CopyID *int64 `gorm:"column:copy_id"`
}

// FlagValue holds a stored function returning 0 or 1
type FlagValue struct {
	Value *int `gorm:"column:value"`
}

// TextValue holds a stored function returning a string
type TextValue struct {
	Value *string `gorm:"column:value"`
}
