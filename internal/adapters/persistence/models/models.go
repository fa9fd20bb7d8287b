package models

import (
	"time"

	"libris/internal/core/domain"
)

// The schema and every write to it are owned by the database procedures.
// These models are read shapes only and are never migrated from Go.

// ============================================================
// Identity tables
// ============================================================

// User represents users table
type User struct {
	UserID    int64     `gorm:"column:user_id;primaryKey" json:"user_id"`
	Username  string    `gorm:"column:username" json:"username"`
	Email     string    `gorm:"column:email" json:"email"`
	FirstName *string   `gorm:"column:first_name" json:"first_name,omitempty"`
	LastName  *string   `gorm:"column:last_name" json:"last_name,omitempty"`
	IsActive  string    `gorm:"column:is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_date" json:"created_date"`
}

func (User) TableName() string {
	return "users"
}

// Role represents roles table
type Role struct {
	RoleID   int64  `gorm:"column:role_id;primaryKey"`
	RoleCode string `gorm:"column:role_code"`
	RoleName string `gorm:"column:role_name"`
	IsActive string `gorm:"column:is_active"`
}

func (Role) TableName() string {
	return "roles"
}

// UserRole represents user_roles table
type UserRole struct {
	UserID     int64      `gorm:"column:user_id;primaryKey"`
	RoleID     int64      `gorm:"column:role_id;primaryKey"`
	ExpiryDate *time.Time `gorm:"column:expiry_date"`
	IsActive   string     `gorm:"column:is_active"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// Session represents session_management table
type Session struct {
	SessionID        string     `gorm:"column:session_id;primaryKey"`
	UserID           int64      `gorm:"column:user_id"`
	LoginTime        time.Time  `gorm:"column:login_time"`
	LastActivityTime time.Time  `gorm:"column:last_activity_time"`
	LogoutTime       *time.Time `gorm:"column:logout_time"`
	SessionStatus    string     `gorm:"column:session_status"`
	TimeoutMinutes   *int       `gorm:"column:session_timeout_minutes"`
}

func (Session) TableName() string {
	return "session_management"
}

// SessionWithUser is the session lookup row joined with users
type SessionWithUser struct {
	Session
	Username string `gorm:"column:username"`
}

// DefaultSessionTimeoutMinutes applies when the column is NULL
const DefaultSessionTimeoutMinutes = 30

// ToDomain converts the row to a domain session
func (s *SessionWithUser) ToDomain() *domain.Session {
	timeout := DefaultSessionTimeoutMinutes
	if s.TimeoutMinutes != nil {
		timeout = *s.TimeoutMinutes
	}
	return &domain.Session{
		Token:            s.SessionID,
		UserID:           s.UserID,
		Username:         s.Username,
		Status:           domain.SessionStatus(s.SessionStatus),
		LoginTime:        s.LoginTime,
		LastActivityTime: s.LastActivityTime,
		TimeoutMinutes:   timeout,
	}
}

// ============================================================
// Circulation tables
// ============================================================

// Loan represents loans table
type Loan struct {
	LoanID          int64      `gorm:"column:loan_id;primaryKey"`
	PatronID        int64      `gorm:"column:patron_id"`
	CopyID          int64      `gorm:"column:copy_id"`
	CheckoutDate    time.Time  `gorm:"column:checkout_date"`
	DueDate         time.Time  `gorm:"column:due_date"`
	ReturnDate      *time.Time `gorm:"column:return_date"`
	RenewalCount    int        `gorm:"column:renewal_count"`
	LoanStatus      string     `gorm:"column:loan_status"`
	StaffIDCheckout int64      `gorm:"column:staff_id_checkout"`
	StaffIDReturn   *int64     `gorm:"column:staff_id_return"`
}

func (Loan) TableName() string {
	return "loans"
}

// ToDomain converts the row to a domain loan
func (l *Loan) ToDomain() *domain.Loan {
	return &domain.Loan{
		LoanID:       l.LoanID,
		PatronID:     l.PatronID,
		CopyID:       l.CopyID,
		CheckoutDate: l.CheckoutDate,
		DueDate:      l.DueDate,
		ReturnDate:   l.ReturnDate,
		RenewalCount: l.RenewalCount,
		Status:       domain.LoanStatus(l.LoanStatus),
	}
}

// Reservation represents reservations table
type Reservation struct {
	ReservationID     int64      `gorm:"column:reservation_id;primaryKey"`
	MaterialID        int64      `gorm:"column:material_id"`
	PatronID          int64      `gorm:"column:patron_id"`
	ReservationDate   time.Time  `gorm:"column:reservation_date"`
	NotificationDate  *time.Time `gorm:"column:notification_date"`
	PickupDeadline    *time.Time `gorm:"column:pickup_deadline"`
	ReservationStatus string     `gorm:"column:reservation_status"`
	QueuePosition     *int       `gorm:"column:queue_position"`
	FulfilledByCopyID *int64     `gorm:"column:fulfilled_by_copy_id"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// ToDomain converts the row to a domain reservation
func (r *Reservation) ToDomain() *domain.Reservation {
	out := &domain.Reservation{
		ReservationID:   r.ReservationID,
		MaterialID:      r.MaterialID,
		PatronID:        r.PatronID,
		ReservationDate: r.ReservationDate,
		Status:          domain.ReservationStatus(r.ReservationStatus),
		PickupDeadline:  r.PickupDeadline,
	}
	if r.QueuePosition != nil {
		out.QueuePosition = *r.QueuePosition
	}
	return out
}

// Fine represents fines table
type Fine struct {
	FineID            int64      `gorm:"column:fine_id;primaryKey"`
	PatronID          int64      `gorm:"column:patron_id"`
	LoanID            *int64     `gorm:"column:loan_id"`
	FineType          string     `gorm:"column:fine_type"`
	AmountDue         float64    `gorm:"column:amount_due"`
	AmountPaid        *float64   `gorm:"column:amount_paid"`
	DateAssessed      time.Time  `gorm:"column:date_assessed"`
	PaymentDate       *time.Time `gorm:"column:payment_date"`
	FineStatus        string     `gorm:"column:fine_status"`
	AssessedByStaffID *int64     `gorm:"column:assessed_by_staff_id"`
	WaivedByStaffID   *int64     `gorm:"column:waived_by_staff_id"`
	WaiverReason      *string    `gorm:"column:waiver_reason"`
	PaymentMethod     *string    `gorm:"column:payment_method"`
}

func (Fine) TableName() string {
	return "fines"
}

// ToDomain converts the row to a domain fine
func (f *Fine) ToDomain() *domain.Fine {
	out := &domain.Fine{
		FineID:       f.FineID,
		PatronID:     f.PatronID,
		LoanID:       f.LoanID,
		Type:         domain.FineType(f.FineType),
		AmountDue:    f.AmountDue,
		Status:       domain.FineStatus(f.FineStatus),
		AssessedDate: f.DateAssessed,
	}
	if f.AmountPaid != nil {
		out.AmountPaid = *f.AmountPaid
	}
	return out
}

// ============================================================
// Catalog tables
// ============================================================

// Material represents materials table
type Material struct {
	MaterialID      int64     `gorm:"column:material_id;primaryKey"`
	Title           string    `gorm:"column:title"`
	Subtitle        *string   `gorm:"column:subtitle"`
	MaterialType    string    `gorm:"column:material_type"`
	ISBN            *string   `gorm:"column:isbn"`
	PublicationYear *int      `gorm:"column:publication_year"`
	PublisherID     *int64    `gorm:"column:publisher_id"`
	Language        *string   `gorm:"column:language"`
	Pages           *int      `gorm:"column:pages"`
	Description     *string   `gorm:"column:description"`
	TotalCopies     *int      `gorm:"column:total_copies"`
	AvailableCopies *int      `gorm:"column:available_copies"`
	DateAdded       time.Time `gorm:"column:date_added"`
}

func (Material) TableName() string {
	return "materials"
}

// ToDomain converts the row to a domain material
func (m *Material) ToDomain() *domain.Material {
	out := &domain.Material{
		MaterialID:      m.MaterialID,
		Title:           m.Title,
		Subtitle:        m.Subtitle,
		Type:            domain.MaterialType(m.MaterialType),
		ISBN:            m.ISBN,
		PublicationYear: m.PublicationYear,
		Language:        m.Language,
		Description:     m.Description,
		DateAdded:       m.DateAdded,
	}
	if m.TotalCopies != nil {
		out.TotalCopies = *m.TotalCopies
	}
	if m.AvailableCopies != nil {
		out.AvailableCopies = *m.AvailableCopies
	}
	return out
}
