package repositories

import (
	"context"
	"time"

	"libris/internal/adapters/persistence/models"
	"libris/internal/core/domain"

	"gorm.io/gorm"
)

// reservationRepository implements ReservationRepository interface
type reservationRepository struct {
	db    *gorm.DB
	procs *Procedures
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB, procs *Procedures) ReservationRepository {
	return &reservationRepository{db: db, procs: procs}
}

// Place runs sp_place_reservation
func (r *reservationRepository) Place(ctx context.Context, materialID, patronID int64) (*models.PlaceReservationOut, error) {
	var out models.PlaceReservationOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_place_reservation",
		Args:      []interface{}{materialID, patronID},
		Outs: []Out{
			{Name: "reservation_id", Kind: OutInt},
			{Name: "queue_position", Kind: OutInt},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel runs sp_cancel_reservation
func (r *reservationRepository) Cancel(ctx context.Context, reservationID, patronID int64) error {
	return r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_cancel_reservation",
		Args:      []interface{}{reservationID, patronID},
	}, nil)
}

// Fulfill runs sp_fulfill_reservation
func (r *reservationRepository) Fulfill(ctx context.Context, reservationID, copyID, staffID int64) (*models.FulfillReservationOut, error) {
	var out models.FulfillReservationOut
	err := r.procs.Run(ctx, r.db, Call{
		Procedure: "sp_fulfill_reservation",
		Args:      []interface{}{reservationID, copyID, staffID},
		Outs:      []Out{{Name: "pickup_deadline", Kind: OutDateTime}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PickupDeadline reads the deadline the database stored for a reservation
func (r *reservationRepository) PickupDeadline(ctx context.Context, reservationID int64) (*time.Time, error) {
	var row models.Reservation
	err := r.db.WithContext(ctx).
		Select("reservation_id", "pickup_deadline").
		Where("reservation_id = ?", reservationID).
		Take(&row).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return row.PickupDeadline, nil
}

// GetByID reads a reservation by id
func (r *reservationRepository) GetByID(ctx context.Context, reservationID int64) (*models.Reservation, error) {
	var row models.Reservation
	if err := r.db.WithContext(ctx).Where("reservation_id = ?", reservationID).Take(&row).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &row, nil
}

// ListActiveByPatron lists a patron's pending and ready holds with total count
func (r *reservationRepository) ListActiveByPatron(ctx context.Context, patronID int64, offset, limit int) ([]*models.Reservation, int64, error) {
	var (
		rows  []*models.Reservation
		total int64
	)

	query := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("patron_id = ?", patronID).
		Where("reservation_status IN ?", []string{
			string(domain.ReservationPending),
			string(domain.ReservationReady),
		}).
		Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, TranslateError(err)
	}

	err := query.
		Order("reservation_date ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, TranslateError(err)
	}
	return rows, total, nil
}
