package services

import (
	"context"

	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/pagination"

	"gorm.io/gorm"
)

// ReservationRepoFactory binds a reservation repository to a role connection
type ReservationRepoFactory func(db *gorm.DB) repositories.ReservationRepository

// ReservationService manages hold queues. Queue order and positions are
// owned by the database and never computed or cached here.
type ReservationService struct {
	broker  repositories.ConnectionBroker
	newRepo ReservationRepoFactory
	log     logger.Logger
}

// NewReservationService creates a new reservation service
func NewReservationService(broker repositories.ConnectionBroker, newRepo ReservationRepoFactory, log logger.Logger) *ReservationService {
	return &ReservationService{broker: broker, newRepo: newRepo, log: log}
}

// Place queues a patron for a material
func (s *ReservationService) Place(ctx context.Context, auth *domain.AuthenticatedContext, materialID, patronID int64) (*domain.PlacementResult, error) {
	var result *domain.PlacementResult
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		out, err := s.newRepo(db).Place(ctx, materialID, patronID)
		if err != nil {
			return err
		}
		if out.ReservationID == nil || out.QueuePosition == nil || *out.QueuePosition < 1 {
			return domain.ErrIncompleteResult
		}
		result = &domain.PlacementResult{
			ReservationID: *out.ReservationID,
			QueuePosition: *out.QueuePosition,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Reservation placed",
		logger.Int64("reservation_id", result.ReservationID),
		logger.Int64("material_id", materialID),
		logger.Int("queue_position", result.QueuePosition),
	)
	return result, nil
}

// Cancel withdraws a patron's hold
func (s *ReservationService) Cancel(ctx context.Context, auth *domain.AuthenticatedContext, reservationID, patronID int64) error {
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		return s.newRepo(db).Cancel(ctx, reservationID, patronID)
	})
	if err != nil {
		return err
	}

	s.log.Info("Reservation cancelled", logger.Int64("reservation_id", reservationID))
	return nil
}

// Fulfill assigns a copy to the hold. The pickup deadline is the one the
// database stored: when the OUT value is NULL the row is re-read on the
// same connection, and a missing deadline there is an error.
func (s *ReservationService) Fulfill(ctx context.Context, auth *domain.AuthenticatedContext, reservationID, copyID, staffID int64) (*domain.FulfillmentResult, error) {
	var result *domain.FulfillmentResult
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		repo := s.newRepo(db)
		out, err := repo.Fulfill(ctx, reservationID, copyID, staffID)
		if err != nil {
			return err
		}

		deadline := out.PickupDeadline
		if deadline == nil {
			deadline, err = repo.PickupDeadline(ctx, reservationID)
			if err != nil {
				return notFound(err, domain.ErrReservationNotFound)
			}
			if deadline == nil {
				return domain.ErrIncompleteResult
			}
		}

		result = &domain.FulfillmentResult{
			ReservationID:  reservationID,
			CopyID:         copyID,
			PickupDeadline: *deadline,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Reservation fulfilled",
		logger.Int64("reservation_id", reservationID),
		logger.Int64("copy_id", copyID),
	)
	return result, nil
}

// Get reads one reservation
func (s *ReservationService) Get(ctx context.Context, auth *domain.AuthenticatedContext, reservationID int64) (*domain.Reservation, error) {
	var res *domain.Reservation
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		row, err := s.newRepo(db).GetByID(ctx, reservationID)
		if err != nil {
			return notFound(err, domain.ErrReservationNotFound)
		}
		res = row.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListActive pages through a patron's pending and ready holds
func (s *ReservationService) ListActive(ctx context.Context, auth *domain.AuthenticatedContext, patronID int64, params *pagination.Params) ([]*domain.Reservation, int64, error) {
	var (
		items []*domain.Reservation
		total int64
	)
	err := s.broker.WithConnection(ctx, auth.Credential, func(ctx context.Context, db *gorm.DB) error {
		rows, count, err := s.newRepo(db).ListActiveByPatron(ctx, patronID, params.Offset, params.Limit)
		if err != nil {
			return err
		}
		items = make([]*domain.Reservation, len(rows))
		for i, row := range rows {
			items[i] = row.ToDomain()
		}
		total = count
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
