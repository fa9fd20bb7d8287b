package handlers

import (
	"libris/internal/core/services"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/pagination"
	"libris/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReservationHandler handles hold queue endpoints
type ReservationHandler struct {
	reservations services.ReservationQueue
	log          logger.Logger
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservations services.ReservationQueue, log logger.Logger) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, log: log}
}

// PlaceReservationRequest represents a hold request body
type PlaceReservationRequest struct {
	MaterialID int64 `json:"material_id"`
	PatronID   int64 `json:"patron_id"`
}

// FulfillReservationRequest represents a fulfillment body
type FulfillReservationRequest struct {
	CopyID  int64 `json:"copy_id"`
	StaffID int64 `json:"staff_id,omitempty"`
}

// Place queues a patron for a material
// @Summary Place a reservation
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Idempotency-Key header string false "Replay key (UUID)"
// @Param body body PlaceReservationRequest true "Reservation data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reservations [post]
func (h *ReservationHandler) Place(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req PlaceReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := requirePositive(idField("material_id", req.MaterialID), idField("patron_id", req.PatronID)); err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.reservations.Place(c.UserContext(), auth, req.MaterialID, req.PatronID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Created(c, "Reservation placed", result)
}

// Cancel withdraws a hold
// @Summary Cancel a reservation
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Param patron_id query int true "Owning patron"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	reservationID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	patronID, err := queryID(c, "patron_id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.reservations.Cancel(c.UserContext(), auth, reservationID, patronID); err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Reservation cancelled", fiber.Map{"reservation_id": reservationID})
}

// Fulfill assigns a copy to a hold
// @Summary Fulfill a reservation
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Param body body FulfillReservationRequest true "Copy and staff"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reservations/{id}/fulfill [post]
func (h *ReservationHandler) Fulfill(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	reservationID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req FulfillReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := requirePositive(idField("copy_id", req.CopyID)); err != nil {
		return respondError(c, h.log, err)
	}
	staffID, err := actingStaffID(auth, req.StaffID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.reservations.Fulfill(c.UserContext(), auth, reservationID, req.CopyID, staffID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Reservation ready for pickup", result)
}

// Get reads one reservation
// @Summary Get reservation
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reservations/{id} [get]
func (h *ReservationHandler) Get(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	reservationID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	res, err := h.reservations.Get(c.UserContext(), auth, reservationID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Reservation retrieved successfully", res)
}

// ListActive pages through a patron's active holds
// @Summary List active reservations of a patron
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patron ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /patrons/{id}/reservations [get]
func (h *ReservationHandler) ListActive(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	patronID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	params := pagination.GetParams(c)
	items, total, err := h.reservations.ListActive(c.UserContext(), auth, patronID, params)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Reservations retrieved successfully", pagination.NewResponse(items, params, total))
}
