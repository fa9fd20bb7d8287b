package handlers

import (
	"libris/internal/core/services"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CirculationHandler handles loan endpoints
type CirculationHandler struct {
	circulation services.Circulation
	log         logger.Logger
}

// NewCirculationHandler creates a new circulation handler
func NewCirculationHandler(circulation services.Circulation, log logger.Logger) *CirculationHandler {
	return &CirculationHandler{circulation: circulation, log: log}
}

// CheckoutRequest represents checkout body
type CheckoutRequest struct {
	PatronID int64 `json:"patron_id"`
	CopyID   int64 `json:"copy_id"`
	StaffID  int64 `json:"staff_id,omitempty"`
}

// CheckinRequest represents checkin body
type CheckinRequest struct {
	LoanID  int64 `json:"loan_id"`
	StaffID int64 `json:"staff_id,omitempty"`
}

// DeclareLostRequest represents a loss declaration body
type DeclareLostRequest struct {
	StaffID         int64   `json:"staff_id,omitempty"`
	ReplacementCost float64 `json:"replacement_cost"`
}

// Checkout lends a copy to a patron
// @Summary Check out a copy
// @Tags Circulation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Idempotency-Key header string false "Replay key (UUID)"
// @Param body body CheckoutRequest true "Checkout data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /circulation/checkout [post]
func (h *CirculationHandler) Checkout(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := requirePositive(
		idField("patron_id", req.PatronID),
		idField("copy_id", req.CopyID),
	); err != nil {
		return respondError(c, h.log, err)
	}
	staffID, err := actingStaffID(auth, req.StaffID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.circulation.Checkout(c.UserContext(), auth, req.PatronID, req.CopyID, staffID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Created(c, "Item checked out", result)
}

// Checkin returns a loan
// @Summary Check in a loan
// @Tags Circulation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Idempotency-Key header string false "Replay key (UUID)"
// @Param body body CheckinRequest true "Checkin data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /circulation/checkin [post]
func (h *CirculationHandler) Checkin(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req CheckinRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := requirePositive(idField("loan_id", req.LoanID)); err != nil {
		return respondError(c, h.log, err)
	}
	staffID, err := actingStaffID(auth, req.StaffID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.circulation.Checkin(c.UserContext(), auth, req.LoanID, staffID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Item checked in", result)
}

// Renew extends a loan
// @Summary Renew a loan
// @Tags Circulation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /circulation/loans/{id}/renew [post]
func (h *CirculationHandler) Renew(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	loanID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.circulation.Renew(c.UserContext(), auth, loanID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Loan renewed", result)
}

// DeclareLost closes a loan as lost
// @Summary Declare a loaned copy lost
// @Tags Circulation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body DeclareLostRequest true "Loss data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /circulation/loans/{id}/lost [post]
func (h *CirculationHandler) DeclareLost(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	loanID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req DeclareLostRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := requirePositive(amountField("replacement_cost", req.ReplacementCost)); err != nil {
		return respondError(c, h.log, err)
	}
	staffID, err := actingStaffID(auth, req.StaffID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.circulation.DeclareLost(c.UserContext(), auth, loanID, staffID, req.ReplacementCost)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Item declared lost", result)
}

// GetLoan reads one loan
// @Summary Get loan
// @Tags Circulation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /circulation/loans/{id} [get]
func (h *CirculationHandler) GetLoan(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	loanID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	loan, err := h.circulation.GetLoan(c.UserContext(), auth, loanID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Loan retrieved successfully", loan)
}
