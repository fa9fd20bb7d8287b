package handlers

import (
	"strings"
	"unicode/utf8"

	"libris/internal/core/domain"
	"libris/internal/core/services"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Waiver reason bounds match fines.waiver_reason
const (
	minWaiverReason = 10
	maxWaiverReason = 500
)

// FineHandler handles fine endpoints
type FineHandler struct {
	fines services.Fines
	log   logger.Logger
}

// NewFineHandler creates a new fine handler
func NewFineHandler(fines services.Fines, log logger.Logger) *FineHandler {
	return &FineHandler{fines: fines, log: log}
}

// AssessFineRequest represents a manual assessment body
type AssessFineRequest struct {
	PatronID int64   `json:"patron_id"`
	LoanID   *int64  `json:"loan_id,omitempty"`
	FineType string  `json:"fine_type" example:"Damaged Item"`
	Amount   float64 `json:"amount"`
	StaffID  int64   `json:"staff_id,omitempty"`
}

// WaiveFineRequest represents a waiver body
type WaiveFineRequest struct {
	Reason  string `json:"reason"`
	StaffID int64  `json:"staff_id,omitempty"`
}

// PayFineRequest represents a payment body
type PayFineRequest struct {
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method" example:"Cash"`
	StaffID       int64   `json:"staff_id,omitempty"`
}

// Assess raises a fine
// @Summary Assess a fine
// @Tags Fines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Idempotency-Key header string false "Replay key (UUID)"
// @Param body body AssessFineRequest true "Fine data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /fines [post]
func (h *FineHandler) Assess(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req AssessFineRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := requirePositive(
		idField("patron_id", req.PatronID),
		amountField("amount", req.Amount),
	); err != nil {
		return respondError(c, h.log, err)
	}
	if req.LoanID != nil && *req.LoanID <= 0 {
		return response.BadRequest(c, "loan_id must be greater than zero")
	}
	fineType := domain.FineType(req.FineType)
	if !fineType.Valid() {
		return response.BadRequest(c, "Unknown fine_type")
	}
	staffID, err := actingStaffID(auth, req.StaffID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	fineID, err := h.fines.Assess(c.UserContext(), auth, services.AssessInput{
		PatronID: req.PatronID,
		LoanID:   req.LoanID,
		Type:     fineType,
		Amount:   req.Amount,
		StaffID:  staffID,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Created(c, "Fine assessed", fiber.Map{"fine_id": fineID})
}

// Waive forgives a fine
// @Summary Waive a fine
// @Tags Fines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fine ID"
// @Param body body WaiveFineRequest true "Waiver data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /fines/{id}/waive [post]
func (h *FineHandler) Waive(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	fineID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req WaiveFineRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if n := utf8.RuneCountInString(req.Reason); n < minWaiverReason || n > maxWaiverReason {
		return response.BadRequest(c, "reason must be between 10 and 500 characters")
	}
	staffID, err := actingStaffID(auth, req.StaffID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.fines.Waive(c.UserContext(), auth, fineID, req.Reason, staffID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Fine waived", result)
}

// Pay records a payment
// @Summary Pay a fine
// @Tags Fines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Idempotency-Key header string false "Replay key (UUID)"
// @Param id path int true "Fine ID"
// @Param body body PayFineRequest true "Payment data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /fines/{id}/pay [post]
func (h *FineHandler) Pay(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	fineID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req PayFineRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := requirePositive(amountField("amount", req.Amount)); err != nil {
		return respondError(c, h.log, err)
	}
	method := domain.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return response.BadRequest(c, "Unknown payment_method")
	}

	// Patrons paying online have no staff record; the payment is recorded
	// without one
	var staffID int64
	if auth.HasStaffRecord() || req.StaffID != 0 {
		if staffID, err = actingStaffID(auth, req.StaffID); err != nil {
			return respondError(c, h.log, err)
		}
	}

	result, err := h.fines.Pay(c.UserContext(), auth, fineID, req.Amount, method, staffID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Payment recorded", result)
}

// Get reads one fine
// @Summary Get fine
// @Tags Fines
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fine ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /fines/{id} [get]
func (h *FineHandler) Get(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	fineID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	fine, err := h.fines.Get(c.UserContext(), auth, fineID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Fine retrieved successfully", fiber.Map{
		"fine":    fine,
		"balance": fine.Balance(),
	})
}
