package handlers

import (
	"strings"
	"time"

	"libris/internal/core/domain"
	"libris/internal/core/services"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PatronHandler handles membership endpoints
type PatronHandler struct {
	patrons services.Patrons
	log     logger.Logger
}

// NewPatronHandler creates a new patron handler
func NewPatronHandler(patrons services.Patrons, log logger.Logger) *PatronHandler {
	return &PatronHandler{patrons: patrons, log: log}
}

// SuspendPatronRequest represents a suspension body
type SuspendPatronRequest struct {
	Reason  string `json:"reason"`
	StaffID int64  `json:"staff_id,omitempty"`
}

// StaffRequest carries the acting staff member
type StaffRequest struct {
	StaffID int64 `json:"staff_id,omitempty"`
}

// CreatePatronRequest represents a staff enrollment body
type CreatePatronRequest struct {
	CardNumber     string `json:"card_number"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	DateOfBirth    string `json:"date_of_birth" example:"1990-04-21"`
	MembershipType string `json:"membership_type" example:"Standard"`
	BranchID       int64  `json:"branch_id"`
}

// UpdatePatronRequest represents a contact update body
type UpdatePatronRequest struct {
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// Create enrolls a patron at a branch
// @Summary Create patron
// @Tags Patrons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreatePatronRequest true "Patron data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /patrons [post]
func (h *PatronHandler) Create(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req CreatePatronRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := services.EnrollInput{
		CardNumber:     strings.TrimSpace(req.CardNumber),
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		Address:        strings.TrimSpace(req.Address),
		MembershipType: domain.MembershipType(req.MembershipType),
		BranchID:       req.BranchID,
	}
	if input.CardNumber == "" {
		return response.BadRequest(c, "card_number is required")
	}
	if input.FirstName == "" || input.LastName == "" {
		return response.BadRequest(c, "First and last name are required")
	}
	if !strings.Contains(input.Email, "@") {
		return response.BadRequest(c, "A valid email is required")
	}
	if !input.MembershipType.Valid() {
		return response.BadRequest(c, "Unknown membership_type")
	}
	if err := requirePositive(idField("branch_id", req.BranchID)); err != nil {
		return respondError(c, h.log, err)
	}
	dob, err := time.Parse(time.DateOnly, req.DateOfBirth)
	if err != nil {
		return response.BadRequest(c, "date_of_birth must be YYYY-MM-DD")
	}
	if !dob.Before(time.Now()) {
		return response.BadRequest(c, "date_of_birth must be in the past")
	}
	input.DateOfBirth = dob

	result, err := h.patrons.Enroll(c.UserContext(), auth, input)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Created(c, "Patron created", result)
}

// Update changes a patron's contact details
// @Summary Update patron
// @Tags Patrons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patron ID"
// @Param body body UpdatePatronRequest true "Contact data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patrons/{id} [put]
func (h *PatronHandler) Update(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	patronID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req UpdatePatronRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	update := services.ContactUpdate{Email: req.Email, Phone: req.Phone, Address: req.Address}
	if update.Empty() {
		return response.BadRequest(c, "Nothing to update")
	}
	if update.Email != nil && !strings.Contains(*update.Email, "@") {
		return response.BadRequest(c, "A valid email is required")
	}

	if err := h.patrons.UpdateContact(c.UserContext(), auth, patronID, update); err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Patron updated", fiber.Map{"patron_id": patronID})
}

// RenewMembership extends a membership
// @Summary Renew membership
// @Tags Patrons
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patron ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patrons/{id}/renew [post]
func (h *PatronHandler) RenewMembership(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	patronID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	result, err := h.patrons.RenewMembership(c.UserContext(), auth, patronID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Membership renewed", result)
}

// Suspend blocks a patron
// @Summary Suspend patron
// @Tags Patrons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patron ID"
// @Param body body SuspendPatronRequest true "Suspension data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patrons/{id}/suspend [post]
func (h *PatronHandler) Suspend(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	patronID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req SuspendPatronRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		return response.BadRequest(c, "reason is required")
	}
	staffID, err := actingStaffID(auth, req.StaffID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.patrons.Suspend(c.UserContext(), auth, patronID, req.Reason, staffID); err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Patron suspended", fiber.Map{"patron_id": patronID})
}

// Reactivate lifts a suspension
// @Summary Reactivate patron
// @Tags Patrons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patron ID"
// @Param body body StaffRequest true "Acting staff"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patrons/{id}/reactivate [post]
func (h *PatronHandler) Reactivate(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	patronID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req StaffRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	staffID, err := actingStaffID(auth, req.StaffID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.patrons.Reactivate(c.UserContext(), auth, patronID, staffID); err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Patron reactivated", fiber.Map{"patron_id": patronID})
}
