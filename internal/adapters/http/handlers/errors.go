package handlers

import (
	"errors"
	"strconv"

	"libris/internal/adapters/http/middleware"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// respondError renders any service error as the standard envelope. It is
// the only place errors are mapped to status codes.
func respondError(c *fiber.Ctx, log logger.Logger, err error) error {
	var (
		authErr   *domain.AuthError
		domainErr *domain.DomainError
		integrity *domain.IntegrityError
		connErr   *domain.ConnectivityError
		rejection *domain.Rejection
		fiberErr  *fiber.Error
	)

	switch {
	case errors.As(err, &authErr):
		if authErr.Kind.RequiresLogin() {
			return response.Unauthorized(c, authErr.Message)
		}
		return response.Forbidden(c, authErr.Message)

	case errors.As(err, &rejection):
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return response.Unauthorized(c, orMessage(rejection.Message, "Invalid username or password"))
		}
		return response.BadRequest(c, rejection.Error())

	case errors.Is(err, domain.ErrLoginThrottled):
		return response.TooManyRequests(c, domain.ErrLoginThrottled.Error())

	case errors.As(err, &domainErr):
		status := fiber.StatusBadRequest
		if domainErr.NotFound() {
			status = fiber.StatusNotFound
		}
		return response.RuleViolation(c, status, domainErr.Message(), domainErr.Code, domainErr.Band().String())

	case errors.As(err, &integrity):
		log.Warn("Integrity violation",
			logger.Int("code", integrity.Code),
			logger.String("path", c.Path()),
		)
		return response.Conflict(c, "Request conflicts with existing data")

	case errors.Is(err, domain.ErrInsufficientPrivilege):
		return response.Forbidden(c, "Your role is not permitted to perform this operation")

	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())

	case errors.As(err, &fiberErr):
		return response.Error(c, fiberErr.Code, fiberErr.Message)

	case errors.As(err, &connErr):
		log.Error("Database unavailable",
			logger.String("op", connErr.Op),
			logger.String("path", c.Path()),
			logger.Err(err),
		)
		return response.InternalServerError(c, "Database is unavailable, please try again later")
	}

	log.Error("Request failed",
		logger.String("path", c.Path()),
		logger.Err(err),
	)
	return response.InternalServerError(c, "Internal Server Error")
}

func orMessage(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

// paramID reads a positive integer path parameter
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// queryID reads a positive integer query parameter
func queryID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" is required")
	}
	return id, nil
}

// requirePositive fails on the first id or amount that is not > 0
func requirePositive(fields ...positiveField) error {
	for _, f := range fields {
		if f.value <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, f.name+" must be greater than zero")
		}
	}
	return nil
}

type positiveField struct {
	name  string
	value float64
}

func idField(name string, v int64) positiveField {
	return positiveField{name: name, value: float64(v)}
}

func amountField(name string, v float64) positiveField {
	return positiveField{name: name, value: v}
}

// actingStaffID picks the staff id an operation is recorded under. An
// omitted id means the caller's own staff record; naming another one is
// reserved for administrative roles.
func actingStaffID(auth *domain.AuthenticatedContext, requested int64) (int64, error) {
	switch {
	case requested < 0:
		return 0, fiber.NewError(fiber.StatusBadRequest, "staff_id must be greater than zero")
	case requested == 0:
		if !auth.HasStaffRecord() {
			return 0, fiber.NewError(fiber.StatusForbidden, "No staff record is linked to this account")
		}
		return auth.StaffID, nil
	case requested != auth.StaffID && !auth.IsAdministrative():
		return 0, fiber.NewError(fiber.StatusForbidden, "staff_id does not match the signed-in staff member")
	}
	return requested, nil
}

// authContext is the caller set by the auth middleware
func authContext(c *fiber.Ctx) (*domain.AuthenticatedContext, error) {
	auth, ok := middleware.AuthContext(c)
	if !ok {
		return nil, domain.ErrMissingToken
	}
	return auth, nil
}
