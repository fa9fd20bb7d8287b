package handlers

import (
	"strings"

	"libris/internal/core/services"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserAdminHandler handles account state and role assignment endpoints
type UserAdminHandler struct {
	users services.UserAdmin
	log   logger.Logger
}

// NewUserAdminHandler creates a new user administration handler
func NewUserAdminHandler(users services.UserAdmin, log logger.Logger) *UserAdminHandler {
	return &UserAdminHandler{users: users, log: log}
}

// AssignRoleRequest represents a role grant
type AssignRoleRequest struct {
	RoleID int64 `json:"role_id"`
}

// CheckPermissionRequest names a permission code
type CheckPermissionRequest struct {
	Permission string `json:"permission" example:"CIRC_CHECKOUT"`
}

// CheckRoleRequest names a role code
type CheckRoleRequest struct {
	Role string `json:"role" example:"ROLE_PATRON"`
}

// Status reports whether an account is active or locked
// @Summary Get user status
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users/{id}/status [get]
func (h *UserAdminHandler) Status(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	status, err := h.users.Status(c.UserContext(), auth, userID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "User status retrieved", status)
}

// Roles lists a user's active roles
// @Summary List user roles
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users/{id}/roles [get]
func (h *UserAdminHandler) Roles(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	roles, err := h.users.Roles(c.UserContext(), auth, userID)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "User roles retrieved", roles)
}

// CheckPermission reports whether a user holds a permission
// @Summary Check user permission
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body CheckPermissionRequest true "Permission code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/{id}/permissions/check [post]
func (h *UserAdminHandler) CheckPermission(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req CheckPermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Permission = strings.TrimSpace(req.Permission)
	if req.Permission == "" {
		return response.BadRequest(c, "permission is required")
	}

	granted, err := h.users.HasPermission(c.UserContext(), auth, userID, req.Permission)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Permission checked", fiber.Map{
		"user_id":    userID,
		"permission": req.Permission,
		"granted":    granted,
	})
}

// CheckRole reports whether a user holds a role
// @Summary Check user role
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body CheckRoleRequest true "Role code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/{id}/roles/check [post]
func (h *UserAdminHandler) CheckRole(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req CheckRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Role = strings.TrimSpace(req.Role)
	if req.Role == "" {
		return response.BadRequest(c, "role is required")
	}

	granted, err := h.users.HasRole(c.UserContext(), auth, userID, req.Role)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Role checked", fiber.Map{
		"user_id": userID,
		"role":    req.Role,
		"granted": granted,
	})
}

// AssignRole grants a role to a user
// @Summary Assign role
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body AssignRoleRequest true "Role"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users/{id}/roles [post]
func (h *UserAdminHandler) AssignRole(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := requirePositive(idField("role_id", req.RoleID)); err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.users.AssignRole(c.UserContext(), auth, userID, req.RoleID); err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Role assigned", fiber.Map{"user_id": userID, "role_id": req.RoleID})
}

// RevokeRole withdraws a role from a user
// @Summary Revoke role
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param roleId path int true "Role ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users/{id}/roles/{roleId} [delete]
func (h *UserAdminHandler) RevokeRole(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	roleID, err := paramID(c, "roleId")
	if err != nil {
		return respondError(c, h.log, err)
	}

	if err := h.users.RevokeRole(c.UserContext(), auth, userID, roleID); err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Role revoked", fiber.Map{"user_id": userID, "role_id": roleID})
}
