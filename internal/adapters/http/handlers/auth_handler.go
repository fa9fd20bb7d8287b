package handlers

import (
	"strings"
	"time"

	"libris/internal/adapters/http/middleware"
	"libris/internal/config"
	"libris/internal/core/services"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/password"
	"libris/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService services.AccountService
	cookie      config.CookieConfig
	log         logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService services.AccountService, cookie config.CookieConfig, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		log:         log,
	}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents patron self-registration body
type RegisterRequest struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty" example:"1990-04-21"`
}

// ChangePasswordRequest represents change password body
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Login handles user login
// @Summary Login user
// @Description Authenticate against the database and open a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	result, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}

	h.setSessionCookie(c, result.Token)

	return response.Success(c, "Login successful", fiber.Map{
		"session_token": result.Token,
		"user_id":       result.UserID,
	})
}

// Logout handles user logout
// @Summary Logout user
// @Description End the current session
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := middleware.ExtractToken(c)

	err := h.authService.Logout(c.UserContext(), token)
	h.clearSessionCookie(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Logged out successfully", nil)
}

// ValidateSession reports whether the presented session is live
// @Summary Validate session
// @Description Always 200; the body says whether the session is valid
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /auth/validate [get]
func (h *AuthHandler) ValidateSession(c *fiber.Ctx) error {
	v, err := h.authService.ValidateSession(c.UserContext(), middleware.ExtractToken(c))
	if err != nil {
		return respondError(c, h.log, err)
	}

	data := fiber.Map{
		"is_valid": v.Valid,
		"message":  v.Message,
	}
	if v.Valid {
		data["user_id"] = v.UserID
	}
	return response.Success(c, "Session checked", data)
}

// Register handles patron self-registration
// @Summary Register patron
// @Description Create a user and patron record with a new library card
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := services.RegisterInput{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		Phone:     req.Phone,
		Address:   req.Address,
	}

	// Validate required fields
	if input.FirstName == "" || input.LastName == "" {
		return response.BadRequest(c, "First and last name are required")
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return response.BadRequest(c, "A valid email is required")
	}
	if !password.ValidatePassword(input.Password) {
		return response.BadRequest(c, "Password must be between 8 and 100 characters")
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != "" {
		dob, err := time.Parse(time.DateOnly, *req.DateOfBirth)
		if err != nil {
			return response.BadRequest(c, "date_of_birth must be YYYY-MM-DD")
		}
		input.DateOfBirth = &dob
	}

	reg, err := h.authService.Register(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Created(c, "Patron registered successfully", reg)
}

// ChangePassword changes the caller's password
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Old and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.OldPassword == "" {
		return response.BadRequest(c, "Current password is required")
	}
	if !password.ValidatePassword(req.NewPassword) {
		return response.BadRequest(c, "Password must be between 8 and 100 characters")
	}
	if req.OldPassword == req.NewPassword {
		return response.BadRequest(c, "New password must differ from the current one")
	}

	if err := h.authService.ChangePassword(c.UserContext(), auth, req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "Password changed successfully", nil)
}

// Me returns the current user info
// @Summary Get current user
// @Description Identity, acting role and held roles of the caller
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	auth, err := authContext(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return response.Success(c, "User retrieved successfully", h.authService.Me(auth))
}

// setSessionCookie stores the session token; expiry is enforced server-side
func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cookie.SameSite,
		Domain:   h.cookie.Domain,
	})
}

// clearSessionCookie clears the session cookie
func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cookie.SameSite,
		Domain:   h.cookie.Domain,
	})
}
