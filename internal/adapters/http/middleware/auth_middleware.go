package middleware

import (
	"errors"
	"strings"

	"libris/internal/core/domain"
	"libris/internal/core/services"
	"libris/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie login sets with the session token
const SessionCookie = "session_token"

const authKey = "auth"

// AuthMiddleware resolves the session token through the authentication
// gate and stores the resulting context for handlers
func AuthMiddleware(gate services.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ExtractToken(c)

		auth, err := gate.Authenticate(c.UserContext(), token)
		if err != nil {
			return RespondAuthError(c, err)
		}

		c.Locals(authKey, auth)
		return c.Next()
	}
}

// ExtractToken reads the session cookie, falling back to a Bearer header
func ExtractToken(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// AuthContext returns the authenticated context set by AuthMiddleware
func AuthContext(c *fiber.Ctx) (*domain.AuthenticatedContext, bool) {
	auth, ok := c.Locals(authKey).(*domain.AuthenticatedContext)
	return auth, ok && auth != nil
}

// RespondAuthError renders a gate failure. Re-login kinds are 401,
// role and credential gaps are 403. Nothing about the user is echoed.
func RespondAuthError(c *fiber.Ctx, err error) error {
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		return response.InternalServerError(c, "Authentication is temporarily unavailable")
	}
	if authErr.Kind.RequiresLogin() {
		return response.Unauthorized(c, authErr.Message)
	}
	return response.Forbidden(c, authErr.Message)
}

// RequireRole allows the request when any held role satisfies allowed
func RequireRole(allowed func(domain.Role) bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth, ok := AuthContext(c)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !auth.Roles.Any(allowed) {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}

// RequireStaff allows any library staff role
func RequireStaff() fiber.Handler {
	return RequireRole(domain.Role.IsStaff)
}

// RequireAdministrative allows system administration roles
func RequireAdministrative() fiber.Handler {
	return RequireRole(domain.Role.IsAdministrative)
}
