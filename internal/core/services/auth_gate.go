package services

import (
	"context"
	"errors"
	"strings"

	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/metrics"
	"libris/internal/pkg/password"
)

// Authenticator turns a session token into an AuthenticatedContext
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.AuthenticatedContext, error)
}

// AuthenticationGate resolves a bearer token to the caller's identity and
// the database principal their requests run as. Trust comes only from the
// server-side session; the token carries no claims.
type AuthenticationGate struct {
	sessions *SessionStore
	roles    *RoleResolver
	staff    repositories.StaffRepository
	vault    *CredentialVault
	metrics  *metrics.Metrics
	log      logger.Logger
}

// NewAuthenticationGate creates a new authentication gate. staff may be
// nil, in which case no caller carries a staff id.
func NewAuthenticationGate(
	sessions *SessionStore,
	roles *RoleResolver,
	staff repositories.StaffRepository,
	vault *CredentialVault,
	m *metrics.Metrics,
	log logger.Logger,
) *AuthenticationGate {
	return &AuthenticationGate{
		sessions: sessions,
		roles:    roles,
		staff:    staff,
		vault:    vault,
		metrics:  m,
		log:      log,
	}
}

// Authenticate runs the gate. Every failure is terminal: nothing is retried.
func (g *AuthenticationGate) Authenticate(ctx context.Context, token string) (*domain.AuthenticatedContext, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, g.fail(domain.ErrMissingToken, token)
	}

	// 1. Pure lookup; an unknown token stops here
	session, err := g.sessions.Lookup(ctx, token)
	if err != nil {
		return nil, g.fail(err, token)
	}

	// 2. The database decides validity and refreshes last activity
	validation, err := g.sessions.Validate(ctx, token)
	if err != nil {
		return nil, g.fail(err, token)
	}
	if !validation.Valid {
		msg := validation.Message
		if msg == "" {
			msg = domain.ErrSessionExpired.Message
		}
		return nil, g.fail(domain.NewAuthError(domain.AuthSessionExpired, msg), token)
	}

	// 3. Acting role by precedence
	acting, roleSet, err := g.roles.Resolve(ctx, validation.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNoRoleAssigned) {
			g.log.Error("User has no usable role",
				logger.Int64("user_id", validation.UserID),
			)
		}
		return nil, g.fail(err, token)
	}

	// 4. Principal for that role
	cred, err := g.vault.Lookup(acting)
	if err != nil {
		g.log.Error("No database principal for role",
			logger.Int64("user_id", validation.UserID),
			logger.String("role", acting.Code()),
		)
		return nil, g.fail(err, token)
	}

	// 5. Staff callers record operations under their own staff row
	var staffID int64
	if g.staff != nil && roleSet.Any(domain.Role.IsStaff) {
		staffID, err = g.staff.StaffIDForUser(ctx, validation.UserID)
		if err != nil {
			return nil, g.fail(err, token)
		}
	}

	return &domain.AuthenticatedContext{
		UserID:        validation.UserID,
		Username:      session.Username,
		ActingRole:    acting,
		Credential:    cred,
		Roles:         roleSet,
		StaffID:       staffID,
		SessionStatus: session.Status,
	}, nil
}

// fail counts auth errors by kind and logs ordinary denials at debug
func (g *AuthenticationGate) fail(err error, token string) error {
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		g.metrics.AuthFailed(authErr.Kind.String())
		if !authErr.Kind.Misconfiguration() {
			g.log.Debug("Authentication denied",
				logger.String("kind", authErr.Kind.String()),
				logger.String("token", password.Fingerprint(token)),
			)
		}
		return err
	}

	g.metrics.AuthFailed("error")
	g.log.Warn("Authentication failed",
		logger.String("token", password.Fingerprint(token)),
		logger.Err(err),
	)
	return err
}
