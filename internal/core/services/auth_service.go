package services

import (
	"context"
	"time"

	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/password"
)

// AuthService handles login, logout and account maintenance. It runs on
// the administrative connection because none of these can wait for a
// per-role identity.
type AuthService struct {
	sessionRepo repositories.SessionRepository
	accountRepo repositories.AccountRepository
	sessions    *SessionStore
	throttle    *LoginThrottle
	log         logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	sessionRepo repositories.SessionRepository,
	accountRepo repositories.AccountRepository,
	throttle *LoginThrottle,
	log logger.Logger,
) *AuthService {
	return &AuthService{
		sessionRepo: sessionRepo,
		accountRepo: accountRepo,
		sessions:    NewSessionStore(sessionRepo),
		throttle:    throttle,
		log:         log,
	}
}

// RegisterInput represents patron self-registration input
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	Phone       *string
	Address     *string
	DateOfBirth *time.Time
}

// Login authenticates a user and opens a session
func (s *AuthService) Login(ctx context.Context, username, pass string) (*domain.LoginResult, error) {
	if s.throttle != nil && !s.throttle.Allow(username) {
		s.log.Warn("Login throttled", logger.String("username", username))
		return nil, domain.ErrLoginThrottled
	}

	out, err := s.sessionRepo.Authenticate(ctx, username, pass)
	if err != nil {
		return nil, err
	}

	if !succeeded(out.Success) {
		s.log.Debug("Login rejected", logger.String("username", username))
		return nil, &domain.Rejection{Err: domain.ErrInvalidCredentials, Message: deref(out.Message)}
	}
	if out.SessionID == nil || *out.SessionID == "" || out.UserID == nil {
		return nil, domain.ErrIncompleteResult
	}

	s.log.Info("User logged in",
		logger.String("username", username),
		logger.Int64("user_id", *out.UserID),
		logger.String("session", password.Fingerprint(*out.SessionID)),
	)
	return &domain.LoginResult{Token: *out.SessionID, UserID: *out.UserID}, nil
}

// Logout ends a session
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrMissingToken
	}

	out, err := s.sessionRepo.Logout(ctx, token)
	if err != nil {
		return err
	}
	if !succeeded(out.Success) {
		return domain.NewAuthError(domain.AuthInvalidSession, orDefault(deref(out.Message), domain.ErrInvalidSession.Message))
	}

	s.log.Info("User logged out", logger.String("session", password.Fingerprint(token)))
	return nil
}

// ValidateSession reports whether token is a live session. An invalid
// session is a normal result, not an error.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.SessionValidation, error) {
	if token == "" {
		return &domain.SessionValidation{Message: domain.ErrMissingToken.Message}, nil
	}
	return s.sessions.Validate(ctx, token)
}

// Register creates a patron account
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Registration, error) {
	if !password.ValidatePassword(in.Password) {
		return nil, domain.ErrInvalidInput
	}

	out, err := s.accountRepo.RegisterPatron(ctx, repositories.RegisterPatronParams{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Password:    in.Password,
		Phone:       in.Phone,
		Address:     in.Address,
		DateOfBirth: in.DateOfBirth,
	})
	if err != nil {
		return nil, err
	}

	if !succeeded(out.Success) {
		return nil, &domain.Rejection{Err: domain.ErrRegistrationRejected, Message: deref(out.Message)}
	}
	if out.UserID == nil || out.PatronID == nil || out.CardNumber == nil {
		return nil, domain.ErrIncompleteResult
	}

	s.log.Info("Patron registered",
		logger.Int64("user_id", *out.UserID),
		logger.Int64("patron_id", *out.PatronID),
	)
	return &domain.Registration{
		UserID:     *out.UserID,
		PatronID:   *out.PatronID,
		CardNumber: *out.CardNumber,
	}, nil
}

// ChangePassword changes the authenticated user's password
func (s *AuthService) ChangePassword(ctx context.Context, auth *domain.AuthenticatedContext, oldPassword, newPassword string) error {
	if !password.ValidatePassword(newPassword) || oldPassword == newPassword {
		return domain.ErrInvalidInput
	}

	out, err := s.accountRepo.ChangePassword(ctx, auth.UserID, oldPassword, newPassword)
	if err != nil {
		return err
	}
	if !succeeded(out.Success) {
		return &domain.Rejection{Err: domain.ErrPasswordChangeRejected, Message: deref(out.Message)}
	}

	s.log.Info("Password changed", logger.Int64("user_id", auth.UserID))
	return nil
}

// Me returns the caller's identity. The credential secret never leaves
// the server: it is tagged out of JSON.
func (s *AuthService) Me(auth *domain.AuthenticatedContext) *domain.AuthenticatedContext {
	return auth
}

func succeeded(flag *int) bool {
	return flag != nil && *flag == 1
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
