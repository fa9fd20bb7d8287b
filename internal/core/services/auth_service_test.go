package services

import (
	"context"
	"testing"
	"time"

	"libris/internal/adapters/persistence/models"
	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuthServiceSuite struct {
	suite.Suite
	sessions *mockSessionRepo
	accounts *mockAccountRepo
	svc      *AuthService
}

func (s *AuthServiceSuite) SetupTest() {
	s.sessions = new(mockSessionRepo)
	s.accounts = new(mockAccountRepo)
	s.svc = NewAuthService(s.sessions, s.accounts, NewLoginThrottle(time.Minute, 3), logger.NewNop())
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) TestLoginSuccess() {
	s.sessions.On("Authenticate", mock.Anything, "jdoe", "Secret123").Return(&models.AuthenticateOut{
		SessionID: ptr("a1b2c3"),
		UserID:    ptr(int64(42)),
		Success:   ptr(1),
		Message:   ptr("Login successful"),
	}, nil)

	res, err := s.svc.Login(context.Background(), "jdoe", "Secret123")

	s.Require().NoError(err)
	s.Equal("a1b2c3", res.Token)
	s.Equal(int64(42), res.UserID)
}

func (s *AuthServiceSuite) TestLoginRejectedKeepsDatabaseMessage() {
	s.sessions.On("Authenticate", mock.Anything, "jdoe", "wrong").Return(&models.AuthenticateOut{
		Success: ptr(0),
		Message: ptr("Invalid username or password"),
	}, nil)

	_, err := s.svc.Login(context.Background(), "jdoe", "wrong")

	s.ErrorIs(err, domain.ErrInvalidCredentials)
	s.EqualError(err, "Invalid username or password")
}

func (s *AuthServiceSuite) TestLoginMissingSession() {
	s.sessions.On("Authenticate", mock.Anything, "jdoe", "Secret123").Return(&models.AuthenticateOut{
		Success: ptr(1),
		UserID:  ptr(int64(42)),
	}, nil)

	_, err := s.svc.Login(context.Background(), "jdoe", "Secret123")

	s.ErrorIs(err, domain.ErrIncompleteResult)
}

func (s *AuthServiceSuite) TestLoginThrottled() {
	s.sessions.On("Authenticate", mock.Anything, "jdoe", "wrong").Return(&models.AuthenticateOut{Success: ptr(0)}, nil)

	for i := 0; i < 3; i++ {
		_, err := s.svc.Login(context.Background(), "jdoe", "wrong")
		s.ErrorIs(err, domain.ErrInvalidCredentials)
	}
	_, err := s.svc.Login(context.Background(), "JDoe", "wrong")

	s.ErrorIs(err, domain.ErrLoginThrottled)
	s.sessions.AssertNumberOfCalls(s.T(), "Authenticate", 3)
}

func (s *AuthServiceSuite) TestLogout() {
	s.sessions.On("Logout", mock.Anything, "tok").Return(&models.StatusOut{Success: ptr(1)}, nil)
	s.sessions.On("Logout", mock.Anything, "gone").Return(&models.StatusOut{Success: ptr(0), Message: ptr("Session not found")}, nil)

	s.NoError(s.svc.Logout(context.Background(), "tok"))
	s.ErrorIs(s.svc.Logout(context.Background(), ""), domain.ErrMissingToken)

	err := s.svc.Logout(context.Background(), "gone")
	s.ErrorIs(err, domain.ErrInvalidSession)
	s.Contains(err.Error(), "Session not found")
}

func (s *AuthServiceSuite) TestValidateSession() {
	s.sessions.On("Validate", mock.Anything, "tok").Return(&models.ValidateSessionOut{
		IsValid: ptr(1),
		UserID:  ptr(int64(42)),
		Message: ptr("Session valid"),
	}, nil)

	v, err := s.svc.ValidateSession(context.Background(), "tok")
	s.Require().NoError(err)
	s.True(v.Valid)
	s.Equal(int64(42), v.UserID)

	v, err = s.svc.ValidateSession(context.Background(), "")
	s.Require().NoError(err)
	s.False(v.Valid)
	s.Zero(v.UserID)
}

func (s *AuthServiceSuite) TestRegister() {
	in := RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.org",
		Password:  "Engine1843",
	}
	s.accounts.On("RegisterPatron", mock.Anything, repositories.RegisterPatronParams{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.org",
		Password:  "Engine1843",
	}).Return(&models.RegisterPatronOut{
		UserID:     ptr(int64(50)),
		PatronID:   ptr(int64(1050)),
		CardNumber: ptr("LIB-000050"),
		Success:    ptr(1),
	}, nil)

	reg, err := s.svc.Register(context.Background(), in)

	s.Require().NoError(err)
	s.Equal("LIB-000050", reg.CardNumber)
	s.Equal(int64(1050), reg.PatronID)
}

func (s *AuthServiceSuite) TestRegisterRejected() {
	s.accounts.On("RegisterPatron", mock.Anything, mock.Anything).Return(&models.RegisterPatronOut{
		Success: ptr(0),
		Message: ptr("Email already registered"),
	}, nil)

	_, err := s.svc.Register(context.Background(), RegisterInput{Email: "ada@example.org", Password: "Engine1843"})

	s.ErrorIs(err, domain.ErrRegistrationRejected)
	s.EqualError(err, "Email already registered")
}

func (s *AuthServiceSuite) TestRegisterWeakPassword() {
	_, err := s.svc.Register(context.Background(), RegisterInput{Email: "ada@example.org", Password: "short"})

	s.ErrorIs(err, domain.ErrInvalidInput)
	s.accounts.AssertNotCalled(s.T(), "RegisterPatron", mock.Anything, mock.Anything)
}

func (s *AuthServiceSuite) TestChangePassword() {
	auth := clerkContext()
	s.accounts.On("ChangePassword", mock.Anything, int64(1), "OldSecret1", "NewSecret1").
		Return(&models.StatusOut{Success: ptr(1)}, nil)
	s.accounts.On("ChangePassword", mock.Anything, int64(1), "WrongOld1", "NewSecret1").
		Return(&models.StatusOut{Success: ptr(0), Message: ptr("Current password is incorrect")}, nil)

	s.NoError(s.svc.ChangePassword(context.Background(), auth, "OldSecret1", "NewSecret1"))

	err := s.svc.ChangePassword(context.Background(), auth, "WrongOld1", "NewSecret1")
	s.ErrorIs(err, domain.ErrPasswordChangeRejected)

	s.ErrorIs(s.svc.ChangePassword(context.Background(), auth, "Same1234", "Same1234"), domain.ErrInvalidInput)
}

func TestAuthService_Me(t *testing.T) {
	svc := NewAuthService(new(mockSessionRepo), new(mockAccountRepo), nil, logger.NewNop())
	auth := clerkContext()

	assert.Same(t, auth, svc.Me(auth))
}

func TestLoginThrottle(t *testing.T) {
	th := NewLoginThrottle(time.Minute, 2)
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	th.now = func() time.Time { return now }

	assert.True(t, th.Allow("jdoe"))
	assert.True(t, th.Allow(" JDOE "))
	assert.False(t, th.Allow("jdoe"))
	assert.True(t, th.Allow("other"), "limits are per username")

	now = now.Add(time.Minute)
	assert.True(t, th.Allow("jdoe"))
	assert.False(t, th.Allow("jdoe"))
}

func TestLoginThrottle_SweepsIdleEntries(t *testing.T) {
	th := NewLoginThrottle(time.Second, 1)
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	th.now = func() time.Time { return now }

	for i := 0; i <= sweepThreshold; i++ {
		th.Allow(time.Duration(i).String())
	}
	require.Len(t, th.limiters, sweepThreshold+1)

	now = now.Add(time.Hour)
	th.Allow("fresh")

	assert.Len(t, th.limiters, 1)
}
