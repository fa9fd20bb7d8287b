package services

import (
	"context"
	"errors"
	"testing"

	"libris/internal/adapters/persistence/models"
	"libris/internal/config"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"pgregory.net/rapid"
)

func fullCredentials() config.RoleCredentials {
	creds := make(config.RoleCredentials)
	for _, role := range domain.AllRoles() {
		creds[role] = domain.DatabaseCredential{
			Principal: "principal_" + role.Code(),
			Secret:    "secret",
		}
	}
	return creds
}

type gateFixture struct {
	gate     *AuthenticationGate
	sessions *mockSessionRepo
	roles    *mockRoleRepo
	staff    *mockStaffRepo
	metrics  *metrics.Metrics
	logs     *observer.ObservedLogs
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	vault, err := NewCredentialVault(fullCredentials())
	require.NoError(t, err)
	return newGateFixtureWithVault(t, vault)
}

func newGateFixtureWithVault(t *testing.T, vault *CredentialVault) *gateFixture {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	log := logger.FromZap(zap.New(core))

	f := &gateFixture{
		sessions: new(mockSessionRepo),
		roles:    new(mockRoleRepo),
		staff:    new(mockStaffRepo),
		metrics:  metrics.New("test", prometheus.NewRegistry()),
		logs:     logs,
	}
	f.gate = NewAuthenticationGate(
		NewSessionStore(f.sessions),
		NewRoleResolver(f.roles, log),
		f.staff,
		vault,
		f.metrics,
		log,
	)
	return f
}

func (f *gateFixture) validSession(token string, userID int64) {
	f.sessions.On("FindByToken", mock.Anything, token).Return(&models.SessionWithUser{
		Session:  models.Session{SessionID: token, UserID: userID, SessionStatus: "ACTIVE"},
		Username: "jdoe",
	}, nil)
	f.sessions.On("Validate", mock.Anything, token).Return(&models.ValidateSessionOut{
		IsValid: ptr(1),
		UserID:  ptr(userID),
		Message: ptr("Session valid"),
	}, nil)
	f.staff.On("StaffIDForUser", mock.Anything, userID).Return(int64(0), nil).Maybe()
}

func TestAuthenticate_MissingToken(t *testing.T) {
	f := newGateFixture(t)

	_, err := f.gate.Authenticate(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrMissingToken)
	f.sessions.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AuthFailures.WithLabelValues("missing_token")))
}

func TestAuthenticate_UnknownTokenShortCircuits(t *testing.T) {
	f := newGateFixture(t)
	f.sessions.On("FindByToken", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

	ac, err := f.gate.Authenticate(context.Background(), "nope")

	assert.Nil(t, ac)
	assert.ErrorIs(t, err, domain.ErrInvalidSession)
	f.sessions.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)
	f.roles.AssertNotCalled(t, "ActiveRoleCodes", mock.Anything, mock.Anything)
}

func TestAuthenticate_ExpiredSessionSurfacesDatabaseMessage(t *testing.T) {
	f := newGateFixture(t)
	f.sessions.On("FindByToken", mock.Anything, "tok").Return(&models.SessionWithUser{
		Session: models.Session{SessionID: "tok", UserID: 7},
	}, nil)
	f.sessions.On("Validate", mock.Anything, "tok").Return(&models.ValidateSessionOut{
		IsValid: ptr(0),
		UserID:  ptr(int64(7)),
		Message: ptr("Session timed out after 30 minutes"),
	}, nil)

	_, err := f.gate.Authenticate(context.Background(), "tok")

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domain.AuthSessionExpired, authErr.Kind)
	assert.Equal(t, "Session timed out after 30 minutes", authErr.Message)
	f.roles.AssertNotCalled(t, "ActiveRoleCodes", mock.Anything, mock.Anything)
}

func TestAuthenticate_NonOneFlagIsInvalid(t *testing.T) {
	f := newGateFixture(t)
	f.sessions.On("FindByToken", mock.Anything, "tok").Return(&models.SessionWithUser{
		Session: models.Session{SessionID: "tok", UserID: 7},
	}, nil)
	f.sessions.On("Validate", mock.Anything, "tok").Return(&models.ValidateSessionOut{
		IsValid: ptr(2),
		UserID:  ptr(int64(7)),
	}, nil)

	_, err := f.gate.Authenticate(context.Background(), "tok")

	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestAuthenticate_Success(t *testing.T) {
	f := newGateFixture(t)
	f.validSession("tok", 42)
	f.roles.On("ActiveRoleCodes", mock.Anything, int64(42)).
		Return([]string{"ROLE_PATRON", "ROLE_CIRCULATION_CLERK"}, nil)

	ac, err := f.gate.Authenticate(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, int64(42), ac.UserID)
	assert.Equal(t, "jdoe", ac.Username)
	assert.Equal(t, domain.RoleCirculationClerk, ac.ActingRole)
	assert.Equal(t, "principal_ROLE_CIRCULATION_CLERK", ac.Principal())
	assert.True(t, ac.Roles.Has(domain.RolePatron))
	assert.True(t, ac.IsStaff())
	assert.False(t, ac.IsAdministrative())
}

func TestAuthenticate_StaffRecordLinked(t *testing.T) {
	f := newGateFixture(t)
	f.staff.On("StaffIDForUser", mock.Anything, int64(42)).Return(int64(3), nil)
	f.validSession("tok", 42)
	f.roles.On("ActiveRoleCodes", mock.Anything, int64(42)).Return([]string{"ROLE_CIRCULATION_CLERK"}, nil)

	ac, err := f.gate.Authenticate(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, int64(3), ac.StaffID)
	assert.True(t, ac.HasStaffRecord())
}

func TestAuthenticate_PatronSkipsStaffLookup(t *testing.T) {
	f := newGateFixture(t)
	f.validSession("tok", 42)
	f.roles.On("ActiveRoleCodes", mock.Anything, int64(42)).Return([]string{"ROLE_PATRON"}, nil)

	ac, err := f.gate.Authenticate(context.Background(), "tok")

	require.NoError(t, err)
	assert.Zero(t, ac.StaffID)
	f.staff.AssertNotCalled(t, "StaffIDForUser", mock.Anything, mock.Anything)
}

func TestAuthenticate_StaffLookupFailure(t *testing.T) {
	f := newGateFixture(t)
	dbDown := &domain.ConnectivityError{Op: "query", Err: errors.New("connection reset")}
	f.staff.On("StaffIDForUser", mock.Anything, int64(42)).Return(int64(0), dbDown)
	f.validSession("tok", 42)
	f.roles.On("ActiveRoleCodes", mock.Anything, int64(42)).Return([]string{"ROLE_CATALOGER"}, nil)

	ac, err := f.gate.Authenticate(context.Background(), "tok")

	assert.Nil(t, ac)
	assert.ErrorIs(t, err, dbDown)
}

func TestAuthenticate_NoRoleAssigned(t *testing.T) {
	f := newGateFixture(t)
	f.validSession("tok", 42)
	f.roles.On("ActiveRoleCodes", mock.Anything, int64(42)).Return([]string{}, nil)

	_, err := f.gate.Authenticate(context.Background(), "tok")

	assert.ErrorIs(t, err, domain.ErrNoRoleAssigned)
	assert.Equal(t, 1, f.logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestAuthenticate_UnknownRoleCodesAreDropped(t *testing.T) {
	f := newGateFixture(t)
	f.validSession("tok", 42)
	f.roles.On("ActiveRoleCodes", mock.Anything, int64(42)).
		Return([]string{"ROLE_JANITOR", "ROLE_PATRON"}, nil)

	ac, err := f.gate.Authenticate(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, domain.RolePatron, ac.ActingRole)
	assert.Equal(t, []string{"ROLE_PATRON"}, ac.Roles.Codes())
	assert.Equal(t, 1, f.logs.FilterMessage("Ignoring unknown role code").Len())
}

func TestAuthenticate_OnlyUnknownRolesIsNoRole(t *testing.T) {
	f := newGateFixture(t)
	f.validSession("tok", 42)
	f.roles.On("ActiveRoleCodes", mock.Anything, int64(42)).Return([]string{"ROLE_JANITOR"}, nil)

	_, err := f.gate.Authenticate(context.Background(), "tok")

	assert.ErrorIs(t, err, domain.ErrNoRoleAssigned)
}

func TestAuthenticate_NoCredentialMapping(t *testing.T) {
	vault := &CredentialVault{creds: map[domain.Role]domain.DatabaseCredential{
		domain.RolePatron: {Principal: "patron"},
	}}
	f := newGateFixtureWithVault(t, vault)
	f.validSession("tok", 42)
	f.roles.On("ActiveRoleCodes", mock.Anything, int64(42)).Return([]string{"ROLE_DIRECTOR"}, nil)

	_, err := f.gate.Authenticate(context.Background(), "tok")

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domain.AuthNoCredentialMapping, authErr.Kind)
	assert.True(t, authErr.Kind.Misconfiguration())
	assert.Equal(t, 1, f.logs.FilterMessage("No database principal for role").Len())
}

func TestAuthenticate_StoreFailureIsNotAnAuthError(t *testing.T) {
	f := newGateFixture(t)
	dbDown := &domain.ConnectivityError{Op: "query", Err: errors.New("connection refused")}
	f.sessions.On("FindByToken", mock.Anything, "tok").Return(nil, dbDown)

	_, err := f.gate.Authenticate(context.Background(), "tok")

	var authErr *domain.AuthError
	assert.False(t, errors.As(err, &authErr))
	assert.ErrorIs(t, err, dbDown)
}

func TestAuthenticate_ActingRoleIsLowestRank(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		held := rapid.SliceOfNDistinct(rapid.SampledFrom(domain.AllRoles()), 1, len(domain.AllRoles()), func(r domain.Role) domain.Role { return r }).Draw(rt, "roles")

		codes := make([]string, len(held))
		for i, r := range held {
			codes[i] = r.Code()
		}

		vault, err := NewCredentialVault(fullCredentials())
		require.NoError(rt, err)
		f := newGateFixtureWithVault(t, vault)
		f.validSession("tok", 9)
		f.roles.On("ActiveRoleCodes", mock.Anything, int64(9)).Return(codes, nil)

		ac, err := f.gate.Authenticate(context.Background(), "tok")
		require.NoError(rt, err)

		for _, r := range held {
			assert.LessOrEqual(rt, ac.ActingRole.Rank(), r.Rank())
		}
		assert.Contains(rt, held, ac.ActingRole)
	})
}

func TestCredentialVault(t *testing.T) {
	_, err := NewCredentialVault(config.RoleCredentials{
		domain.RolePatron: {Principal: "patron"},
	})
	assert.Error(t, err)

	vault, err := NewCredentialVault(fullCredentials())
	require.NoError(t, err)

	cred, err := vault.Lookup(domain.RoleCataloger)
	require.NoError(t, err)
	assert.Equal(t, "principal_ROLE_CATALOGER", cred.Principal)

	_, err = vault.Lookup(domain.Role(0))
	assert.ErrorIs(t, err, domain.ErrNoCredentialMapping)
	assert.Len(t, vault.Principals(), len(domain.AllRoles()))
}
