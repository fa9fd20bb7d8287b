package services

import (
	"context"
	"testing"

	"libris/internal/adapters/persistence/models"
	"libris/internal/adapters/persistence/repositories"
	"libris/internal/core/domain"
	"libris/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserAdminFixture() (*UserAdminService, *mockUserAdminRepo, *fakeBroker) {
	repo := new(mockUserAdminRepo)
	broker := &fakeBroker{}
	svc := NewUserAdminService(broker, func(*gorm.DB) repositories.UserAdminRepository { return repo }, logger.NewNop())
	return svc, repo, broker
}

func TestUserAdmin_Status(t *testing.T) {
	svc, repo, _ := newUserAdminFixture()
	repo.On("IsActive", mock.Anything, int64(42)).Return(&models.FlagValue{Value: ptr(1)}, nil)
	repo.On("IsLocked", mock.Anything, int64(42)).Return(&models.FlagValue{Value: ptr(0)}, nil)

	status, err := svc.Status(context.Background(), adminContext(), 42)

	require.NoError(t, err)
	assert.Equal(t, &domain.UserStatus{UserID: 42, IsActive: true, IsLocked: false}, status)
}

func TestUserAdmin_Roles(t *testing.T) {
	svc, repo, _ := newUserAdminFixture()
	repo.On("RoleList", mock.Anything, int64(42)).Return(&models.TextValue{Value: ptr("ROLE_PATRON, ROLE_CIRCULATION_CLERK")}, nil)
	repo.On("RoleList", mock.Anything, int64(43)).Return(&models.TextValue{Value: ptr("NO_ROLES")}, nil)

	roles, err := svc.Roles(context.Background(), adminContext(), 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_PATRON", "ROLE_CIRCULATION_CLERK"}, roles.Roles)

	roles, err = svc.Roles(context.Background(), adminContext(), 43)
	require.NoError(t, err)
	assert.Empty(t, roles.Roles)
	assert.NotNil(t, roles.Roles)
}

func TestUserAdmin_Checks(t *testing.T) {
	svc, repo, _ := newUserAdminFixture()
	repo.On("HasPermission", mock.Anything, int64(42), "CIRC_CHECKOUT").Return(&models.FlagValue{Value: ptr(0)}, nil)
	repo.On("HasRole", mock.Anything, int64(42), "ROLE_PATRON").Return(&models.FlagValue{Value: ptr(1)}, nil)

	granted, err := svc.HasPermission(context.Background(), clerkContext(), 42, "CIRC_CHECKOUT")
	require.NoError(t, err)
	assert.False(t, granted)

	granted, err = svc.HasRole(context.Background(), clerkContext(), 42, "ROLE_PATRON")
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestUserAdmin_AssignRoleRecordsCaller(t *testing.T) {
	svc, repo, broker := newUserAdminFixture()
	repo.On("AssignRole", mock.Anything, int64(42), int64(3), int64(99)).
		Return(&models.StatusOut{Success: ptr(1), Message: ptr("Role assigned")}, nil)

	require.NoError(t, svc.AssignRole(context.Background(), adminContext(), 42, 3))
	assert.Equal(t, []string{"user_sysadmin"}, broker.principals)
}

func TestUserAdmin_RevokeRoleRejected(t *testing.T) {
	svc, repo, _ := newUserAdminFixture()
	repo.On("RevokeRole", mock.Anything, int64(42), int64(3)).
		Return(&models.StatusOut{Success: ptr(0), Message: ptr("User does not have this role")}, nil)

	err := svc.RevokeRole(context.Background(), adminContext(), 42, 3)

	assert.ErrorIs(t, err, domain.ErrRoleChangeRejected)
	assert.EqualError(t, err, "User does not have this role")
}
