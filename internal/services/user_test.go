package services

import (
	"context"
	"testing"

	"github.com/lsjscarlett/store-locator/internal/models"
	"github.com/lsjscarlett/store-locator/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestUserService_CreateDefaultsToViewer(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateUserRequest{Email: "New@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, models.RoleViewer, u.RoleName())
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "password123", u.PasswordHash)

	_, err = svc.Create(ctx, CreateUserRequest{Email: "new@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	missing := uint(999)
	_, err = svc.Create(ctx, CreateUserRequest{Email: "x@example.com", Password: "password123", RoleID: &missing})
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestUserService_Update(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateUserRequest{Email: "m@example.com", Password: "password123"})
	require.NoError(t, err)

	marketer := testutil.Role(t, db, models.RoleMarketer)
	updated, err := svc.Update(ctx, 42, u.ID, UpdateUserRequest{RoleID: &marketer, IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMarketer, updated.RoleName())
	assert.False(t, updated.IsActive)

	_, err = svc.Update(ctx, u.ID, u.ID, UpdateUserRequest{IsActive: boolPtr(false)})
	assert.ErrorIs(t, err, ErrSelfDeactivation)

	_, err = svc.Update(ctx, 1, 12345, UpdateUserRequest{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_List(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	for _, e := range []string{"a@example.com", "b@example.com"} {
		_, err := svc.Create(ctx, CreateUserRequest{Email: e, Password: "password123"})
		require.NoError(t, err)
	}

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)
	assert.Equal(t, models.RoleViewer, users[0].Role)
}
