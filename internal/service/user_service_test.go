package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akazantsev/timetable-api/internal/models"
	appErrors "github.com/akazantsev/timetable-api/pkg/errors"
)

func TestCreateUserDefaultsToEditor(t *testing.T) {
	store := &fakeUserStore{}
	svc := NewUserService(store, nil, nil)

	user, err := svc.Create(context.Background(), CreateUserRequest{Username: "editor", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, user.Role)
	assert.Len(t, store.users, 1)
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	store := &fakeUserStore{users: []models.User{hashedUser("user-1", "admin", "secret123", models.RoleAdmin)}}
	svc := NewUserService(store, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{Username: "admin", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyExists.Code, appErrors.FromError(err).Code)
}

func TestDeleteUserGuards(t *testing.T) {
	store := &fakeUserStore{users: []models.User{
		hashedUser("admin-1", "admin", "secret123", models.RoleAdmin),
		hashedUser("editor-1", "editor", "secret123", models.RoleEditor),
	}}
	svc := NewUserService(store, nil, nil)

	// Self-deletion is rejected.
	err := svc.Delete(context.Background(), "admin-1", "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// The last administrator cannot be removed by anyone.
	err = svc.Delete(context.Background(), "admin-1", "editor-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// A regular editor can be removed.
	require.NoError(t, svc.Delete(context.Background(), "editor-1", "admin-1"))
	assert.Len(t, store.users, 1)
}

func TestDeleteAdminAllowedWhenAnotherExists(t *testing.T) {
	store := &fakeUserStore{users: []models.User{
		hashedUser("admin-1", "admin", "secret123", models.RoleAdmin),
		hashedUser("admin-2", "backup", "secret123", models.RoleAdmin),
	}}
	svc := NewUserService(store, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "admin-2", "admin-1"))
	assert.Len(t, store.users, 1)
}

func TestUpdateUserLastAdminDemotionRejected(t *testing.T) {
	store := &fakeUserStore{users: []models.User{hashedUser("admin-1", "admin", "secret123", models.RoleAdmin)}}
	svc := NewUserService(store, nil, nil)

	editor := models.RoleEditor
	_, err := svc.Update(context.Background(), "admin-1", UpdateUserRequest{Role: &editor})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestUpdateUserChangesPasswordAndName(t *testing.T) {
	original := hashedUser("user-1", "editor", "secret123", models.RoleEditor)
	store := &fakeUserStore{users: []models.User{original}}
	svc := NewUserService(store, nil, nil)

	password := "newsecret"
	name := "New Name"
	updated, err := svc.Update(context.Background(), "user-1", UpdateUserRequest{Password: &password, FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)
	assert.NotEqual(t, original.PasswordHash, updated.PasswordHash)
}

func TestUpdateUserNotFound(t *testing.T) {
	svc := NewUserService(&fakeUserStore{}, nil, nil)

	name := "Name"
	_, err := svc.Update(context.Background(), "missing", UpdateUserRequest{FullName: &name})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
