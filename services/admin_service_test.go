package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozownz/meme-battles/models"
)

func TestAdminService_ListUsers_Forbidden(t *testing.T) {
	svc := NewAdminService(newFakeUserRepo(), newFakeRoleRepo(), &fakeRoleService{admins: map[int]bool{}})

	_, err := svc.ListUsers(context.Background(), 2, "user@example.com", models.UserFilter{Page: 1, Limit: 20})
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestAdminService_ListUsers(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.add(models.User{Nickname: "one", Email: "one@example.com", PasswordHash: "secret"})
	userRepo.add(models.User{Nickname: "two", Email: "two@example.com", PasswordHash: "secret"})
	svc := NewAdminService(userRepo, newFakeRoleRepo(), &fakeRoleService{admins: map[int]bool{1: true}})

	res, err := svc.ListUsers(context.Background(), 1, "admin@example.com", models.UserFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)
	for _, u := range res.Users {
		assert.Empty(t, u.PasswordHash)
	}
}

func TestAdminService_AssignRole(t *testing.T) {
	userRepo := newFakeUserRepo()
	target := userRepo.add(models.User{Nickname: "target", Email: "target@example.com"})
	roleRepo := newFakeRoleRepo()
	svc := NewAdminService(userRepo, roleRepo, &fakeRoleService{admins: map[int]bool{1: true}})

	userRole, err := svc.AssignRole(context.Background(), 1, "admin@example.com", target.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, userRole.Role)
	assert.Equal(t, "target@example.com", userRole.Email)

	stored, err := roleRepo.GetByUserID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)
}

func TestAdminService_AssignRole_InvalidRole(t *testing.T) {
	userRepo := newFakeUserRepo()
	target := userRepo.add(models.User{Nickname: "target", Email: "target@example.com"})
	svc := NewAdminService(userRepo, newFakeRoleRepo(), &fakeRoleService{admins: map[int]bool{1: true}})

	_, err := svc.AssignRole(context.Background(), 1, "admin@example.com", target.ID, models.Role("superuser"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAdminService_AssignRole_TargetNotFound(t *testing.T) {
	svc := NewAdminService(newFakeUserRepo(), newFakeRoleRepo(), &fakeRoleService{admins: map[int]bool{1: true}})

	_, err := svc.AssignRole(context.Background(), 1, "admin@example.com", 999, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminService_AssignRole_Forbidden(t *testing.T) {
	userRepo := newFakeUserRepo()
	target := userRepo.add(models.User{Nickname: "target", Email: "target@example.com"})
	svc := NewAdminService(userRepo, newFakeRoleRepo(), &fakeRoleService{admins: map[int]bool{}})

	_, err := svc.AssignRole(context.Background(), 2, "user@example.com", target.ID, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}
