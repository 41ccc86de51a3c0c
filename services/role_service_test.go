package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ozownz/meme-battles/models"
	"github.com/ozownz/meme-battles/repositories"
)

func TestRoleService_IsAdmin_RoleRecord(t *testing.T) {
	roleRepo := newFakeRoleRepo()
	roleRepo.roles[1] = &models.UserRole{UserID: 1, Role: models.RoleAdmin}
	roleRepo.roles[2] = &models.UserRole{UserID: 2, Role: models.RoleUser}

	svc := NewRoleService(roleRepo, nil, testLogger())

	assert.True(t, svc.IsAdmin(context.Background(), 1, "user1@example.com"))
	assert.False(t, svc.IsAdmin(context.Background(), 2, "user2@example.com"))
	assert.False(t, svc.IsAdmin(context.Background(), 3, "user3@example.com"))
}

func TestRoleService_IsAdmin_EmailFallback(t *testing.T) {
	roleRepo := newFakeRoleRepo()
	svc := NewRoleService(roleRepo, []string{"boss@example.com"}, testLogger())

	assert.True(t, svc.IsAdmin(context.Background(), 5, "boss@example.com"))
	assert.False(t, svc.IsAdmin(context.Background(), 5, "someone@example.com"))
}

func TestRoleService_IsAdmin_EmailFallbackCaseInsensitive(t *testing.T) {
	roleRepo := newFakeRoleRepo()
	svc := NewRoleService(roleRepo, []string{"boss@example.com"}, testLogger())

	assert.True(t, svc.IsAdmin(context.Background(), 5, "Boss@Example.COM"))
}

func TestRoleService_IsAdmin_NonAdminRecordStillChecksEmails(t *testing.T) {
	// Запись с ролью user не блокирует email-список.
	roleRepo := newFakeRoleRepo()
	roleRepo.roles[7] = &models.UserRole{UserID: 7, Role: models.RoleUser}
	svc := NewRoleService(roleRepo, []string{"boss@example.com"}, testLogger())

	assert.True(t, svc.IsAdmin(context.Background(), 7, "boss@example.com"))
}

func TestRoleService_IsAdmin_StoreUnavailable(t *testing.T) {
	// Недоступная таблица ролей не роняет проверку: работает email-список.
	roleRepo := newFakeRoleRepo()
	roleRepo.err = repositories.ErrRoleStoreUnavailable
	svc := NewRoleService(roleRepo, []string{"boss@example.com"}, testLogger())

	assert.True(t, svc.IsAdmin(context.Background(), 5, "boss@example.com"))
	assert.False(t, svc.IsAdmin(context.Background(), 5, "other@example.com"))
}

func TestRoleService_IsAdmin_UnexpectedErrorAbsorbed(t *testing.T) {
	roleRepo := newFakeRoleRepo()
	roleRepo.err = errors.New("connection reset")
	svc := NewRoleService(roleRepo, []string{"boss@example.com"}, testLogger())

	assert.True(t, svc.IsAdmin(context.Background(), 5, "boss@example.com"))
	assert.False(t, svc.IsAdmin(context.Background(), 6, "other@example.com"))
}

func TestRoleService_IsAdmin_EmptyEmail(t *testing.T) {
	roleRepo := newFakeRoleRepo()
	svc := NewRoleService(roleRepo, []string{"boss@example.com"}, testLogger())

	assert.False(t, svc.IsAdmin(context.Background(), 5, ""))
}
