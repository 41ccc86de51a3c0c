package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ozownz/meme-battles/models"
	"github.com/ozownz/meme-battles/repositories"
)

// RoleService определяет, является ли пользователь администратором.
// Решение двухступенчатое: запись в user_roles, иначе — список
// ADMIN_EMAILS из конфигурации.
type RoleService interface {
	IsAdmin(ctx context.Context, userID int, email string) bool
}

type roleService struct {
	roleRepo    repositories.RoleRepository
	adminEmails []string
	logger      *slog.Logger
}

func NewRoleService(roleRepo repositories.RoleRepository, adminEmails []string, logger *slog.Logger) RoleService {
	return &roleService{
		roleRepo:    roleRepo,
		adminEmails: adminEmails,
		logger:      logger,
	}
}

// IsAdmin никогда не возвращает ошибку: недоступность user_roles —
// штатная ситуация для инсталляций без этой таблицы, проверка по
// email остаётся страховочной.
func (s *roleService) IsAdmin(ctx context.Context, userID int, email string) bool {
	role, err := s.roleRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		if role.Role == models.RoleAdmin {
			return true
		}
		// Запись есть, но роль не admin — даём шанс email-списку.
	case errors.Is(err, repositories.ErrRoleNotFound):
		// Записи нет, проверяем email-список.
	case errors.Is(err, repositories.ErrRoleStoreUnavailable):
		s.logger.Warn("role store unavailable, falling back to admin email list",
			slog.Int("user_id", userID), slog.Any("error", err))
	default:
		s.logger.Error("unexpected role lookup failure",
			slog.Int("user_id", userID), slog.Any("error", err))
	}

	if email == "" {
		return false
	}
	for _, admin := range s.adminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}
