package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ozownz/meme-battles/models"
	"github.com/ozownz/meme-battles/repositories"
)

var ErrInvalidRole = errors.New("invalid role value")

// AdminService — административные операции: просмотр пользователей и
// назначение ролей (так заполняется таблица user_roles).
type AdminService interface {
	ListUsers(ctx context.Context, actorID int, actorEmail string, filter models.UserFilter) (models.UserListResponse, error)
	AssignRole(ctx context.Context, actorID int, actorEmail string, targetUserID int, role models.Role) (*models.UserRole, error)
}

type adminService struct {
	userRepo repositories.UserRepository
	roleRepo repositories.RoleRepository
	roles    RoleService
}

func NewAdminService(userRepo repositories.UserRepository, roleRepo repositories.RoleRepository, roles RoleService) AdminService {
	return &adminService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		roles:    roles,
	}
}

func (s *adminService) ListUsers(ctx context.Context, actorID int, actorEmail string, filter models.UserFilter) (models.UserListResponse, error) {
	if !s.roles.IsAdmin(ctx, actorID, actorEmail) {
		return models.UserListResponse{}, ErrForbiddenOperation
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return models.UserListResponse{}, err
	}

	for i := range users {
		users[i].PasswordHash = ""
	}
	return models.UserListResponse{
		Users:      users,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *adminService) AssignRole(ctx context.Context, actorID int, actorEmail string, targetUserID int, role models.Role) (*models.UserRole, error) {
	if !s.roles.IsAdmin(ctx, actorID, actorEmail) {
		return nil, ErrForbiddenOperation
	}
	if role != models.RoleAdmin && role != models.RoleUser {
		return nil, ErrInvalidRole
	}

	target, err := s.userRepo.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	userRole := &models.UserRole{
		UserID: target.ID,
		Email:  target.Email,
		Role:   role,
	}
	if err := s.roleRepo.Upsert(ctx, userRole); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}
	return userRole, nil
}
