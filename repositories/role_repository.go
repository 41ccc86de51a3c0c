package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/ozownz/meme-battles/models"
)

var (
	// ErrRoleNotFound — записи для пользователя нет (ноль строк).
	ErrRoleNotFound = errors.New("role record not found")
	// ErrRoleStoreUnavailable — таблица user_roles не создана или хранилище
	// недоступно. Это ожидаемое состояние для свежих инсталляций, вызывающая
	// сторона обязана различать его с ErrRoleNotFound.
	ErrRoleStoreUnavailable = errors.New("role store unavailable")
)

type RoleRepository interface {
	GetByUserID(ctx context.Context, userID int) (*models.UserRole, error)
	Upsert(ctx context.Context, role *models.UserRole) error
}

type postgresRoleRepository struct {
	db *sql.DB
}

func NewPostgresRoleRepository(db *sql.DB) RoleRepository {
	return &postgresRoleRepository{db: db}
}

func (r *postgresRoleRepository) GetByUserID(ctx context.Context, userID int) (*models.UserRole, error) {
	query := `
		SELECT id, user_id, email, role, created_at
		FROM user_roles
		WHERE user_id = $1`

	role := &models.UserRole{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&role.ID, &role.UserID, &role.Email, &role.Role, &role.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, r.unavailable(err)
	}
	return role, nil
}

func (r *postgresRoleRepository) Upsert(ctx context.Context, role *models.UserRole) error {
	query := `
		INSERT INTO user_roles (user_id, email, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET email = EXCLUDED.email, role = EXCLUDED.role
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, role.UserID, role.Email, role.Role).
		Scan(&role.ID, &role.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "user_roles_user_id_fkey" {
			return ErrUserNotFound
		}
		return r.unavailable(err)
	}
	return nil
}

// unavailable сводит любой инфраструктурный сбой к ErrRoleStoreUnavailable,
// сохраняя исходную ошибку для логов.
func (r *postgresRoleRepository) unavailable(err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "42P01" { // undefined_table
		return fmt.Errorf("%w: user_roles table does not exist", ErrRoleStoreUnavailable)
	}
	return fmt.Errorf("%w: %v", ErrRoleStoreUnavailable, err)
}
