package models

import "time"

// Role представляет роль пользователя в таблице user_roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// UserRole — опциональная запись роли. Отсутствие таблицы user_roles
// в развёрнутой инсталляции считается нормальным состоянием.
type UserRole struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
