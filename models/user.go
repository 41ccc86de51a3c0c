package models

import "time"

type User struct {
	ID                     int        `json:"id"`
	Nickname               string     `json:"nickname"`
	Email                  string     `json:"email"`
	PasswordHash           string     `json:"-"`
	EmailConfirmed         bool       `json:"email_confirmed"`
	EmailConfirmationToken *string    `json:"-"`
	PasswordResetToken     *string    `json:"-"`
	PasswordResetExpiresAt *time.Time `json:"-"`
	AvatarKey              *string    `json:"-"`
	AvatarURL              *string    `json:"avatar_url,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserFilter struct {
	Search string
	Role   *string
	Page   int
	Limit  int
}

type UserListResponse struct {
	Users      []User `json:"users"`
	TotalCount int    `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
}
