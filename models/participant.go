package models

import "time"

type Participant struct {
	ID        int       `json:"id"`
	BattleID  int       `json:"battle_id"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	User *User `json:"user,omitempty"`
}
