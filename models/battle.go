package models

import "time"

// BattleStatus представляет статусы баттла, соответствующие ENUM в БД.
type BattleStatus string

const (
	StatusCollecting BattleStatus = "collecting"
	StatusVoting     BattleStatus = "voting"
	StatusCompleted  BattleStatus = "completed"
)

// Battle представляет мем-баттл.
type Battle struct {
	ID        int          `json:"id" db:"id"`
	Title     string       `json:"title" db:"title"`
	Status    BattleStatus `json:"status" db:"status"`
	CreatedBy int          `json:"created_by" db:"created_by"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Creator      *User         `json:"creator,omitempty" db:"-"`
	Participants []Participant `json:"participants,omitempty" db:"-"`
}
