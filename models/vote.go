package models

import "time"

// Vote — то же, что и Submission: подсчёт голосов не реализован,
// таблица участвует только в каскаде и счётчиках.
type Vote struct {
	ID        int       `json:"id"`
	BattleID  int       `json:"battle_id"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
