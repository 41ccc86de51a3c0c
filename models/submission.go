package models

import "time"

// Submission хранится только как ссылка на баттл: механика загрузки мемов
// ещё не реализована, строки нужны для каскадного удаления и счётчиков.
type Submission struct {
	ID            int       `json:"id"`
	BattleID      int       `json:"battle_id"`
	ParticipantID int       `json:"participant_id"`
	CreatedAt     time.Time `json:"created_at"`
}
