package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// Подсчёт результатов голосования не реализован; см. submission_repository.go.
type VoteRepository interface {
	CountByBattle(ctx context.Context, battleID int) (int, error)
}

type postgresVoteRepository struct {
	db *sql.DB
}

func NewPostgresVoteRepository(db *sql.DB) VoteRepository {
	return &postgresVoteRepository{db: db}
}

func (r *postgresVoteRepository) CountByBattle(ctx context.Context, battleID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE battle_id = $1`, battleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes for battle %d: %w", battleID, err)
	}
	return count, nil
}
