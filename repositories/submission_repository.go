package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// Механика загрузки мемов ещё не реализована, поэтому репозиторий
// ограничен счётчиком для страницы баттла. Каскадное удаление строк
// выполняет BattleRepository.Delete в общей транзакции.
type SubmissionRepository interface {
	CountByBattle(ctx context.Context, battleID int) (int, error)
}

type postgresSubmissionRepository struct {
	db *sql.DB
}

func NewPostgresSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &postgresSubmissionRepository{db: db}
}

func (r *postgresSubmissionRepository) CountByBattle(ctx context.Context, battleID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM submissions WHERE battle_id = $1`, battleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions for battle %d: %w", battleID, err)
	}
	return count, nil
}
