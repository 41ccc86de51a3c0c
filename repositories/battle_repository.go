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
	ErrBattleNotFound       = errors.New("battle not found")
	ErrBattleInvalidCreator = errors.New("invalid battle creator reference")
	// ErrBattleStatusConflict: статус поменялся между чтением и обновлением
	// (два одновременных advance). Проигравший вызов получает конфликт.
	ErrBattleStatusConflict = errors.New("battle status changed concurrently")
)

type ListBattlesFilter struct {
	Status    *models.BattleStatus
	CreatedBy *int
	Limit     int
	Offset    int
}

type BattleRepository interface {
	Create(ctx context.Context, battle *models.Battle) error
	GetByID(ctx context.Context, id int) (*models.Battle, error)
	List(ctx context.Context, filter ListBattlesFilter) ([]models.Battle, error)
	UpdateStatus(ctx context.Context, id int, from, to models.BattleStatus) error
	Delete(ctx context.Context, id int) error
}

type postgresBattleRepository struct {
	db *sql.DB
}

func NewPostgresBattleRepository(db *sql.DB) BattleRepository {
	return &postgresBattleRepository{db: db}
}

func (r *postgresBattleRepository) Create(ctx context.Context, b *models.Battle) error {
	query := `
		INSERT INTO battles (title, status, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, b.Title, b.Status, b.CreatedBy).
		Scan(&b.ID, &b.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" && pqErr.Constraint == "battles_created_by_fkey" {
				return ErrBattleInvalidCreator
			}
		}
		return fmt.Errorf("failed to create battle: %w", err)
	}
	return nil
}

func (r *postgresBattleRepository) GetByID(ctx context.Context, id int) (*models.Battle, error) {
	query := `
		SELECT id, title, status, created_by, created_at
		FROM battles
		WHERE id = $1`

	b := &models.Battle{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Title, &b.Status, &b.CreatedBy, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBattleNotFound
		}
		return nil, fmt.Errorf("failed to get battle %d: %w", id, err)
	}
	return b, nil
}

func (r *postgresBattleRepository) List(ctx context.Context, filter ListBattlesFilter) ([]models.Battle, error) {
	query := `
		SELECT id, title, status, created_by, created_at
		FROM battles
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.CreatedBy != nil {
		query += fmt.Sprintf(" AND created_by = $%d", argID)
		args = append(args, *filter.CreatedBy)
		argID++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	battles := make([]models.Battle, 0)
	for rows.Next() {
		var b models.Battle
		if scanErr := rows.Scan(&b.ID, &b.Title, &b.Status, &b.CreatedBy, &b.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		battles = append(battles, b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return battles, nil
}

// UpdateStatus обновляет статус только если текущее значение равно ожидаемому.
// Ноль затронутых строк означает либо отсутствие баттла, либо проигранную
// гонку двух одновременных переходов.
func (r *postgresBattleRepository) UpdateStatus(ctx context.Context, id int, from, to models.BattleStatus) error {
	query := `UPDATE battles SET status = $1 WHERE id = $2 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update battle status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		var exists bool
		checkErr := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM battles WHERE id = $1)`, id).Scan(&exists)
		if checkErr != nil {
			return fmt.Errorf("failed to check battle existence: %w", checkErr)
		}
		if !exists {
			return ErrBattleNotFound
		}
		return ErrBattleStatusConflict
	}
	return nil
}

// Delete удаляет баттл вместе со всеми ссылающимися на него строками.
// Дочерние таблицы чистятся раньше родительской, порядок обязателен
// из-за внешних ключей; вся последовательность — одна транзакция.
func (r *postgresBattleRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	if txErr = deleteBattleCascade(ctx, tx, id); txErr != nil {
		return txErr
	}

	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("failed to commit battle deletion: %w", txErr)
	}
	return nil
}

// deleteBattleCascade выполняет упорядоченное удаление внутри переданного
// исполнителя (ожидается транзакция).
func deleteBattleCascade(ctx context.Context, exec SQLExecutor, id int) error {
	childDeletes := []string{
		`DELETE FROM participants WHERE battle_id = $1`,
		`DELETE FROM submissions WHERE battle_id = $1`,
		`DELETE FROM votes WHERE battle_id = $1`,
	}
	for _, q := range childDeletes {
		if _, err := exec.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("failed to delete battle children: %w", err)
		}
	}

	result, err := exec.ExecContext(ctx, `DELETE FROM battles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete battle %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBattleNotFound)
}
