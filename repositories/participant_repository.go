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
	ErrParticipantNotFound      = errors.New("participant not found")
	ErrParticipantConflict      = errors.New("participant conflict: user already joined this battle")
	ErrParticipantUserInvalid   = errors.New("participant user conflict or invalid")
	ErrParticipantBattleInvalid = errors.New("participant battle conflict or invalid")
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	FindByBattleAndUser(ctx context.Context, battleID, userID int) (*models.Participant, error)
	ListByBattle(ctx context.Context, battleID int) ([]*models.Participant, error)
	CountByBattle(ctx context.Context, battleID int) (int, error)
	Delete(ctx context.Context, id int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (battle_id, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, p.BattleID, p.UserID).
		Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "participants_battle_id_user_id_key" {
					return ErrParticipantConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "participants_user_id_fkey":
					return ErrParticipantUserInvalid
				case "participants_battle_id_fkey":
					return ErrParticipantBattleInvalid
				}
			}
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) FindByBattleAndUser(ctx context.Context, battleID, userID int) (*models.Participant, error) {
	query := `
		SELECT id, battle_id, user_id, created_at
		FROM participants
		WHERE battle_id = $1 AND user_id = $2`

	p := &models.Participant{}
	err := r.db.QueryRowContext(ctx, query, battleID, userID).
		Scan(&p.ID, &p.BattleID, &p.UserID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

// ListByBattle возвращает участников вместе с публичными данными пользователя.
func (r *postgresParticipantRepository) ListByBattle(ctx context.Context, battleID int) ([]*models.Participant, error) {
	query := `
		SELECT
			p.id, p.battle_id, p.user_id, p.created_at,
			u.id, u.nickname, u.email, u.avatar_key, u.created_at
		FROM participants p
		JOIN users u ON p.user_id = u.id
		WHERE p.battle_id = $1
		ORDER BY p.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, battleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for battle %d: %w", battleID, err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p := &models.Participant{User: &models.User{}}
		if scanErr := rows.Scan(
			&p.ID, &p.BattleID, &p.UserID, &p.CreatedAt,
			&p.User.ID, &p.User.Nickname, &p.User.Email, &p.User.AvatarKey, &p.User.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *postgresParticipantRepository) CountByBattle(ctx context.Context, battleID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE battle_id = $1`, battleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants for battle %d: %w", battleID, err)
	}
	return count, nil
}

func (r *postgresParticipantRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
