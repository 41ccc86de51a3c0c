package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ozownz/meme-battles/live"
	"github.com/ozownz/meme-battles/models"
	"github.com/ozownz/meme-battles/repositories"
)

// ParticipantService инкапсулирует членство пользователей в баттлах.
type ParticipantService interface {
	JoinBattle(ctx context.Context, battleID, userID int) (*models.Participant, error)
	ListByBattle(ctx context.Context, battleID int) ([]models.Participant, error)
}

type participantService struct {
	participantRepo repositories.ParticipantRepository
	battleRepo      repositories.BattleRepository
	userRepo        repositories.UserRepository
	hub             *live.Hub
	logger          *slog.Logger
}

func NewParticipantService(
	participantRepo repositories.ParticipantRepository,
	battleRepo repositories.BattleRepository,
	userRepo repositories.UserRepository,
	hub *live.Hub,
	logger *slog.Logger,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		battleRepo:      battleRepo,
		userRepo:        userRepo,
		hub:             hub,
		logger:          logger,
	}
}

// JoinBattle идемпотентен: повторный вход возвращает существующую запись,
// а не ошибку. Несуществующий баттл проверяется до поиска участия.
func (s *participantService) JoinBattle(ctx context.Context, battleID, userID int) (*models.Participant, error) {
	if _, err := s.battleRepo.GetByID(ctx, battleID); err != nil {
		if errors.Is(err, repositories.ErrBattleNotFound) {
			return nil, ErrBattleNotFound
		}
		return nil, fmt.Errorf("failed to check battle: %w", err)
	}

	existing, err := s.participantRepo.FindByBattleAndUser(ctx, battleID, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrParticipantNotFound) {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}

	participant := &models.Participant{
		BattleID: battleID,
		UserID:   userID,
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		switch {
		case errors.Is(err, repositories.ErrParticipantConflict):
			// Гонка двух одновременных join: запись уже есть, это успех.
			return s.participantRepo.FindByBattleAndUser(ctx, battleID, userID)
		case errors.Is(err, repositories.ErrParticipantBattleInvalid):
			return nil, ErrBattleNotFound
		case errors.Is(err, repositories.ErrParticipantUserInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to join battle: %w", err)
	}

	s.logger.Info("participant joined battle",
		slog.Int("battle_id", battleID), slog.Int("user_id", userID))

	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(battleID), live.Event{
			Type:    live.EventParticipantJoined,
			Payload: map[string]interface{}{"battle_id": battleID, "user_id": userID},
		})
	}
	return participant, nil
}

func (s *participantService) ListByBattle(ctx context.Context, battleID int) ([]models.Participant, error) {
	if _, err := s.battleRepo.GetByID(ctx, battleID); err != nil {
		if errors.Is(err, repositories.ErrBattleNotFound) {
			return nil, ErrBattleNotFound
		}
		return nil, err
	}
	participants, err := s.participantRepo.ListByBattle(ctx, battleID)
	if err != nil {
		return nil, err
	}
	result := dereferenceParticipants(participants)
	for i := range result {
		if result[i].User != nil {
			result[i].User.PasswordHash = ""
		}
	}
	return result, nil
}
