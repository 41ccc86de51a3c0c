package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ozownz/meme-battles/live"
	"github.com/ozownz/meme-battles/models"
	"github.com/ozownz/meme-battles/repositories"
)

var (
	ErrBattleTitleRequired    = errors.New("battle title is required")
	ErrBattleAlreadyCompleted = errors.New("battle is already completed")
	ErrBattleInvalidStatus    = errors.New("invalid battle status provided")
	// Создание доступно только администраторам; управление (advance/delete) —
	// также создателю баттла.
	ErrBattleCreateForbidden = errors.New("only administrators can create battles")
	ErrBattleActionForbidden = errors.New("not authorized to manage this battle")
	// Два одновременных перехода статуса: проигравший получает конфликт,
	// а не молчаливую гонку.
	ErrBattleStatusConflict = errors.New("battle status was changed by another request")
)

type CreateBattleInput struct {
	Title string `json:"title"`
}

type ListBattlesFilter struct {
	Status    *models.BattleStatus
	CreatedBy *int
	Limit     int
	Offset    int
}

// BattleDetails — страница баттла: участники и счётчики.
type BattleDetails struct {
	Battle          *models.Battle       `json:"battle"`
	Participants    []models.Participant `json:"participants"`
	SubmissionCount int                  `json:"submission_count"`
	VoteCount       int                  `json:"vote_count"`
}

type BattleService interface {
	CreateBattle(ctx context.Context, currentUserID int, currentUserEmail string, input CreateBattleInput) (*models.Battle, error)
	GetBattleByID(ctx context.Context, id int) (*models.Battle, error)
	GetBattleDetails(ctx context.Context, id int) (*BattleDetails, error)
	ListBattles(ctx context.Context, filter ListBattlesFilter) ([]models.Battle, error)
	AdvanceBattleStatus(ctx context.Context, battleID, currentUserID int, currentUserEmail string) (models.BattleStatus, error)
	DeleteBattle(ctx context.Context, battleID, currentUserID int, currentUserEmail string) error
	InviteToBattle(ctx context.Context, battleID, currentUserID int, currentUserEmail, inviteeEmail string) error
}

// BattleInviteMailer отправляет приглашение присоединиться к баттлу.
type BattleInviteMailer interface {
	SendBattleInviteEmail(userEmail, battleTitle string, battleID int) error
}

type battleService struct {
	battleRepo      repositories.BattleRepository
	participantRepo repositories.ParticipantRepository
	submissionRepo  repositories.SubmissionRepository
	voteRepo        repositories.VoteRepository
	userRepo        repositories.UserRepository
	roles           RoleService
	mailer          BattleInviteMailer
	hub             *live.Hub
	logger          *slog.Logger
}

func NewBattleService(
	battleRepo repositories.BattleRepository,
	participantRepo repositories.ParticipantRepository,
	submissionRepo repositories.SubmissionRepository,
	voteRepo repositories.VoteRepository,
	userRepo repositories.UserRepository,
	roles RoleService,
	mailer BattleInviteMailer,
	hub *live.Hub,
	logger *slog.Logger,
) BattleService {
	return &battleService{
		battleRepo:      battleRepo,
		participantRepo: participantRepo,
		submissionRepo:  submissionRepo,
		voteRepo:        voteRepo,
		userRepo:        userRepo,
		roles:           roles,
		mailer:          mailer,
		hub:             hub,
		logger:          logger,
	}
}

// nextBattleStatus — односторонний одношаговый переход
// collecting → voting → completed. Неизвестное значение статуса
// трактуется как collecting.
func nextBattleStatus(current models.BattleStatus) (models.BattleStatus, error) {
	switch current {
	case models.StatusCollecting:
		return models.StatusVoting, nil
	case models.StatusVoting:
		return models.StatusCompleted, nil
	case models.StatusCompleted:
		return "", ErrBattleAlreadyCompleted
	default:
		return models.StatusCollecting, nil
	}
}

// canManage: создатель баттла или администратор.
func (s *battleService) canManage(ctx context.Context, battle *models.Battle, userID int, email string) bool {
	if battle.CreatedBy == userID {
		return true
	}
	return s.roles.IsAdmin(ctx, userID, email)
}

func (s *battleService) CreateBattle(ctx context.Context, currentUserID int, currentUserEmail string, input CreateBattleInput) (*models.Battle, error) {
	if !s.roles.IsAdmin(ctx, currentUserID, currentUserEmail) {
		return nil, ErrBattleCreateForbidden
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrBattleTitleRequired
	}

	battle := &models.Battle{
		Title:     title,
		Status:    models.StatusCollecting,
		CreatedBy: currentUserID,
	}
	if err := s.battleRepo.Create(ctx, battle); err != nil {
		if errors.Is(err, repositories.ErrBattleInvalidCreator) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create battle: %w", err)
	}

	s.logger.Info("battle created",
		slog.Int("battle_id", battle.ID), slog.Int("created_by", currentUserID))
	return battle, nil
}

func (s *battleService) GetBattleByID(ctx context.Context, id int) (*models.Battle, error) {
	battle, err := s.battleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrBattleNotFound) {
			return nil, ErrBattleNotFound
		}
		return nil, err
	}
	return battle, nil
}

// GetBattleDetails загружает участников и счётчики параллельно.
func (s *battleService) GetBattleDetails(ctx context.Context, id int) (*BattleDetails, error) {
	battle, err := s.GetBattleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	details := &BattleDetails{Battle: battle}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		participants, listErr := s.participantRepo.ListByBattle(gCtx, id)
		if listErr != nil {
			return fmt.Errorf("failed to load battle participants: %w", listErr)
		}
		details.Participants = dereferenceParticipants(participants)
		return nil
	})

	g.Go(func() error {
		count, countErr := s.submissionRepo.CountByBattle(gCtx, id)
		if countErr != nil {
			return fmt.Errorf("failed to count battle submissions: %w", countErr)
		}
		details.SubmissionCount = count
		return nil
	})

	g.Go(func() error {
		count, countErr := s.voteRepo.CountByBattle(gCtx, id)
		if countErr != nil {
			return fmt.Errorf("failed to count battle votes: %w", countErr)
		}
		details.VoteCount = count
		return nil
	})

	g.Go(func() error {
		creator, userErr := s.userRepo.GetByID(gCtx, battle.CreatedBy)
		if userErr != nil {
			// Создатель мог быть удалён; страница баттла всё равно отдаётся.
			s.logger.Warn("battle creator lookup failed",
				slog.Int("battle_id", id), slog.Any("error", userErr))
			return nil
		}
		creator.PasswordHash = ""
		battle.Creator = creator
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

func (s *battleService) ListBattles(ctx context.Context, filter ListBattlesFilter) ([]models.Battle, error) {
	if filter.Status != nil && !isValidBattleStatus(*filter.Status) {
		return nil, ErrBattleInvalidStatus
	}
	return s.battleRepo.List(ctx, repositories.ListBattlesFilter{
		Status:    filter.Status,
		CreatedBy: filter.CreatedBy,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	})
}

func (s *battleService) AdvanceBattleStatus(ctx context.Context, battleID, currentUserID int, currentUserEmail string) (models.BattleStatus, error) {
	// Порядок проверок фиксирован: not found раньше авторизации.
	battle, err := s.GetBattleByID(ctx, battleID)
	if err != nil {
		return "", err
	}

	if !s.canManage(ctx, battle, currentUserID, currentUserEmail) {
		return "", ErrBattleActionForbidden
	}

	next, err := nextBattleStatus(battle.Status)
	if err != nil {
		return "", err
	}

	if err := s.battleRepo.UpdateStatus(ctx, battleID, battle.Status, next); err != nil {
		switch {
		case errors.Is(err, repositories.ErrBattleNotFound):
			return "", ErrBattleNotFound
		case errors.Is(err, repositories.ErrBattleStatusConflict):
			return "", ErrBattleStatusConflict
		}
		return "", fmt.Errorf("failed to update battle status: %w", err)
	}

	s.logger.Info("battle status advanced",
		slog.Int("battle_id", battleID),
		slog.String("from", string(battle.Status)),
		slog.String("to", string(next)))

	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(battleID), live.Event{
			Type:    live.EventBattleStatusUpdated,
			Payload: map[string]interface{}{"battle_id": battleID, "status": next},
		})
	}
	return next, nil
}

func (s *battleService) DeleteBattle(ctx context.Context, battleID, currentUserID int, currentUserEmail string) error {
	battle, err := s.GetBattleByID(ctx, battleID)
	if err != nil {
		return err
	}

	if !s.canManage(ctx, battle, currentUserID, currentUserEmail) {
		return ErrBattleActionForbidden
	}

	if err := s.battleRepo.Delete(ctx, battleID); err != nil {
		if errors.Is(err, repositories.ErrBattleNotFound) {
			return ErrBattleNotFound
		}
		return fmt.Errorf("failed to delete battle: %w", err)
	}

	s.logger.Info("battle deleted",
		slog.Int("battle_id", battleID), slog.Int("deleted_by", currentUserID))

	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(battleID), live.Event{
			Type:    live.EventBattleDeleted,
			Payload: map[string]interface{}{"battle_id": battleID},
		})
	}
	return nil
}

func (s *battleService) InviteToBattle(ctx context.Context, battleID, currentUserID int, currentUserEmail, inviteeEmail string) error {
	inviteeEmail = strings.TrimSpace(inviteeEmail)
	if inviteeEmail == "" {
		return fmt.Errorf("%w: invitee email is required", ErrValidationFailed)
	}

	battle, err := s.GetBattleByID(ctx, battleID)
	if err != nil {
		return err
	}

	if !s.canManage(ctx, battle, currentUserID, currentUserEmail) {
		return ErrBattleActionForbidden
	}

	if err := s.mailer.SendBattleInviteEmail(inviteeEmail, battle.Title, battle.ID); err != nil {
		return fmt.Errorf("failed to send battle invite: %w", err)
	}

	s.logger.Info("battle invite sent",
		slog.Int("battle_id", battleID), slog.Int("invited_by", currentUserID))
	return nil
}

func isValidBattleStatus(status models.BattleStatus) bool {
	switch status {
	case models.StatusCollecting, models.StatusVoting, models.StatusCompleted:
		return true
	default:
		return false
	}
}
