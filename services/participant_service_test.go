package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozownz/meme-battles/models"
)

func newTestParticipantService(battleRepo *fakeBattleRepo, participantRepo *fakeParticipantRepo) ParticipantService {
	return NewParticipantService(participantRepo, battleRepo, newFakeUserRepo(), nil, testLogger())
}

func TestParticipantService_JoinBattle(t *testing.T) {
	battleRepo := newFakeBattleRepo()
	battle := battleRepo.add(models.Battle{Title: "Join", Status: models.StatusCollecting, CreatedBy: 1})
	svc := newTestParticipantService(battleRepo, newFakeParticipantRepo())

	participant, err := svc.JoinBattle(context.Background(), battle.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, battle.ID, participant.BattleID)
	assert.Equal(t, 42, participant.UserID)
	assert.NotZero(t, participant.ID)
}

func TestParticipantService_JoinBattle_Idempotent(t *testing.T) {
	// Повторный join возвращает ту же запись, а не ошибку.
	battleRepo := newFakeBattleRepo()
	battle := battleRepo.add(models.Battle{Title: "Join", Status: models.StatusCollecting, CreatedBy: 1})
	participantRepo := newFakeParticipantRepo()
	svc := newTestParticipantService(battleRepo, participantRepo)

	first, err := svc.JoinBattle(context.Background(), battle.ID, 42)
	require.NoError(t, err)

	second, err := svc.JoinBattle(context.Background(), battle.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, err := participantRepo.CountByBattle(context.Background(), battle.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestParticipantService_JoinBattle_BattleNotFound(t *testing.T) {
	svc := newTestParticipantService(newFakeBattleRepo(), newFakeParticipantRepo())

	_, err := svc.JoinBattle(context.Background(), 999, 42)
	assert.ErrorIs(t, err, ErrBattleNotFound)
}

func TestParticipantService_JoinBattle_ConflictRace(t *testing.T) {
	// Гонка: между проверкой и вставкой запись появилась. Join всё равно успешен.
	battleRepo := newFakeBattleRepo()
	battle := battleRepo.add(models.Battle{Title: "Race", Status: models.StatusCollecting, CreatedBy: 1})
	participantRepo := newFakeParticipantRepo()
	existing := &models.Participant{BattleID: battle.ID, UserID: 42}
	require.NoError(t, participantRepo.Create(context.Background(), existing))
	// Первый Find промахивается, Create возвращает конфликт,
	// повторный Find находит запись соперника.
	participantRepo.findMisses = 1

	svc := newTestParticipantService(battleRepo, participantRepo)

	participant, err := svc.JoinBattle(context.Background(), battle.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, participant.ID)
}

func TestParticipantService_ListByBattle(t *testing.T) {
	battleRepo := newFakeBattleRepo()
	battle := battleRepo.add(models.Battle{Title: "List", Status: models.StatusCollecting, CreatedBy: 1})
	participantRepo := newFakeParticipantRepo()
	svc := newTestParticipantService(battleRepo, participantRepo)

	_, err := svc.JoinBattle(context.Background(), battle.ID, 10)
	require.NoError(t, err)
	_, err = svc.JoinBattle(context.Background(), battle.ID, 20)
	require.NoError(t, err)

	participants, err := svc.ListByBattle(context.Background(), battle.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 2)
}

func TestParticipantService_ListByBattle_BattleNotFound(t *testing.T) {
	svc := newTestParticipantService(newFakeBattleRepo(), newFakeParticipantRepo())

	_, err := svc.ListByBattle(context.Background(), 999)
	assert.ErrorIs(t, err, ErrBattleNotFound)
}
