package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/ozownz/meme-battles/models"
	"github.com/ozownz/meme-battles/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- BattleRepository ---

type fakeBattleRepo struct {
	battles map[int]*models.Battle
	nextID  int

	createErr       error
	updateStatusErr error
	deleteCalls     int
}

func newFakeBattleRepo() *fakeBattleRepo {
	return &fakeBattleRepo{battles: make(map[int]*models.Battle), nextID: 1}
}

func (r *fakeBattleRepo) add(b models.Battle) *models.Battle {
	if b.ID == 0 {
		b.ID = r.nextID
		r.nextID++
	} else if b.ID >= r.nextID {
		r.nextID = b.ID + 1
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	stored := b
	r.battles[stored.ID] = &stored
	return &stored
}

func (r *fakeBattleRepo) Create(_ context.Context, b *models.Battle) error {
	if r.createErr != nil {
		return r.createErr
	}
	b.ID = r.nextID
	r.nextID++
	b.CreatedAt = time.Now()
	stored := *b
	r.battles[b.ID] = &stored
	return nil
}

func (r *fakeBattleRepo) GetByID(_ context.Context, id int) (*models.Battle, error) {
	b, ok := r.battles[id]
	if !ok {
		return nil, repositories.ErrBattleNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBattleRepo) List(_ context.Context, filter repositories.ListBattlesFilter) ([]models.Battle, error) {
	var result []models.Battle
	for _, b := range r.battles {
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.CreatedBy != nil && b.CreatedBy != *filter.CreatedBy {
			continue
		}
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeBattleRepo) UpdateStatus(_ context.Context, id int, from, to models.BattleStatus) error {
	if r.updateStatusErr != nil {
		return r.updateStatusErr
	}
	b, ok := r.battles[id]
	if !ok {
		return repositories.ErrBattleNotFound
	}
	if b.Status != from {
		return repositories.ErrBattleStatusConflict
	}
	b.Status = to
	return nil
}

func (r *fakeBattleRepo) Delete(_ context.Context, id int) error {
	r.deleteCalls++
	if _, ok := r.battles[id]; !ok {
		return repositories.ErrBattleNotFound
	}
	delete(r.battles, id)
	return nil
}

// --- ParticipantRepository ---

type fakeParticipantRepo struct {
	participants map[int]*models.Participant
	nextID       int

	createErr error
	// findMisses заставляет FindByBattleAndUser промахнуться N раз,
	// что позволяет воспроизвести гонку вставки.
	findMisses int
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: make(map[int]*models.Participant), nextID: 1}
}

func (r *fakeParticipantRepo) Create(_ context.Context, p *models.Participant) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.participants {
		if existing.BattleID == p.BattleID && existing.UserID == p.UserID {
			return repositories.ErrParticipantConflict
		}
	}
	p.ID = r.nextID
	r.nextID++
	p.CreatedAt = time.Now()
	stored := *p
	r.participants[p.ID] = &stored
	return nil
}

func (r *fakeParticipantRepo) FindByBattleAndUser(_ context.Context, battleID, userID int) (*models.Participant, error) {
	if r.findMisses > 0 {
		r.findMisses--
		return nil, repositories.ErrParticipantNotFound
	}
	for _, p := range r.participants {
		if p.BattleID == battleID && p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) ListByBattle(_ context.Context, battleID int) ([]*models.Participant, error) {
	var result []*models.Participant
	for _, p := range r.participants {
		if p.BattleID == battleID {
			copied := *p
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeParticipantRepo) CountByBattle(_ context.Context, battleID int) (int, error) {
	count := 0
	for _, p := range r.participants {
		if p.BattleID == battleID {
			count++
		}
	}
	return count, nil
}

func (r *fakeParticipantRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.participants[id]; !ok {
		return repositories.ErrParticipantNotFound
	}
	delete(r.participants, id)
	return nil
}

// --- Счётчики сабмишенов и голосов ---

type fakeCountRepo struct {
	counts map[int]int
	err    error
}

func (r *fakeCountRepo) CountByBattle(_ context.Context, battleID int) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.counts[battleID], nil
}

// --- RoleRepository ---

type fakeRoleRepo struct {
	roles map[int]*models.UserRole
	err   error

	upsertErr error
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[int]*models.UserRole)}
}

func (r *fakeRoleRepo) GetByUserID(_ context.Context, userID int) (*models.UserRole, error) {
	if r.err != nil {
		return nil, r.err
	}
	role, ok := r.roles[userID]
	if !ok {
		return nil, repositories.ErrRoleNotFound
	}
	copied := *role
	return &copied, nil
}

func (r *fakeRoleRepo) Upsert(_ context.Context, role *models.UserRole) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	stored := *role
	r.roles[role.UserID] = &stored
	return nil
}

// --- UserRepository ---

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (r *fakeUserRepo) add(u models.User) *models.User {
	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	} else if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	stored := u
	r.users[stored.ID] = &stored
	return &stored
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
		if existing.Nickname == u.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByConfirmationToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range r.users {
		if u.EmailConfirmationToken != nil && *u.EmailConfirmationToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByPasswordResetToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range r.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *fakeUserRepo) ConfirmEmail(_ context.Context, id int) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.EmailConfirmed = true
	u.EmailConfirmationToken = nil
	return nil
}

func (r *fakeUserRepo) SetPasswordResetToken(_ context.Context, id int, token string, expiresAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.PasswordResetToken = &token
	u.PasswordResetExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) UpdateAvatarKey(_ context.Context, id int, avatarKey *string) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.AvatarKey = avatarKey
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var result []models.User
	for _, u := range r.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

// --- RoleService ---

type fakeRoleService struct {
	admins map[int]bool
}

func (s *fakeRoleService) IsAdmin(_ context.Context, userID int, _ string) bool {
	return s.admins[userID]
}

// --- BattleInviteMailer ---

type fakeInviteMailer struct {
	sent []string
	err  error
}

func (m *fakeInviteMailer) SendBattleInviteEmail(userEmail, _ string, _ int) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, userEmail)
	return nil
}
