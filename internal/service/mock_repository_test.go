package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/noteduco342/bible-reading-backend/internal/models"
	"github.com/noteduco342/bible-reading-backend/internal/repository"
	"github.com/noteduco342/bible-reading-backend/internal/storage"
	"gorm.io/gorm"
)

// MockUserRepository is a mock implementation for tests
// It implements repository.UserRepositoryInterface.
type MockUserRepository struct {
	users  map[uint]*models.User
	nextID uint
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[uint]*models.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	user.PasswordHash = &passwordHash
	user.MustChangePassword = false
	return user, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

// MockGroupRepository is a mock implementation for tests
// It implements repository.GroupRepositoryInterface.
type MockGroupRepository struct {
	groups      map[uint]*models.Group
	memberships map[uint]map[uint]time.Time
	nextID      uint
}

func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{
		groups:      make(map[uint]*models.Group),
		memberships: make(map[uint]map[uint]time.Time),
		nextID:      1,
	}
}

func (m *MockGroupRepository) CreateWithOwner(ctx context.Context, group *models.Group, ownerID uint) error {
	for _, g := range m.groups {
		if g.InviteCode == group.InviteCode {
			return errors.New("duplicate invite code")
		}
	}
	if group.ID == 0 {
		group.ID = m.nextID
		m.nextID++
	}
	owner := ownerID
	group.OwnerID = &owner
	m.groups[group.ID] = group
	return m.AddMember(ctx, group.ID, ownerID)
}

func (m *MockGroupRepository) FindByID(ctx context.Context, id uint) (*models.Group, error) {
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockGroupRepository) FindByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	for _, g := range m.groups {
		if g.InviteCode == code {
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockGroupRepository) AddMember(ctx context.Context, groupID, userID uint) error {
	if _, ok := m.memberships[groupID]; !ok {
		m.memberships[groupID] = make(map[uint]time.Time)
	}
	m.memberships[groupID][userID] = time.Now()
	return nil
}

func (m *MockGroupRepository) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	_, ok := m.memberships[groupID][userID]
	return ok, nil
}

func (m *MockGroupRepository) ListForUser(ctx context.Context, userID uint) ([]models.GroupSummary, error) {
	var out []models.GroupSummary
	for id, members := range m.memberships {
		if _, ok := members[userID]; !ok {
			continue
		}
		g := m.groups[id]
		out = append(out, models.GroupSummary{
			ID:          g.ID,
			Name:        g.Name,
			InviteCode:  g.InviteCode,
			OwnerID:     g.OwnerID,
			MemberCount: int64(len(members)),
			IsOwner:     g.IsOwnedBy(userID),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockGroupRepository) ListMembers(ctx context.Context, groupID uint) ([]models.GroupMemberInfo, error) {
	g, ok := m.groups[groupID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	var out []models.GroupMemberInfo
	for userID, joined := range m.memberships[groupID] {
		out = append(out, models.GroupMemberInfo{
			GroupID:  groupID,
			UserID:   userID,
			Username: fmt.Sprintf("user%d", userID),
			JoinedAt: joined,
			IsOwner:  g.IsOwnedBy(userID),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *MockGroupRepository) RemoveMember(ctx context.Context, groupID, userID uint) error {
	if _, ok := m.memberships[groupID][userID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.memberships[groupID], userID)
	return nil
}

func (m *MockGroupRepository) Delete(ctx context.Context, groupID uint) error {
	if _, ok := m.groups[groupID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.groups, groupID)
	delete(m.memberships, groupID)
	return nil
}

func (m *MockGroupRepository) UpdateOwner(ctx context.Context, groupID, ownerID uint) error {
	g, ok := m.groups[groupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	owner := ownerID
	g.OwnerID = &owner
	return nil
}

// MockProgressRepository records saves per partition.
type MockProgressRepository struct {
	saves []repository.ProgressBatch
	err   error
}

func (m *MockProgressRepository) Save(ctx context.Context, username string, groupID *uint, batch repository.ProgressBatch) error {
	if m.err != nil {
		return m.err
	}
	m.saves = append(m.saves, batch)
	return nil
}

func (m *MockProgressRepository) Get(ctx context.Context, username string, groupID *uint, historyLimit int) (*models.ProgressSnapshot, error) {
	return &models.ProgressSnapshot{CompletedChapters: []string{}, History: []models.ReadingHistory{}}, nil
}

func (m *MockProgressRepository) CompletedChapters(ctx context.Context, username string, groupID *uint) ([]string, error) {
	return []string{}, nil
}

// MockCompletionRepository hands out consecutive rounds per scope.
type MockCompletionRepository struct {
	users  map[uint]bool
	rounds map[string]int
}

func NewMockCompletionRepository(userIDs ...uint) *MockCompletionRepository {
	m := &MockCompletionRepository{users: make(map[uint]bool), rounds: make(map[string]int)}
	for _, id := range userIDs {
		m.users[id] = true
	}
	return m
}

func (m *MockCompletionRepository) Finalize(ctx context.Context, userID uint, groupID *uint) (int, error) {
	if !m.users[userID] {
		return 0, gorm.ErrRecordNotFound
	}
	key := fmt.Sprintf("%d/%s", userID, scopeName(groupID))
	m.rounds[key]++
	return m.rounds[key], nil
}

// MockLeaderboardRepository counts how often the database would be hit.
type MockLeaderboardRepository struct {
	rows    []models.LeaderboardRow
	entries []models.HallOfFameEntry
	calls   int
}

func (m *MockLeaderboardRepository) ListUsers(ctx context.Context, groupID *uint) ([]models.LeaderboardRow, error) {
	m.calls++
	out := make([]models.LeaderboardRow, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *MockLeaderboardRepository) HallOfFame(ctx context.Context, groupID *uint) ([]models.HallOfFameEntry, error) {
	m.calls++
	return m.entries, nil
}

// MockAudioRepository stores recordings in memory.
type MockAudioRepository struct {
	recordings []*models.AudioRecording
	err        error
}

func (m *MockAudioRepository) Create(ctx context.Context, rec *models.AudioRecording) error {
	if m.err != nil {
		return m.err
	}
	rec.ID = uint(len(m.recordings) + 1)
	m.recordings = append(m.recordings, rec)
	return nil
}

func scopeName(groupID *uint) string {
	if groupID == nil {
		return "personal"
	}
	return fmt.Sprintf("group:%d", *groupID)
}

// fakeCache is an in-memory LeaderboardCache that also records invalidations.
type fakeCache struct {
	users       map[string][]models.LeaderboardRow
	hallOfFame  map[string][]models.HallOfFameEntry
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		users:      make(map[string][]models.LeaderboardRow),
		hallOfFame: make(map[string][]models.HallOfFameEntry),
	}
}

func (f *fakeCache) Invalidate(ctx context.Context, groupID *uint) {
	name := scopeName(groupID)
	f.invalidated = append(f.invalidated, name)
	delete(f.users, name)
	delete(f.hallOfFame, name)
}

func (f *fakeCache) GetUsers(ctx context.Context, groupID *uint) ([]models.LeaderboardRow, bool) {
	rows, ok := f.users[scopeName(groupID)]
	return rows, ok
}

func (f *fakeCache) SetUsers(ctx context.Context, groupID *uint, rows []models.LeaderboardRow) {
	f.users[scopeName(groupID)] = rows
}

func (f *fakeCache) GetHallOfFame(ctx context.Context, groupID *uint) ([]models.HallOfFameEntry, bool) {
	entries, ok := f.hallOfFame[scopeName(groupID)]
	return entries, ok
}

func (f *fakeCache) SetHallOfFame(ctx context.Context, groupID *uint, entries []models.HallOfFameEntry) {
	f.hallOfFame[scopeName(groupID)] = entries
}

// fakeStore keeps objects in memory.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + key + "?expires=" + expiry.String(), nil
}

func (f *fakeStore) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (storage.ObjectStat, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return storage.ObjectStat{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return storage.ObjectStat{Size: int64(len(data)), ContentType: contentType}, nil
}

func (f *fakeStore) GetObject(ctx context.Context, key string) (io.ReadCloser, storage.ObjectStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ObjectStat{}, minio.ErrorResponse{Code: "NoSuchKey"}
	}
	return io.NopCloser(bytes.NewReader(data)), storage.ObjectStat{Size: int64(len(data))}, nil
}

func (f *fakeStore) DeleteObject(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}
