package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/noteduco342/bible-reading-backend/internal/bible"
	"github.com/noteduco342/bible-reading-backend/internal/models"
	"github.com/noteduco342/bible-reading-backend/internal/repository"
	"github.com/noteduco342/bible-reading-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func uintPtr(v uint) *uint { return &v }

func batch(book string, chapter int, keys ...string) repository.ProgressBatch {
	return repository.ProgressBatch{
		LastRead:          models.LastRead{Book: book, Chapter: chapter, Verse: 1},
		CompletedChapters: keys,
		Now:               time.Now(),
	}
}

func TestSaveProgressProvisionsUser(t *testing.T) {
	db := testutil.OpenTestDB(t)
	h := testutil.NewTestHelper(t)
	repo := repository.NewProgressRepository(db)
	ctx := context.Background()

	b := batch("창세기", 3, "창세기:1", "창세기:2")
	b.History = []models.HistoryEntry{{Date: time.Now(), Book: "창세기", StartChapter: 1, StartVerse: 1, DurationMinutes: 12}}
	require.NoError(t, repo.Save(ctx, "newcomer", nil, b))

	var user models.User
	require.NoError(t, db.Where("username = ?", "newcomer").First(&user).Error)
	assert.Nil(t, user.PasswordHash)
	assert.True(t, user.MustChangePassword)

	assert.EqualValues(t, 1, h.Count(db, &models.ReadingProgress{}, "user_id = ?", user.ID))
	assert.EqualValues(t, 2, h.Count(db, &models.CompletedChapter{}, "user_id = ?", user.ID))
	assert.EqualValues(t, 1, h.Count(db, &models.ReadingHistory{}, "user_id = ?", user.ID))

	// A second save reuses the user and overwrites the bookmark.
	require.NoError(t, repo.Save(ctx, "newcomer", nil, batch("출애굽기", 2)))
	assert.EqualValues(t, 1, h.Count(db, &models.User{}, "username = ?", "newcomer"))

	snap, err := repo.Get(ctx, "newcomer", nil, 10)
	require.NoError(t, err)
	assert.Equal(t, "출애굽기", snap.LastReadBook)
	assert.Equal(t, 2, snap.LastReadChapter)
	assert.NotNil(t, snap.LastProgressUpdateDate)
	assert.Equal(t, []string{"창세기:1", "창세기:2"}, snap.CompletedChapters)
	require.Len(t, snap.History, 1)
	assert.Equal(t, 12, snap.History[0].DurationMinutes)
}

func TestSaveProgressCompletedChapterIdempotent(t *testing.T) {
	db := testutil.OpenTestDB(t)
	h := testutil.NewTestHelper(t)
	repo := repository.NewProgressRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "kim", nil, batch("룻기", 1, "룻기:1", "룻기:1")))
	require.NoError(t, repo.Save(ctx, "kim", nil, batch("룻기", 1, "룻기:1", "bogus", "룻기:x")))

	assert.EqualValues(t, 1, h.Count(db, &models.CompletedChapter{}, ""))
}

func TestSaveProgressPartitionIsolation(t *testing.T) {
	db := testutil.OpenTestDB(t)
	h := testutil.NewTestHelper(t)
	repo := repository.NewProgressRepository(db)
	ctx := context.Background()

	owner := h.CreateUser(db, "lee")
	group := h.CreateGroup(db, "morning", "AB12CD34", owner)

	require.NoError(t, repo.Save(ctx, "lee", &group.ID, batch("마태복음", 5, "마태복음:1")))
	require.NoError(t, repo.Save(ctx, "lee", nil, batch("창세기", 9, "창세기:1", "창세기:2")))

	personal, err := repo.Get(ctx, "lee", nil, 10)
	require.NoError(t, err)
	assert.Equal(t, "창세기", personal.LastReadBook)
	assert.Equal(t, []string{"창세기:1", "창세기:2"}, personal.CompletedChapters)

	grouped, err := repo.Get(ctx, "lee", &group.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, "마태복음", grouped.LastReadBook)
	assert.Equal(t, []string{"마태복음:1"}, grouped.CompletedChapters)

	other, err := repo.Get(ctx, "lee", uintPtr(group.ID+100), 10)
	require.NoError(t, err)
	assert.Empty(t, other.CompletedChapters)
	assert.Nil(t, other.LastProgressUpdateDate)

	assert.EqualValues(t, 2, h.Count(db, &models.ReadingProgress{}, "user_id = ?", owner.ID))
}

func TestSaveProgressRollsBackOnBadHistory(t *testing.T) {
	db := testutil.OpenTestDB(t)
	h := testutil.NewTestHelper(t)
	repo := repository.NewProgressRepository(db)
	ctx := context.Background()

	b := batch("시편", 23, "시편:23")
	b.History = []models.HistoryEntry{
		{Date: time.Now(), Book: "시편", StartChapter: 23, StartVerse: 1},
		{Date: time.Now(), Book: "시편", StartChapter: 0, StartVerse: 1},
	}
	require.Error(t, repo.Save(ctx, "park", nil, b))

	assert.EqualValues(t, 0, h.Count(db, &models.User{}, "username = ?", "park"))
	assert.EqualValues(t, 0, h.Count(db, &models.ReadingProgress{}, ""))
	assert.EqualValues(t, 0, h.Count(db, &models.CompletedChapter{}, ""))
	assert.EqualValues(t, 0, h.Count(db, &models.ReadingHistory{}, ""))
}

func TestGetProgressUnknownUser(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewProgressRepository(db)

	snap, err := repo.Get(context.Background(), "ghost", nil, 10)
	require.NoError(t, err)
	assert.Equal(t, "", snap.LastReadBook)
	assert.NotNil(t, snap.CompletedChapters)
	assert.Empty(t, snap.CompletedChapters)
	assert.Empty(t, snap.History)

	keys, err := repo.CompletedChapters(context.Background(), "ghost", nil)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCompletedChaptersCanonOrder(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := repository.NewProgressRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "choi", nil, batch("출애굽기", 1, "출애굽기:1", "창세기:10", "창세기:2")))

	keys, err := repo.CompletedChapters(ctx, "choi", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"창세기:2", "창세기:10", "출애굽기:1"}, keys)
}

func TestReplaceLedger(t *testing.T) {
	db := testutil.OpenTestDB(t)
	h := testutil.NewTestHelper(t)
	repo := repository.NewProgressRepository(db)
	ctx := context.Background()

	user := h.CreateUser(db, "bulk")
	require.NoError(t, repo.Save(ctx, "bulk", nil, batch("요한계시록", 1, "요한계시록:1")))

	refs, err := bible.ChaptersThrough("출애굽기", 3)
	require.NoError(t, err)
	last := models.LastRead{Book: "출애굽기", Chapter: 3, Verse: 1}
	require.NoError(t, repo.ReplaceLedger(ctx, user.ID, nil, refs, last, time.Now()))

	keys, err := repo.CompletedChapters(ctx, "bulk", nil)
	require.NoError(t, err)
	require.Len(t, keys, 53)
	assert.Equal(t, "창세기:1", keys[0])
	assert.Equal(t, "출애굽기:3", keys[len(keys)-1])
	assert.NotContains(t, keys, "요한계시록:1")

	snap, err := repo.Get(ctx, "bulk", nil, 1)
	require.NoError(t, err)
	assert.Equal(t, "출애굽기", snap.LastReadBook)
	assert.Equal(t, 3, snap.LastReadChapter)

	err = repo.ReplaceLedger(ctx, 999, nil, refs, last, time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
