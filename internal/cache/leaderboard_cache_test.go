package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/noteduco342/bible-reading-backend/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*LeaderboardCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLeaderboardCache(NewRedisCacheFromClient(client), nil), mr
}

func TestLeaderboardCacheRoundTrip(t *testing.T) {
	lc, mr := newTestCache(t)
	ctx := context.Background()
	updated := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	_, ok := lc.GetUsers(ctx, nil)
	assert.False(t, ok)

	rows := []models.LeaderboardRow{{
		UserID:                 1,
		Username:               "reader",
		LastReadBook:           "창세기",
		LastReadChapter:        3,
		LastProgressUpdateDate: &updated,
		CompletedChaptersCount: 12,
		CompletionRate:         1.0,
	}}
	lc.SetUsers(ctx, nil, rows)

	got, ok := lc.GetUsers(ctx, nil)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "reader", got[0].Username)
	assert.EqualValues(t, 12, got[0].CompletedChaptersCount)
	require.NotNil(t, got[0].LastProgressUpdateDate)
	assert.True(t, updated.Equal(*got[0].LastProgressUpdateDate))

	assert.True(t, mr.Exists("leaderboard:users:personal"))
	assert.Equal(t, LeaderboardTTL, mr.TTL("leaderboard:users:personal"))
}

func TestLeaderboardCacheScopesAreSeparate(t *testing.T) {
	lc, _ := newTestCache(t)
	ctx := context.Background()
	groupID := uint(7)

	lc.SetHallOfFame(ctx, &groupID, []models.HallOfFameEntry{{UserID: 1, Username: "a", Round: 1}})
	lc.SetHallOfFame(ctx, nil, []models.HallOfFameEntry{})

	lc.Invalidate(ctx, nil)

	_, ok := lc.GetHallOfFame(ctx, nil)
	assert.False(t, ok)
	entries, ok := lc.GetHallOfFame(ctx, &groupID)
	require.True(t, ok)
	assert.Len(t, entries, 1)

	require.NoError(t, lc.InvalidateAll(ctx))
	_, ok = lc.GetHallOfFame(ctx, &groupID)
	assert.False(t, ok)
}

func TestLeaderboardCacheDisabled(t *testing.T) {
	var lc *LeaderboardCache
	ctx := context.Background()

	lc.SetUsers(ctx, nil, []models.LeaderboardRow{{Username: "x"}})
	_, ok := lc.GetUsers(ctx, nil)
	assert.False(t, ok)
	lc.Invalidate(ctx, nil)
	assert.NoError(t, lc.InvalidateAll(ctx))

	empty := NewLeaderboardCache(nil, nil)
	_, ok = empty.GetHallOfFame(ctx, nil)
	assert.False(t, ok)
}

func TestNewRedisCacheFromEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	c, err := NewRedisCacheFromEnv()
	require.NoError(t, err)
	assert.Nil(t, c)

	mr := miniredis.RunT(t)
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("REDIS_DB", "0")
	c, err = NewRedisCacheFromEnv()
	require.NoError(t, err)
	require.NotNil(t, c)
	defer c.Close()
	assert.NoError(t, c.Ping(context.Background()))

	t.Setenv("REDIS_DB", "x")
	_, err = NewRedisCacheFromEnv()
	assert.Error(t, err)
}
