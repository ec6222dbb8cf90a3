package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/noteduco342/bible-reading-backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// LeaderboardTTL bounds staleness for writers that bypass invalidation, such
// as the admin CLI.
const LeaderboardTTL = 30 * time.Second

// LeaderboardCache caches the ranking and hall of fame per partition scope.
// A nil cache, or one without Redis, misses every read and ignores writes.
type LeaderboardCache struct {
	redis *RedisCache
	log   *zap.Logger
}

func NewLeaderboardCache(redis *RedisCache, log *zap.Logger) *LeaderboardCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeaderboardCache{redis: redis, log: log}
}

func scope(groupID *uint) string {
	if groupID == nil {
		return "personal"
	}
	return fmt.Sprintf("group:%d", *groupID)
}

func usersKey(groupID *uint) string {
	return "leaderboard:users:" + scope(groupID)
}

func hallOfFameKey(groupID *uint) string {
	return "leaderboard:hof:" + scope(groupID)
}

func (lc *LeaderboardCache) enabled() bool {
	return lc != nil && lc.redis != nil
}

func (lc *LeaderboardCache) get(ctx context.Context, key string, out interface{}) bool {
	if !lc.enabled() {
		return false
	}
	data, err := lc.redis.Get(ctx, key)
	if err != nil {
		lc.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if data == nil {
		return false
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		lc.log.Warn("cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (lc *LeaderboardCache) set(ctx context.Context, key string, v interface{}) {
	if !lc.enabled() {
		return
	}
	data, err := msgpack.Marshal(v)
	if err != nil {
		lc.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := lc.redis.Set(ctx, key, data, LeaderboardTTL); err != nil {
		lc.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (lc *LeaderboardCache) GetUsers(ctx context.Context, groupID *uint) ([]models.LeaderboardRow, bool) {
	var rows []models.LeaderboardRow
	if !lc.get(ctx, usersKey(groupID), &rows) {
		return nil, false
	}
	return rows, true
}

func (lc *LeaderboardCache) SetUsers(ctx context.Context, groupID *uint, rows []models.LeaderboardRow) {
	lc.set(ctx, usersKey(groupID), rows)
}

func (lc *LeaderboardCache) GetHallOfFame(ctx context.Context, groupID *uint) ([]models.HallOfFameEntry, bool) {
	var entries []models.HallOfFameEntry
	if !lc.get(ctx, hallOfFameKey(groupID), &entries) {
		return nil, false
	}
	return entries, true
}

func (lc *LeaderboardCache) SetHallOfFame(ctx context.Context, groupID *uint, entries []models.HallOfFameEntry) {
	lc.set(ctx, hallOfFameKey(groupID), entries)
}

// Invalidate drops both cached reads of a scope.
func (lc *LeaderboardCache) Invalidate(ctx context.Context, groupID *uint) {
	if !lc.enabled() {
		return
	}
	if err := lc.redis.Delete(ctx, usersKey(groupID), hallOfFameKey(groupID)); err != nil {
		lc.log.Warn("cache invalidate failed", zap.String("scope", scope(groupID)), zap.Error(err))
	}
}

// InvalidateAll drops every cached scope.
func (lc *LeaderboardCache) InvalidateAll(ctx context.Context) error {
	if !lc.enabled() {
		return nil
	}
	return lc.redis.DeletePattern(ctx, "leaderboard:*")
}
