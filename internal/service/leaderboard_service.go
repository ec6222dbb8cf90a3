package service

import (
	"context"

	"github.com/noteduco342/bible-reading-backend/internal/bible"
	"github.com/noteduco342/bible-reading-backend/internal/models"
	"github.com/noteduco342/bible-reading-backend/internal/repository"
)

// LeaderboardCache stores aggregated reads per partition scope. Misses are
// reported with ok == false; implementations swallow their own errors.
type LeaderboardCache interface {
	ScopeInvalidator
	GetUsers(ctx context.Context, groupID *uint) ([]models.LeaderboardRow, bool)
	SetUsers(ctx context.Context, groupID *uint, rows []models.LeaderboardRow)
	GetHallOfFame(ctx context.Context, groupID *uint) ([]models.HallOfFameEntry, bool)
	SetHallOfFame(ctx context.Context, groupID *uint, entries []models.HallOfFameEntry)
}

type LeaderboardService struct {
	repo  repository.LeaderboardRepositoryInterface
	cache LeaderboardCache
}

func NewLeaderboardService(repo repository.LeaderboardRepositoryInterface, cache LeaderboardCache) *LeaderboardService {
	return &LeaderboardService{repo: repo, cache: cache}
}

// ListUsers returns the ranking of a scope with each user's share of the
// canon read.
func (s *LeaderboardService) ListUsers(ctx context.Context, groupID *uint) ([]models.LeaderboardRow, error) {
	if s.cache != nil {
		if rows, ok := s.cache.GetUsers(ctx, groupID); ok {
			return rows, nil
		}
	}
	rows, err := s.repo.ListUsers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].CompletionRate = bible.CompletionRate(rows[i].CompletedChaptersCount)
	}
	if s.cache != nil {
		s.cache.SetUsers(ctx, groupID, rows)
	}
	return rows, nil
}

func (s *LeaderboardService) HallOfFame(ctx context.Context, groupID *uint) ([]models.HallOfFameEntry, error) {
	if s.cache != nil {
		if entries, ok := s.cache.GetHallOfFame(ctx, groupID); ok {
			return entries, nil
		}
	}
	entries, err := s.repo.HallOfFame(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetHallOfFame(ctx, groupID, entries)
	}
	return entries, nil
}
