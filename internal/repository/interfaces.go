package repository

import (
	"context"
	"time"

	"github.com/noteduco342/bible-reading-backend/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	UpdatePassword(ctx context.Context, id uint, passwordHash string) (*models.User, error)
	Delete(ctx context.Context, id uint) error
}

// GroupRepositoryInterface defines the contract for group repository operations
type GroupRepositoryInterface interface {
	CreateWithOwner(ctx context.Context, group *models.Group, ownerID uint) error
	FindByID(ctx context.Context, id uint) (*models.Group, error)
	FindByInviteCode(ctx context.Context, code string) (*models.Group, error)
	AddMember(ctx context.Context, groupID, userID uint) error
	IsMember(ctx context.Context, groupID, userID uint) (bool, error)
	ListForUser(ctx context.Context, userID uint) ([]models.GroupSummary, error)
	ListMembers(ctx context.Context, groupID uint) ([]models.GroupMemberInfo, error)
	RemoveMember(ctx context.Context, groupID, userID uint) error
	Delete(ctx context.Context, groupID uint) error
	UpdateOwner(ctx context.Context, groupID, ownerID uint) error
}

// ProgressBatch is everything one save call writes to a partition.
type ProgressBatch struct {
	LastRead          models.LastRead
	CompletedChapters []string
	History           []models.HistoryEntry
	Now               time.Time
}

// ProgressRepositoryInterface defines the contract for the progress writer and its reads
type ProgressRepositoryInterface interface {
	Save(ctx context.Context, username string, groupID *uint, batch ProgressBatch) error
	Get(ctx context.Context, username string, groupID *uint, historyLimit int) (*models.ProgressSnapshot, error)
	CompletedChapters(ctx context.Context, username string, groupID *uint) ([]string, error)
}

// CompletionRepositoryInterface defines the contract for the completion finalizer
type CompletionRepositoryInterface interface {
	Finalize(ctx context.Context, userID uint, groupID *uint) (int, error)
}

// LeaderboardRepositoryInterface defines the contract for aggregated reads
type LeaderboardRepositoryInterface interface {
	ListUsers(ctx context.Context, groupID *uint) ([]models.LeaderboardRow, error)
	HallOfFame(ctx context.Context, groupID *uint) ([]models.HallOfFameEntry, error)
}

// AudioRepositoryInterface defines the contract for recording metadata
type AudioRepositoryInterface interface {
	Create(ctx context.Context, rec *models.AudioRecording) error
}
