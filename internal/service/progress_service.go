package service

import (
	"context"
	"time"

	"github.com/noteduco342/bible-reading-backend/internal/models"
	"github.com/noteduco342/bible-reading-backend/internal/repository"
	"github.com/noteduco342/bible-reading-backend/internal/validation"
	"go.uber.org/zap"
)

// DefaultHistoryLimit bounds the reading sessions returned with a snapshot.
const DefaultHistoryLimit = 50

// Caller is the authenticated user behind a request.
type Caller struct {
	UserID   uint
	Username string
}

type HistoryInput struct {
	Date            time.Time `json:"date" validate:"required"`
	Book            string    `json:"book" validate:"required"`
	StartChapter    int       `json:"startChapter" validate:"gt=0"`
	StartVerse      int       `json:"startVerse" validate:"gt=0"`
	DurationMinutes int       `json:"duration_minutes" validate:"gte=0"`
}

type SaveProgressInput struct {
	LastReadBook      string         `json:"lastReadBook"`
	LastReadChapter   int            `json:"lastReadChapter"`
	LastReadVerse     int            `json:"lastReadVerse"`
	CompletedChapters []string       `json:"completedChapters"`
	History           []HistoryInput `json:"history" validate:"dive"`
	GroupID           *uint          `json:"groupId"`
}

type ProgressService struct {
	userRepo       repository.UserRepositoryInterface
	progressRepo   repository.ProgressRepositoryInterface
	completionRepo repository.CompletionRepositoryInterface
	groups         *GroupService
	invalidator    ScopeInvalidator
	log            *zap.Logger
	now            func() time.Time
}

func NewProgressService(
	userRepo repository.UserRepositoryInterface,
	progressRepo repository.ProgressRepositoryInterface,
	completionRepo repository.CompletionRepositoryInterface,
	groups *GroupService,
	invalidator ScopeInvalidator,
	log *zap.Logger,
) *ProgressService {
	return &ProgressService{
		userRepo:       userRepo,
		progressRepo:   progressRepo,
		completionRepo: completionRepo,
		groups:         groups,
		invalidator:    invalidator,
		log:            log,
		now:            time.Now,
	}
}

// authorize checks that the caller acts on their own progress and, for a
// group partition, belongs to the group. The token's user must still own the
// username; a token outliving its account must not reach, or recreate, a row
// under the same name.
func (s *ProgressService) authorize(ctx context.Context, caller Caller, username string, groupID *uint) error {
	if caller.Username != username {
		return errSelfOnly
	}
	user, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return notFound(err, errStaleSession)
	}
	if user.Username != caller.Username {
		return errStaleSession
	}
	if groupID != nil {
		return s.groups.RequireMember(ctx, *groupID, caller.UserID)
	}
	return nil
}

// SaveProgress writes the bookmark, newly completed chapters and reading
// sessions of one partition as a single batch.
func (s *ProgressService) SaveProgress(ctx context.Context, caller Caller, username string, input SaveProgressInput) error {
	if err := s.authorize(ctx, caller, username, input.GroupID); err != nil {
		return err
	}
	if err := validation.Struct(input); err != nil {
		return err
	}

	batch := repository.ProgressBatch{
		LastRead: models.LastRead{
			Book:    input.LastReadBook,
			Chapter: input.LastReadChapter,
			Verse:   input.LastReadVerse,
		},
		CompletedChapters: input.CompletedChapters,
		History:           make([]models.HistoryEntry, 0, len(input.History)),
		Now:               s.now(),
	}
	for _, h := range input.History {
		batch.History = append(batch.History, models.HistoryEntry{
			Date:            h.Date,
			Book:            h.Book,
			StartChapter:    h.StartChapter,
			StartVerse:      h.StartVerse,
			DurationMinutes: h.DurationMinutes,
		})
	}

	if err := s.progressRepo.Save(ctx, username, input.GroupID, batch); err != nil {
		return err
	}
	s.log.Debug("progress saved",
		zap.String("username", username),
		zap.Int("completed", len(input.CompletedChapters)),
		zap.Int("history", len(input.History)),
	)
	s.invalidate(ctx, input.GroupID)
	return nil
}

func (s *ProgressService) GetProgress(ctx context.Context, caller Caller, username string, groupID *uint) (*models.ProgressSnapshot, error) {
	if err := s.authorize(ctx, caller, username, groupID); err != nil {
		return nil, err
	}
	return s.progressRepo.Get(ctx, username, groupID, DefaultHistoryLimit)
}

func (s *ProgressService) CompletedChapters(ctx context.Context, caller Caller, username string, groupID *uint) ([]string, error) {
	if err := s.authorize(ctx, caller, username, groupID); err != nil {
		return nil, err
	}
	return s.progressRepo.CompletedChapters(ctx, username, groupID)
}

// CompleteBible records a finished reading of the whole canon for the
// caller's partition and starts the next round.
func (s *ProgressService) CompleteBible(ctx context.Context, caller Caller, groupID *uint) (int, error) {
	if groupID != nil {
		if err := s.groups.RequireMember(ctx, *groupID, caller.UserID); err != nil {
			return 0, err
		}
	}
	round, err := s.completionRepo.Finalize(ctx, caller.UserID, groupID)
	if err != nil {
		return 0, notFound(err, errUserNotFound)
	}
	s.log.Info("bible completed",
		zap.Uint("user_id", caller.UserID),
		zap.Int("round", round),
	)
	s.invalidate(ctx, groupID)
	return round, nil
}

func (s *ProgressService) invalidate(ctx context.Context, groupID *uint) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, groupID)
	}
}
