package service

import (
	"context"
	"io"
	"time"

	"github.com/noteduco342/bible-reading-backend/internal/models"
	"github.com/noteduco342/bible-reading-backend/internal/repository"
	"github.com/noteduco342/bible-reading-backend/internal/storage"
	"github.com/noteduco342/bible-reading-backend/internal/validation"
	"go.uber.org/zap"
)

// PresignTTL is how long a presigned upload URL stays usable.
const PresignTTL = 15 * time.Minute

// MaxAudioUploadBytes caps the server-side upload proxy.
const MaxAudioUploadBytes = 25 << 20

// AudioStore is the object storage the recordings live in.
type AudioStore interface {
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (storage.ObjectStat, error)
	GetObject(ctx context.Context, key string) (io.ReadCloser, storage.ObjectStat, error)
	DeleteObject(ctx context.Context, key string) error
}

type RecordingInput struct {
	GroupID         *uint   `json:"groupId"`
	FileKey         string  `json:"fileKey" validate:"required"`
	BookName        string  `json:"bookName" validate:"required"`
	Chapter         int     `json:"chapter" validate:"gt=0"`
	Verse           int     `json:"verse" validate:"gte=0"`
	DurationSeconds float64 `json:"durationSeconds" validate:"gte=0"`
	FileSizeBytes   int64   `json:"fileSizeBytes" validate:"gte=0"`
}

type PresignResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileKey   string `json:"fileKey"`
}

type AudioService struct {
	store     AudioStore
	audioRepo repository.AudioRepositoryInterface
	groups    *GroupService
	log       *zap.Logger
	now       func() time.Time
}

// NewAudioService wires the recording flow. A nil store disables it; every
// call then fails with ErrStorageNotConfigured.
func NewAudioService(store AudioStore, audioRepo repository.AudioRepositoryInterface, groups *GroupService, log *zap.Logger) *AudioService {
	return &AudioService{
		store:     store,
		audioRepo: audioRepo,
		groups:    groups,
		log:       log,
		now:       time.Now,
	}
}

func (s *AudioService) Enabled() bool {
	return s != nil && s.store != nil
}

// Presign reserves a key under the caller's folder and returns a URL to PUT
// the recording to.
func (s *AudioService) Presign(ctx context.Context, userID uint) (*PresignResponse, error) {
	if !s.Enabled() {
		return nil, errStorageDisabled
	}
	key := storage.NewAudioKey(userID, s.now())
	u, err := s.store.PresignPut(ctx, key, PresignTTL)
	if err != nil {
		return nil, err
	}
	return &PresignResponse{UploadURL: u, FileKey: key}, nil
}

// Record stores the metadata of an uploaded recording. The key has to be one
// the caller could have been issued.
func (s *AudioService) Record(ctx context.Context, userID uint, input RecordingInput) (*models.AudioRecording, error) {
	if !s.Enabled() {
		return nil, errStorageDisabled
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	key, err := storage.SafeObjectKey(input.FileKey)
	if err != nil || !storage.AudioKeyOwnedBy(key, userID) {
		return nil, newError(ErrForbidden, "foreign_file_key", "본인의 녹음 파일만 등록할 수 있습니다.")
	}
	if input.GroupID != nil {
		if err := s.groups.RequireMember(ctx, *input.GroupID, userID); err != nil {
			return nil, err
		}
	}

	rec := &models.AudioRecording{
		UserID:          userID,
		GroupID:         input.GroupID,
		FileKey:         key,
		BookName:        input.BookName,
		Chapter:         input.Chapter,
		Verse:           input.Verse,
		DurationSeconds: input.DurationSeconds,
		FileSizeBytes:   input.FileSizeBytes,
	}
	if err := s.audioRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Upload proxies a recording through the server for browsers that cannot PUT
// to the bucket directly, then records it. The object is removed again if the
// metadata cannot be stored.
func (s *AudioService) Upload(ctx context.Context, userID uint, body io.Reader, size int64, input RecordingInput) (*models.AudioRecording, error) {
	if !s.Enabled() {
		return nil, errStorageDisabled
	}
	if size <= 0 || size > MaxAudioUploadBytes {
		return nil, newError(ErrValidation, "invalid_file_size", "녹음 파일 크기가 올바르지 않습니다.")
	}
	key := storage.NewAudioKey(userID, s.now())
	input.FileKey = key
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.GroupID != nil {
		if err := s.groups.RequireMember(ctx, *input.GroupID, userID); err != nil {
			return nil, err
		}
	}

	st, err := s.store.PutObject(ctx, key, body, size, storage.AudioContentType)
	if err != nil {
		return nil, err
	}

	input.FileSizeBytes = st.Size
	rec, err := s.Record(ctx, userID, input)
	if err != nil {
		if delErr := s.store.DeleteObject(ctx, key); delErr != nil {
			s.log.Warn("orphaned audio object", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	return rec, nil
}

// Open streams one of the caller's own recordings.
func (s *AudioService) Open(ctx context.Context, userID uint, key string) (io.ReadCloser, storage.ObjectStat, error) {
	if !s.Enabled() {
		return nil, storage.ObjectStat{}, errStorageDisabled
	}
	clean, err := storage.SafeObjectKey(key)
	if err != nil || !storage.AudioKeyOwnedBy(clean, userID) {
		return nil, storage.ObjectStat{}, newError(ErrForbidden, "foreign_file_key", "본인의 녹음 파일만 들을 수 있습니다.")
	}
	rc, st, err := s.store.GetObject(ctx, clean)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, storage.ObjectStat{}, newError(ErrNotFound, "file_not_found", "녹음 파일을 찾을 수 없습니다.")
		}
		return nil, storage.ObjectStat{}, err
	}
	return rc, st, nil
}
