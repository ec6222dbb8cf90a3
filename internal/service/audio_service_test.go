package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/noteduco342/bible-reading-backend/internal/storage"
	"go.uber.org/zap"
)

func newAudioFixture(t *testing.T, store AudioStore) (*groupFixture, *MockAudioRepository, *AudioService) {
	t.Helper()
	f := newGroupFixture(t)
	repo := &MockAudioRepository{}
	return f, repo, NewAudioService(store, repo, f.svc, zap.NewNop())
}

func TestAudioDisabledWithoutStore(t *testing.T) {
	_, _, svc := newAudioFixture(t, nil)
	ctx := context.Background()

	if svc.Enabled() {
		t.Fatal("service enabled without a store")
	}
	if _, err := svc.Presign(ctx, 1); !errors.Is(err, ErrStorageNotConfigured) {
		t.Errorf("Presign error = %v", err)
	}
	if _, _, err := svc.Open(ctx, 1, "audio/1/x.webm"); !errors.Is(err, ErrStorageNotConfigured) {
		t.Errorf("Open error = %v", err)
	}
}

func TestPresignAndRecord(t *testing.T) {
	f, repo, svc := newAudioFixture(t, newFakeStore())
	ctx := context.Background()
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 23, 0, 0, 0, time.UTC) }

	presign, err := svc.Presign(ctx, f.member.ID)
	if err != nil {
		t.Fatalf("Presign error = %v", err)
	}
	if !strings.HasPrefix(presign.FileKey, "audio/2/20261017/") || !strings.Contains(presign.UploadURL, presign.FileKey) {
		t.Errorf("presign = %+v", presign)
	}

	groupID := f.group.ID
	input := RecordingInput{GroupID: &groupID, FileKey: presign.FileKey, BookName: "시편", Chapter: 23, Verse: 1}

	if _, err := svc.Record(ctx, f.other.ID, input); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign key error = %v, want forbidden", err)
	}
	traversal := input
	traversal.FileKey = "audio/2/../3/x.webm"
	if _, err := svc.Record(ctx, f.member.ID, traversal); !errors.Is(err, ErrForbidden) {
		t.Errorf("traversal key error = %v, want forbidden", err)
	}

	rec, err := svc.Record(ctx, f.member.ID, input)
	if err != nil {
		t.Fatalf("Record error = %v", err)
	}
	if rec.UserID != f.member.ID || *rec.GroupID != groupID || len(repo.recordings) != 1 {
		t.Errorf("recording = %+v", rec)
	}

	otherKey := storage.NewAudioKey(f.other.ID, svc.now())
	outside := RecordingInput{GroupID: &groupID, FileKey: otherKey, BookName: "시편", Chapter: 23}
	if _, err := svc.Record(ctx, f.other.ID, outside); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-member record error = %v, want forbidden", err)
	}
}

func TestUploadAndOpen(t *testing.T) {
	store := newFakeStore()
	f, _, svc := newAudioFixture(t, store)
	ctx := context.Background()
	payload := []byte("webm bytes")

	rec, err := svc.Upload(ctx, f.member.ID, bytes.NewReader(payload), int64(len(payload)), RecordingInput{BookName: "요한복음", Chapter: 3, Verse: 16})
	if err != nil {
		t.Fatalf("Upload error = %v", err)
	}
	if rec.FileSizeBytes != int64(len(payload)) {
		t.Errorf("FileSizeBytes = %d", rec.FileSizeBytes)
	}

	rc, _, err := svc.Open(ctx, f.member.ID, rec.FileKey)
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, payload) {
		t.Errorf("Open returned %q", got)
	}

	if _, _, err := svc.Open(ctx, f.other.ID, rec.FileKey); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign Open error = %v, want forbidden", err)
	}
	if _, _, err := svc.Open(ctx, f.member.ID, storage.NewAudioKey(f.member.ID, time.Now())); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing Open error = %v, want not found", err)
	}

	if _, err := svc.Upload(ctx, f.member.ID, bytes.NewReader(nil), MaxAudioUploadBytes+1, RecordingInput{BookName: "시편", Chapter: 1}); !matchesKind(err, errAnyValidation) {
		t.Errorf("oversized upload error = %v", err)
	}
}

func TestUploadRemovesObjectWhenRecordFails(t *testing.T) {
	store := newFakeStore()
	f, repo, svc := newAudioFixture(t, store)
	repo.err = errors.New("insert failed")

	payload := []byte("webm bytes")
	_, err := svc.Upload(context.Background(), f.member.ID, bytes.NewReader(payload), int64(len(payload)), RecordingInput{BookName: "시편", Chapter: 1})
	if err == nil {
		t.Fatal("Upload succeeded despite repository failure")
	}
	if store.count() != 0 {
		t.Errorf("store holds %d orphaned objects", store.count())
	}
}
