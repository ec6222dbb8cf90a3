package storage

import (
	"strings"
	"testing"
	"time"
)

func TestNewAudioKey(t *testing.T) {
	now := time.Date(2026, 10, 17, 23, 30, 0, 0, time.UTC)
	key := NewAudioKey(42, now)
	if !strings.HasPrefix(key, "audio/42/20261017/") || !strings.HasSuffix(key, ".webm") {
		t.Fatalf("unexpected key %q", key)
	}
	if !AudioKeyOwnedBy(key, 42) {
		t.Error("key should belong to its user")
	}
	if AudioKeyOwnedBy(key, 4) {
		t.Error("prefix of another user id must not match")
	}
}

func TestSafeObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{"plain", "audio/1/20260101/a.webm", "audio/1/20260101/a.webm", false},
		{"leading slash", "/audio/1/a.webm", "audio/1/a.webm", false},
		{"double slash", "audio//1/a.webm", "audio/1/a.webm", false},
		{"traversal", "audio/1/../2/a.webm", "", true},
		{"backslash", "audio\\1", "", true},
		{"empty", "  ", "", true},
		{"only slashes", "///", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeObjectKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SafeObjectKey(%q) err = %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("SafeObjectKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
	if AudioKeyOwnedBy("audio/1/../2/x.webm", 1) {
		t.Error("traversal must not be owned")
	}
}
