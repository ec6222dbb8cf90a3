package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// AudioPrefix is the top-level folder of every recording.
	AudioPrefix = "audio"
	// AudioContentType is what the browser recorder produces.
	AudioContentType = "audio/webm"
)

// NewAudioKey returns audio/<userID>/<yyyymmdd>/<uuid>.webm.
func NewAudioKey(userID uint, now time.Time) string {
	return fmt.Sprintf("%s/%d/%s/%s.webm", AudioPrefix, userID, now.UTC().Format("20060102"), uuid.NewString())
}

// AudioKeyOwnedBy reports whether key sits under the user's own folder.
func AudioKeyOwnedBy(key string, userID uint) bool {
	clean, err := SafeObjectKey(key)
	if err != nil {
		return false
	}
	return strings.HasPrefix(clean, fmt.Sprintf("%s/%d/", AudioPrefix, userID))
}

// SafeObjectKey normalizes a client supplied key and rejects path traversal.
func SafeObjectKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("empty key")
	}
	if strings.Contains(key, "..") || strings.ContainsAny(key, "\\") {
		return "", errors.New("invalid key")
	}
	key = strings.TrimLeft(key, "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	if key == "" {
		return "", errors.New("empty key")
	}
	if _, err := url.Parse("https://example.com/" + key); err != nil {
		return "", errors.New("invalid key")
	}
	return key, nil
}
