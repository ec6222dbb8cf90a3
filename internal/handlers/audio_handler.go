package handlers

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/bible-reading-backend/internal/httpx"
	"github.com/noteduco342/bible-reading-backend/internal/service"
	"github.com/noteduco342/bible-reading-backend/internal/storage"
	"go.uber.org/zap"
)

type AudioHandler struct {
	audioService *service.AudioService
	log          *zap.Logger
}

func NewAudioHandler(audioService *service.AudioService, log *zap.Logger) *AudioHandler {
	return &AudioHandler{audioService: audioService, log: log}
}

func normalizeETag(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, "\"")
	return v
}

func (h *AudioHandler) Presign(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return unauthorized(c)
	}
	resp, err := h.audioService.Presign(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err, "presign_failed")
	}
	return c.JSON(resp)
}

func (h *AudioHandler) Record(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return unauthorized(c)
	}
	var input service.RecordingInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	rec, err := h.audioService.Record(c.UserContext(), userID, input)
	if err != nil {
		return respondError(c, h.log, err, "record_audio_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// Upload accepts multipart form data: a "file" part plus groupId, bookName,
// chapter, verse and durationSeconds fields.
func (h *AudioHandler) Upload(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return unauthorized(c)
	}
	if !h.audioService.Enabled() {
		return httpx.Unavailable(c, "storage_not_configured", "녹음 저장소가 설정되지 않았습니다.")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest(c, "missing_file", "녹음 파일이 필요합니다.")
	}
	input := service.RecordingInput{BookName: strings.TrimSpace(c.FormValue("bookName"))}
	input.Chapter, _ = strconv.Atoi(c.FormValue("chapter"))
	input.Verse, _ = strconv.Atoi(c.FormValue("verse"))
	input.DurationSeconds, _ = strconv.ParseFloat(c.FormValue("durationSeconds"), 64)
	if raw := strings.TrimSpace(c.FormValue("groupId")); raw != "" && raw != "null" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || v == 0 {
			return invalidGroupID(c)
		}
		id := uint(v)
		input.GroupID = &id
	}

	f, err := fh.Open()
	if err != nil {
		return httpx.BadRequest(c, "invalid_file", "녹음 파일을 읽을 수 없습니다.")
	}
	defer f.Close()

	rec, err := h.audioService.Upload(c.UserContext(), userID, f, fh.Size, input)
	if err != nil {
		return respondError(c, h.log, err, "upload_audio_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// GetFile streams one of the caller's recordings.
func (h *AudioHandler) GetFile(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return unauthorized(c)
	}
	key := strings.TrimSpace(c.Params("*"))

	obj, st, err := h.audioService.Open(c.UserContext(), userID, key)
	if err != nil {
		return respondError(c, h.log, err, "audio_fetch_failed")
	}

	if etag := st.ETag; etag != "" {
		c.Set("ETag", "\""+etag+"\"")
		if inm := normalizeETag(c.Get("If-None-Match")); inm != "" && inm == normalizeETag(etag) {
			_ = obj.Close()
			return c.SendStatus(fiber.StatusNotModified)
		}
	}
	if !st.LastModified.IsZero() {
		c.Set("Last-Modified", st.LastModified.UTC().Format(time.RFC1123))
	}

	c.Set("Cache-Control", "private, max-age=86400")
	if st.ContentType != "" {
		c.Type(st.ContentType)
	} else {
		c.Set(fiber.HeaderContentType, storage.AudioContentType)
	}
	if st.Size > 0 {
		c.Set("Content-Length", strconv.FormatInt(st.Size, 10))
	}

	log := h.log
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			_ = obj.Close()
		}()

		n, copyErr := io.Copy(w, obj)
		if copyErr != nil {
			log.Warn("audio stream error", zap.String("key", key), zap.Int64("copied", n), zap.Error(copyErr))
			return
		}
		if err := w.Flush(); err != nil {
			log.Warn("audio stream flush error", zap.String("key", key), zap.Int64("copied", n), zap.Error(err))
		}
	})
	return nil
}
