package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/bible-reading-backend/internal/httpx"
	"github.com/noteduco342/bible-reading-backend/internal/service"
	"go.uber.org/zap"
)

type ProgressHandler struct {
	progressService *service.ProgressService
	log             *zap.Logger
}

func NewProgressHandler(progressService *service.ProgressService, log *zap.Logger) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, log: log}
}

func (h *ProgressHandler) GetProgress(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return unauthorized(c)
	}
	groupID, ok := queryGroupID(c)
	if !ok {
		return invalidGroupID(c)
	}

	snap, err := h.progressService.GetProgress(c.UserContext(), who, c.Params("username"), groupID)
	if err != nil {
		return respondError(c, h.log, err, "get_progress_failed")
	}
	return c.JSON(snap)
}

func (h *ProgressHandler) GetCompletedChapters(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return unauthorized(c)
	}
	groupID, ok := queryGroupID(c)
	if !ok {
		return invalidGroupID(c)
	}

	keys, err := h.progressService.CompletedChapters(c.UserContext(), who, c.Params("username"), groupID)
	if err != nil {
		return respondError(c, h.log, err, "get_completed_chapters_failed")
	}
	return c.JSON(keys)
}

// SaveProgress takes groupId from the body, falling back to the query string.
func (h *ProgressHandler) SaveProgress(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return unauthorized(c)
	}
	var input service.SaveProgressInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}
	if input.GroupID == nil {
		groupID, ok := queryGroupID(c)
		if !ok {
			return invalidGroupID(c)
		}
		input.GroupID = groupID
	}

	if err := h.progressService.SaveProgress(c.UserContext(), who, c.Params("username"), input); err != nil {
		return respondError(c, h.log, err, "save_progress_failed")
	}
	return httpx.OK(c, "진행 상황이 저장되었습니다.")
}

type bibleResetRequest struct {
	GroupID *uint `json:"groupId"`
}

// ResetBible closes the caller's current round of reading the whole canon.
func (h *ProgressHandler) ResetBible(c *fiber.Ctx) error {
	who, err := caller(c)
	if err != nil {
		return unauthorized(c)
	}
	var req bibleResetRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidBody(c)
		}
	}

	round, err := h.progressService.CompleteBible(c.UserContext(), who, req.GroupID)
	if err != nil {
		return respondError(c, h.log, err, "bible_reset_failed")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"round":   round,
		"message": "성경 일독을 완료했습니다. 축하합니다!",
	})
}
