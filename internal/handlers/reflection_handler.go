package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/bible-reading-backend/internal/httpx"
	"github.com/noteduco342/bible-reading-backend/internal/reflection"
	"go.uber.org/zap"
)

type ReflectionHandler struct {
	reflector reflection.Reflector
	log       *zap.Logger
}

// NewReflectionHandler accepts a nil reflector; requests then get 503.
func NewReflectionHandler(reflector reflection.Reflector, log *zap.Logger) *ReflectionHandler {
	return &ReflectionHandler{reflector: reflector, log: log}
}

type reflectionRequest struct {
	Passage string `json:"passage"`
}

func (h *ReflectionHandler) Reflect(c *fiber.Ctx) error {
	if h.reflector == nil {
		return httpx.Unavailable(c, "reflection_not_configured", "묵상 생성 기능이 설정되지 않았습니다.")
	}
	var req reflectionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	text, err := h.reflector.Reflect(c.UserContext(), req.Passage)
	if err != nil {
		return respondError(c, h.log, err, "reflection_failed")
	}
	return c.JSON(fiber.Map{"reflection": text})
}
