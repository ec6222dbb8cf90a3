package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/bible-reading-backend/internal/httpx"
	"github.com/noteduco342/bible-reading-backend/internal/reflection"
	"github.com/noteduco342/bible-reading-backend/internal/service"
	"github.com/noteduco342/bible-reading-backend/internal/validation"
	"go.uber.org/zap"
)

var statusByKind = []struct {
	kind   error
	status int
}{
	{service.ErrValidation, fiber.StatusBadRequest},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{service.ErrUnauthorized, fiber.StatusUnauthorized},
	{service.ErrForbidden, fiber.StatusForbidden},
	{service.ErrNotFound, fiber.StatusNotFound},
	{service.ErrConflict, fiber.StatusConflict},
	{service.ErrStorageNotConfigured, fiber.StatusServiceUnavailable},
}

// respondError renders a service error. Unknown errors are logged and hidden
// behind a generic message.
func respondError(c *fiber.Ctx, log *zap.Logger, err error, code string) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return httpx.BadRequest(c, "invalid_request", verr.Message)
	}
	if errors.Is(err, reflection.ErrEmptyPassage) {
		return httpx.BadRequest(c, "empty_passage", "묵상할 구절을 입력해주세요.")
	}

	var serr *service.Error
	if errors.As(err, &serr) {
		for _, m := range statusByKind {
			if errors.Is(serr.Kind, m.kind) {
				return httpx.Error(c, m.status, serr.Code, serr.Message)
			}
		}
	}

	log.Error("request failed",
		zap.String("code", code),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Any("request_id", c.Locals("requestid")),
		zap.Error(err),
	)
	return httpx.Internal(c, code)
}

func invalidBody(c *fiber.Ctx) error {
	return httpx.BadRequest(c, "invalid_body", "요청 본문을 읽을 수 없습니다.")
}
