package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/bible-reading-backend/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	log         *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	user, err := h.authService.Register(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.log, err, "register_failed")
	}

	h.log.Info("user registered", zap.Uint("user_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"message":  "사용자 등록이 완료되었습니다. 로그인해주세요.",
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	resp, err := h.authService.Login(c.UserContext(), input)
	if err != nil {
		return respondError(c, h.log, err, "login_failed")
	}
	return c.JSON(resp)
}
