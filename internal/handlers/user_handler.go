package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/bible-reading-backend/internal/httpx"
	"github.com/noteduco342/bible-reading-backend/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	authService  *service.AuthService
	groupService *service.GroupService
	log          *zap.Logger
}

func NewUserHandler(authService *service.AuthService, groupService *service.GroupService, log *zap.Logger) *UserHandler {
	return &UserHandler{authService: authService, groupService: groupService, log: log}
}

func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return unauthorized(c)
	}
	var input service.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	user, err := h.authService.ChangePassword(c.UserContext(), userID, input)
	if err != nil {
		return respondError(c, h.log, err, "change_password_failed")
	}
	return c.JSON(fiber.Map{
		"message": "비밀번호가 변경되었습니다.",
		"user":    user.ToResponse(),
	})
}

// DeleteUser withdraws the caller's own account.
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return unauthorized(c)
	}
	targetID, ok := paramUint(c, "id")
	if !ok {
		return invalidID(c)
	}

	if err := h.authService.DeleteAccount(c.UserContext(), userID, targetID); err != nil {
		return respondError(c, h.log, err, "delete_user_failed")
	}
	h.log.Info("user deleted", zap.Uint("user_id", targetID))
	return httpx.OK(c, "회원 탈퇴가 완료되었습니다.")
}

func (h *UserHandler) ListGroups(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return unauthorized(c)
	}
	targetID, ok := paramUint(c, "id")
	if !ok {
		return invalidID(c)
	}

	groups, err := h.groupService.ListUserGroups(c.UserContext(), userID, targetID)
	if err != nil {
		return respondError(c, h.log, err, "list_groups_failed")
	}
	return c.JSON(groups)
}
