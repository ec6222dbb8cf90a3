package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/bible-reading-backend/internal/httpx"
	"github.com/noteduco342/bible-reading-backend/internal/service"
	"go.uber.org/zap"
)

type GroupHandler struct {
	groupService *service.GroupService
	log          *zap.Logger
}

func NewGroupHandler(groupService *service.GroupService, log *zap.Logger) *GroupHandler {
	return &GroupHandler{groupService: groupService, log: log}
}

func (h *GroupHandler) CreateGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return unauthorized(c)
	}
	var input service.CreateGroupInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	group, err := h.groupService.CreateGroup(c.UserContext(), userID, input)
	if err != nil {
		return respondError(c, h.log, err, "create_group_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

func (h *GroupHandler) JoinGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return unauthorized(c)
	}
	var input service.JoinGroupInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	group, err := h.groupService.JoinGroup(c.UserContext(), userID, input)
	if err != nil {
		return respondError(c, h.log, err, "join_group_failed")
	}
	return c.JSON(fiber.Map{
		"message": "그룹에 가입했습니다.",
		"group":   group,
	})
}

func (h *GroupHandler) LeaveGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return unauthorized(c)
	}
	groupID, ok := paramUint(c, "id")
	if !ok {
		return invalidGroupID(c)
	}

	if err := h.groupService.LeaveGroup(c.UserContext(), groupID, userID); err != nil {
		return respondError(c, h.log, err, "leave_group_failed")
	}
	return httpx.OK(c, "그룹에서 나갔습니다.")
}

func (h *GroupHandler) DeleteGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return unauthorized(c)
	}
	groupID, ok := paramUint(c, "id")
	if !ok {
		return invalidGroupID(c)
	}

	if err := h.groupService.DeleteGroup(c.UserContext(), groupID, userID); err != nil {
		return respondError(c, h.log, err, "delete_group_failed")
	}
	h.log.Info("group deleted", zap.Uint("group_id", groupID), zap.Uint("user_id", userID))
	return httpx.OK(c, "그룹이 삭제되었습니다.")
}

func (h *GroupHandler) TransferOwnership(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return unauthorized(c)
	}
	groupID, ok := paramUint(c, "id")
	if !ok {
		return invalidGroupID(c)
	}
	var input service.TransferOwnershipInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c)
	}

	group, err := h.groupService.TransferOwnership(c.UserContext(), groupID, userID, input)
	if err != nil {
		return respondError(c, h.log, err, "transfer_ownership_failed")
	}
	return c.JSON(fiber.Map{
		"message": "그룹장이 변경되었습니다.",
		"group":   group,
	})
}

func (h *GroupHandler) GetGroupMembers(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return unauthorized(c)
	}
	groupID, ok := paramUint(c, "id")
	if !ok {
		return invalidGroupID(c)
	}

	members, err := h.groupService.ListMembers(c.UserContext(), groupID, userID)
	if err != nil {
		return respondError(c, h.log, err, "list_members_failed")
	}
	return c.JSON(members)
}
