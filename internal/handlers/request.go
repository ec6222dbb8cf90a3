package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/bible-reading-backend/internal/httpx"
	"github.com/noteduco342/bible-reading-backend/internal/service"
)

func caller(c *fiber.Ctx) (service.Caller, error) {
	id, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return service.Caller{}, err
	}
	name, _ := c.Locals("username").(string)
	return service.Caller{UserID: id, Username: name}, nil
}

func paramUint(c *fiber.Ctx, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// queryGroupID reads ?groupId=. Empty and "null" select the personal track.
func queryGroupID(c *fiber.Ctx) (*uint, bool) {
	raw := strings.TrimSpace(c.Query("groupId"))
	if raw == "" || raw == "null" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return nil, false
	}
	id := uint(v)
	return &id, true
}

func invalidID(c *fiber.Ctx) error {
	return httpx.BadRequest(c, "invalid_id", "잘못된 ID입니다.")
}

func invalidGroupID(c *fiber.Ctx) error {
	return httpx.BadRequest(c, "invalid_group_id", "잘못된 그룹 ID입니다.")
}

func unauthorized(c *fiber.Ctx) error {
	return httpx.Unauthorized(c, "unauthorized", "로그인이 필요합니다.")
}
