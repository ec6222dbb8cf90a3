package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/bible-reading-backend/internal/service"
	"go.uber.org/zap"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
	log                *zap.Logger
}

func NewLeaderboardHandler(leaderboardService *service.LeaderboardService, log *zap.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService, log: log}
}

func (h *LeaderboardHandler) ListUsers(c *fiber.Ctx) error {
	groupID, ok := queryGroupID(c)
	if !ok {
		return invalidGroupID(c)
	}
	rows, err := h.leaderboardService.ListUsers(c.UserContext(), groupID)
	if err != nil {
		return respondError(c, h.log, err, "list_users_failed")
	}
	return c.JSON(rows)
}

func (h *LeaderboardHandler) HallOfFame(c *fiber.Ctx) error {
	groupID, ok := queryGroupID(c)
	if !ok {
		return invalidGroupID(c)
	}
	entries, err := h.leaderboardService.HallOfFame(c.UserContext(), groupID)
	if err != nil {
		return respondError(c, h.log, err, "hall_of_fame_failed")
	}
	return c.JSON(entries)
}
