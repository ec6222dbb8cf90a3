package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/bible-reading-backend/internal/models"
)

type MaintenanceHandler struct {
	info models.MaintenanceInfo
}

func NewMaintenanceHandler(info models.MaintenanceInfo) *MaintenanceHandler {
	return &MaintenanceHandler{info: info}
}

func (h *MaintenanceHandler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(h.info)
}
