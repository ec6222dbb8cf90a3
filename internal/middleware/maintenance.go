package middleware

import (
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/noteduco342/bible-reading-backend/internal/httpx"
	"github.com/noteduco342/bible-reading-backend/internal/models"
)

const defaultMaintenanceMessage = "서비스 점검 중입니다. 잠시 후 다시 이용해주세요."

// LoadMaintenanceFromEnv reads MAINTENANCE_MODE, MAINTENANCE_MESSAGE,
// MAINTENANCE_START and MAINTENANCE_END.
func LoadMaintenanceFromEnv() models.MaintenanceInfo {
	enabled, _ := strconv.ParseBool(strings.TrimSpace(os.Getenv("MAINTENANCE_MODE")))
	info := models.MaintenanceInfo{
		IsUnderMaintenance: enabled,
		Message:            strings.TrimSpace(os.Getenv("MAINTENANCE_MESSAGE")),
		StartTime:          strings.TrimSpace(os.Getenv("MAINTENANCE_START")),
		ExpectedEndTime:    strings.TrimSpace(os.Getenv("MAINTENANCE_END")),
	}
	if info.Message == "" {
		info.Message = defaultMaintenanceMessage
	}
	return info
}

// MaintenanceGate answers 503 on every route except the exempt paths while
// maintenance is on.
func MaintenanceGate(info models.MaintenanceInfo, exempt ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !info.IsUnderMaintenance || c.Method() == fiber.MethodOptions {
			return c.Next()
		}
		path := c.Path()
		for _, p := range exempt {
			if path == p {
				return c.Next()
			}
		}
		return httpx.Unavailable(c, "under_maintenance", info.Message)
	}
}
