package handlers

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/noteduco342/bible-reading-backend/internal/middleware"
	"github.com/noteduco342/bible-reading-backend/internal/models"
	"github.com/noteduco342/bible-reading-backend/internal/reflection"
	"github.com/noteduco342/bible-reading-backend/internal/service"
	"go.uber.org/zap"
)

// Deps is everything the HTTP layer needs. Audio and Reflector may be
// disabled (nil store, nil reflector); their routes then answer 503.
type Deps struct {
	Auth        *service.AuthService
	Groups      *service.GroupService
	Progress    *service.ProgressService
	Leaderboard *service.LeaderboardService
	Audio       *service.AudioService
	Reflector   reflection.Reflector
	Maintenance models.MaintenanceInfo
	Log         *zap.Logger

	// AccessLog turns on fiber's request logger.
	AccessLog bool
}

// NewApp builds the fiber app with every route registered.
func NewApp(d Deps) *fiber.App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName: "Bible Reading Backend",
		// Audio uploads up to 25MB + multipart overhead.
		BodyLimit: 32 * 1024 * 1024,
		// Usernames in paths are usually Korean.
		UnescapePath: true,
	})

	app.Use(requestid.New())
	if d.AccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(middleware.MaintenanceGate(d.Maintenance, "/api/maintenance", "/health"))

	authHandler := NewAuthHandler(d.Auth, d.Log)
	userHandler := NewUserHandler(d.Auth, d.Groups, d.Log)
	groupHandler := NewGroupHandler(d.Groups, d.Log)
	progressHandler := NewProgressHandler(d.Progress, d.Log)
	leaderboardHandler := NewLeaderboardHandler(d.Leaderboard, d.Log)
	audioHandler := NewAudioHandler(d.Audio, d.Log)
	reflectionHandler := NewReflectionHandler(d.Reflector, d.Log)
	maintenanceHandler := NewMaintenanceHandler(d.Maintenance)

	api := app.Group("/api", middleware.OriginAllowed())
	authed := middleware.AuthRequired()

	// Public routes
	credentials := limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	})
	api.Post("/register", credentials, authHandler.Register)
	api.Post("/login", credentials, authHandler.Login)
	api.Get("/users/all", leaderboardHandler.ListUsers)
	api.Get("/hall-of-fame", leaderboardHandler.HallOfFame)
	api.Get("/maintenance", maintenanceHandler.GetStatus)

	// Accounts
	api.Post("/users/change-password", authed, userHandler.ChangePassword)
	api.Delete("/users/:id", authed, userHandler.DeleteUser)
	api.Get("/users/:id/groups", authed, userHandler.ListGroups)

	// Progress
	api.Get("/progress/:username", authed, progressHandler.GetProgress)
	api.Get("/progress/:username/completedChapters", authed, progressHandler.GetCompletedChapters)
	api.Post("/progress/:username", authed, progressHandler.SaveProgress)
	api.Post("/bible-reset", authed, progressHandler.ResetBible)

	// Groups
	api.Post("/groups", authed, groupHandler.CreateGroup)
	api.Post("/groups/join", authed, groupHandler.JoinGroup)
	api.Get("/groups/:id/members", authed, groupHandler.GetGroupMembers)
	api.Post("/groups/:id/leave", authed, groupHandler.LeaveGroup)
	api.Post("/groups/:id/transfer-ownership", authed, groupHandler.TransferOwnership)
	api.Delete("/groups/:id", authed, groupHandler.DeleteGroup)

	// Audio
	api.Post("/audio/presign", authed, audioHandler.Presign)
	api.Post("/audio/record", authed, audioHandler.Record)
	api.Post("/audio/upload", authed, audioHandler.Upload)
	api.Get("/audio/file/*", authed, audioHandler.GetFile)

	api.Post("/reflection", authed, reflectionHandler.Reflect)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Bible reading backend is running",
		})
	})

	return app
}

func corsOrigins() string {
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		return v
	}
	return "*"
}
