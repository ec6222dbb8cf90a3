package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/noteduco342/bible-reading-backend/internal/cache"
	"github.com/noteduco342/bible-reading-backend/internal/handlers"
	"github.com/noteduco342/bible-reading-backend/internal/logging"
	"github.com/noteduco342/bible-reading-backend/internal/middleware"
	"github.com/noteduco342/bible-reading-backend/internal/reflection"
	"github.com/noteduco342/bible-reading-backend/internal/repository"
	"github.com/noteduco342/bible-reading-backend/internal/service"
	"github.com/noteduco342/bible-reading-backend/internal/storage"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	logger, err := logging.New()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Info("no .env file found, using system environment variables")
	}
	if os.Getenv("JWT_SECRET") == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	dbCfg, err := repository.LoadDBConfigFromEnv()
	if err != nil {
		logger.Fatal("invalid database config", zap.Error(err))
	}
	db, err := repository.InitDB(dbCfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := repository.CloseDB(db); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()
	if failed := repository.Migrate(ctx, db, logger); failed > 0 {
		logger.Warn("schema migration finished with failures", zap.Int("failed_steps", failed))
	}

	// Initialize Redis cache (best-effort; reads fall through to the database)
	redisCache, err := cache.NewRedisCacheFromEnv()
	if err != nil {
		logger.Warn("invalid Redis config, running without cache", zap.Error(err))
		redisCache = nil
	} else if redisCache != nil {
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("Redis connection failed, running without cache", zap.Error(err))
			_ = redisCache.Close()
			redisCache = nil
		} else {
			logger.Info("Redis cache connected")
			defer func() { _ = redisCache.Close() }()
		}
	}
	leaderboardCache := cache.NewLeaderboardCache(redisCache, logger)

	// Initialize S3/MinIO storage (best-effort; audio endpoints return 503 if missing)
	var audioStore service.AudioStore
	if cfg, err := storage.LoadS3ConfigFromEnv(); err != nil {
		logger.Warn("S3 storage not configured", zap.Error(err))
	} else if st, err := storage.NewS3Storage(cfg); err != nil {
		logger.Warn("failed to initialize S3 storage", zap.Error(err))
	} else {
		audioStore = st
		logger.Info("S3 storage initialized", zap.String("bucket", cfg.Bucket))
	}

	// Reflection generation (optional)
	var reflector reflection.Reflector
	if cfg, ok := reflection.LoadConfigFromEnv(); !ok {
		logger.Warn("GEMINI_API_KEY not set, reflection disabled")
	} else if r, err := reflection.NewGeminiReflector(ctx, cfg); err != nil {
		logger.Warn("failed to initialize reflection client", zap.Error(err))
	} else {
		reflector = r
		logger.Info("reflection enabled", zap.String("model", cfg.Model))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	audioRepo := repository.NewAudioRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, groupRepo, leaderboardCache)
	groupService := service.NewGroupService(groupRepo, userRepo, leaderboardCache)
	progressService := service.NewProgressService(userRepo, progressRepo, completionRepo, groupService, leaderboardCache, logger)
	leaderboardService := service.NewLeaderboardService(leaderboardRepo, leaderboardCache)
	audioService := service.NewAudioService(audioStore, audioRepo, groupService, logger)

	maintenance := middleware.LoadMaintenanceFromEnv()
	if maintenance.IsUnderMaintenance {
		logger.Warn("maintenance mode enabled", zap.String("message", maintenance.Message))
	}

	app := handlers.NewApp(handlers.Deps{
		Auth:        authService,
		Groups:      groupService,
		Progress:    progressService,
		Leaderboard: leaderboardService,
		Audio:       audioService,
		Reflector:   reflector,
		Maintenance: maintenance,
		Log:         logger,
		AccessLog:   true,
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", port))
		serverErr <- app.Listen(":" + port)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			logger.Warn("shutdown did not complete cleanly", zap.Error(err))
		}
	}
}
