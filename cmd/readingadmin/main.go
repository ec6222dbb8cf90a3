// Command readingadmin runs maintenance tasks against the reading database
// outside the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/noteduco342/bible-reading-backend/internal/cache"
	"github.com/noteduco342/bible-reading-backend/internal/logging"
	"github.com/noteduco342/bible-reading-backend/internal/repository"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	userID  uint
	groupID uint
)

var rootCmd = &cobra.Command{
	Use:   "readingadmin",
	Short: "Administrative tasks for the Bible reading backend",
	Long: `readingadmin works directly on the database configured through
DATABASE_URL or the DB_* variables (a .env file is loaded when present).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, bulkCompleteCmd, finalizeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// optionalGroup turns the --group-id flag into a partition selector; 0 is
// the personal track.
func optionalGroup(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

// openDB connects with the server's configuration and returns a closer.
func openDB() (*gorm.DB, *zap.Logger, func(), error) {
	logger, err := logging.New()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}
	cfg, err := repository.LoadDBConfigFromEnv()
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := repository.InitDB(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	closer := func() {
		_ = repository.CloseDB(db)
		_ = logger.Sync()
	}
	return db, logger, closer, nil
}

// dropCachedLeaderboards clears cached rankings after a direct write. Redis is
// optional here as in the server.
func dropCachedLeaderboards(ctx context.Context, logger *zap.Logger) {
	rc, err := cache.NewRedisCacheFromEnv()
	if err != nil || rc == nil {
		return
	}
	defer func() { _ = rc.Close() }()
	if err := cache.NewLeaderboardCache(rc, logger).InvalidateAll(ctx); err != nil {
		logger.Warn("failed to clear leaderboard cache", zap.Error(err))
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, logger, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()
		return runMigrate(cmd.Context(), db, logger)
	},
}

func runMigrate(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	if failed := repository.Migrate(ctx, db, logger); failed > 0 {
		return fmt.Errorf("%d schema steps failed", failed)
	}
	return nil
}
