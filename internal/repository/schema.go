package repository

import (
	"context"

	"github.com/noteduco342/bible-reading-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type migrationStep struct {
	name string
	// dialect limits the step to one gorm dialector ("postgres", "sqlite").
	// Empty runs everywhere.
	dialect string
	run     func(db *gorm.DB) error
}

func autoMigrate(model interface{}) func(db *gorm.DB) error {
	return func(db *gorm.DB) error {
		return db.AutoMigrate(model)
	}
}

func execSQL(stmt string) func(db *gorm.DB) error {
	return func(db *gorm.DB) error {
		return db.Exec(stmt).Error
	}
}

var migrationSteps = []migrationStep{
	{name: "table users", run: autoMigrate(&models.User{})},
	{name: "table groups", run: autoMigrate(&models.Group{})},
	{name: "table group_members", run: autoMigrate(&models.GroupMember{})},

	// Tables that used to carry per-user unique constraints lose them before
	// the group partition indexes are created.
	{name: "legacy completed_chapters unique", dialect: "postgres", run: execSQL(
		"ALTER TABLE IF EXISTS completed_chapters DROP CONSTRAINT IF EXISTS completed_chapters_user_id_book_name_chapter_number_key")},
	{name: "legacy hall_of_fame unique", dialect: "postgres", run: execSQL(
		"ALTER TABLE IF EXISTS hall_of_fame DROP CONSTRAINT IF EXISTS hall_of_fame_user_id_round_key")},
	{name: "legacy users password", dialect: "postgres", run: execSQL(
		"ALTER TABLE users ADD COLUMN IF NOT EXISTS password VARCHAR(255) NULL")},
	{name: "legacy users must_change_password", dialect: "postgres", run: execSQL(
		"ALTER TABLE users ADD COLUMN IF NOT EXISTS must_change_password BOOLEAN NOT NULL DEFAULT TRUE")},
	{name: "legacy users completed_count", dialect: "postgres", run: execSQL(
		"ALTER TABLE users ADD COLUMN IF NOT EXISTS completed_count INTEGER NOT NULL DEFAULT 0")},

	{name: "table reading_progress", run: autoMigrate(&models.ReadingProgress{})},
	{name: "table completed_chapters", run: autoMigrate(&models.CompletedChapter{})},
	{name: "table reading_history", run: autoMigrate(&models.ReadingHistory{})},
	{name: "table hall_of_fame", run: autoMigrate(&models.HallOfFame{})},
	{name: "table audio_recordings", run: autoMigrate(&models.AudioRecording{})},

	{name: "index reading_progress personal", run: execSQL(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reading_progress_personal ON reading_progress (user_id) WHERE group_id IS NULL")},
	{name: "index reading_progress group", run: execSQL(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reading_progress_group ON reading_progress (user_id, group_id) WHERE group_id IS NOT NULL")},
	{name: "index completed_chapters personal", run: execSQL(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_completed_chapters_personal ON completed_chapters (user_id, book_name, chapter_number) WHERE group_id IS NULL")},
	{name: "index completed_chapters group", run: execSQL(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_completed_chapters_group ON completed_chapters (user_id, group_id, book_name, chapter_number) WHERE group_id IS NOT NULL")},
	{name: "index hall_of_fame personal", run: execSQL(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_hall_of_fame_personal ON hall_of_fame (user_id, round) WHERE group_id IS NULL")},
	{name: "index hall_of_fame group", run: execSQL(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_hall_of_fame_group ON hall_of_fame (user_id, group_id, round) WHERE group_id IS NOT NULL")},
	{name: "index reading_history partition", run: execSQL(
		"CREATE INDEX IF NOT EXISTS idx_reading_history_partition ON reading_history (user_id, group_id, read_at)")},
}

// Migrate creates or upgrades the schema. It is idempotent and safe to run
// from several instances at once: a failing step (for example a column a
// racing instance already added) is logged and the remaining steps still run.
// It returns the number of failed steps.
func Migrate(ctx context.Context, db *gorm.DB, log *zap.Logger) int {
	dialect := db.Dialector.Name()
	failed := 0
	for _, step := range migrationSteps {
		if step.dialect != "" && step.dialect != dialect {
			continue
		}
		if err := step.run(db.WithContext(ctx)); err != nil {
			failed++
			log.Warn("schema step failed", zap.String("step", step.name), zap.Error(err))
			continue
		}
		log.Debug("schema step applied", zap.String("step", step.name))
	}
	if failed == 0 {
		log.Info("schema ready", zap.Int("steps", len(migrationSteps)))
	}
	return failed
}
