package repository

import (
	"context"
	"time"

	"github.com/noteduco342/bible-reading-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompletionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{db: db, now: time.Now}
}

// Finalize records the next hall-of-fame round for the partition, clears its
// completed-chapter ledger and resets its bookmark. Calls for one user are
// serialized by a lock on the user row, so rounds stay gapless even under
// concurrent requests. Returns the new round, or gorm.ErrRecordNotFound for an
// unknown user.
func (r *CompletionRepository) Finalize(ctx context.Context, userID uint, groupID *uint) (int, error) {
	var round int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&user, userID).Error; err != nil {
			return err
		}

		var last int
		if err := tx.Model(&models.HallOfFame{}).
			Select("COALESCE(MAX(round), 0)").
			Where("user_id = ?", userID).Scopes(inPartition(groupID)).
			Scan(&last).Error; err != nil {
			return err
		}
		round = last + 1

		entry := models.HallOfFame{
			UserID:      userID,
			GroupID:     groupID,
			Round:       round,
			CompletedAt: r.now(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if groupID == nil {
			if err := tx.Model(&models.User{}).Where("id = ?", userID).
				UpdateColumn("completed_count", gorm.Expr("completed_count + 1")).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).Scopes(inPartition(groupID)).
			Delete(&models.CompletedChapter{}).Error; err != nil {
			return err
		}

		return tx.Model(&models.ReadingProgress{}).
			Where("user_id = ?", userID).Scopes(inPartition(groupID)).
			UpdateColumns(map[string]interface{}{
				"last_read_book":    nil,
				"last_read_chapter": nil,
				"last_read_verse":   nil,
			}).Error
	})
	if err != nil {
		return 0, err
	}
	return round, nil
}
