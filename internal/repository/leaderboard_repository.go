package repository

import (
	"context"

	"github.com/noteduco342/bible-reading-backend/internal/models"
	"gorm.io/gorm"
)

type LeaderboardRepository struct {
	db *gorm.DB
}

func NewLeaderboardRepository(db *gorm.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

const personalLeaderboard = `
	SELECT u.id AS user_id, u.username,
		COALESCE(rp.last_read_book, '') AS last_read_book,
		COALESCE(rp.last_read_chapter, 0) AS last_read_chapter,
		COALESCE(rp.last_read_verse, 0) AS last_read_verse,
		rp.updated_at AS last_progress_update_date,
		(SELECT COUNT(*) FROM completed_chapters cc
			WHERE cc.user_id = u.id AND cc.group_id IS NULL) AS completed_chapters_count,
		(SELECT COUNT(*) FROM hall_of_fame hf
			WHERE hf.user_id = u.id AND hf.group_id IS NULL) AS completed_count
	FROM users u
	LEFT JOIN reading_progress rp ON rp.user_id = u.id AND rp.group_id IS NULL
	WHERE EXISTS (SELECT 1 FROM completed_chapters cc WHERE cc.user_id = u.id AND cc.group_id IS NULL)
		OR EXISTS (SELECT 1 FROM hall_of_fame hf WHERE hf.user_id = u.id AND hf.group_id IS NULL)
	ORDER BY completed_chapters_count DESC, completed_count DESC, u.username ASC`

const groupLeaderboard = `
	SELECT u.id AS user_id, u.username,
		COALESCE(rp.last_read_book, '') AS last_read_book,
		COALESCE(rp.last_read_chapter, 0) AS last_read_chapter,
		COALESCE(rp.last_read_verse, 0) AS last_read_verse,
		rp.updated_at AS last_progress_update_date,
		(SELECT COUNT(*) FROM completed_chapters cc
			WHERE cc.user_id = u.id AND cc.group_id = gm.group_id) AS completed_chapters_count,
		(SELECT COUNT(*) FROM hall_of_fame hf
			WHERE hf.user_id = u.id AND hf.group_id = gm.group_id) AS completed_count
	FROM group_members gm
	JOIN users u ON u.id = gm.user_id
	LEFT JOIN reading_progress rp ON rp.user_id = u.id AND rp.group_id = gm.group_id
	WHERE gm.group_id = ?
		AND (EXISTS (SELECT 1 FROM completed_chapters cc WHERE cc.user_id = u.id AND cc.group_id = gm.group_id)
			OR EXISTS (SELECT 1 FROM hall_of_fame hf WHERE hf.user_id = u.id AND hf.group_id = gm.group_id))
	ORDER BY completed_chapters_count DESC, completed_count DESC, u.username ASC`

// ListUsers ranks every user of the scope that has at least one completed
// chapter or hall-of-fame round. A group scope covers its current members.
func (r *LeaderboardRepository) ListUsers(ctx context.Context, groupID *uint) ([]models.LeaderboardRow, error) {
	rows := []models.LeaderboardRow{}
	var err error
	if groupID == nil {
		err = r.db.WithContext(ctx).Raw(personalLeaderboard).Scan(&rows).Error
	} else {
		err = r.db.WithContext(ctx).Raw(groupLeaderboard, *groupID).Scan(&rows).Error
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// HallOfFame lists the scope's completion rounds, newest first.
func (r *LeaderboardRepository) HallOfFame(ctx context.Context, groupID *uint) ([]models.HallOfFameEntry, error) {
	entries := []models.HallOfFameEntry{}
	q := r.db.WithContext(ctx).Table("hall_of_fame h").
		Select("h.user_id, u.username, h.round, h.completed_at").
		Joins("JOIN users u ON u.id = h.user_id")
	if groupID == nil {
		q = q.Where("h.group_id IS NULL")
	} else {
		q = q.Where("h.group_id = ?", *groupID)
	}
	if err := q.Order("h.completed_at DESC").Order("h.id DESC").Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
