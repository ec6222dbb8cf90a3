package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/noteduco342/bible-reading-backend/internal/bible"
	"github.com/noteduco342/bible-reading-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// inPartition selects the personal track when groupID is nil and the group
// track otherwise.
func inPartition(groupID *uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if groupID == nil {
			return db.Where("group_id IS NULL")
		}
		return db.Where("group_id = ?", *groupID)
	}
}

// provisionUser returns the id of username, creating a password-less account
// that must set a password on first login when none exists.
func provisionUser(tx *gorm.DB, username string, now time.Time) (uint, error) {
	err := tx.Exec(
		`INSERT INTO users (username, must_change_password, completed_count, created_at)
		VALUES (?, ?, 0, ?) ON CONFLICT (username) DO NOTHING`,
		username, true, now,
	).Error
	if err != nil {
		return 0, err
	}
	var user models.User
	if err := tx.Select("id").Where("username = ?", username).First(&user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

const upsertPersonalProgress = `
	INSERT INTO reading_progress (user_id, group_id, last_read_book, last_read_chapter, last_read_verse, updated_at)
	VALUES (?, NULL, ?, ?, ?, ?)
	ON CONFLICT (user_id) WHERE group_id IS NULL
	DO UPDATE SET
		last_read_book = excluded.last_read_book,
		last_read_chapter = excluded.last_read_chapter,
		last_read_verse = excluded.last_read_verse,
		updated_at = excluded.updated_at`

const upsertGroupProgress = `
	INSERT INTO reading_progress (user_id, group_id, last_read_book, last_read_chapter, last_read_verse, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id, group_id) WHERE group_id IS NOT NULL
	DO UPDATE SET
		last_read_book = excluded.last_read_book,
		last_read_chapter = excluded.last_read_chapter,
		last_read_verse = excluded.last_read_verse,
		updated_at = excluded.updated_at`

// Save applies one progress batch to the partition in a single transaction.
// The user is provisioned on first save. Chapter keys that do not parse are
// dropped; chapters already in the ledger are ignored. Any failure leaves the
// previous state untouched.
func (r *ProgressRepository) Save(ctx context.Context, username string, groupID *uint, batch ProgressBatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userID, err := provisionUser(tx, username, batch.Now)
		if err != nil {
			return err
		}

		last := batch.LastRead
		if groupID == nil {
			err = tx.Exec(upsertPersonalProgress, userID, last.Book, last.Chapter, last.Verse, batch.Now).Error
		} else {
			err = tx.Exec(upsertGroupProgress, userID, *groupID, last.Book, last.Chapter, last.Verse, batch.Now).Error
		}
		if err != nil {
			return err
		}

		if chapters := ledgerRows(userID, groupID, batch); len(chapters) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&chapters).Error; err != nil {
				return err
			}
		}

		if len(batch.History) > 0 {
			history := make([]models.ReadingHistory, 0, len(batch.History))
			for _, h := range batch.History {
				history = append(history, models.ReadingHistory{
					UserID:          userID,
					GroupID:         groupID,
					BookName:        h.Book,
					ChapterNumber:   h.StartChapter,
					VerseNumber:     h.StartVerse,
					ReadAt:          h.Date,
					DurationMinutes: h.DurationMinutes,
				})
			}
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceLedger rewrites the partition's ledger to exactly refs and moves the
// bookmark to last. Used by the admin tooling; the user must already exist.
func (r *ProgressRepository) ReplaceLedger(ctx context.Context, userID uint, groupID *uint, refs []bible.ChapterRef, last models.LastRead, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, userID).Error; err != nil {
			return err
		}

		if err := tx.Scopes(inPartition(groupID)).Where("user_id = ?", userID).
			Delete(&models.CompletedChapter{}).Error; err != nil {
			return err
		}

		rows := make([]models.CompletedChapter, 0, len(refs))
		for _, ref := range refs {
			rows = append(rows, models.CompletedChapter{
				UserID:        userID,
				GroupID:       groupID,
				BookName:      ref.Book,
				ChapterNumber: ref.Chapter,
				CompletedAt:   now,
			})
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(&rows, 500).Error; err != nil {
				return err
			}
		}

		if groupID == nil {
			return tx.Exec(upsertPersonalProgress, userID, last.Book, last.Chapter, last.Verse, now).Error
		}
		return tx.Exec(upsertGroupProgress, userID, *groupID, last.Book, last.Chapter, last.Verse, now).Error
	})
}

func ledgerRows(userID uint, groupID *uint, batch ProgressBatch) []models.CompletedChapter {
	seen := make(map[bible.ChapterRef]bool, len(batch.CompletedChapters))
	rows := make([]models.CompletedChapter, 0, len(batch.CompletedChapters))
	for _, key := range batch.CompletedChapters {
		ref, ok := bible.ParseChapterKey(key)
		if !ok || seen[ref] {
			continue
		}
		seen[ref] = true
		rows = append(rows, models.CompletedChapter{
			UserID:        userID,
			GroupID:       groupID,
			BookName:      ref.Book,
			ChapterNumber: ref.Chapter,
			CompletedAt:   batch.Now,
		})
	}
	return rows
}

// Get reads a partition. Unknown users get an empty snapshot.
func (r *ProgressRepository) Get(ctx context.Context, username string, groupID *uint, historyLimit int) (*models.ProgressSnapshot, error) {
	snap := &models.ProgressSnapshot{
		CompletedChapters: []string{},
		History:           []models.ReadingHistory{},
	}
	db := r.db.WithContext(ctx)

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return snap, nil
		}
		return nil, err
	}

	var progress models.ReadingProgress
	err := db.Where("user_id = ?", user.ID).Scopes(inPartition(groupID)).First(&progress).Error
	switch {
	case err == nil:
		if progress.LastReadBook != nil {
			snap.LastReadBook = *progress.LastReadBook
		}
		if progress.LastReadChapter != nil {
			snap.LastReadChapter = *progress.LastReadChapter
		}
		if progress.LastReadVerse != nil {
			snap.LastReadVerse = *progress.LastReadVerse
		}
		updated := progress.UpdatedAt
		snap.LastProgressUpdateDate = &updated
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	keys, err := r.completedKeys(db, user.ID, groupID)
	if err != nil {
		return nil, err
	}
	snap.CompletedChapters = keys

	if historyLimit > 0 {
		q := db.Where("user_id = ?", user.ID).Scopes(inPartition(groupID)).
			Order("read_at DESC").Order("id DESC").Limit(historyLimit)
		if err := q.Find(&snap.History).Error; err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// CompletedChapters lists the partition's ledger as "<book>:<chapter>" keys in
// canon order.
func (r *ProgressRepository) CompletedChapters(ctx context.Context, username string, groupID *uint) ([]string, error) {
	db := r.db.WithContext(ctx)
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	return r.completedKeys(db, user.ID, groupID)
}

func (r *ProgressRepository) completedKeys(db *gorm.DB, userID uint, groupID *uint) ([]string, error) {
	var rows []models.CompletedChapter
	err := db.Select("book_name", "chapter_number").
		Where("user_id = ?", userID).Scopes(inPartition(groupID)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	refs := make([]bible.ChapterRef, len(rows))
	for i, row := range rows {
		refs[i] = bible.ChapterRef{Book: row.BookName, Chapter: row.ChapterNumber}
	}
	sort.Slice(refs, func(i, j int) bool { return bible.Less(refs[i], refs[j]) })

	keys := make([]string, len(refs))
	for i, ref := range refs {
		keys[i] = ref.Key()
	}
	return keys, nil
}
