package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/noteduco342/bible-reading-backend/internal/bible"
	"github.com/noteduco342/bible-reading-backend/internal/models"
	"github.com/noteduco342/bible-reading-backend/internal/repository"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// bookmarkVerse is where the bookmark lands inside the target chapter.
const bookmarkVerse = 1

var (
	bulkBook    string
	bulkChapter int
	bulkApply   bool
)

var bulkCompleteCmd = &cobra.Command{
	Use:   "bulk-complete",
	Short: "Mark every chapter up to a target as completed",
	Long: `Replaces the completed-chapter ledger of one partition with every chapter
of the canon from Genesis 1 through the target chapter, and moves the bookmark
to the target. Prints a SQL script by default; --apply runs it in one
transaction instead.`,
	Example: `  readingadmin bulk-complete --user-id 29 --book 에스겔 --chapter 36 > update_user_29.sql
  readingadmin bulk-complete --user-id 29 --group-id 4 --book 에스겔 --chapter 36 --apply`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		refs, err := bible.ChaptersThrough(bulkBook, bulkChapter)
		if err != nil {
			return err
		}
		target := refs[len(refs)-1]
		gid := optionalGroup(groupID)

		if !bulkApply {
			return writeBulkScript(cmd.OutOrStdout(), userID, gid, target, refs, time.Now())
		}

		db, logger, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()
		if err := applyBulkComplete(cmd.Context(), db, userID, gid, target, refs); err != nil {
			return err
		}
		dropCachedLeaderboards(cmd.Context(), logger)
		fmt.Fprintf(cmd.OutOrStdout(), "marked %d chapters completed for user %d\n", len(refs), userID)
		return nil
	},
}

func init() {
	f := bulkCompleteCmd.Flags()
	f.UintVar(&userID, "user-id", 0, "user to update (required)")
	f.UintVar(&groupID, "group-id", 0, "group partition (default: personal track)")
	f.StringVar(&bulkBook, "book", "", "target book, full Korean name (required)")
	f.IntVar(&bulkChapter, "chapter", 0, "target chapter (required)")
	f.BoolVar(&bulkApply, "apply", false, "apply to the database instead of printing SQL")
	_ = bulkCompleteCmd.MarkFlagRequired("user-id")
	_ = bulkCompleteCmd.MarkFlagRequired("book")
	_ = bulkCompleteCmd.MarkFlagRequired("chapter")
}

func applyBulkComplete(ctx context.Context, db *gorm.DB, userID uint, groupID *uint, target bible.ChapterRef, refs []bible.ChapterRef) error {
	last := models.LastRead{Book: target.Book, Chapter: target.Chapter, Verse: bookmarkVerse}
	err := repository.NewProgressRepository(db).ReplaceLedger(ctx, userID, groupID, refs, last, time.Now())
	if err != nil {
		return fmt.Errorf("bulk complete user %d: %w", userID, err)
	}
	return nil
}

func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// writeBulkScript prints the same change as applyBulkComplete as a
// PostgreSQL script.
func writeBulkScript(w io.Writer, userID uint, groupID *uint, target bible.ChapterRef, refs []bible.ChapterRef, now time.Time) error {
	group := "NULL"
	partition := "group_id IS NULL"
	conflict := "(user_id) WHERE group_id IS NULL"
	if groupID != nil {
		group = fmt.Sprint(*groupID)
		partition = "group_id = " + group
		conflict = "(user_id, group_id) WHERE group_id IS NOT NULL"
	}

	var b strings.Builder
	fmt.Fprintln(&b, "-- Bulk update of reading progress")
	fmt.Fprintf(&b, "-- Generated on: %s\n", now.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "-- User ID: %d, Group: %s, Target: %s %d\n\n", userID, group, target.Book, target.Chapter)
	fmt.Fprintln(&b, "BEGIN;")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "DELETE FROM completed_chapters WHERE user_id = %d AND %s;\n\n", userID, partition)

	fmt.Fprintf(&b, "-- %d chapters\n", len(refs))
	for _, ref := range refs {
		fmt.Fprintf(&b,
			"INSERT INTO completed_chapters (user_id, group_id, book_name, chapter_number, completed_at) VALUES (%d, %s, %s, %d, NOW());\n",
			userID, group, sqlString(ref.Book), ref.Chapter)
	}
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, `INSERT INTO reading_progress (user_id, group_id, last_read_book, last_read_chapter, last_read_verse, updated_at)
VALUES (%d, %s, %s, %d, %d, NOW())
ON CONFLICT %s
DO UPDATE SET
    last_read_book = EXCLUDED.last_read_book,
    last_read_chapter = EXCLUDED.last_read_chapter,
    last_read_verse = EXCLUDED.last_read_verse,
    updated_at = NOW();
`, userID, group, sqlString(target.Book), target.Chapter, bookmarkVerse, conflict)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "COMMIT;")

	_, err := io.WriteString(w, b.String())
	return err
}
