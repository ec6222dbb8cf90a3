package main

import (
	"context"
	"fmt"
	"io"

	"github.com/noteduco342/bible-reading-backend/internal/repository"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var finalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Record a finished reading of the canon and start the next round",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, logger, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()
		if err := runFinalize(cmd.Context(), db, cmd.OutOrStdout(), userID, optionalGroup(groupID)); err != nil {
			return err
		}
		dropCachedLeaderboards(cmd.Context(), logger)
		return nil
	},
}

func init() {
	f := finalizeCmd.Flags()
	f.UintVar(&userID, "user-id", 0, "user to finalize (required)")
	f.UintVar(&groupID, "group-id", 0, "group partition (default: personal track)")
	_ = finalizeCmd.MarkFlagRequired("user-id")
}

func runFinalize(ctx context.Context, db *gorm.DB, out io.Writer, userID uint, groupID *uint) error {
	round, err := repository.NewCompletionRepository(db).Finalize(ctx, userID, groupID)
	if err != nil {
		return fmt.Errorf("finalize user %d: %w", userID, err)
	}
	fmt.Fprintf(out, "user %d completed round %d\n", userID, round)
	return nil
}
