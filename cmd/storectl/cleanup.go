package main

import (
	"fmt"
	"time"

	"github.com/lsjscarlett/store-locator/internal/bulk"
	"github.com/spf13/cobra"
)

var cleanupRevokedAfter time.Duration

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired database cache entries and stale refresh tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := bulk.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		now := time.Now()
		stats, err := db.Cleanup(ctx, now, now.Add(-cleanupRevokedAfter))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d cache entries and %d refresh tokens\n", stats.CacheEntries, stats.RefreshTokens)
		return nil
	},
}

func init() {
	cleanupCmd.Flags().DurationVar(&cleanupRevokedAfter, "revoked-after", 24*time.Hour, "keep revoked refresh tokens for this long")
	rootCmd.AddCommand(cleanupCmd)
}
