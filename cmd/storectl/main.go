// Command storectl manages the store locator database and caches.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lsjscarlett/store-locator/internal/config"
	"github.com/lsjscarlett/store-locator/internal/logger"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "storectl",
	Short: "Store locator administration",
	Long: `Administer the store locator: run migrations, seed roles and the admin
user, bulk-import stores from CSV and flush the API's caches.

Configuration is read from the environment (and .env when present), the
same variables the API server uses.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		return logger.Init(cfg.IsProduction())
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
