package main

import (
	"fmt"

	"github.com/lsjscarlett/store-locator/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables and seed roles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(cfg)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed roles and the admin user from ADMIN_EMAIL / ADMIN_PASSWORD",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.AdminPassword == "" {
			return fmt.Errorf("ADMIN_PASSWORD is required")
		}

		db, err := database.Connect(cfg)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		if err := database.SeedRoles(db); err != nil {
			return err
		}
		created, err := database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}

		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "Admin user %s created\n", cfg.AdminEmail)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Admin user %s already exists\n", cfg.AdminEmail)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
