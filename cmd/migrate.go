package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cashier/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return database.RunMigrations(databaseURLFromEnv())
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations (default 1 step)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := "1"
		if len(args) == 1 {
			steps = args[0]
		}
		return database.RollbackMigrations(databaseURLFromEnv(), steps)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current migration version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return database.MigrationStatus(databaseURLFromEnv())
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

func databaseURLFromEnv() string {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	return url
}
