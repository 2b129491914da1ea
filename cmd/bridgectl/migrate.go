package main

import (
	"fmt"
	"strconv"

	pgStorage "payment-terminal-bridge/internal/adapter/storage/postgres"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up [N]",
	Short: "Apply all pending migrations, or the next N",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := parseSteps(args, 0)
		if err != nil {
			return err
		}
		return runMigrate(steps)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [N]",
	Short: "Roll back the last N migrations (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := parseSteps(args, 1)
		if err != nil {
			return err
		}
		return runMigrate(-steps)
	},
}

func parseSteps(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("step count must be a positive integer, got %q", args[0])
	}
	return n, nil
}

func runMigrate(steps int) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	return pgStorage.Migrate(e.cfg.Database.DSN(), steps, e.log)
}
