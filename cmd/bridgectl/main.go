// Command bridgectl administers a payment terminal bridge deployment:
// schema migrations, API clients, the reader registry and terminal bindings.
package main

import (
	"context"
	"fmt"
	"os"

	"payment-terminal-bridge/config"
	pgStorage "payment-terminal-bridge/internal/adapter/storage/postgres"
	"payment-terminal-bridge/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "bridgectl",
	Short:        "Administer the payment terminal bridge",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default ./config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every subcommand needs: config, a logger and, on demand, a pool.
type env struct {
	cfg *config.Config
	log zerolog.Logger
}

func loadEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &env{cfg: cfg, log: logger.New(cfg.Log.Level, cfg.Log.Pretty, "bridgectl")}, nil
}

func (e *env) pool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := pgStorage.NewPool(ctx, e.cfg.Database, "bridgectl", e.log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}
