package postgres

import (
	"context"
	"fmt"

	"payment-terminal-bridge/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NewPool opens the shared pgx pool. appName is reported to the server as
// application_name so the api, relay and bridgectl sessions can be told
// apart in pg_stat_activity.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, appName string, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	applyPoolConfig(poolCfg, cfg, appName)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("dbname", cfg.DBName).
		Str("application_name", appName).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("PostgreSQL pool ready")
	return pool, nil
}

func applyPoolConfig(poolCfg *pgxpool.Config, cfg config.DatabaseConfig, appName string) {
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= poolCfg.MaxConns {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.HealthCheck > 0 {
		poolCfg.HealthCheckPeriod = cfg.HealthCheck
	}
	if appName != "" {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = appName
	}
}
