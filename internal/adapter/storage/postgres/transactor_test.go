package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"payment-terminal-bridge/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactor_SetsLockTimeout(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectExec("SET LOCAL lock_timeout = 5000").WillReturnResult(pgxmock.NewResult("SET", 0))
	mock.ExpectCommit()

	tx, err := NewTransactor(mock, 5*time.Second).Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_NoLockTimeout(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectRollback()

	tx, err := NewTransactor(mock, 0).Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_RollsBackWhenSetFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	mock.ExpectExec("SET LOCAL lock_timeout").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	_, err = NewTransactor(mock, time.Second).Begin(context.Background())
	assert.ErrorContains(t, err, "set lock timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPoolConfig(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "localhost", Port: 5432, User: "u", Password: "p", DBName: "bridge", SSLMode: "disable",
		MaxConns:        8,
		MinConns:        2,
		ConnMaxLifetime: time.Hour,
		HealthCheck:     15 * time.Second,
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	require.NoError(t, err)

	applyPoolConfig(poolCfg, cfg, "relay")

	assert.EqualValues(t, 8, poolCfg.MaxConns)
	assert.EqualValues(t, 2, poolCfg.MinConns)
	assert.Equal(t, time.Hour, poolCfg.MaxConnLifetime)
	assert.Equal(t, 15*time.Second, poolCfg.HealthCheckPeriod)
	assert.Equal(t, "relay", poolCfg.ConnConfig.RuntimeParams["application_name"])
}

func TestApplyPoolConfig_MinAboveMaxIgnored(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "localhost", Port: 5432, User: "u", Password: "p", DBName: "bridge", SSLMode: "disable", MaxConns: 2, MinConns: 5}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	require.NoError(t, err)
	before := poolCfg.MinConns

	applyPoolConfig(poolCfg, cfg, "")

	assert.Equal(t, before, poolCfg.MinConns)
	assert.NotContains(t, poolCfg.ConnConfig.RuntimeParams, "application_name")
}
