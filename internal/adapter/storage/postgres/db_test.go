package postgres

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCents(t *testing.T) {
	tests := []struct {
		in    string
		cents int64
	}{
		{"42.50", 4250},
		{"0.01", 1},
		{"65.82", 6582},
		{"54", 5400},
		{"19.999", 2000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.cents, toCents(decimal.RequireFromString(tt.in)), tt.in)
	}
	assert.True(t, fromCents(6582).Equal(decimal.RequireFromString("65.82")))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
}

func TestHealthCheck(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	hc := NewHealthCheck(mock)
	assert.Equal(t, "postgresql", hc.Name())

	mock.ExpectExec("SELECT 1").WillReturnResult(pgxmock.NewResult("SELECT", 1))
	assert.NoError(t, hc.Ping(context.Background()))

	mock.ExpectExec("SELECT 1").WillReturnError(errors.New("down"))
	assert.Error(t, hc.Ping(context.Background()))
}
