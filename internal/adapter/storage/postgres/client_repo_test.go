package postgres

import (
	"context"
	"testing"
	"time"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRepo_Create_Duplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewClientRepo(mock)
	c := &domain.APIClient{ID: "pos-1", SecretHash: "hash", Role: domain.RoleTerminal, TerminalID: strPtr("term-1"), CreatedAt: time.Now()}

	mock.ExpectExec("INSERT INTO api_clients").
		WithArgs("pos-1", "hash", "terminal", c.TerminalID, false, c.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Create(context.Background(), c)
	assert.ErrorIs(t, err, ports.ErrDuplicateClient)
}

func TestClientRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewClientRepo(mock)
	now := time.Now()

	mock.ExpectQuery("SELECT .+ FROM api_clients WHERE id").
		WithArgs("ops").
		WillReturnRows(pgxmock.NewRows([]string{"id", "secret_hash", "role", "terminal_id", "disabled", "created_at"}).
			AddRow("ops", "hash", "operator", nil, false, now))

	c, err := repo.GetByID(context.Background(), "ops")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, domain.RoleOperator, c.Role)
	assert.Nil(t, c.TerminalID)
}
