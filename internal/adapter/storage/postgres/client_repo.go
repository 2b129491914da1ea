package postgres

import (
	"context"
	"errors"
	"fmt"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ClientRepo implements ports.ClientRepository.
type ClientRepo struct {
	pool Pool
}

// NewClientRepo creates a new ClientRepo.
func NewClientRepo(pool Pool) *ClientRepo {
	return &ClientRepo{pool: pool}
}

// Create inserts a new API client.
func (r *ClientRepo) Create(ctx context.Context, c *domain.APIClient) error {
	query := `INSERT INTO api_clients (id, secret_hash, role, terminal_id, disabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.SecretHash, string(c.Role), c.TerminalID, c.Disabled, c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ports.ErrDuplicateClient
		}
		return fmt.Errorf("insert api client: %w", err)
	}
	return nil
}

// GetByID fetches a client. Returns nil, nil if not found.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*domain.APIClient, error) {
	query := `SELECT id, secret_hash, role, terminal_id, disabled, created_at FROM api_clients WHERE id = $1`

	c := &domain.APIClient{}
	var role string
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.SecretHash, &role, &c.TerminalID, &c.Disabled, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get api client: %w", err)
	}
	c.Role = domain.ClientRole(role)
	return c, nil
}
