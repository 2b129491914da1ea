package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

const bindingColumns = `terminal_id, primary_reader_id, backup_reader_id, failover_timeout_ms, backend, version, updated_at`

// BindingRepo implements ports.BindingRepository.
type BindingRepo struct {
	pool Pool
}

// NewBindingRepo creates a new BindingRepo.
func NewBindingRepo(pool Pool) *BindingRepo {
	return &BindingRepo{pool: pool}
}

// Get fetches a terminal's binding. Returns nil, nil if none is configured.
func (r *BindingRepo) Get(ctx context.Context, terminalID string) (*domain.TerminalBinding, error) {
	query := `SELECT ` + bindingColumns + ` FROM terminal_bindings WHERE terminal_id = $1`

	b, err := scanBinding(r.pool.QueryRow(ctx, query, terminalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get binding: %w", err)
	}
	return b, nil
}

// Upsert creates or replaces a binding, bumping its version.
func (r *BindingRepo) Upsert(ctx context.Context, b *domain.TerminalBinding) (*domain.TerminalBinding, error) {
	query := `INSERT INTO terminal_bindings (terminal_id, primary_reader_id, backup_reader_id, failover_timeout_ms, backend, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, NOW())
		ON CONFLICT (terminal_id) DO UPDATE SET
			primary_reader_id = EXCLUDED.primary_reader_id,
			backup_reader_id = EXCLUDED.backup_reader_id,
			failover_timeout_ms = EXCLUDED.failover_timeout_ms,
			backend = EXCLUDED.backend,
			version = terminal_bindings.version + 1,
			updated_at = NOW()
		RETURNING ` + bindingColumns

	stored, err := scanBinding(r.pool.QueryRow(ctx, query,
		b.TerminalID, b.PrimaryReaderID, b.BackupReaderID,
		b.Timeout().Milliseconds(), string(b.Backend),
	))
	if err != nil {
		return nil, fmt.Errorf("upsert binding: %w", err)
	}
	return stored, nil
}

// Swap exchanges primary and backup in one statement. The right-hand sides
// of SET see the pre-update row, so both columns change together.
func (r *BindingRepo) Swap(ctx context.Context, terminalID string, expectedVersion int64) (*domain.TerminalBinding, error) {
	query := `UPDATE terminal_bindings
		SET primary_reader_id = backup_reader_id,
			backup_reader_id = primary_reader_id,
			version = version + 1,
			updated_at = NOW()
		WHERE terminal_id = $1 AND version = $2 AND backup_reader_id IS NOT NULL
		RETURNING ` + bindingColumns

	b, err := scanBinding(r.pool.QueryRow(ctx, query, terminalID, expectedVersion))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrVersionConflict
		}
		return nil, fmt.Errorf("swap binding: %w", err)
	}
	return b, nil
}

func scanBinding(row pgx.Row) (*domain.TerminalBinding, error) {
	b := &domain.TerminalBinding{}
	var timeoutMs int64
	var backend string
	err := row.Scan(
		&b.TerminalID, &b.PrimaryReaderID, &b.BackupReaderID,
		&timeoutMs, &backend, &b.Version, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.FailoverTimeout = time.Duration(timeoutMs) * time.Millisecond
	b.Backend = domain.BackendKind(backend)
	return b, nil
}
