package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-terminal-bridge/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const relayColumns = `id, type, target_device, sequence, payload, status, result, error, ambiguous,
		claimed_by, expires_at, created_at, updated_at`

// RelayCommandRepo implements ports.RelayCommandRepository on the
// relay_commands table shared with relay agents.
type RelayCommandRepo struct {
	pool Pool
}

func NewRelayCommandRepo(pool Pool) *RelayCommandRepo {
	return &RelayCommandRepo{pool: pool}
}

func (r *RelayCommandRepo) Enqueue(ctx context.Context, cmd *domain.RelayCommand) error {
	query := `INSERT INTO relay_commands (id, type, target_device, sequence, payload, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`

	_, err := r.pool.Exec(ctx, query,
		cmd.ID, cmd.Type, cmd.TargetDevice, cmd.Sequence, []byte(cmd.Payload),
		string(cmd.Status), cmd.ExpiresAt, cmd.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("enqueue relay command: %w", err)
	}
	return nil
}

// GetByID returns nil, nil if the command does not exist.
func (r *RelayCommandRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RelayCommand, error) {
	cmd, err := scanRelayCommand(r.pool.QueryRow(ctx, `SELECT `+relayColumns+` FROM relay_commands WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get relay command: %w", err)
	}
	return cmd, nil
}

func (r *RelayCommandRepo) Expire(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE relay_commands SET status = 'expired', updated_at = NOW() WHERE id = $1 AND status = 'queued'`, id)
	if err != nil {
		return false, fmt.Errorf("expire relay command: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ClaimNext claims the lowest-sequence live command. SKIP LOCKED lets
// several relays poll the same table without blocking on each other.
func (r *RelayCommandRepo) ClaimNext(ctx context.Context, relayID string, devices []string) (*domain.RelayCommand, error) {
	query := `UPDATE relay_commands SET status = 'claimed', claimed_by = $1, updated_at = NOW()
		WHERE id = (
			SELECT id FROM relay_commands
			WHERE status = 'queued' AND expires_at > NOW() AND target_device = ANY($2)
			ORDER BY sequence, created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + relayColumns

	cmd, err := scanRelayCommand(r.pool.QueryRow(ctx, query, relayID, devices))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim relay command: %w", err)
	}
	return cmd, nil
}

// Finish writes the relay's outcome for a claimed command.
func (r *RelayCommandRepo) Finish(ctx context.Context, id uuid.UUID, status domain.RelayCommandStatus, result []byte, errMsg *string, ambiguous bool) error {
	query := `UPDATE relay_commands SET status = $1, result = $2, error = $3, ambiguous = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'claimed'`

	tag, err := r.pool.Exec(ctx, query, string(status), result, errMsg, ambiguous, id)
	if err != nil {
		return fmt.Errorf("finish relay command: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRelayNotClaimed, id)
	}
	return nil
}

// ExpireStale closes queued commands whose deadline passed before any relay claimed them.
func (r *RelayCommandRepo) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE relay_commands SET status = 'expired', updated_at = NOW() WHERE status = 'queued' AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("expire stale relay commands: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanRelayCommand(row pgx.Row) (*domain.RelayCommand, error) {
	cmd := &domain.RelayCommand{}
	var status string
	var payload, result []byte
	err := row.Scan(
		&cmd.ID, &cmd.Type, &cmd.TargetDevice, &cmd.Sequence, &payload, &status, &result,
		&cmd.Error, &cmd.Ambiguous, &cmd.ClaimedBy, &cmd.ExpiresAt, &cmd.CreatedAt, &cmd.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	cmd.Status = domain.RelayCommandStatus(status)
	cmd.Payload = payload
	cmd.Result = result
	return cmd, nil
}
