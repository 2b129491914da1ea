package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-terminal-bridge/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const readerColumns = `id, name, address, serial_number, is_online, last_seen_at, credentials_enc, created_at, updated_at`

// ReaderRepo implements ports.ReaderRepository.
type ReaderRepo struct {
	pool Pool
}

// NewReaderRepo creates a new ReaderRepo.
func NewReaderRepo(pool Pool) *ReaderRepo {
	return &ReaderRepo{pool: pool}
}

// GetByID fetches a reader. Returns nil, nil if not registered.
func (r *ReaderRepo) GetByID(ctx context.Context, id string) (*domain.Reader, error) {
	query := `SELECT ` + readerColumns + ` FROM readers WHERE id = $1`

	rd, err := scanReader(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reader: %w", err)
	}
	return rd, nil
}

// List returns every registered reader ordered by id.
func (r *ReaderRepo) List(ctx context.Context) ([]domain.Reader, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+readerColumns+` FROM readers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list readers: %w", err)
	}
	defer rows.Close()

	var readers []domain.Reader
	for rows.Next() {
		rd, err := scanReader(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reader row: %w", err)
		}
		readers = append(readers, *rd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reader rows: %w", err)
	}
	return readers, nil
}

// UpdateStatus writes the online flag. seenAt is only written when non-nil,
// so an offline mark keeps the last successful contact time.
func (r *ReaderRepo) UpdateStatus(ctx context.Context, id string, online bool, seenAt *time.Time) error {
	query := `UPDATE readers SET is_online = $1, last_seen_at = COALESCE($2, last_seen_at), updated_at = NOW() WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, online, seenAt, id)
	if err != nil {
		return fmt.Errorf("update reader status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reader not found: %s", id)
	}
	return nil
}

// Register inserts a reader or replaces its registry fields, leaving the
// online flag and last contact time to the status checks.
func (r *ReaderRepo) Register(ctx context.Context, rd *domain.Reader) (*domain.Reader, error) {
	query := `INSERT INTO readers (id, name, address, serial_number, credentials_enc)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			serial_number = EXCLUDED.serial_number,
			credentials_enc = EXCLUDED.credentials_enc,
			updated_at = NOW()
		RETURNING ` + readerColumns

	stored, err := scanReader(r.pool.QueryRow(ctx, query, rd.ID, rd.Name, rd.Address, rd.SerialNumber, rd.CredentialsEnc))
	if err != nil {
		return nil, fmt.Errorf("register reader: %w", err)
	}
	return stored, nil
}

func scanReader(row pgx.Row) (*domain.Reader, error) {
	rd := &domain.Reader{}
	err := row.Scan(
		&rd.ID, &rd.Name, &rd.Address, &rd.SerialNumber, &rd.IsOnline,
		&rd.LastSeenAt, &rd.CredentialsEnc, &rd.CreatedAt, &rd.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rd, nil
}
