package postgres

import (
	"context"
	"fmt"
	"time"

	"payment-terminal-bridge/internal/core/domain"

	"github.com/google/uuid"
)

// WebhookRepo implements ports.WebhookRepository.
type WebhookRepo struct {
	pool Pool
}

// NewWebhookRepo creates a PostgreSQL-backed webhook delivery log.
func NewWebhookRepo(pool Pool) *WebhookRepo {
	return &WebhookRepo{pool: pool}
}

func (r *WebhookRepo) Create(ctx context.Context, log *domain.WebhookDeliveryLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO webhook_delivery_logs
		 (id, transaction_id, terminal_id, webhook_url, payload, http_status, attempt, status, next_retry_at, last_error, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		log.ID, log.TransactionID, log.TerminalID, log.WebhookURL,
		log.Payload, log.HTTPStatus, log.Attempt, string(log.Status),
		log.NextRetryAt, log.LastError, log.CreatedAt, log.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert webhook log: %w", err)
	}
	return nil
}

func (r *WebhookRepo) Update(ctx context.Context, log *domain.WebhookDeliveryLog) error {
	log.UpdatedAt = time.Now()
	_, err := r.pool.Exec(ctx,
		`UPDATE webhook_delivery_logs
		 SET http_status=$1, attempt=$2, status=$3, next_retry_at=$4, last_error=$5, updated_at=$6
		 WHERE id=$7`,
		log.HTTPStatus, log.Attempt, string(log.Status),
		log.NextRetryAt, log.LastError, log.UpdatedAt, log.ID,
	)
	if err != nil {
		return fmt.Errorf("update webhook log: %w", err)
	}
	return nil
}

func (r *WebhookRepo) GetByTransactionID(ctx context.Context, txID uuid.UUID) ([]domain.WebhookDeliveryLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, transaction_id, terminal_id, webhook_url, payload,
		 http_status, attempt, status, next_retry_at, last_error,
		 created_at, updated_at
		 FROM webhook_delivery_logs
		 WHERE transaction_id=$1
		 ORDER BY created_at DESC`, txID)
	if err != nil {
		return nil, fmt.Errorf("list webhook logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.WebhookDeliveryLog
	for rows.Next() {
		var l domain.WebhookDeliveryLog
		var status string
		if err := rows.Scan(
			&l.ID, &l.TransactionID, &l.TerminalID, &l.WebhookURL, &l.Payload,
			&l.HTTPStatus, &l.Attempt, &status, &l.NextRetryAt, &l.LastError,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan webhook log: %w", err)
		}
		l.Status = domain.WebhookStatus(status)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
