package domain

import (
	"time"

	"github.com/google/uuid"
)

// WebhookStatus represents the delivery state of a result notification.
type WebhookStatus string

const (
	WebhookStatusPending   WebhookStatus = "PENDING"
	WebhookStatusDelivered WebhookStatus = "DELIVERED"
	WebhookStatusFailed    WebhookStatus = "FAILED"
)

// WebhookDeliveryLog records each attempt to hand a transaction result to
// the order domain.
type WebhookDeliveryLog struct {
	ID            uuid.UUID     `json:"id"`
	TransactionID uuid.UUID     `json:"transaction_id"`
	TerminalID    string        `json:"terminal_id"`
	WebhookURL    string        `json:"webhook_url"`
	Payload       string        `json:"payload"` // JSON string
	HTTPStatus    *int          `json:"http_status"`
	Attempt       int           `json:"attempt"`
	Status        WebhookStatus `json:"status"`
	NextRetryAt   *time.Time    `json:"next_retry_at"`
	LastError     *string       `json:"last_error"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
