package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"payment-terminal-bridge/internal/core/domain"
	"payment-terminal-bridge/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// webhookRetryIntervals is the back-off between delivery attempts.
var webhookRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// Webhook event types.
const (
	EventTransactionResult = "TRANSACTION_RESULT"
	EventReconciled        = "TRANSACTION_RECONCILED"
)

// Webhook request headers.
const (
	HeaderSignature = "X-Bridge-Signature"
	HeaderTimestamp = "X-Bridge-Timestamp"
)

// WebhookPayload is the JSON body posted to the order domain.
type WebhookPayload struct {
	EventType string             `json:"event_type"`
	Data      WebhookPayloadData `json:"data"`
}

// WebhookPayloadData holds the transaction outcome.
type WebhookPayloadData struct {
	TransactionID          string          `json:"transaction_id"`
	TerminalID             string          `json:"terminal_id"`
	ReaderID               string          `json:"reader_id"`
	Operation              string          `json:"operation"`
	InvoiceNo              string          `json:"invoice_no,omitempty"`
	RecordNo               string          `json:"record_no,omitempty"`
	Status                 string          `json:"status"`
	AmountRequested        decimal.Decimal `json:"amount_requested"`
	AmountAuthorized       decimal.Decimal `json:"amount_authorized"`
	IsPartialApproval      bool            `json:"is_partial_approval"`
	ReconciliationRequired bool            `json:"reconciliation_required"`
	ErrorCode              string          `json:"error_code,omitempty"`
	Timestamp              int64           `json:"timestamp"`
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// webhookService implements ports.WebhookService.
type webhookService struct {
	repo       ports.WebhookRepository
	sigSvc     ports.SignatureService
	httpClient HTTPClient
	url        string
	secret     string
	intervals  []time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// NewWebhookService creates a result-delivery service posting to url.
// An empty url disables delivery.
func NewWebhookService(
	repo ports.WebhookRepository,
	sigSvc ports.SignatureService,
	httpClient HTTPClient,
	url, secret string,
	log zerolog.Logger,
) ports.WebhookService {
	return &webhookService{
		repo:       repo,
		sigSvc:     sigSvc,
		httpClient: httpClient,
		url:        url,
		secret:     secret,
		intervals:  webhookRetryIntervals,
		now:        time.Now,
		log:        log,
	}
}

// EnqueueWebhook records a pending delivery and posts the result
// asynchronously with retries.
func (s *webhookService) EnqueueWebhook(ctx context.Context, transaction *domain.Transaction) error {
	if s.url == "" {
		s.log.Debug().Str("tx_id", transaction.ID.String()).Msg("webhook: no webhook URL configured, skipping")
		return nil
	}

	eventType := EventTransactionResult
	if transaction.ReconciledAt != nil {
		eventType = EventReconciled
	}

	now := s.now()
	data := WebhookPayloadData{
		TransactionID:          transaction.ID.String(),
		TerminalID:             transaction.TerminalID,
		ReaderID:               transaction.ReaderID,
		Operation:              string(transaction.Kind),
		InvoiceNo:              transaction.InvoiceNo,
		RecordNo:               transaction.RecordNo,
		Status:                 string(transaction.Status),
		AmountRequested:        transaction.AmountRequested,
		ReconciliationRequired: transaction.ReconciliationRequired,
		ErrorCode:              transaction.ErrorCode,
		Timestamp:              now.Unix(),
	}
	if transaction.Result != nil {
		data.AmountAuthorized = transaction.Result.AmountAuthorized
		data.IsPartialApproval = transaction.Result.IsPartialApproval
	}

	body, err := json.Marshal(WebhookPayload{EventType: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	delivery := &domain.WebhookDeliveryLog{
		ID:            uuid.New(),
		TransactionID: transaction.ID,
		TerminalID:    transaction.TerminalID,
		WebhookURL:    s.url,
		Payload:       string(body),
		Status:        domain.WebhookStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, delivery); err != nil {
		s.log.Error().Err(err).Str("tx_id", transaction.ID.String()).Msg("webhook: failed to record delivery")
		return err
	}

	go s.deliverWithRetries(delivery, body)

	return nil
}

// deliverWithRetries posts body until a 2xx response or the retry schedule
// is exhausted, recording each attempt.
func (s *webhookService) deliverWithRetries(delivery *domain.WebhookDeliveryLog, body []byte) {
	txID := delivery.TransactionID.String()

	for attempt := 0; attempt <= len(s.intervals); attempt++ {
		if attempt > 0 {
			time.Sleep(s.intervals[attempt-1])
		}
		delivery.Attempt = attempt + 1

		status, err := s.post(body)
		delivery.UpdatedAt = s.now()
		delivery.HTTPStatus = nil
		if status != 0 {
			delivery.HTTPStatus = &status
		}

		if err == nil {
			delivery.Status = domain.WebhookStatusDelivered
			delivery.LastError = nil
			delivery.NextRetryAt = nil
			s.record(delivery)
			s.log.Info().Str("tx_id", txID).Int("attempt", attempt+1).Int("status", status).Msg("webhook: delivered successfully")
			return
		}

		msg := err.Error()
		delivery.LastError = &msg
		if attempt < len(s.intervals) {
			next := delivery.UpdatedAt.Add(s.intervals[attempt])
			delivery.NextRetryAt = &next
		} else {
			delivery.Status = domain.WebhookStatusFailed
			delivery.NextRetryAt = nil
		}
		s.record(delivery)
		s.log.Warn().Err(err).Str("tx_id", txID).Int("attempt", attempt+1).Msg("webhook: delivery failed")
	}

	s.log.Error().Str("tx_id", txID).Msg("webhook: all retry attempts exhausted")
}

func (s *webhookService) post(body []byte) (int, error) {
	ts := s.now().Unix()

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderSignature, s.sigSvc.Sign(s.secret, SignedContent(ts, body)))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("non-2xx response: %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

func (s *webhookService) record(delivery *domain.WebhookDeliveryLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.Update(ctx, delivery); err != nil {
		s.log.Warn().Err(err).Str("delivery_id", delivery.ID.String()).Msg("webhook: failed to update delivery log")
	}
}
