package dto

import (
	"time"

	"payment-terminal-bridge/internal/core/domain"

	"github.com/shopspring/decimal"
)

// TokenRequest is the request body for obtaining an access token.
type TokenRequest struct {
	ClientID string `json:"client_id" binding:"required,safe_id,max=64"`
	Secret   string `json:"secret" binding:"required"`
}

// TokenResponse is the response body for a successful token request.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // Unix timestamp
}

// CreateClientRequest provisions a terminal or operator client.
type CreateClientRequest struct {
	ClientID   string  `json:"client_id" binding:"required,safe_id,max=64"`
	Secret     string  `json:"secret" binding:"required,min=16,max=128"`
	Role       string  `json:"role" binding:"required,oneof=terminal operator"`
	TerminalID *string `json:"terminal_id,omitempty" binding:"omitempty,safe_id"`
}

// ClientResponse describes a provisioned client. The secret is never echoed.
type ClientResponse struct {
	ClientID   string  `json:"client_id"`
	Role       string  `json:"role"`
	TerminalID *string `json:"terminal_id,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// SaleRequest is the body for sale and pre-authorization.
type SaleRequest struct {
	InvoiceNo string          `json:"invoice_no" binding:"required,safe_id,max=64"`
	Amount    decimal.Decimal `json:"amount" binding:"money_pos"`
	TipAmount decimal.Decimal `json:"tip_amount" binding:"money"`
}

// CaptureRequest closes a tab, or adjusts the tip on an approved sale.
type CaptureRequest struct {
	RecordNo       string          `json:"record_no" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"money_pos"`
	GratuityAmount decimal.Decimal `json:"gratuity_amount" binding:"money"`
}

// IncrementRequest raises an open pre-authorization.
type IncrementRequest struct {
	RecordNo string          `json:"record_no" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"money_pos"`
}

// VoidRequest reverses an approved sale or pre-authorization.
type VoidRequest struct {
	RecordNo string `json:"record_no" binding:"required"`
}

// ReturnRequest refunds an amount, linked to a prior sale when RecordNo is set.
type ReturnRequest struct {
	InvoiceNo   string          `json:"invoice_no" binding:"required,safe_id,max=64"`
	RecordNo    string          `json:"record_no,omitempty"`
	Amount      decimal.Decimal `json:"amount" binding:"money_pos"`
	CardPresent bool            `json:"card_present"`
}

// ResultResponse is the body returned for every completed reader operation.
type ResultResponse struct {
	Approved          bool            `json:"approved"`
	AuthCode          string          `json:"auth_code,omitempty"`
	RefNumber         string          `json:"ref_number,omitempty"`
	RecordNo          string          `json:"record_no,omitempty"`
	CardBrand         string          `json:"card_brand,omitempty"`
	CardLast4         string          `json:"card_last4,omitempty"`
	EntryMethod       string          `json:"entry_method,omitempty"`
	CVM               string          `json:"cvm,omitempty"`
	SignatureData     string          `json:"signature_data,omitempty"`
	ResponseCode      string          `json:"response_code,omitempty"`
	ResponseMessage   string          `json:"response_message,omitempty"`
	AmountRequested   decimal.Decimal `json:"amount_requested"`
	AmountAuthorized  decimal.Decimal `json:"amount_authorized"`
	IsPartialApproval bool            `json:"is_partial_approval"`
	Error             string          `json:"error,omitempty"`
}

// NewResultResponse converts a domain result.
func NewResultResponse(r *domain.TransactionResult) ResultResponse {
	return ResultResponse{
		Approved:          r.Approved,
		AuthCode:          r.AuthCode,
		RefNumber:         r.RefNumber,
		RecordNo:          r.RecordNo,
		CardBrand:         r.CardBrand,
		CardLast4:         r.CardLast4,
		EntryMethod:       r.EntryMethod,
		CVM:               r.CVM,
		SignatureData:     r.SignatureData,
		ResponseCode:      r.ResponseCode,
		ResponseMessage:   r.ResponseMessage,
		AmountRequested:   r.AmountRequested.Round(2),
		AmountAuthorized:  r.AmountAuthorized.Round(2),
		IsPartialApproval: r.IsPartialApproval,
		Error:             r.Error,
	}
}

// TerminalStateResponse is the observable state of a terminal.
type TerminalStateResponse struct {
	TerminalID    string  `json:"terminal_id"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id,omitempty"`
	Operation     string  `json:"operation,omitempty"`
	ReaderID      string  `json:"reader_id,omitempty"`
	Error         string  `json:"error,omitempty"`
	UpdatedAt     string  `json:"updated_at"`
}

// NewTerminalStateResponse converts a domain state.
func NewTerminalStateResponse(s *domain.TerminalState) TerminalStateResponse {
	resp := TerminalStateResponse{
		TerminalID: s.TerminalID,
		Status:     string(s.Status),
		Operation:  string(s.Operation),
		ReaderID:   s.ReaderID,
		Error:      s.Error,
		UpdatedAt:  formatTime(s.UpdatedAt),
	}
	if s.TransactionID != nil {
		id := s.TransactionID.String()
		resp.TransactionID = &id
	}
	return resp
}

// BindingRequest replaces a terminal's binding. Version is the value the
// caller last read; zero creates a new binding.
type BindingRequest struct {
	PrimaryReaderID   string  `json:"primary_reader_id" binding:"required,safe_id"`
	BackupReaderID    *string `json:"backup_reader_id,omitempty" binding:"omitempty,safe_id,nefield=PrimaryReaderID"`
	FailoverTimeoutMs int64   `json:"failover_timeout_ms" binding:"omitempty,min=100,max=120000"`
	Backend           string  `json:"backend" binding:"omitempty,oneof=relay direct simulator"`
	Version           int64   `json:"version" binding:"min=0"`
}

// BindingResponse is a terminal binding.
type BindingResponse struct {
	TerminalID        string  `json:"terminal_id"`
	PrimaryReaderID   string  `json:"primary_reader_id"`
	BackupReaderID    *string `json:"backup_reader_id,omitempty"`
	FailoverTimeoutMs int64   `json:"failover_timeout_ms"`
	Backend           string  `json:"backend"`
	Version           int64   `json:"version"`
	UpdatedAt         string  `json:"updated_at"`
}

// NewBindingResponse converts a domain binding.
func NewBindingResponse(b *domain.TerminalBinding) BindingResponse {
	return BindingResponse{
		TerminalID:        b.TerminalID,
		PrimaryReaderID:   b.PrimaryReaderID,
		BackupReaderID:    b.BackupReaderID,
		FailoverTimeoutMs: b.Timeout().Milliseconds(),
		Backend:           string(b.Backend),
		Version:           b.Version,
		UpdatedAt:         formatTime(b.UpdatedAt),
	}
}

// ReaderStatusResponse reports the outcome of a reader ping.
type ReaderStatusResponse struct {
	ReaderID string `json:"reader_id"`
	Online   bool   `json:"online"`
}

// SwapResponse reports the reader a terminal now uses.
type SwapResponse struct {
	TerminalID string `json:"terminal_id"`
	ReaderID   string `json:"reader_id"`
	ReaderName string `json:"reader_name,omitempty"`
}

// StatsResponse is the response for transaction statistics.
type StatsResponse struct {
	TotalTransactions     int64  `json:"total_transactions"`
	Approved              int64  `json:"approved"`
	Declined              int64  `json:"declined"`
	Errored               int64  `json:"errored"`
	PartialApprovals      int64  `json:"partial_approvals"`
	ReconciliationPending int64  `json:"reconciliation_pending"`
	TotalAuthorized       string `json:"total_authorized"`
	TotalReturned         string `json:"total_returned"`
}

// TransactionResponse is a persisted transaction record.
type TransactionResponse struct {
	ID                     string          `json:"id"`
	TerminalID             string          `json:"terminal_id"`
	ReaderID               string          `json:"reader_id"`
	InvoiceNo              string          `json:"invoice_no,omitempty"`
	Operation              string          `json:"operation"`
	AmountRequested        decimal.Decimal `json:"amount_requested"`
	TipAmount              decimal.Decimal `json:"tip_amount"`
	RecordNo               string          `json:"record_no,omitempty"`
	Status                 string          `json:"status"`
	ErrorCode              string          `json:"error_code,omitempty"`
	ErrorMessage           string          `json:"error_message,omitempty"`
	ReconciliationRequired bool            `json:"reconciliation_required"`
	Result                 *ResultResponse `json:"result,omitempty"`
	CreatedAt              string          `json:"created_at"`
	CompletedAt            *string         `json:"completed_at,omitempty"`
	ReconciledAt           *string         `json:"reconciled_at,omitempty"`
	ReconciliationNote     string          `json:"reconciliation_note,omitempty"`
}

// NewTransactionResponse converts a domain transaction.
func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                     t.ID.String(),
		TerminalID:             t.TerminalID,
		ReaderID:               t.ReaderID,
		InvoiceNo:              t.InvoiceNo,
		Operation:              string(t.Kind),
		AmountRequested:        t.AmountRequested.Round(2),
		TipAmount:              t.TipAmount.Round(2),
		RecordNo:               t.RecordNo,
		Status:                 string(t.Status),
		ErrorCode:              t.ErrorCode,
		ErrorMessage:           t.ErrorMessage,
		ReconciliationRequired: t.ReconciliationRequired,
		CreatedAt:              formatTime(t.CreatedAt),
		CompletedAt:            formatTimePtr(t.CompletedAt),
		ReconciledAt:           formatTimePtr(t.ReconciledAt),
		ReconciliationNote:     t.ReconciliationNote,
	}
	if t.Result != nil {
		r := NewResultResponse(t.Result)
		resp.Result = &r
	}
	return resp
}

// TransactionListResponse wraps paginated transaction list.
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// DeliveryResponse is one attempt record of a result webhook.
type DeliveryResponse struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	Attempt     int     `json:"attempt"`
	HTTPStatus  *int    `json:"http_status,omitempty"`
	LastError   *string `json:"last_error,omitempty"`
	NextRetryAt *string `json:"next_retry_at,omitempty"`
	UpdatedAt   string  `json:"updated_at"`
}

// TransactionDetailResponse is a transaction with its result deliveries.
type TransactionDetailResponse struct {
	TransactionResponse
	Deliveries []DeliveryResponse `json:"deliveries"`
}

// NewDeliveryResponse converts a webhook delivery log.
func NewDeliveryResponse(d *domain.WebhookDeliveryLog) DeliveryResponse {
	return DeliveryResponse{
		ID:          d.ID.String(),
		Status:      string(d.Status),
		Attempt:     d.Attempt,
		HTTPStatus:  d.HTTPStatus,
		LastError:   d.LastError,
		NextRetryAt: formatTimePtr(d.NextRetryAt),
		UpdatedAt:   formatTime(d.UpdatedAt),
	}
}

// ReconcileRequest closes an ambiguous transaction after manual review.
type ReconcileRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=approved declined error"`
	Note    string `json:"note" binding:"required,max=500"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
