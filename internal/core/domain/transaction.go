package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationKind identifies the payment operation sent to a reader.
type OperationKind string

const (
	OperationSale        OperationKind = "sale"
	OperationPreAuth     OperationKind = "preauth"
	OperationCapture     OperationKind = "capture"
	OperationIncrement   OperationKind = "increment"
	OperationAdjust      OperationKind = "adjust"
	OperationVoid        OperationKind = "void"
	OperationReturn      OperationKind = "return"
	OperationCollectCard OperationKind = "collect_card"
)

// RequiresRecordNo reports whether the operation continues an existing
// authorization chain.
func (k OperationKind) RequiresRecordNo() bool {
	switch k {
	case OperationCapture, OperationIncrement, OperationAdjust, OperationVoid:
		return true
	}
	return false
}

// Background operations are advisory: no status transitions are published
// for them and, for increment, transport failures are swallowed.
func (k OperationKind) Background() bool {
	return k == OperationIncrement || k == OperationAdjust
}

// MovesMoney is false only for card-data collection.
func (k OperationKind) MovesMoney() bool {
	return k != OperationCollectCard
}

// TransactionStatus is a state of the per-terminal transaction state machine.
type TransactionStatus string

const (
	StatusIdle           TransactionStatus = "idle"
	StatusCheckingReader TransactionStatus = "checking_reader"
	StatusWaitingCard    TransactionStatus = "waiting_card"
	StatusAuthorizing    TransactionStatus = "authorizing"
	StatusApproved       TransactionStatus = "approved"
	StatusDeclined       TransactionStatus = "declined"
	StatusError          TransactionStatus = "error"
)

// IsTerminal returns true if the status ends a transaction.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusDeclined || s == StatusError
}

// IsInFlight returns true while a reader may be working on the transaction.
func (s TransactionStatus) IsInFlight() bool {
	return s == StatusCheckingReader || s == StatusWaitingCard || s == StatusAuthorizing
}

// Transaction is the persisted record of a single reader operation.
// It is created when the operation begins and never reused.
type Transaction struct {
	ID                     uuid.UUID          `json:"id"`
	TerminalID             string             `json:"terminal_id"`
	ReaderID               string             `json:"reader_id"`
	InvoiceNo              string             `json:"invoice_no,omitempty"`
	Kind                   OperationKind      `json:"kind"`
	AmountRequested        decimal.Decimal    `json:"amount_requested"`
	TipAmount              decimal.Decimal    `json:"tip_amount"`
	RecordNo               string             `json:"record_no,omitempty"`
	Status                 TransactionStatus  `json:"status"`
	ErrorCode              string             `json:"error_code,omitempty"`
	ErrorMessage           string             `json:"error_message,omitempty"`
	ReconciliationRequired bool               `json:"reconciliation_required"`
	Result                 *TransactionResult `json:"result,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
	CompletedAt            *time.Time         `json:"completed_at,omitempty"`
	ReconciledAt           *time.Time         `json:"reconciled_at,omitempty"`
	ReconciliationNote     string             `json:"reconciliation_note,omitempty"`
}

// IsTerminal returns true if the record reached a final status.
func (t *Transaction) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// OpensChain returns true if the record issued a recordNo that later
// operations may reference.
func (t *Transaction) OpensChain() bool {
	return t.Status == StatusApproved && t.RecordNo != "" &&
		(t.Kind == OperationSale || t.Kind == OperationPreAuth)
}

// AuthorizedTotal returns the amount currently held on an authorization
// chain: the authorized amount of its latest approved pre-auth or increment.
func AuthorizedTotal(chain []Transaction) decimal.Decimal {
	for i := len(chain) - 1; i >= 0; i-- {
		t := chain[i]
		if t.Status != StatusApproved || (t.Kind != OperationPreAuth && t.Kind != OperationIncrement) {
			continue
		}
		if t.Result != nil {
			return t.Result.AmountAuthorized
		}
		return t.AmountRequested
	}
	return decimal.Zero
}

// PaymentRequest carries the caller's inputs for any reader operation.
// Fields not used by an operation are ignored.
type PaymentRequest struct {
	TerminalID     string
	InvoiceNo      string
	Amount         decimal.Decimal
	TipAmount      decimal.Decimal
	GratuityAmount decimal.Decimal
	RecordNo       string
	CardPresent    bool
}
